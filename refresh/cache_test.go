package refresh

import (
	"testing"

	"github.com/google/uuid"

	"github.com/gogpu/easel"
)

func newThumb() *easel.Surface {
	return easel.NewSurface(ThumbSize, ThumbSize)
}

func TestThumbCacheBudget(t *testing.T) {
	tests := []struct {
		name string
		max  int
		want int
	}{
		{name: "explicit", max: 16, want: 16},
		{name: "zero picks default", max: 0, want: DefaultMaxThumbs},
		{name: "negative picks default", max: -3, want: DefaultMaxThumbs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewThumbCache(tt.max)
			if got := c.Stats().MaxEntries; got != tt.want {
				t.Errorf("MaxEntries = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestThumbCacheVersionedLookup(t *testing.T) {
	c := NewThumbCache(8)
	id := uuid.New()

	if _, ok := c.Get(id, 1); ok {
		t.Fatal("Get on an empty cache reported a hit")
	}

	thumb := newThumb()
	c.Put(id, thumb, 3)

	got, ok := c.Get(id, 3)
	if !ok || got != thumb {
		t.Errorf("Get(id, 3) = %v, %v, want the cached thumb, true", got, ok)
	}
	if _, ok := c.Get(id, 4); ok {
		t.Error("Get with a stale version reported a hit")
	}

	if v, ok := c.Version(id); !ok || v != 3 {
		t.Errorf("Version(id) = %d, %v, want 3, true", v, ok)
	}
	if _, ok := c.Version(uuid.New()); ok {
		t.Error("Version reported an entry for an unknown id")
	}
	if got := c.EntryCount(); got != 1 {
		t.Errorf("EntryCount() = %d, want 1", got)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 2 {
		t.Errorf("Hits = %d, Misses = %d, want 1, 2", stats.Hits, stats.Misses)
	}
	if stats.HitRate != 1.0/3.0 {
		t.Errorf("HitRate = %v, want %v", stats.HitRate, 1.0/3.0)
	}
}

func TestThumbCachePutReplaces(t *testing.T) {
	c := NewThumbCache(8)
	id := uuid.New()

	first, second := newThumb(), newThumb()
	c.Put(id, first, 1)
	c.Put(id, second, 2)

	if got := c.EntryCount(); got != 1 {
		t.Errorf("EntryCount() = %d, want 1", got)
	}
	if got, ok := c.Get(id, 2); !ok || got != second {
		t.Errorf("Get(id, 2) = %v, %v, want the replacement, true", got, ok)
	}
	if got := c.Stats().Evictions; got != 0 {
		t.Errorf("Evictions = %d after a replace, want 0", got)
	}
}

func TestThumbCachePutNil(t *testing.T) {
	c := NewThumbCache(8)
	c.Put(uuid.New(), nil, 1)
	if got := c.EntryCount(); got != 0 {
		t.Errorf("EntryCount() = %d after a nil Put, want 0", got)
	}
}

func TestThumbCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewThumbCache(2)
	a, b, d := uuid.New(), uuid.New(), uuid.New()

	c.Put(a, newThumb(), 1)
	c.Put(b, newThumb(), 1)

	// Touching a leaves b as the eviction candidate.
	if _, ok := c.Get(a, 1); !ok {
		t.Fatal("Get(a) missed")
	}

	c.Put(d, newThumb(), 1)

	if _, ok := c.Get(b, 1); ok {
		t.Error("least recently used entry survived the eviction")
	}
	if _, ok := c.Get(a, 1); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.Get(d, 1); !ok {
		t.Error("newly added entry is missing")
	}

	stats := c.Stats()
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
}

func TestThumbCacheInvalidate(t *testing.T) {
	c := NewThumbCache(8)
	a, b := uuid.New(), uuid.New()
	c.Put(a, newThumb(), 1)
	c.Put(b, newThumb(), 1)

	c.Invalidate(a)
	if _, ok := c.Version(a); ok {
		t.Error("invalidated entry still present")
	}
	if got := c.EntryCount(); got != 1 {
		t.Errorf("EntryCount() = %d, want 1", got)
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}

	c.Invalidate(uuid.New())
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d after an unknown Invalidate, want 1", got)
	}

	c.InvalidateAll()
	if got := c.EntryCount(); got != 0 {
		t.Errorf("EntryCount() = %d after InvalidateAll, want 0", got)
	}
	if got := c.Stats().Evictions; got != 2 {
		t.Errorf("Evictions = %d, want 2", got)
	}

	c.InvalidateAll()
	if got := c.Stats().Evictions; got != 2 {
		t.Errorf("Evictions = %d after clearing an empty cache, want 2", got)
	}
}
