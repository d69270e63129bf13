package refresh

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/easel"
)

// Polling interval bounds. Intervals outside the clamp range would
// either burn CPU on comparisons or let the navigator lag visibly.
const (
	// DefaultInterval is the polling period when none is configured.
	DefaultInterval = 250 * time.Millisecond

	// MinInterval is the shortest accepted polling period.
	MinInterval = 50 * time.Millisecond

	// MaxInterval is the longest accepted polling period.
	MaxInterval = 5 * time.Second
)

// ThumbSink receives freshly rendered thumbnails. A navigator panel
// implements it to update its rows as the monitor flushes.
type ThumbSink interface {
	UpdateThumbnail(id uuid.UUID, thumb *easel.Surface)
}

// ThumbSinkFunc adapts a function to the ThumbSink interface.
type ThumbSinkFunc func(id uuid.UUID, thumb *easel.Surface)

// UpdateThumbnail implements ThumbSink.
func (f ThumbSinkFunc) UpdateThumbnail(id uuid.UUID, thumb *easel.Surface) {
	f(id, thumb)
}

// MonitorOption configures a Monitor.
type MonitorOption func(*monitorOptions)

type monitorOptions struct {
	interval     time.Duration
	cache        *ThumbCache
	sink         ThumbSink
	thumbnailers map[easel.LayerKind]Thumbnailer
}

func defaultMonitorOptions() monitorOptions {
	return monitorOptions{
		interval:     DefaultInterval,
		cache:        NewThumbCache(DefaultMaxThumbs),
		thumbnailers: make(map[easel.LayerKind]Thumbnailer),
	}
}

// WithInterval sets the polling period, clamped to
// [MinInterval, MaxInterval].
func WithInterval(d time.Duration) MonitorOption {
	return func(o *monitorOptions) {
		if d < MinInterval {
			d = MinInterval
		}
		if d > MaxInterval {
			d = MaxInterval
		}
		o.interval = d
	}
}

// WithThumbCache replaces the default thumbnail cache, for sharing one
// cache across documents. A nil cache is ignored.
func WithThumbCache(c *ThumbCache) MonitorOption {
	return func(o *monitorOptions) {
		if c != nil {
			o.cache = c
		}
	}
}

// WithThumbnailer registers a content renderer for one layer kind.
// Vector and group layers need one; raster layers work without.
func WithThumbnailer(kind easel.LayerKind, t Thumbnailer) MonitorOption {
	return func(o *monitorOptions) {
		o.thumbnailers[kind] = t
	}
}

// WithThumbSink routes every rendered thumbnail to sink.
func WithThumbSink(s ThumbSink) MonitorOption {
	return func(o *monitorOptions) {
		o.sink = s
	}
}

// Monitor polls the layer stack for counter movement and coalesces
// everything observed in one interval into a single navigator refresh.
//
// Each tick compares every layer's change counter and the stack's
// structural counter against the values recorded on the previous tick.
// Layers whose counters moved enter the dirty set and get their
// thumbnails regenerated; state for deleted layers is pruned. However
// many layers changed, at most one RefreshNavigator fires per tick, and
// a tick with no movement does nothing but the comparisons.
//
// The monitor re-arms itself through Session.After, so once started it
// stays on the session loop. Stats is the only method safe to call from
// other goroutines.
type Monitor struct {
	sess     *easel.Session
	interval time.Duration
	cache    *ThumbCache
	sink     ThumbSink
	thumbs   map[easel.LayerKind]Thumbnailer

	dirty          *DirtySet
	lastSeen       map[uuid.UUID]uint64
	lastStructural uint64

	handle  easel.Handle
	running bool

	ticks     atomic.Uint64
	changed   atomic.Uint64
	refreshes atomic.Uint64
	pruned    atomic.Uint64
}

// NewMonitor creates a Monitor for the session. It does not start
// polling; call Start.
func NewMonitor(sess *easel.Session, opts ...MonitorOption) *Monitor {
	o := defaultMonitorOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Monitor{
		sess:     sess,
		interval: o.interval,
		cache:    o.cache,
		sink:     o.sink,
		thumbs:   o.thumbnailers,
		dirty:    NewDirtySet(),
		lastSeen: make(map[uuid.UUID]uint64),
	}
}

// Start arms the polling timer. The first tick sees every layer as
// changed and populates all thumbnails. Starting a running monitor is
// a no-op.
func (m *Monitor) Start() {
	if m.running {
		return
	}
	m.running = true
	easel.Logger().Info("refresh: monitor started", "interval", m.interval)
	m.arm()
}

// Stop cancels the pending tick and halts polling, reporting whether
// the monitor was running. A tick that already left the scheduler is
// discarded by the running guard when it lands on the loop.
func (m *Monitor) Stop() bool {
	if !m.running {
		return false
	}
	m.running = false
	if m.handle != nil {
		m.handle.Stop()
		m.handle = nil
	}
	easel.Logger().Info("refresh: monitor stopped")
	return true
}

// Running reports whether the monitor is armed.
func (m *Monitor) Running() bool {
	return m.running
}

// Interval returns the effective polling period.
func (m *Monitor) Interval() time.Duration {
	return m.interval
}

// Cache returns the thumbnail cache.
func (m *Monitor) Cache() *ThumbCache {
	return m.cache
}

func (m *Monitor) arm() {
	m.handle = m.sess.After(m.interval, m.tick)
}

// tick runs one poll cycle: detect counter movement, flush if anything
// changed, re-arm for the next interval.
func (m *Monitor) tick() {
	if !m.running {
		return
	}
	m.ticks.Add(1)
	m.detect()
	if !m.dirty.Empty() {
		m.flush()
	}
	m.arm()
}

// detect compares the structural counter and every layer's change
// counter against the values seen last tick, marking movement in the
// dirty set.
func (m *Monitor) detect() {
	stack := m.sess.Stack()
	if sv := stack.StructuralVersion(); sv != m.lastStructural {
		m.lastStructural = sv
		m.dirty.MarkStructural()
	}
	for _, l := range stack.Layers() {
		c := l.ChangeCounter()
		if c != m.lastSeen[l.ID()] {
			m.lastSeen[l.ID()] = c
			m.dirty.Add(l.ID())
			m.changed.Add(1)
		}
	}
}

// flush prunes state for layers that no longer exist, regenerates
// thumbnails for dirty layers in stack order, and fires exactly one
// navigator refresh.
func (m *Monitor) flush() {
	stack := m.sess.Stack()

	for id := range m.lastSeen {
		if stack.ByID(id) == nil {
			delete(m.lastSeen, id)
			m.dirty.Remove(id)
			m.cache.Invalidate(id)
			m.pruned.Add(1)
		}
	}

	for _, l := range stack.Layers() {
		if !m.dirty.Has(l.ID()) {
			continue
		}
		thumb := RenderThumb(l, m.thumbs[l.Kind])
		m.cache.Put(l.ID(), thumb, l.ChangeCounter())
		if m.sink != nil {
			m.sink.UpdateThumbnail(l.ID(), thumb)
		}
	}

	m.dirty.Clear()
	m.sess.Refresher().RefreshNavigator()
	m.refreshes.Add(1)
}

// Thumb returns the current thumbnail for a layer, rendering and
// caching one when the cached copy is missing or stale. It reports
// false for unknown layers.
func (m *Monitor) Thumb(id uuid.UUID) (*easel.Surface, bool) {
	l := m.sess.Stack().ByID(id)
	if l == nil {
		return nil, false
	}
	if t, ok := m.cache.Get(id, l.ChangeCounter()); ok {
		return t, true
	}
	t := RenderThumb(l, m.thumbs[l.Kind])
	m.cache.Put(id, t, l.ChangeCounter())
	return t, true
}

// MonitorStats is a point-in-time snapshot of the monitor counters.
type MonitorStats struct {
	// Ticks is the number of poll cycles run.
	Ticks uint64

	// ChangedLayers counts layer change detections across all ticks.
	ChangedLayers uint64

	// Refreshes counts navigator refreshes fired. Under sustained load
	// this stays at most one per tick.
	Refreshes uint64

	// Pruned counts state entries dropped for deleted layers.
	Pruned uint64
}

// Stats returns a snapshot of the monitor counters. Safe to call from
// any goroutine.
func (m *Monitor) Stats() MonitorStats {
	return MonitorStats{
		Ticks:         m.ticks.Load(),
		ChangedLayers: m.changed.Load(),
		Refreshes:     m.refreshes.Load(),
		Pruned:        m.pruned.Load(),
	}
}
