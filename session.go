package easel

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrSurfaceHeld is returned by AcquireSurface when another owner
// already holds the layer's surface.
var ErrSurfaceHeld = errors.New("easel: layer surface already held")

// SessionOption configures a Session during creation.
//
// Example:
//
//	sess := easel.NewSession(stack,
//	    easel.WithHistory(undo),
//	    easel.WithScheduler(easel.TimerScheduler{}),
//	)
type SessionOption func(*sessionOptions)

// sessionOptions holds optional configuration for Session creation.
type sessionOptions struct {
	history   History
	refresher Refresher
	scheduler Scheduler
	dispatch  func(func())
}

// defaultSessionOptions returns the default session options.
func defaultSessionOptions() sessionOptions {
	return sessionOptions{
		history:   NopHistory{},
		refresher: NopRefresher{},
		scheduler: TimerScheduler{},
		dispatch:  nil, // inline dispatch unless a loop is attached
	}
}

// WithHistory attaches the undo service the session brackets its
// mutations with.
func WithHistory(h History) SessionOption {
	return func(o *sessionOptions) {
		if h != nil {
			o.history = h
		}
	}
}

// WithRefresher attaches the renderer's refresh signal.
func WithRefresher(r Refresher) SessionOption {
	return func(o *sessionOptions) {
		if r != nil {
			o.refresher = r
		}
	}
}

// WithScheduler replaces the timer source. Tests pass a ManualScheduler
// to drive debounce and polling deterministically.
func WithScheduler(s Scheduler) SessionOption {
	return func(o *sessionOptions) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithLoop routes Session.Post through the given loop, so asynchronous
// completions run in posted order with every other operation.
func WithLoop(l *Loop) SessionOption {
	return func(o *sessionOptions) {
		if l != nil {
			o.dispatch = l.Post
		}
	}
}

// WithDispatch sets a custom dispatch function for Session.Post. Mostly
// useful in tests that want to capture posted operations.
func WithDispatch(d func(func())) SessionOption {
	return func(o *sessionOptions) {
		if d != nil {
			o.dispatch = d
		}
	}
}

// Session is the explicit state of one editing session: the layer stack
// being edited, the services the core consumes (history, refresher,
// scheduler), the active selection, and the surface ownership registry.
// The engine packages all operate through a Session rather than through
// globals, so tests can assemble exactly the world they need.
//
// A Session is confined to the editor loop; it is not safe for
// concurrent use. Post and After are the only methods safe to call from
// other goroutines.
type Session struct {
	stack     *Stack
	history   History
	refresher Refresher
	scheduler Scheduler
	dispatch  func(func())

	selection *Selection
	locks     map[uuid.UUID]string
}

// NewSession creates a session for the given stack. Without options the
// session records no history, signals no renderer, and uses real timers
// with inline dispatch.
func NewSession(stack *Stack, opts ...SessionOption) *Session {
	o := defaultSessionOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Session{
		stack:     stack,
		history:   o.history,
		refresher: o.refresher,
		scheduler: o.scheduler,
		dispatch:  o.dispatch,
		locks:     make(map[uuid.UUID]string),
	}
	if s.dispatch == nil {
		s.dispatch = func(fn func()) { fn() }
	}
	return s
}

// Stack returns the layer stack being edited.
func (s *Session) Stack() *Stack {
	return s.stack
}

// History returns the attached undo service.
func (s *Session) History() History {
	return s.history
}

// Refresher returns the attached renderer signal.
func (s *Session) Refresher() Refresher {
	return s.refresher
}

// Scheduler returns the attached timer source.
func (s *Session) Scheduler() Scheduler {
	return s.scheduler
}

// Selection returns the active selection, or nil.
func (s *Session) Selection() *Selection {
	return s.selection
}

// SetSelection replaces the active selection. Pass nil to clear it.
func (s *Session) SetSelection(sel *Selection) {
	s.selection = sel
}

// Post runs fn through the session's dispatcher: inline by default, or
// queued on the loop when one is attached. Asynchronous completions use
// it to re-enter the single-threaded core.
func (s *Session) Post(fn func()) {
	s.dispatch(fn)
}

// After arms a one-shot timer that re-enters through Post, so the
// callback runs with loop ordering no matter which goroutine the
// scheduler fires on. The returned handle cancels it.
func (s *Session) After(d time.Duration, fn func()) Handle {
	return s.scheduler.After(d, func() {
		s.Post(fn)
	})
}

// AcquireSurface claims exclusive ownership of a layer's raster surface
// for the named owner. At most one of the painting tool and an active
// preview session holds a surface at any instant; a second acquirer gets
// ErrSurfaceHeld and must not touch the pixels.
func (s *Session) AcquireSurface(id uuid.UUID, owner string) error {
	if holder, held := s.locks[id]; held {
		return fmt.Errorf("%w: layer %s held by %s", ErrSurfaceHeld, id, holder)
	}
	s.locks[id] = owner
	return nil
}

// ReleaseSurface releases a claim taken with AcquireSurface. A release
// by anyone but the current owner is ignored and logged; the holder
// keeps the surface.
func (s *Session) ReleaseSurface(id uuid.UUID, owner string) {
	holder, held := s.locks[id]
	if !held {
		return
	}
	if holder != owner {
		Logger().Warn("easel: surface release owner mismatch",
			"layer", id, "holder", holder, "releaser", owner)
		return
	}
	delete(s.locks, id)
}

// SurfaceOwner reports who currently holds the layer's surface.
func (s *Session) SurfaceOwner(id uuid.UUID) (string, bool) {
	holder, held := s.locks[id]
	return holder, held
}
