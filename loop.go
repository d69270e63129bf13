package easel

import (
	"context"
	"sync"
)

// Loop is the single-goroutine cooperative dispatcher the editor runs
// on. Operations posted to it run to completion, one at a time, in
// posted order; there are no parallel mutation threads. Asynchronous
// work (filter-service responses, timer callbacks) re-enters the core
// by posting.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop creates an empty loop. Nothing runs until Run or RunUntilIdle
// is called.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
	}
}

// Post enqueues fn to run on the loop goroutine. Safe to call from any
// goroutine, including from operations already running on the loop.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// take pops the oldest queued operation, or nil.
func (l *Loop) take() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	fn := l.queue[0]
	l.queue = l.queue[1:]
	return fn
}

// Run dispatches queued operations until ctx is canceled. It returns
// ctx.Err(); operations still queued at cancellation do not run.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for fn := l.take(); fn != nil; fn = l.take() {
			fn()
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// RunUntilIdle dispatches queued operations until the queue is empty,
// then returns how many ran. It is the synchronous driver used by tests
// and tools that control their own time.
func (l *Loop) RunUntilIdle() int {
	n := 0
	for fn := l.take(); fn != nil; fn = l.take() {
		fn()
		n++
	}
	return n
}
