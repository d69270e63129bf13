package easel

import (
	"context"
	"testing"
	"time"
)

func TestLoopRunUntilIdleOrder(t *testing.T) {
	l := NewLoop()
	var order []int
	for i := 1; i <= 5; i++ {
		i := i
		l.Post(func() { order = append(order, i) })
	}

	if n := l.RunUntilIdle(); n != 5 {
		t.Fatalf("RunUntilIdle() = %d, want 5", n)
	}
	for i, v := range order {
		if v != i+1 {
			t.Fatalf("operations ran out of order: %v", order)
		}
	}
	if n := l.RunUntilIdle(); n != 0 {
		t.Errorf("second RunUntilIdle() = %d, want 0", n)
	}
}

func TestLoopPostFromOperation(t *testing.T) {
	l := NewLoop()
	var order []string
	l.Post(func() {
		order = append(order, "outer")
		l.Post(func() { order = append(order, "inner") })
	})
	l.Post(func() { order = append(order, "second") })

	l.RunUntilIdle()

	// An operation posted from inside another runs after everything
	// already queued.
	want := []string{"outer", "second", "inner"}
	if len(order) != len(want) {
		t.Fatalf("ran %d operations, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestLoopRunUntilCanceled(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())

	ran := make(chan struct{})
	l.Post(func() { close(ran) })

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("posted operation never ran")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestLoopCanceledBeforeRun(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	l.Post(func() { ran = true })
	// The first queued operation may run before the cancellation check,
	// but Run must return promptly with the context error.
	if err := l.Run(ctx); err != context.Canceled {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	_ = ran
}

func TestLoopPostConcurrent(t *testing.T) {
	l := NewLoop()
	const n = 100
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		go func() {
			l.Post(func() {})
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
	if got := l.RunUntilIdle(); got != n {
		t.Errorf("RunUntilIdle() = %d, want %d", got, n)
	}
}
