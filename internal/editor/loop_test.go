package editor_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"artboard/internal/editor"
)

func TestLoop_DrainRunsNestedPosts(t *testing.T) {
	l := editor.NewLoop()
	var order []int
	l.Post(func() {
		order = append(order, 1)
		l.Post(func() { order = append(order, 3) })
	})
	l.Post(func() { order = append(order, 2) })

	if n := l.Drain(); n != 3 {
		t.Errorf("Drain ran %d tasks, want 3", n)
	}
	if !slices.Equal(order, []int{1, 2, 3}) {
		t.Errorf("order = %v", order)
	}
}

func TestLoop_DoFromAnotherGoroutine(t *testing.T) {
	l := editor.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	counter := 0
	for i := 0; i < 10; i++ {
		if err := l.Do(ctx, func() error { counter++; return nil }); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	if counter != 10 {
		t.Errorf("counter = %d", counter)
	}

	want := errors.New("boom")
	if err := l.Do(ctx, func() error { return want }); !errors.Is(err, want) {
		t.Errorf("Do should return the task error, got %v", err)
	}
}

func TestLoop_DoHonorsContext(t *testing.T) {
	l := editor.NewLoop() // never driven
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := l.Do(ctx, func() error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestLoop_Close(t *testing.T) {
	l := editor.NewLoop()
	ran := false
	l.Post(func() { ran = true })
	l.Close()
	l.Post(func() { ran = true })

	if l.Drain() != 0 || ran {
		t.Error("closed loop should drop tasks")
	}
	if err := l.Do(context.Background(), func() error { return nil }); !errors.Is(err, editor.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := l.Run(context.Background()); err != nil {
		t.Errorf("Run on closed loop = %v", err)
	}
}

func TestLoop_CloseReleasesPendingDo(t *testing.T) {
	l := editor.NewLoop() // never driven
	ran := false
	errc := make(chan error, 1)
	go func() {
		errc <- l.Do(context.Background(), func() error { ran = true; return nil })
	}()

	// let Do queue its task before closing
	time.Sleep(10 * time.Millisecond)
	l.Close()
	l.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, editor.ErrClosed) {
			t.Errorf("Do after Close = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do still blocked after Close")
	}
	if ran {
		t.Error("dropped task should not run")
	}
}

func TestSubject_ReplaysLatest(t *testing.T) {
	s := editor.NewSubject(1)
	s.Next(2)

	var got []int
	sub := s.Subscribe(func(v int) { got = append(got, v) })
	s.Next(3)
	sub.Unsubscribe()
	s.Next(4)

	if !slices.Equal(got, []int{2, 3}) {
		t.Errorf("got %v, want [2 3]", got)
	}
	if s.Value() != 4 {
		t.Errorf("value = %d", s.Value())
	}
}

func TestSignal_Once(t *testing.T) {
	var sig editor.Signal[string]
	var got []string
	sig.SubscribeOnce(func(v string) { got = append(got, v) })
	sig.Subscribe(func(v string) { got = append(got, "all:"+v) })

	sig.Emit("a")
	sig.Emit("b")

	if !slices.Equal(got, []string{"a", "all:a", "all:b"}) {
		t.Errorf("got %v", got)
	}
	if sig.Len() != 1 {
		t.Errorf("once listener should be gone, %d left", sig.Len())
	}
}

func TestSignal_UnsubscribeDuringEmit(t *testing.T) {
	var sig editor.Signal[int]
	var second *editor.Subscription
	calls := 0
	sig.Subscribe(func(int) { second.Unsubscribe() })
	second = sig.Subscribe(func(int) { calls++ })

	sig.Emit(1)
	if calls != 0 {
		t.Error("listener removed mid-dispatch should not run")
	}
}
