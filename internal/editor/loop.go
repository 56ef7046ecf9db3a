package editor

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when work is handed to a closed loop.
var ErrClosed = errors.New("editor: closed")

// Loop is the single event-processing thread of an editor. Editor objects
// are only touched from tasks run by the loop (or by the goroutine calling
// Drain), so none of them need locks.
//
// Post may be called from any goroutine.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	stop   chan struct{}
	closed bool
}

func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1), stop: make(chan struct{})}
}

// Post schedules fn for the next turn. It is dropped if the loop is closed.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop and waits for its result. It returns ErrClosed if
// the loop is closed before fn runs. It must not be called from a loop task.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return ErrClosed
	}

	done := make(chan error, 1)
	l.Post(func() { done <- fn() })
	select {
	case err := <-done:
		return err
	case <-l.stop:
		// fn may have finished just before Close
		select {
		case err := <-done:
			return err
		default:
			return ErrClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain runs queued tasks on the calling goroutine, including tasks they
// post, until the queue is empty. It returns the number of tasks run.
func (l *Loop) Drain() int {
	n := 0
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return n
		}
		for _, fn := range batch {
			fn()
			n++
		}
	}
}

// Run processes tasks until ctx is cancelled or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()

		l.mu.Lock()
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Close drops pending tasks and refuses new ones. Callers waiting in Do
// get ErrClosed. Close may be called more than once.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.queue = nil
	close(l.stop)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}
