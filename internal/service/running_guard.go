package service

import (
	"context"
	"sync"
)

// runningGuard lets one snapshot per artboard run at a time. A tick that
// finds its artboard still being written skips it instead of queueing.
type runningGuard struct {
	mu      sync.Mutex
	running map[string]bool
	wg      sync.WaitGroup
}

// acquire marks artboardID as running and returns its release func, or
// false when a snapshot of it is already in flight.
func (g *runningGuard) acquire(artboardID string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running[artboardID] {
		return nil, false
	}
	if g.running == nil {
		g.running = map[string]bool{}
	}
	g.running[artboardID] = true
	g.wg.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.running, artboardID)
			g.mu.Unlock()
			g.wg.Done()
		})
	}, true
}

// wait blocks until in-flight snapshots finish or ctx is done.
func (g *runningGuard) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
