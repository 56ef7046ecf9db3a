package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: decouples services from the desktop runtime
// ─────────────────────────────────────────────────────────────

// Events emitted by an editing session. Payloads are block snapshots or
// reference lists, never live editor objects.
const (
	EventBlockAdded     = "artboard:block-added"
	EventBlockChanged   = "artboard:block-changed"
	EventBlocksRemoved  = "artboard:blocks-removed"
	EventBlocksReorder  = "artboard:blocks-reordered"
	EventBlocksSelected = "artboard:blocks-selected"
	EventSaved          = "artboard:saved"
	EventSnapshot       = "artboard:snapshot"
)

// EventEmitter emits events to the frontend. The desktop App implements it
// with the Wails runtime; services only see this interface so they can be
// tested with MockEmitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded events with the given name.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
