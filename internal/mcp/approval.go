package mcpserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Approval events sent to the desktop frontend.
const (
	EventApprovalRequired  = "mcp:approval-required"
	EventApprovalDismissed = "mcp:approval-dismissed"
)

// EventEmitter allows the approval queue to notify the frontend.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// PendingAction represents a destructive operation awaiting user approval.
type PendingAction struct {
	ID          string   `json:"id"`
	Tool        string   `json:"tool"`
	Description string   `json:"description"`
	CreatedAt   string   `json:"createdAt"`
	References  []string `json:"references"` // blocks to highlight
}

// ApprovalQueue manages human-in-the-loop approval for destructive MCP tool
// calls. In the desktop app the frontend answers through Approve/Reject.
// A standalone server has nobody to ask and is created with autoApprove.
type ApprovalQueue struct {
	mu          sync.Mutex
	pending     map[string]chan bool
	ctx         context.Context
	emitter     EventEmitter
	timeout     time.Duration
	autoApprove bool
}

func NewApprovalQueue(ctx context.Context, emitter EventEmitter, autoApprove bool) *ApprovalQueue {
	return &ApprovalQueue{
		pending:     make(map[string]chan bool),
		ctx:         ctx,
		emitter:     emitter,
		timeout:     120 * time.Second,
		autoApprove: autoApprove,
	}
}

// Request sends an approval request and blocks until approved, rejected or
// timed out.
func (q *ApprovalQueue) Request(tool, description string, refs []string) (bool, error) {
	if q.autoApprove || q.emitter == nil {
		return true, nil
	}
	id := uuid.NewString()
	ch := make(chan bool, 1)

	q.mu.Lock()
	q.pending[id] = ch
	q.mu.Unlock()
	defer q.cleanup(id)

	q.emitter.Emit(q.ctx, EventApprovalRequired, PendingAction{
		ID:          id,
		Tool:        tool,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		References:  refs,
	})

	timer := time.NewTimer(q.timeout)
	defer timer.Stop()
	select {
	case approved := <-ch:
		if !approved {
			return false, fmt.Errorf("action rejected by user: %s", tool)
		}
		return true, nil
	case <-timer.C:
		q.emitter.Emit(q.ctx, EventApprovalDismissed, map[string]string{"id": id})
		return false, fmt.Errorf("action timed out after %s: %s", q.timeout, tool)
	case <-q.ctx.Done():
		return false, q.ctx.Err()
	}
}

// Pending returns the number of unanswered requests.
func (q *ApprovalQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Approve marks a pending action as approved.
func (q *ApprovalQueue) Approve(actionID string) { q.resolve(actionID, true) }

// Reject marks a pending action as rejected.
func (q *ApprovalQueue) Reject(actionID string) { q.resolve(actionID, false) }

func (q *ApprovalQueue) resolve(actionID string, approved bool) {
	q.mu.Lock()
	ch, ok := q.pending[actionID]
	q.mu.Unlock()
	if ok {
		select {
		case ch <- approved:
		default:
		}
	}
}

func (q *ApprovalQueue) cleanup(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
