package asyncq

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Handle is the settlement handle for a submitted task. It is returned
// by Queue.Add immediately; the task may not have started yet. The
// outcome is recorded exactly once, after which Done is closed and Wait
// returns.
type Handle[R any] struct {
	id  uuid.UUID
	seq uint64

	done chan struct{}
	once sync.Once

	mu     sync.RWMutex
	status TaskStatus
	value  R
	err    error
}

func newHandle[R any](id uuid.UUID, seq uint64) *Handle[R] {
	return &Handle[R]{
		id:     id,
		seq:    seq,
		done:   make(chan struct{}),
		status: StatusQueued,
	}
}

// ID returns the task's unique identifier.
func (h *Handle[R]) ID() uuid.UUID {
	return h.id
}

// Seq returns the task's admission sequence number. Tasks are admitted
// in ascending sequence order.
func (h *Handle[R]) Seq() uint64 {
	return h.seq
}

// Status returns the task's current status.
func (h *Handle[R]) Status() TaskStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Done returns a channel that is closed once the task has settled.
func (h *Handle[R]) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task settles or ctx expires. It returns the
// operation's value and error once settled, or the zero value and
// ctx.Err() if the context expires first. Expiry of ctx does not affect
// the task itself; it will still settle and a later Wait will observe
// the outcome.
func (h *Handle[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-h.done:
		h.mu.RLock()
		defer h.mu.RUnlock()
		return h.value, h.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// markRunning records the queued -> running transition.
func (h *Handle[R]) markRunning() {
	h.mu.Lock()
	h.status = StatusRunning
	h.mu.Unlock()
}

// settle records the task's outcome. Subsequent calls are no-ops, so a
// task can never settle twice.
func (h *Handle[R]) settle(value R, err error) {
	h.once.Do(func() {
		h.mu.Lock()
		h.value = value
		h.err = err
		if err != nil {
			h.status = StatusFailed
		} else {
			h.status = StatusSucceeded
		}
		h.mu.Unlock()
		close(h.done)
	})
}
