package asyncq

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	StatusQueued    TaskStatus = "queued"
	StatusRunning   TaskStatus = "running"
	StatusSucceeded TaskStatus = "succeeded"
	StatusFailed    TaskStatus = "failed"
)

// Settled reports whether the status is a terminal one.
func (s TaskStatus) Settled() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Operation is a caller-supplied unit of asynchronous work. It must
// eventually return a value or an error. Operations that care about
// deadlines should honor the provided context (see WithTimeout).
type Operation[R any] func(ctx context.Context) (R, error)

// task is the queue's internal record for one submitted operation.
// The sequence number fixes the task's place in FIFO admission order;
// the uuid only identifies it in logs and events.
type task[R any] struct {
	id     uuid.UUID
	seq    uint64
	op     Operation[R]
	handle *Handle[R]

	// announced is closed once the task's queued event has been
	// delivered. Execution waits on it so that handlers never observe
	// a running or settled event before the queued one, even when the
	// task is admitted by a concurrently settling sibling.
	announced chan struct{}
}
