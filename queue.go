package asyncq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jacobsa/syncutil"
)

// Common errors returned by the Queue
var (
	ErrQueueClosed     = errors.New("queue is closed")
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	ErrNilOperation    = errors.New("operation must not be nil")
)

// Queue admits at most capacity tasks concurrently and runs the rest in
// strict FIFO order as capacity frees up. Each submitted task settles
// exactly once through its Handle; a failing task never affects its
// siblings or the queue itself.
type Queue[R any] struct {
	capacity int
	logger   *slog.Logger
	events   *eventFanout

	// mu guards pending, active, closed and nextSeq. All admission and
	// settlement bookkeeping happens inside this critical section.
	//
	// INVARIANT: 0 <= active <= capacity
	// INVARIANT: pending is ordered by strictly increasing seq
	mu      syncutil.InvariantMutex
	pending []*task[R]
	active  int
	closed  bool
	nextSeq uint64

	// inFlight counts accepted-but-unsettled tasks for Drain.
	inFlight sync.WaitGroup
}

// New creates a queue that runs at most capacity tasks concurrently.
// A capacity below 1 is a programmer error and fails immediately.
// If logger is nil, slog.Default() is used.
func New[R any](capacity int, logger *slog.Logger) (*Queue[R], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue[R]{
		capacity: capacity,
		logger:   logger.With("component", "asyncq"),
		events:   newEventFanout(logger),
	}
	q.mu = syncutil.NewInvariantMutex(q.checkInvariants)

	return q, nil
}

// checkInvariants panics if the queue's bookkeeping is inconsistent.
// Runs on every Lock/Unlock when invariant checking is enabled (tests).
func (q *Queue[R]) checkInvariants() {
	if q.active < 0 || q.active > q.capacity {
		panic(fmt.Sprintf("active count %d outside [0, %d]", q.active, q.capacity))
	}

	for i := 1; i < len(q.pending); i++ {
		if q.pending[i-1].seq >= q.pending[i].seq {
			panic(fmt.Sprintf(
				"pending out of order at %d: seq %d >= %d",
				i, q.pending[i-1].seq, q.pending[i].seq))
		}
	}
}

// RegisterHandler adds a handler that receives lifecycle events for
// every task (queued, running, succeeded, failed).
func (q *Queue[R]) RegisterHandler(handler EventHandler) {
	q.events.RegisterHandler(handler)
}

// Add submits an operation for execution. The returned Handle settles
// with the operation's outcome once it has run; Add returning does not
// imply the operation has started. Returns ErrQueueClosed after Close
// and ErrNilOperation for a nil op.
func (q *Queue[R]) Add(op Operation[R]) (*Handle[R], error) {
	if op == nil {
		return nil, ErrNilOperation
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrQueueClosed
	}

	t := &task[R]{
		id:        uuid.New(),
		seq:       q.nextSeq,
		op:        op,
		announced: make(chan struct{}),
	}
	t.handle = newHandle[R](t.id, t.seq)
	q.nextSeq++

	q.pending = append(q.pending, t)
	q.inFlight.Add(1)

	q.logger.Debug("task queued",
		"task_id", t.id,
		"seq", t.seq,
		"pending", len(q.pending),
		"active", q.active)

	q.admitLocked()
	q.mu.Unlock()

	// The task may already have been handed to a run goroutine, but
	// that goroutine blocks on announced until the queued event is out.
	q.events.emit(context.Background(), &TaskEvent{ID: t.id, Seq: t.seq, Status: StatusQueued, At: time.Now()})
	close(t.announced)

	return t.handle, nil
}

// admitLocked moves tasks from pending into execution while capacity
// allows. Callers must hold q.mu. Strict FIFO: the head of pending is
// always the earliest-added waiter.
func (q *Queue[R]) admitLocked() {
	for q.active < q.capacity && len(q.pending) > 0 {
		t := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.active++

		go q.run(t)
	}
}

// run executes a single admitted task, settles its handle, and returns
// the freed capacity to the admission loop.
func (q *Queue[R]) run(t *task[R]) {
	// Never start before the task's queued event has been delivered.
	<-t.announced

	ctx := context.Background()
	logger := q.logger.With("task_id", t.id, "seq", t.seq)

	t.handle.markRunning()
	logger.Debug("task started")
	q.events.emit(ctx, &TaskEvent{ID: t.id, Seq: t.seq, Status: StatusRunning, At: time.Now()})

	value, err := q.invoke(ctx, t)

	if err != nil {
		logger.Error("task failed", "error", err)
	} else {
		logger.Debug("task completed")
	}

	t.handle.settle(value, err)
	q.events.emit(ctx, &TaskEvent{ID: t.id, Seq: t.seq, Status: t.handle.Status(), Err: err, At: time.Now()})

	q.mu.Lock()
	q.active--
	q.admitLocked()
	q.mu.Unlock()

	// Release Drain waiters only after the bookkeeping above, so a
	// returned Drain implies Active and Pending are both settled.
	q.inFlight.Done()
}

// invoke calls the task's operation, converting a panic into that
// task's failure so one misbehaving operation cannot take down the
// process or its sibling tasks.
func (q *Queue[R]) invoke(ctx context.Context, t *task[R]) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v\n%s", r, debug.Stack())
		}
	}()

	return t.op(ctx)
}

// Close stops the queue from accepting new tasks. Tasks already
// accepted, whether pending or running, still run to settlement; Close
// never cancels work. Safe to call more than once.
func (q *Queue[R]) Close() {
	q.mu.Lock()
	alreadyClosed := q.closed
	q.closed = true
	q.mu.Unlock()

	if !alreadyClosed {
		q.logger.Info("queue closed")
	}
}

// Drain blocks until every accepted task has settled, or until ctx
// expires. Callers normally Close first so the set of tasks being
// waited on cannot grow.
func (q *Queue[R]) Drain(ctx context.Context) error {
	settled := make(chan struct{})
	go func() {
		q.inFlight.Wait()
		close(settled)
	}()

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Capacity returns the queue's fixed concurrency limit.
func (q *Queue[R]) Capacity() int {
	return q.capacity
}

// Pending returns the number of tasks waiting for admission.
func (q *Queue[R]) Pending() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.pending)
}

// Active returns the number of tasks currently running. Never exceeds
// Capacity.
func (q *Queue[R]) Active() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.active
}
