package asyncq

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskEvent describes one lifecycle transition of a task: queued,
// running, succeeded, or failed. Err is non-nil only for failed.
type TaskEvent struct {
	// ID is the task's unique identifier
	ID uuid.UUID

	// Seq is the task's admission sequence number
	Seq uint64

	// Status is the state the task transitioned into
	Status TaskStatus

	// Err carries the failure when Status is StatusFailed
	Err error

	// At is the timestamp when the transition was observed
	At time.Time
}

// EventHandler defines an interface for components that receive task
// lifecycle events. Handlers run on the queue's goroutines and should
// return quickly; a slow handler delays the task's bookkeeping but
// never its settlement outcome.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskEvent) error
}

// eventFanout dispatches lifecycle events to registered handlers. A
// handler error is logged and contained; every handler sees every
// event regardless of what the others do.
type eventFanout struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

func newEventFanout(logger *slog.Logger) *eventFanout {
	return &eventFanout{
		handlers: make([]EventHandler, 0),
		logger:   logger.With("component", "event_fanout"),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (f *eventFanout) RegisterHandler(handler EventHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, handler)
	f.logger.Debug("registered new event handler", "handler_count", len(f.handlers))
}

// emit publishes the given event to all registered handlers within the
// provided context.
func (f *eventFanout) emit(ctx context.Context, event *TaskEvent) {
	f.mu.RLock()
	handlers := make([]EventHandler, len(f.handlers))
	copy(handlers, f.handlers)
	f.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			f.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"task_id", event.ID,
				"status", event.Status)
		}
	}
}
