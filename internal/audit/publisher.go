package audit

import (
	"context"
	"log/slog"
	"time"

	"normativa/pkg/requestcontext"
)

// Publisher accepts events from domain logic and hands them to the worker via
// a buffered inbox. Emit never blocks the caller: when the buffer is full the
// event is dropped and counted in the log, because audit lag must not stall a
// recalculation.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewPublisher creates a publisher with the given buffer size and the channel
// a Worker should consume.
func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Inbox exposes the consuming side for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// Emit enqueues an event, stamping timestamp and request ID from context when
// unset.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", event.Action,
			"condo_id", event.CondoID,
		)
		return nil
	}
}

// Drain waits up to timeout for the inbox to empty. Called during shutdown.
func (p *Publisher) Drain(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for len(p.inbox) > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
}
