package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher captures structured audit events. It is append-only and writes to
// both the structured log and the storage layer so tests can swap sinks easily.
type Publisher struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets a logger that mirrors every event as a log line.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithClock overrides the timestamp source. Used in tests.
func WithClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps and records the event. Store failures are logged, never
// propagated: the audit trail must not fail the underlying operation that
// already committed.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}

	if p.logger != nil {
		p.logger.InfoContext(ctx, string(event.Action),
			"log_type", "audit",
			"clearance_id", event.ClearanceID,
			"or_number", event.ORNumber,
			"actor_id", event.ActorID,
			"actor_name", event.ActorName,
			"actor_device", event.ActorDevice,
			"request_id", event.RequestID,
		)
	}

	if p.store == nil {
		return
	}
	if err := p.store.Append(ctx, event); err != nil && p.logger != nil {
		p.logger.ErrorContext(ctx, "failed to persist audit event",
			"action", event.Action,
			"clearance_id", event.ClearanceID,
			"error", err,
		)
	}
}
