package events

import (
	"context"
	"log/slog"

	"github.com/cartime-app/cartime-backend/internal/core/domain"
	portssvc "github.com/cartime-app/cartime-backend/internal/core/ports/services"
)

// SlogPublisher is an in-process, fire-and-forget event sink that emits each
// domain event as a structured log record. Publishing never blocks the caller
// and a failing subscriber can never roll back a committed transaction.
type SlogPublisher struct {
	logger *slog.Logger
}

// NewSlogPublisher creates a publisher backed by the given logger.
func NewSlogPublisher(logger *slog.Logger) *SlogPublisher {
	return &SlogPublisher{logger: logger}
}

// Ensure SlogPublisher implements the portssvc.EventPublisher interface
var _ portssvc.EventPublisher = (*SlogPublisher)(nil)

// Publish emits the event asynchronously. Events are only published after the
// underlying transaction has committed, so handlers observe durable state.
func (p *SlogPublisher) Publish(_ context.Context, event domain.Event) {
	go func() {
		p.logger.Info("domain event",
			slog.String("event", string(event.Name)),
			slog.Time("occurred_at", event.OccurredAt),
			slog.Any("payload", event.Payload),
		)
	}()
}
