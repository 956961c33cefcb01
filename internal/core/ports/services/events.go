package services

import (
	"context"

	"github.com/cartime-app/cartime-backend/internal/core/domain"
)

// EventPublisher delivers domain events to collaborators (push notifications,
// invoice generation) after a successful commit. Publishing is fire-and-forget:
// a failed or lost event never unwinds the transaction that produced it.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}
