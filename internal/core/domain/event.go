package domain

import "time"

// EventName identifies a domain event emitted after a successful commit.
type EventName string

const (
	EventBookingCreated   EventName = "booking.created"
	EventBookingCancelled EventName = "booking.cancelled"
	EventTopUpApproved    EventName = "wallet.topup_approved"
)

// Event is a fire-and-forget notification to collaborators (push notifications,
// invoice generation). Consumers must tolerate never receiving one; publishing
// failures never unwind the transaction that produced the event.
type Event struct {
	Name       EventName      `json:"name"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload"`
}
