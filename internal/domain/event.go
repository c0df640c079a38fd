package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names a ledger event published after a committed balance change
type EventType string

const (
	EventTaskCompleted    EventType = "task.completed"
	EventCheckoutCreated  EventType = "checkout.created"
	EventCheckoutApproved EventType = "checkout.approved"
	EventCheckoutRejected EventType = "checkout.rejected"
)

// LedgerEvent describes a committed change to a worker's ledger
type LedgerEvent struct {
	ID          uuid.UUID
	Type        EventType
	AggregateID uuid.UUID // Task or checkout request ID
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Status      string
	OccurredAt  time.Time
}

// NewLedgerEvent creates an event with a fresh ID
func NewLedgerEvent(eventType EventType, aggregateID, userID uuid.UUID, amount decimal.Decimal, status string, now time.Time) LedgerEvent {
	return LedgerEvent{
		ID:          uuid.New(),
		Type:        eventType,
		AggregateID: aggregateID,
		UserID:      userID,
		Amount:      amount,
		Status:      status,
		OccurredAt:  now,
	}
}

// EventPublisher delivers ledger events to downstream consumers.
// Publishing happens after commit and never changes ledger state.
type EventPublisher interface {
	Publish(ctx context.Context, event LedgerEvent) error
	Close() error
}
