// Package events publishes committed ledger changes to a message broker.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/workledger/workledger-backend/internal/domain"
)

// Payload is the wire shape of a ledger event. Amount is a fixed two-decimal string.
type Payload struct {
	EventID     uuid.UUID `json:"event_id"`
	Type        string    `json:"type"`
	AggregateID uuid.UUID `json:"aggregate_id"`
	UserID      uuid.UUID `json:"user_id"`
	Amount      string    `json:"amount"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewPayload converts a domain event to its wire shape
func NewPayload(event domain.LedgerEvent) Payload {
	return Payload{
		EventID:     event.ID,
		Type:        string(event.Type),
		AggregateID: event.AggregateID,
		UserID:      event.UserID,
		Amount:      event.Amount.StringFixed(domain.MoneyScale),
		Status:      event.Status,
		OccurredAt:  event.OccurredAt.UTC(),
	}
}

func encode(event domain.LedgerEvent) ([]byte, error) {
	return json.Marshal(NewPayload(event))
}
