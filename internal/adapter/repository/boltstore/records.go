package boltstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workledger/workledger-backend/internal/domain"
)

// Stored shapes are decoupled from the domain structs so either can evolve.
// decimal.Decimal encodes as a JSON string, which keeps amounts exact.

type accountRecord struct {
	ID        uuid.UUID       `json:"id"`
	FullName  string          `json:"full_name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

func toAccountRecord(a *domain.Account) accountRecord {
	return accountRecord{ID: a.ID, FullName: a.FullName, Balance: a.Balance, CreatedAt: a.CreatedAt}
}

func (r *accountRecord) toDomain() *domain.Account {
	return &domain.Account{ID: r.ID, FullName: r.FullName, Balance: r.Balance, CreatedAt: r.CreatedAt}
}

type taskRecord struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	Cost       decimal.Decimal `json:"cost"`
	AssignedTo uuid.UUID       `json:"assigned_to"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	CreditedAt *time.Time      `json:"credited_at,omitempty"`
}

func toTaskRecord(t *domain.Task) taskRecord {
	return taskRecord{
		ID:         t.ID,
		Title:      t.Title,
		Cost:       t.Cost,
		AssignedTo: t.AssignedTo,
		Status:     string(t.Status),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		CreditedAt: t.CreditedAt,
	}
}

func (r *taskRecord) toDomain() *domain.Task {
	return &domain.Task{
		ID:         r.ID,
		Title:      r.Title,
		Cost:       r.Cost,
		AssignedTo: r.AssignedTo,
		Status:     domain.TaskStatus(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		CreditedAt: r.CreditedAt,
	}
}

type checkoutRecord struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	TransferNumber string          `json:"transfer_number,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
	Refunded       bool            `json:"refunded"`
}

func toCheckoutRecord(c *domain.CheckoutRequest) checkoutRecord {
	return checkoutRecord{
		ID:             c.ID,
		UserID:         c.UserID,
		Amount:         c.Amount,
		Status:         string(c.Status),
		TransferNumber: c.TransferNumber,
		CreatedAt:      c.CreatedAt,
		ResolvedAt:     c.ResolvedAt,
		Refunded:       c.Refunded,
	}
}

func (r *checkoutRecord) toDomain() *domain.CheckoutRequest {
	return &domain.CheckoutRequest{
		ID:             r.ID,
		UserID:         r.UserID,
		Amount:         r.Amount,
		Status:         domain.CheckoutStatus(r.Status),
		TransferNumber: r.TransferNumber,
		CreatedAt:      r.CreatedAt,
		ResolvedAt:     r.ResolvedAt,
		Refunded:       r.Refunded,
	}
}
