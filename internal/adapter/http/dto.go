package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workledger/workledger-backend/internal/domain"
	"github.com/workledger/workledger-backend/internal/usecase/dashboard"
)

// Request bodies. Amounts decode from JSON strings or numbers without passing through float64.

type setTaskStatusRequest struct {
	TaskID uuid.UUID `json:"task_id"`
	Status string    `json:"status"`
}

type createCheckoutRequest struct {
	UserID uuid.UUID       `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

type approveCheckoutRequest struct {
	TransactionNumber string `json:"transaction_number"`
}

type createTaskRequest struct {
	Title      string          `json:"title"`
	Cost       decimal.Decimal `json:"cost"`
	AssignedTo uuid.UUID       `json:"assigned_to"`
	Status     string          `json:"status"`
}

type createAccountRequest struct {
	FullName string `json:"full_name"`
}

// Response bodies

type successResponse struct {
	Success bool `json:"success"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type createdResponse struct {
	ID      uuid.UUID `json:"id"`
	Success bool      `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type accountResponse struct {
	ID               uuid.UUID `json:"id"`
	FullName         string    `json:"full_name"`
	Balance          string    `json:"account_balance"`
	Reserved         string    `json:"reserved"`
	TaskCount        int       `json:"task_count"`
	CompletedTasks   int       `json:"completed_tasks"`
	CheckoutCount    int       `json:"checkout_count"`
	PendingCheckouts int       `json:"pending_checkouts"`
	CreatedAt        time.Time `json:"created_at"`
}

type taskResponse struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Cost       string     `json:"cost"`
	AssignedTo uuid.UUID  `json:"assigned_to"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	CreditedAt *time.Time `json:"credited_at,omitempty"`
}

type checkoutResponse struct {
	ID                uuid.UUID  `json:"id"`
	UserID            uuid.UUID  `json:"user_id"`
	Amount            string     `json:"amount"`
	Status            string     `json:"status"`
	TransactionNumber string     `json:"transaction_number,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	Refunded          bool       `json:"refunded"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(domain.MoneyScale)
}

func toAccountResponse(s *dashboard.AccountSummary) accountResponse {
	return accountResponse{
		ID:               s.Account.ID,
		FullName:         s.Account.FullName,
		Balance:          money(s.Account.Balance),
		Reserved:         money(s.Reserved),
		TaskCount:        s.TaskCount,
		CompletedTasks:   s.CompletedTasks,
		CheckoutCount:    s.CheckoutCount,
		PendingCheckouts: s.PendingCheckouts,
		CreatedAt:        s.Account.CreatedAt,
	}
}

func toTaskResponses(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse{
			ID:         t.ID,
			Title:      t.Title,
			Cost:       money(t.Cost),
			AssignedTo: t.AssignedTo,
			Status:     string(t.Status),
			CreatedAt:  t.CreatedAt,
			UpdatedAt:  t.UpdatedAt,
			CreditedAt: t.CreditedAt,
		})
	}
	return out
}

func toCheckoutResponses(requests []*domain.CheckoutRequest) []checkoutResponse {
	out := make([]checkoutResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, checkoutResponse{
			ID:                r.ID,
			UserID:            r.UserID,
			Amount:            money(r.Amount),
			Status:            string(r.Status),
			TransactionNumber: r.TransferNumber,
			CreatedAt:         r.CreatedAt,
			ResolvedAt:        r.ResolvedAt,
			Refunded:          r.Refunded,
		})
	}
	return out
}
