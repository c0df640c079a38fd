package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutStatus represents the state of a withdrawal request
type CheckoutStatus string

const (
	CheckoutStatusPending  CheckoutStatus = "pending"
	CheckoutStatusApproved CheckoutStatus = "approved"
	CheckoutStatusRejected CheckoutStatus = "rejected"
)

// MoneyScale is the number of fractional digits a monetary amount may carry
const MoneyScale = 2

// MaxAmount is the largest amount or balance the ledger stores (NUMERIC(14,2))
var MaxAmount = decimal.RequireFromString("999999999999.99")

// CheckoutRequest represents a worker's request to withdraw part of their balance.
// The amount is reserved (debited) when the request is created.
type CheckoutRequest struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Amount         decimal.Decimal
	Status         CheckoutStatus
	TransferNumber string // Set only on approval
	CreatedAt      time.Time
	ResolvedAt     *time.Time
	Refunded       bool
}

// ValidateAmount ensures a withdrawal amount is positive and has at most MoneyScale fractional digits
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: amount must have at most %d decimal places", ErrValidation, MoneyScale)
	}
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: amount cannot exceed %s", ErrValidation, MaxAmount.StringFixed(MoneyScale))
	}
	return nil
}

// NewCheckoutRequest creates a pending checkout request
func NewCheckoutRequest(userID uuid.UUID, amount decimal.Decimal, now time.Time) (*CheckoutRequest, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	return &CheckoutRequest{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Status:    CheckoutStatusPending,
		CreatedAt: now,
	}, nil
}

// IsTerminal reports whether the request was already approved or rejected
func (c *CheckoutRequest) IsTerminal() bool {
	return c.Status != CheckoutStatusPending
}

// Approve moves a pending request to approved and records the external transfer reference
func (c *CheckoutRequest) Approve(transferNumber string, now time.Time) error {
	transferNumber = strings.TrimSpace(transferNumber)
	if transferNumber == "" {
		return fmt.Errorf("%w: transaction number required", ErrValidation)
	}
	if c.IsTerminal() {
		return fmt.Errorf("%w: request %s is %s", ErrAlreadyProcessed, c.ID, c.Status)
	}
	c.Status = CheckoutStatusApproved
	c.TransferNumber = transferNumber
	c.ResolvedAt = &now
	return nil
}

// Reject moves a pending request to rejected
func (c *CheckoutRequest) Reject(now time.Time) error {
	if c.IsTerminal() {
		return fmt.Errorf("%w: request %s is %s", ErrAlreadyProcessed, c.ID, c.Status)
	}
	c.Status = CheckoutStatusRejected
	c.ResolvedAt = &now
	return nil
}
