package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account represents a worker account in the domain layer
type Account struct {
	ID        uuid.UUID
	FullName  string
	Balance   decimal.Decimal // Never negative once an operation completes
	CreatedAt time.Time
}

// NewAccount creates a zero-balance account
func NewAccount(fullName string, now time.Time) (*Account, error) {
	account := &Account{
		ID:        uuid.New(),
		FullName:  strings.TrimSpace(fullName),
		Balance:   decimal.Zero,
		CreatedAt: now,
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

// Validate ensures the account adheres to domain rules
func (a *Account) Validate() error {
	if a.FullName == "" {
		return fmt.Errorf("%w: account name cannot be empty", ErrValidation)
	}
	if a.Balance.IsNegative() {
		return fmt.Errorf("%w: account balance cannot be negative", ErrValidation)
	}
	if a.Balance.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: account balance cannot exceed %s", ErrValidation, MaxAmount.StringFixed(MoneyScale))
	}
	return nil
}

// CanDebit reports whether amount can be taken from the balance without going negative
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// ApplyDelta returns the balance after adding delta, refusing results below zero.
// Store implementations use it as the last line of defence for the non-negative invariant.
// Results above MaxAmount are refused with ErrValidation.
func ApplyDelta(balance, delta decimal.Decimal) (decimal.Decimal, error) {
	next := balance.Add(delta)
	if next.IsNegative() {
		return balance, fmt.Errorf("%w: balance %s cannot cover %s", ErrInsufficientBalance, balance.StringFixed(2), delta.Neg().StringFixed(2))
	}
	if next.GreaterThan(MaxAmount) {
		return balance, fmt.Errorf("%w: balance cannot exceed %s", ErrValidation, MaxAmount.StringFixed(MoneyScale))
	}
	return next, nil
}
