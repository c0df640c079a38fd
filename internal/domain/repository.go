package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for worker account persistence operations
type AccountRepository interface {
	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetForUpdate retrieves an account and locks it until the enclosing unit of work ends
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)

	// Create creates a new account
	Create(ctx context.Context, account *Account) error

	// AdjustBalance adds delta (negative for a debit) to the balance and returns the new balance.
	// Fails with ErrInsufficientBalance instead of going below zero.
	AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

// TaskRepository defines the interface for task persistence operations
type TaskRepository interface {
	// GetByID retrieves a task by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)

	// GetForUpdate retrieves a task and locks it until the enclosing unit of work ends
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Task, error)

	// Create creates a new task
	Create(ctx context.Context, task *Task) error

	// Update writes the task's status, updated_at and credited_at
	Update(ctx context.Context, task *Task) error

	// ListByAssignee retrieves all tasks assigned to an account
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*Task, error)
}

// CheckoutRepository defines the interface for checkout request persistence operations
type CheckoutRepository interface {
	// GetByID retrieves a checkout request by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*CheckoutRequest, error)

	// GetForUpdate retrieves a checkout request and locks it until the enclosing unit of work ends
	GetForUpdate(ctx context.Context, id uuid.UUID) (*CheckoutRequest, error)

	// Create creates a new checkout request
	Create(ctx context.Context, req *CheckoutRequest) error

	// Update writes the request's status, transfer number, resolved_at and refunded flag
	Update(ctx context.Context, req *CheckoutRequest) error

	// ListByUser retrieves all checkout requests owned by an account
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*CheckoutRequest, error)

	// ListPendingBefore retrieves pending requests created before cutoff, oldest first
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*CheckoutRequest, error)
}

// Repositories groups the repositories bound to one store handle or transaction
type Repositories struct {
	Accounts  AccountRepository
	Tasks     TaskRepository
	Checkouts CheckoutRepository
}

// UnitOfWork runs a callback inside a single store transaction.
// The transaction commits when fn returns nil and rolls back otherwise,
// exactly once, including when fn panics.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Store is a ledger store: transactional access plus non-transactional reads
type Store interface {
	UnitOfWork

	// Repositories returns repositories bound to the store handle, outside any transaction
	Repositories() Repositories

	// Close releases the underlying connection or file
	Close() error
}
