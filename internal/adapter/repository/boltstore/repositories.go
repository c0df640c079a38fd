package boltstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workledger/workledger-backend/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	r runner
}

// GetByID retrieves an account by its ID
func (repo *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	var rec accountRecord
	err := repo.r.view(func(tx *bolt.Tx) error {
		return get(tx, accountsBucket, id.String(), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

// GetForUpdate is GetByID: bolt has a single writer, so the enclosing
// read-write transaction already excludes every other writer
func (repo *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return repo.GetByID(ctx, id)
}

// Create creates a new account
func (repo *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	return repo.r.update(func(tx *bolt.Tx) error {
		key := account.ID.String()
		if exists(tx, accountsBucket, key) {
			return fmt.Errorf("%w: account %s already exists", domain.ErrValidation, key)
		}
		return put(tx, accountsBucket, key, toAccountRecord(account))
	})
}

// AdjustBalance adds delta to the balance, refusing to go below zero
func (repo *accountRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	if err := checkContext(ctx); err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err := repo.r.update(func(tx *bolt.Tx) error {
		var rec accountRecord
		if err := get(tx, accountsBucket, id.String(), &rec); err != nil {
			return err
		}

		next, err := domain.ApplyDelta(rec.Balance, delta)
		if err != nil {
			return err
		}

		rec.Balance = next
		balance = next
		return put(tx, accountsBucket, id.String(), rec)
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// taskRepository implements domain.TaskRepository
type taskRepository struct {
	r runner
}

// GetByID retrieves a task by its ID
func (repo *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	var rec taskRecord
	err := repo.r.view(func(tx *bolt.Tx) error {
		return get(tx, tasksBucket, id.String(), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

// GetForUpdate is GetByID; see accountRepository.GetForUpdate
func (repo *taskRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return repo.GetByID(ctx, id)
}

// Create creates a new task. The assignee must exist.
func (repo *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	return repo.r.update(func(tx *bolt.Tx) error {
		if !exists(tx, accountsBucket, task.AssignedTo.String()) {
			return fmt.Errorf("%w: account %s", domain.ErrNotFound, task.AssignedTo)
		}
		key := task.ID.String()
		if exists(tx, tasksBucket, key) {
			return fmt.Errorf("%w: task %s already exists", domain.ErrValidation, key)
		}
		return put(tx, tasksBucket, key, toTaskRecord(task))
	})
}

// Update writes the mutable task fields. Cost is kept from the stored record.
func (repo *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	return repo.r.update(func(tx *bolt.Tx) error {
		var rec taskRecord
		if err := get(tx, tasksBucket, task.ID.String(), &rec); err != nil {
			return err
		}
		rec.Status = string(task.Status)
		rec.UpdatedAt = task.UpdatedAt
		rec.CreditedAt = task.CreditedAt
		return put(tx, tasksBucket, task.ID.String(), rec)
	})
}

// ListByAssignee retrieves all tasks assigned to an account, newest first
func (repo *taskRepository) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, 0)
	err := repo.r.view(func(tx *bolt.Tx) error {
		return scan(tx, tasksBucket, func(rec *taskRecord) {
			if rec.AssignedTo == userID {
				tasks = append(tasks, rec.toDomain())
			}
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	return tasks, nil
}

// checkoutRepository implements domain.CheckoutRepository
type checkoutRepository struct {
	r runner
}

// GetByID retrieves a checkout request by its ID
func (repo *checkoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CheckoutRequest, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	var rec checkoutRecord
	err := repo.r.view(func(tx *bolt.Tx) error {
		return get(tx, checkoutsBucket, id.String(), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

// GetForUpdate is GetByID; see accountRepository.GetForUpdate
func (repo *checkoutRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.CheckoutRequest, error) {
	return repo.GetByID(ctx, id)
}

// Create creates a new checkout request. The owner must exist.
func (repo *checkoutRepository) Create(ctx context.Context, req *domain.CheckoutRequest) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	return repo.r.update(func(tx *bolt.Tx) error {
		if !exists(tx, accountsBucket, req.UserID.String()) {
			return fmt.Errorf("%w: account %s", domain.ErrNotFound, req.UserID)
		}
		key := req.ID.String()
		if exists(tx, checkoutsBucket, key) {
			return fmt.Errorf("%w: checkout request %s already exists", domain.ErrValidation, key)
		}
		return put(tx, checkoutsBucket, key, toCheckoutRecord(req))
	})
}

// Update writes the resolution fields of a checkout request
func (repo *checkoutRepository) Update(ctx context.Context, req *domain.CheckoutRequest) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	return repo.r.update(func(tx *bolt.Tx) error {
		var rec checkoutRecord
		if err := get(tx, checkoutsBucket, req.ID.String(), &rec); err != nil {
			return err
		}
		rec.Status = string(req.Status)
		rec.TransferNumber = req.TransferNumber
		rec.ResolvedAt = req.ResolvedAt
		rec.Refunded = req.Refunded
		return put(tx, checkoutsBucket, req.ID.String(), rec)
	})
}

// ListByUser retrieves all checkout requests owned by an account, newest first
func (repo *checkoutRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CheckoutRequest, error) {
	requests, err := repo.filter(ctx, func(rec *checkoutRecord) bool {
		return rec.UserID == userID
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})

	return requests, nil
}

// ListPendingBefore retrieves pending requests created before cutoff, oldest first
func (repo *checkoutRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*domain.CheckoutRequest, error) {
	requests, err := repo.filter(ctx, func(rec *checkoutRecord) bool {
		return rec.Status == string(domain.CheckoutStatusPending) && rec.CreatedAt.Before(cutoff)
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})

	return requests, nil
}

func (repo *checkoutRepository) filter(ctx context.Context, keep func(rec *checkoutRecord) bool) ([]*domain.CheckoutRequest, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	requests := make([]*domain.CheckoutRequest, 0)
	err := repo.r.view(func(tx *bolt.Tx) error {
		return scan(tx, checkoutsBucket, func(rec *checkoutRecord) {
			if keep(rec) {
				requests = append(requests, rec.toDomain())
			}
		})
	})
	if err != nil {
		return nil, err
	}

	return requests, nil
}
