package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workledger/workledger-backend/internal/domain"
)

// AccountSummary is a read-only view of a worker's ledger
type AccountSummary struct {
	Account          *domain.Account
	Reserved         decimal.Decimal // Sum of pending checkout amounts, already debited from Balance
	TaskCount        int
	CompletedTasks   int
	CheckoutCount    int
	PendingCheckouts int
}

// DashboardService handles ledger read operations
type DashboardService struct {
	AccountRepo  domain.AccountRepository
	TaskRepo     domain.TaskRepository
	CheckoutRepo domain.CheckoutRepository
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(repos domain.Repositories) *DashboardService {
	return &DashboardService{
		AccountRepo:  repos.Accounts,
		TaskRepo:     repos.Tasks,
		CheckoutRepo: repos.Checkouts,
	}
}

// GetAccountSummary calculates a worker's ledger summary
// Logic:
//   - Reserved: sum of PENDING checkout amounts
//   - CompletedTasks: tasks whose status is completed
//   - Balance is reported as stored; it already excludes reserved funds
func (s *DashboardService) GetAccountSummary(ctx context.Context, userID uuid.UUID) (*AccountSummary, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}

	account, err := s.AccountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.TaskRepo.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	requests, err := s.CheckoutRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkout requests: %w", err)
	}

	summary := &AccountSummary{
		Account:       account,
		Reserved:      decimal.Zero,
		TaskCount:     len(tasks),
		CheckoutCount: len(requests),
	}
	for _, task := range tasks {
		if task.IsCompleted() {
			summary.CompletedTasks++
		}
	}
	for _, req := range requests {
		if req.Status == domain.CheckoutStatusPending {
			summary.Reserved = summary.Reserved.Add(req.Amount)
			summary.PendingCheckouts++
		}
	}

	return summary, nil
}

// ListTasks returns the tasks assigned to a worker, newest first
func (s *DashboardService) ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.TaskRepo.ListByAssignee(ctx, userID)
}

// ListCheckouts returns a worker's checkout requests, newest first
func (s *DashboardService) ListCheckouts(ctx context.Context, userID uuid.UUID) ([]*domain.CheckoutRequest, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return s.CheckoutRepo.ListByUser(ctx, userID)
}
