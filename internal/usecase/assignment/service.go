package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workledger/workledger-backend/internal/domain"
)

// AssignTaskInput represents the input for assigning a new task
type AssignTaskInput struct {
	Title      string
	Cost       decimal.Decimal
	AssignedTo uuid.UUID
	Status     string // Optional, defaults to pending
}

// AssignmentService creates worker accounts and assigns tasks to them
type AssignmentService struct {
	UnitOfWork domain.UnitOfWork
	Logger     *slog.Logger

	now func() time.Time
}

// NewAssignmentService creates a new AssignmentService instance
func NewAssignmentService(uow domain.UnitOfWork, logger *slog.Logger) *AssignmentService {
	return &AssignmentService{
		UnitOfWork: uow,
		Logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// AssignTask creates a task for an existing worker
func (s *AssignmentService) AssignTask(ctx context.Context, input AssignTaskInput) (*domain.Task, error) {
	status := domain.TaskStatusPending
	if strings.TrimSpace(input.Status) != "" {
		parsed, err := domain.ParseTaskStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}
	if !input.Cost.Equal(input.Cost.Truncate(domain.MoneyScale)) {
		return nil, fmt.Errorf("%w: cost must have at most %d decimal places", domain.ErrValidation, domain.MoneyScale)
	}

	now := s.now()
	task := &domain.Task{
		ID:         uuid.New(),
		Title:      strings.TrimSpace(input.Title),
		Cost:       input.Cost,
		AssignedTo: input.AssignedTo,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	err := s.UnitOfWork.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Accounts.GetByID(ctx, task.AssignedTo); err != nil {
			return err
		}
		return repos.Tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "task assigned", "task_id", task.ID, "user_id", task.AssignedTo, "cost", task.Cost.StringFixed(domain.MoneyScale))
	return task, nil
}

// RegisterAccount creates a zero-balance worker account
func (s *AssignmentService) RegisterAccount(ctx context.Context, fullName string) (*domain.Account, error) {
	account, err := domain.NewAccount(fullName, s.now())
	if err != nil {
		return nil, err
	}

	err = s.UnitOfWork.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		return repos.Accounts.Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "account registered", "user_id", account.ID)
	return account, nil
}
