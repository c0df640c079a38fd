package completion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workledger/workledger-backend/internal/domain"
)

// Result describes what a status change did
type Result struct {
	Task             *domain.Task
	Credited         bool // The assignee was credited the task's cost by this call
	AlreadyCompleted bool // The task was already completed; nothing changed
}

// CompletionService handles task status transitions and completion payouts
type CompletionService struct {
	UnitOfWork domain.UnitOfWork
	Publisher  domain.EventPublisher
	Logger     *slog.Logger

	now func() time.Time
}

// NewCompletionService creates a new CompletionService instance
func NewCompletionService(uow domain.UnitOfWork, publisher domain.EventPublisher, logger *slog.Logger) *CompletionService {
	return &CompletionService{
		UnitOfWork: uow,
		Publisher:  publisher,
		Logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetTaskStatus moves a task to a new status
// Logic:
//  1. Lock the task row
//  2. If it is already completed and the new status is completed, report AlreadyCompleted
//  3. Write the new status
//  4. On the first move into completed, credit the assignee by the task's cost
//
// Steps 1-4 run in one unit of work, so a failed credit also undoes the status write.
func (s *CompletionService) SetTaskStatus(ctx context.Context, taskID uuid.UUID, status string) (*Result, error) {
	if taskID == uuid.Nil {
		return nil, fmt.Errorf("%w: task_id is required", domain.ErrValidation)
	}
	newStatus, err := domain.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}

	var result Result
	err = s.UnitOfWork.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		result = Result{}

		task, err := repos.Tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}

		if task.IsCompleted() && newStatus == domain.TaskStatusCompleted {
			result.Task = task
			result.AlreadyCompleted = true
			return nil
		}

		owed := task.ApplyStatus(newStatus, s.now())
		if err := repos.Tasks.Update(ctx, task); err != nil {
			return err
		}

		if owed {
			if _, err := repos.Accounts.AdjustBalance(ctx, task.AssignedTo, task.Cost); err != nil {
				return fmt.Errorf("failed to credit task %s: %w", task.ID, err)
			}
		}

		result.Task = task
		result.Credited = owed
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Credited {
		task := result.Task
		s.Logger.InfoContext(ctx, "task completed and credited",
			"task_id", task.ID,
			"user_id", task.AssignedTo,
			"amount", task.Cost.StringFixed(domain.MoneyScale),
		)
		s.publish(ctx, domain.NewLedgerEvent(domain.EventTaskCompleted, task.ID, task.AssignedTo, task.Cost, string(task.Status), *task.CreditedAt))
	}

	return &result, nil
}

// publish runs after commit; a delivery failure is logged and otherwise ignored
func (s *CompletionService) publish(ctx context.Context, event domain.LedgerEvent) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, event); err != nil {
		s.Logger.WarnContext(ctx, "failed to publish ledger event", "event", event.Type, "error", err)
	}
}
