package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaskStatus is a task's workflow status. Callers may use values beyond the ones below.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// ParseTaskStatus trims s and rejects empty values
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := strings.TrimSpace(s)
	if status == "" {
		return "", fmt.Errorf("%w: status is required", ErrValidation)
	}
	return TaskStatus(status), nil
}

// Task represents a task assigned to a worker account
type Task struct {
	ID         uuid.UUID
	Title      string
	Cost       decimal.Decimal // Immutable once created
	AssignedTo uuid.UUID
	Status     TaskStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CreditedAt *time.Time // NULL until the cost has been credited to the assignee
}

// Validate ensures the task adheres to domain rules
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	}
	if t.Cost.IsNegative() {
		return fmt.Errorf("%w: task cost cannot be negative", ErrValidation)
	}
	if t.Cost.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: task cost cannot exceed %s", ErrValidation, MaxAmount.StringFixed(MoneyScale))
	}
	if t.AssignedTo == uuid.Nil {
		return fmt.Errorf("%w: task must be assigned to an account", ErrValidation)
	}
	if t.Status == "" {
		return fmt.Errorf("%w: task status cannot be empty", ErrValidation)
	}
	return nil
}

// IsCompleted reports whether the task is in the completed status
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// IsCredited reports whether the task's cost was already paid out to the assignee
func (t *Task) IsCredited() bool {
	return t.CreditedAt != nil
}

// ApplyStatus moves the task to status and reports whether its cost is now owed
// to the assignee. A task is owed its cost only on the first move into completed.
func (t *Task) ApplyStatus(status TaskStatus, now time.Time) bool {
	owed := status == TaskStatusCompleted && !t.IsCredited()
	t.Status = status
	t.UpdatedAt = now
	if owed {
		creditedAt := now
		t.CreditedAt = &creditedAt
	}
	return owed
}
