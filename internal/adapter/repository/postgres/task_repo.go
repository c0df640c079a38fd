package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workledger/workledger-backend/internal/domain"
)

// taskRepository implements domain.TaskRepository
type taskRepository struct {
	q querier
}

const selectTask = `
	SELECT id, title, cost, assigned_to, status, created_at, updated_at, credited_at
	FROM tasks
`

// GetByID retrieves a task by its ID
func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := scanTask(r.q.QueryRowContext(ctx, selectTask+`WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(fmt.Sprintf("get task %s", id), err)
	}
	return task, nil
}

// GetForUpdate retrieves a task and locks its row for the rest of the transaction
func (r *taskRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := scanTask(r.q.QueryRowContext(ctx, selectTask+`WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, translateError(fmt.Sprintf("lock task %s", id), err)
	}
	return task, nil
}

// Create creates a new task
func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, title, cost, assigned_to, status, created_at, updated_at, credited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Cost.String(),
		task.AssignedTo,
		string(task.Status),
		task.CreatedAt,
		task.UpdatedAt,
		nullTime(task.CreditedAt),
	)
	if err != nil {
		return translateError("create task", err)
	}

	return nil
}

// Update writes the mutable task columns. Cost is never rewritten.
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET status = $1, updated_at = $2, credited_at = $3
		WHERE id = $4
	`

	res, err := r.q.ExecContext(ctx, query,
		string(task.Status),
		task.UpdatedAt,
		nullTime(task.CreditedAt),
		task.ID,
	)
	if err != nil {
		return translateError(fmt.Sprintf("update task %s", task.ID), err)
	}

	return requireOneRow(res, fmt.Sprintf("update task %s", task.ID))
}

// ListByAssignee retrieves all tasks assigned to an account, newest first
func (r *taskRepository) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	rows, err := r.q.QueryContext(ctx, selectTask+`WHERE assigned_to = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, translateError("query tasks", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, translateError("scan task", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, translateError("iterate tasks", err)
	}

	return tasks, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var costStr string
	var creditedAt sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.Title,
		&costStr,
		&task.AssignedTo,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
		&creditedAt,
	)
	if err != nil {
		return nil, err
	}

	// Parse cost (NUMERIC)
	cost, err := decimal.NewFromString(costStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cost: %w", err)
	}
	task.Cost = cost

	if creditedAt.Valid {
		t := creditedAt.Time
		task.CreditedAt = &t
	}

	return &task, nil
}
