package seeder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workledger/workledger-backend/internal/domain"
)

// Fixed UUIDs for demo data so repeated runs find what they created
var (
	DemoWorkerAda   = uuid.MustParse("00000000-0000-0000-0000-000000000101")
	DemoWorkerAlan  = uuid.MustParse("00000000-0000-0000-0000-000000000102")
	DemoTaskLabel   = uuid.MustParse("00000000-0000-0000-0000-000000000201")
	DemoTaskReview  = uuid.MustParse("00000000-0000-0000-0000-000000000202")
	DemoTaskCaption = uuid.MustParse("00000000-0000-0000-0000-000000000203")
)

// DemoAccount defines an account to be seeded
type DemoAccount struct {
	ID       uuid.UUID
	FullName string
	Balance  string
}

// DemoTask defines a task to be seeded
type DemoTask struct {
	ID         uuid.UUID
	Title      string
	Cost       string
	AssignedTo uuid.UUID
}

var demoAccounts = []DemoAccount{
	{ID: DemoWorkerAda, FullName: "Ada Lovelace", Balance: "100.00"},
	{ID: DemoWorkerAlan, FullName: "Alan Turing", Balance: "0.00"},
}

var demoTasks = []DemoTask{
	{ID: DemoTaskLabel, Title: "Label 500 product images", Cost: "25.00", AssignedTo: DemoWorkerAda},
	{ID: DemoTaskReview, Title: "Review translated FAQ", Cost: "12.50", AssignedTo: DemoWorkerAda},
	{ID: DemoTaskCaption, Title: "Caption onboarding video", Cost: "40.00", AssignedTo: DemoWorkerAlan},
}

// DemoSeeder fills an empty store with a small set of accounts and pending tasks
type DemoSeeder struct {
	uow    domain.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(uow domain.UnitOfWork, logger *slog.Logger) *DemoSeeder {
	return &DemoSeeder{
		uow:    uow,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Seed creates every demo record that does not exist yet.
// Existing records are left untouched, so balances earned since the last run survive.
func (s *DemoSeeder) Seed(ctx context.Context) error {
	created := 0
	err := s.uow.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		now := s.now()

		for _, demo := range demoAccounts {
			_, err := repos.Accounts.GetByID(ctx, demo.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}

			account := &domain.Account{
				ID:        demo.ID,
				FullName:  demo.FullName,
				Balance:   decimal.RequireFromString(demo.Balance),
				CreatedAt: now,
			}
			if err := account.Validate(); err != nil {
				return err
			}
			if err := repos.Accounts.Create(ctx, account); err != nil {
				return err
			}
			created++
		}

		for _, demo := range demoTasks {
			_, err := repos.Tasks.GetByID(ctx, demo.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}

			task := &domain.Task{
				ID:         demo.ID,
				Title:      demo.Title,
				Cost:       decimal.RequireFromString(demo.Cost),
				AssignedTo: demo.AssignedTo,
				Status:     domain.TaskStatusPending,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := task.Validate(); err != nil {
				return err
			}
			if err := repos.Tasks.Create(ctx, task); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "demo data seeded", "created", created)
	return nil
}
