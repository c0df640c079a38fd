package seeder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/workledger/workledger-backend/internal/adapter/repository/boltstore"
	"github.com/workledger/workledger-backend/internal/domain"
	"github.com/workledger/workledger-backend/internal/domain/domaintest"
)

func TestDemoSeeder_Seed_RecordsMissing(t *testing.T) {
	ctx := context.Background()
	uow := domaintest.NewUnitOfWork()
	seeder := NewDemoSeeder(uow, slog.New(slog.NewTextHandler(io.Discard, nil)))

	uow.Accounts.On("GetByID", ctx, mock.Anything).Return(nil, domain.ErrNotFound)
	uow.Tasks.On("GetByID", ctx, mock.Anything).Return(nil, domain.ErrNotFound)
	uow.Accounts.On("Create", ctx, mock.MatchedBy(func(a *domain.Account) bool {
		return a.ID == DemoWorkerAda && a.Balance.Equal(decimal.NewFromInt(100))
	})).Return(nil)
	uow.Accounts.On("Create", ctx, mock.MatchedBy(func(a *domain.Account) bool {
		return a.ID == DemoWorkerAlan && a.Balance.IsZero()
	})).Return(nil)
	uow.Tasks.On("Create", ctx, mock.MatchedBy(func(task *domain.Task) bool {
		return task.Status == domain.TaskStatusPending && task.CreditedAt == nil
	})).Return(nil)

	err := seeder.Seed(ctx)

	require.NoError(t, err)
	uow.AssertExpectations(t)
	uow.Accounts.AssertNumberOfCalls(t, "Create", 2)
	uow.Tasks.AssertNumberOfCalls(t, "Create", 3)
	assert.Equal(t, 1, uow.Commits)
}

func TestDemoSeeder_Seed_RecordsExist(t *testing.T) {
	ctx := context.Background()
	uow := domaintest.NewUnitOfWork()
	seeder := NewDemoSeeder(uow, slog.New(slog.NewTextHandler(io.Discard, nil)))

	uow.Accounts.On("GetByID", ctx, mock.Anything).Return(&domain.Account{}, nil)
	uow.Tasks.On("GetByID", ctx, mock.Anything).Return(&domain.Task{}, nil)

	err := seeder.Seed(ctx)

	require.NoError(t, err)
	uow.Accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	uow.Tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDemoSeeder_Seed_StorageError(t *testing.T) {
	ctx := context.Background()
	uow := domaintest.NewUnitOfWork()
	seeder := NewDemoSeeder(uow, slog.New(slog.NewTextHandler(io.Discard, nil)))

	storageErr := errors.Join(domain.ErrStorage, errors.New("disk full"))
	uow.Accounts.On("GetByID", ctx, DemoWorkerAda).Return(nil, storageErr)

	err := seeder.Seed(ctx)

	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, 1, uow.Rollbacks)
}

func TestDemoSeeder_Seed_Idempotent(t *testing.T) {
	ctx := context.Background()
	store, err := boltstore.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	seeder := NewDemoSeeder(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, seeder.Seed(ctx))

	// Earned balance must survive a second run
	_, err = store.Repositories().Accounts.AdjustBalance(ctx, DemoWorkerAda, decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NoError(t, seeder.Seed(ctx))

	ada, err := store.Repositories().Accounts.GetByID(ctx, DemoWorkerAda)
	require.NoError(t, err)
	assert.Equal(t, "105.00", ada.Balance.StringFixed(2))

	tasks, err := store.Repositories().Tasks.ListByAssignee(ctx, DemoWorkerAda)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}
