// Package domaintest provides testify mocks of the domain repository and
// publisher interfaces, plus a unit of work that hands the mocks to its callback.
package domaintest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/workledger/workledger-backend/internal/domain"
)

// MockAccountRepository is a mock implementation of AccountRepository for testing
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockTaskRepository is a mock implementation of TaskRepository for testing
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

// MockCheckoutRepository is a mock implementation of CheckoutRepository for testing
type MockCheckoutRepository struct {
	mock.Mock
}

func (m *MockCheckoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CheckoutRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutRequest), args.Error(1)
}

func (m *MockCheckoutRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.CheckoutRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutRequest), args.Error(1)
}

func (m *MockCheckoutRepository) Create(ctx context.Context, req *domain.CheckoutRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockCheckoutRepository) Update(ctx context.Context, req *domain.CheckoutRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockCheckoutRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CheckoutRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CheckoutRequest), args.Error(1)
}

func (m *MockCheckoutRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*domain.CheckoutRequest, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CheckoutRequest), args.Error(1)
}

// MockPublisher is a mock implementation of EventPublisher for testing
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// UnitOfWork runs callbacks against the mock repositories and records the outcome
type UnitOfWork struct {
	Accounts  *MockAccountRepository
	Tasks     *MockTaskRepository
	Checkouts *MockCheckoutRepository

	Commits   int
	Rollbacks int
}

// NewUnitOfWork creates a UnitOfWork with fresh mocks
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		Accounts:  new(MockAccountRepository),
		Tasks:     new(MockTaskRepository),
		Checkouts: new(MockCheckoutRepository),
	}
}

// Repositories returns the mocks as a domain.Repositories
func (u *UnitOfWork) Repositories() domain.Repositories {
	return domain.Repositories{Accounts: u.Accounts, Tasks: u.Tasks, Checkouts: u.Checkouts}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	if err := fn(ctx, u.Repositories()); err != nil {
		u.Rollbacks++
		return err
	}
	u.Commits++
	return nil
}

// AssertExpectations asserts the expectations of every mock
func (u *UnitOfWork) AssertExpectations(t mock.TestingT) {
	u.Accounts.AssertExpectations(t)
	u.Tasks.AssertExpectations(t)
	u.Checkouts.AssertExpectations(t)
}
