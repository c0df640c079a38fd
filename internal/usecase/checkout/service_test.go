package checkout

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/workledger/workledger-backend/internal/adapter/repository/boltstore"
	"github.com/workledger/workledger-backend/internal/domain"
	"github.com/workledger/workledger-backend/internal/domain/domaintest"
)

var fixedNow = time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

func newTestService(uow domain.UnitOfWork, publisher domain.EventPublisher, refund bool) *CheckoutService {
	service := NewCheckoutService(uow, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)), refund)
	service.now = func() time.Time { return fixedNow }
	return service
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateCheckoutRequest_ReservesFunds(t *testing.T) {
	ctx := context.Background()
	uow := domaintest.NewUnitOfWork()
	publisher := new(domaintest.MockPublisher)
	service := newTestService(uow, publisher, false)

	account := &domain.Account{ID: uuid.New(), FullName: "Worker", Balance: dec("50.00")}
	uow.Accounts.On("GetForUpdate", ctx, account.ID).Return(account, nil)
	uow.Checkouts.On("Create", ctx, mock.MatchedBy(func(r *domain.CheckoutRequest) bool {
		return r.UserID == account.ID && r.Status == domain.CheckoutStatusPending && r.Amount.Equal(dec("50.00"))
	})).Return(nil)
	uow.Accounts.On("AdjustBalance", ctx, account.ID, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(dec("-50.00"))
	})).Return(decimal.Zero, nil)
	publisher.On("Publish", ctx, mock.MatchedBy(func(e domain.LedgerEvent) bool {
		return e.Type == domain.EventCheckoutCreated && e.UserID == account.ID
	})).Return(nil)

	req, err := service.CreateCheckoutRequest(ctx, CreateCheckoutInput{UserID: account.ID, Amount: dec("50.00")})

	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusPending, req.Status)
	assert.Equal(t, fixedNow, req.CreatedAt)
	assert.Equal(t, 1, uow.Commits)
	uow.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCreateCheckoutRequest_Validation(t *testing.T) {
	tests := []struct {
		name   string
		userID uuid.UUID
		amount string
	}{
		{name: "nil user", userID: uuid.Nil, amount: "10"},
		{name: "zero amount", userID: uuid.New(), amount: "0"},
		{name: "negative amount", userID: uuid.New(), amount: "-1"},
		{name: "too many decimals", userID: uuid.New(), amount: "1.005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow := domaintest.NewUnitOfWork()
			service := newTestService(uow, nil, false)

			_, err := service.CreateCheckoutRequest(context.Background(), CreateCheckoutInput{UserID: tt.userID, Amount: dec(tt.amount)})

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Zero(t, uow.Commits+uow.Rollbacks)
		})
	}
}

func TestCreateCheckoutRequest_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	uow := domaintest.NewUnitOfWork()
	service := newTestService(uow, nil, false)

	account := &domain.Account{ID: uuid.New(), FullName: "Worker", Balance: dec("50.00")}
	uow.Accounts.On("GetForUpdate", ctx, account.ID).Return(account, nil)

	_, err := service.CreateCheckoutRequest(ctx, CreateCheckoutInput{UserID: account.ID, Amount: dec("60.00")})

	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, 1, uow.Rollbacks)
	uow.Checkouts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	uow.Accounts.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateCheckoutRequest_UnknownAccount(t *testing.T) {
	ctx := context.Background()
	uow := domaintest.NewUnitOfWork()
	service := newTestService(uow, nil, false)

	userID := uuid.New()
	uow.Accounts.On("GetForUpdate", ctx, userID).Return(nil, domain.ErrNotFound)

	_, err := service.CreateCheckoutRequest(ctx, CreateCheckoutInput{UserID: userID, Amount: dec("1.00")})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveCheckoutRequest_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		start      domain.CheckoutStatus
		approve    bool
		wantStatus domain.CheckoutStatus
		wantErr    error
	}{
		{name: "approve pending", start: domain.CheckoutStatusPending, approve: true, wantStatus: domain.CheckoutStatusApproved},
		{name: "reject pending", start: domain.CheckoutStatusPending, approve: false, wantStatus: domain.CheckoutStatusRejected},
		{name: "approve approved", start: domain.CheckoutStatusApproved, approve: true, wantErr: domain.ErrAlreadyProcessed},
		{name: "approve rejected", start: domain.CheckoutStatusRejected, approve: true, wantErr: domain.ErrAlreadyProcessed},
		{name: "reject approved", start: domain.CheckoutStatusApproved, approve: false, wantErr: domain.ErrAlreadyProcessed},
		{name: "reject rejected", start: domain.CheckoutStatusRejected, approve: false, wantErr: domain.ErrAlreadyProcessed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			uow := domaintest.NewUnitOfWork()
			publisher := new(domaintest.MockPublisher)
			service := newTestService(uow, publisher, false)

			req := &domain.CheckoutRequest{ID: uuid.New(), UserID: uuid.New(), Amount: dec("10.00"), Status: tt.start}
			uow.Checkouts.On("GetForUpdate", ctx, req.ID).Return(req, nil)
			uow.Checkouts.On("Update", ctx, req).Return(nil).Maybe()
			publisher.On("Publish", ctx, mock.Anything).Return(nil).Maybe()

			var (
				got *domain.CheckoutRequest
				err error
			)
			if tt.approve {
				got, err = service.ApproveCheckoutRequest(ctx, req.ID, "TX1")
			} else {
				got, err = service.RejectCheckoutRequest(ctx, req.ID)
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.start, req.Status, "terminal request must not change")
				uow.Checkouts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			require.NotNil(t, got.ResolvedAt)
			assert.Equal(t, fixedNow, *got.ResolvedAt)
			uow.Accounts.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestApproveCheckoutRequest_Validation(t *testing.T) {
	uow := domaintest.NewUnitOfWork()
	service := newTestService(uow, nil, false)

	_, err := service.ApproveCheckoutRequest(context.Background(), uuid.New(), "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.ApproveCheckoutRequest(context.Background(), uuid.Nil, "TX1")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.RejectCheckoutRequest(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRejectCheckoutRequest_RefundOnReject(t *testing.T) {
	ctx := context.Background()
	uow := domaintest.NewUnitOfWork()
	service := newTestService(uow, nil, true)

	req := &domain.CheckoutRequest{ID: uuid.New(), UserID: uuid.New(), Amount: dec("15.00"), Status: domain.CheckoutStatusPending}
	uow.Checkouts.On("GetForUpdate", ctx, req.ID).Return(req, nil)
	uow.Accounts.On("AdjustBalance", ctx, req.UserID, req.Amount).Return(dec("15.00"), nil)
	uow.Checkouts.On("Update", ctx, mock.MatchedBy(func(r *domain.CheckoutRequest) bool {
		return r.Refunded && r.Status == domain.CheckoutStatusRejected
	})).Return(nil)

	got, err := service.RejectCheckoutRequest(ctx, req.ID)

	require.NoError(t, err)
	assert.True(t, got.Refunded)
	uow.AssertExpectations(t)
}

// The tests below run against a real bolt store.

func setupStore(t *testing.T, balance string) (*boltstore.Store, *domain.Account) {
	t.Helper()
	store, err := boltstore.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	account, err := domain.NewAccount("Katherine Johnson", fixedNow)
	require.NoError(t, err)
	account.Balance = dec(balance)
	require.NoError(t, store.Repositories().Accounts.Create(context.Background(), account))
	return store, account
}

func balanceOf(t *testing.T, store *boltstore.Store, id uuid.UUID) decimal.Decimal {
	t.Helper()
	account, err := store.Repositories().Accounts.GetByID(context.Background(), id)
	require.NoError(t, err)
	return account.Balance
}

func TestCheckoutWorkflow_Store_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	store, account := setupStore(t, "50.00")
	service := newTestService(store, nil, false)

	_, err := service.CreateCheckoutRequest(ctx, CreateCheckoutInput{UserID: account.ID, Amount: dec("60.00")})

	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.True(t, balanceOf(t, store, account.ID).Equal(dec("50.00")))
	requests, err := store.Repositories().Checkouts.ListByUser(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestCheckoutWorkflow_Store_FullBalanceThenApprove(t *testing.T) {
	ctx := context.Background()
	store, account := setupStore(t, "50.00")
	service := newTestService(store, nil, false)

	req, err := service.CreateCheckoutRequest(ctx, CreateCheckoutInput{UserID: account.ID, Amount: dec("50.00")})
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusPending, req.Status)
	assert.True(t, balanceOf(t, store, account.ID).Equal(dec("0.00")))

	approved, err := service.ApproveCheckoutRequest(ctx, req.ID, "TX1")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusApproved, approved.Status)
	assert.Equal(t, "TX1", approved.TransferNumber)

	_, err = service.ApproveCheckoutRequest(ctx, req.ID, "TX2")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	_, err = service.RejectCheckoutRequest(ctx, req.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	stored, err := store.Repositories().Checkouts.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusApproved, stored.Status)
	assert.Equal(t, "TX1", stored.TransferNumber)
	assert.True(t, balanceOf(t, store, account.ID).Equal(dec("0.00")))
}

func TestCheckoutWorkflow_Store_RejectKeepsReservation(t *testing.T) {
	ctx := context.Background()
	store, account := setupStore(t, "30.00")
	service := newTestService(store, nil, false)

	req, err := service.CreateCheckoutRequest(ctx, CreateCheckoutInput{UserID: account.ID, Amount: dec("10.00")})
	require.NoError(t, err)

	rejected, err := service.RejectCheckoutRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, rejected.Refunded)
	assert.True(t, balanceOf(t, store, account.ID).Equal(dec("20.00")))
}

func TestCheckoutWorkflow_Store_RejectRefunds(t *testing.T) {
	ctx := context.Background()
	store, account := setupStore(t, "30.00")
	service := newTestService(store, nil, true)

	req, err := service.CreateCheckoutRequest(ctx, CreateCheckoutInput{UserID: account.ID, Amount: dec("10.00")})
	require.NoError(t, err)

	rejected, err := service.RejectCheckoutRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, rejected.Refunded)
	assert.True(t, balanceOf(t, store, account.ID).Equal(dec("30.00")))

	_, err = service.RejectCheckoutRequest(ctx, req.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.True(t, balanceOf(t, store, account.ID).Equal(dec("30.00")), "second reject must not refund again")
}

func TestCheckoutWorkflow_Store_ConcurrentRequestsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	store, account := setupStore(t, "100.00")
	service := newTestService(store, nil, false)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.CreateCheckoutRequest(ctx, CreateCheckoutInput{UserID: account.ID, Amount: dec("30.00")})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.True(t, balanceOf(t, store, account.ID).Equal(dec("10.00")))
	requests, err := store.Repositories().Checkouts.ListByUser(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, requests, 3)
}
