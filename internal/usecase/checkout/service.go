package checkout

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

// CreateCheckoutInput represents the input for requesting a withdrawal
type CreateCheckoutInput struct {
	UserID uuid.UUID
	Amount decimal.Decimal
}

// CheckoutService handles the withdrawal request workflow
type CheckoutService struct {
	UnitOfWork domain.UnitOfWork
	Publisher  domain.EventPublisher
	Logger     *slog.Logger

	// RefundOnReject credits a rejected request's amount back to its owner
	RefundOnReject bool

	now func() time.Time
}

// NewCheckoutService creates a new CheckoutService instance
func NewCheckoutService(uow domain.UnitOfWork, publisher domain.EventPublisher, logger *slog.Logger, refundOnReject bool) *CheckoutService {
	return &CheckoutService{
		UnitOfWork:     uow,
		Publisher:      publisher,
		Logger:         logger,
		RefundOnReject: refundOnReject,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// CreateCheckoutRequest creates a pending request and reserves its amount
// Logic:
//  1. Validate the user and amount
//  2. Lock the account and check it can cover the amount
//  3. Insert the pending request
//  4. Debit the amount from the balance
//
// The insert and the debit commit together or not at all.
func (s *CheckoutService) CreateCheckoutRequest(ctx context.Context, input CreateCheckoutInput) (*domain.CheckoutRequest, error) {
	req, err := domain.NewCheckoutRequest(input.UserID, input.Amount, s.now())
	if err != nil {
		return nil, err
	}

	err = s.UnitOfWork.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		account, err := repos.Accounts.GetForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}

		if !account.CanDebit(req.Amount) {
			return fmt.Errorf("%w: balance %s cannot cover %s",
				domain.ErrInsufficientBalance,
				account.Balance.StringFixed(domain.MoneyScale),
				req.Amount.StringFixed(domain.MoneyScale),
			)
		}

		if err := repos.Checkouts.Create(ctx, req); err != nil {
			return err
		}

		if _, err := repos.Accounts.AdjustBalance(ctx, req.UserID, req.Amount.Neg()); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "checkout request created",
		"checkout_id", req.ID,
		"user_id", req.UserID,
		"amount", req.Amount.StringFixed(domain.MoneyScale),
	)
	s.publish(ctx, req, domain.EventCheckoutCreated, req.CreatedAt)

	return req, nil
}

// ApproveCheckoutRequest marks a pending request approved and records the transfer reference.
// The balance was already debited at creation and is not touched.
func (s *CheckoutService) ApproveCheckoutRequest(ctx context.Context, requestID uuid.UUID, transferNumber string) (*domain.CheckoutRequest, error) {
	if requestID == uuid.Nil {
		return nil, fmt.Errorf("%w: checkout request id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(transferNumber) == "" {
		return nil, fmt.Errorf("%w: transaction number required", domain.ErrValidation)
	}

	req, err := s.resolve(ctx, requestID, func(ctx context.Context, repos domain.Repositories, req *domain.CheckoutRequest, now time.Time) error {
		return req.Approve(transferNumber, now)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "checkout request approved",
		"checkout_id", req.ID,
		"user_id", req.UserID,
		"transfer_number", req.TransferNumber,
	)
	s.publish(ctx, req, domain.EventCheckoutApproved, *req.ResolvedAt)

	return req, nil
}

// RejectCheckoutRequest marks a pending request rejected. The reserved amount
// stays debited unless RefundOnReject is set.
func (s *CheckoutService) RejectCheckoutRequest(ctx context.Context, requestID uuid.UUID) (*domain.CheckoutRequest, error) {
	if requestID == uuid.Nil {
		return nil, fmt.Errorf("%w: checkout request id is required", domain.ErrValidation)
	}

	req, err := s.resolve(ctx, requestID, func(ctx context.Context, repos domain.Repositories, req *domain.CheckoutRequest, now time.Time) error {
		if err := req.Reject(now); err != nil {
			return err
		}
		if !s.RefundOnReject {
			return nil
		}
		if _, err := repos.Accounts.AdjustBalance(ctx, req.UserID, req.Amount); err != nil {
			return fmt.Errorf("failed to refund checkout request %s: %w", req.ID, err)
		}
		req.Refunded = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.InfoContext(ctx, "checkout request rejected",
		"checkout_id", req.ID,
		"user_id", req.UserID,
		"refunded", req.Refunded,
	)
	s.publish(ctx, req, domain.EventCheckoutRejected, *req.ResolvedAt)

	return req, nil
}

// resolve locks a request, applies transition and persists the result in one unit of work
func (s *CheckoutService) resolve(
	ctx context.Context,
	requestID uuid.UUID,
	transition func(ctx context.Context, repos domain.Repositories, req *domain.CheckoutRequest, now time.Time) error,
) (*domain.CheckoutRequest, error) {
	var resolved *domain.CheckoutRequest
	err := s.UnitOfWork.Do(ctx, func(ctx context.Context, repos domain.Repositories) error {
		req, err := repos.Checkouts.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}

		if err := transition(ctx, repos, req, s.now()); err != nil {
			return err
		}

		if err := repos.Checkouts.Update(ctx, req); err != nil {
			return err
		}

		resolved = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resolved, nil
}

// publish runs after commit; a delivery failure is logged and otherwise ignored
func (s *CheckoutService) publish(ctx context.Context, req *domain.CheckoutRequest, eventType domain.EventType, at time.Time) {
	if s.Publisher == nil {
		return
	}
	event := domain.NewLedgerEvent(eventType, req.ID, req.UserID, req.Amount, string(req.Status), at)
	if err := s.Publisher.Publish(ctx, event); err != nil {
		s.Logger.WarnContext(ctx, "failed to publish ledger event", "event", eventType, "error", err)
	}
}
