package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workledger/workledger-backend/internal/domain"
)

// checkoutRepository implements domain.CheckoutRepository
type checkoutRepository struct {
	q querier
}

const selectCheckout = `
	SELECT id, user_id, amount, status, transfer_number, created_at, resolved_at, refunded
	FROM checkout_requests
`

// GetByID retrieves a checkout request by its ID
func (r *checkoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CheckoutRequest, error) {
	req, err := scanCheckout(r.q.QueryRowContext(ctx, selectCheckout+`WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(fmt.Sprintf("get checkout request %s", id), err)
	}
	return req, nil
}

// GetForUpdate retrieves a checkout request and locks its row for the rest of the transaction
func (r *checkoutRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.CheckoutRequest, error) {
	req, err := scanCheckout(r.q.QueryRowContext(ctx, selectCheckout+`WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, translateError(fmt.Sprintf("lock checkout request %s", id), err)
	}
	return req, nil
}

// Create creates a new checkout request
func (r *checkoutRepository) Create(ctx context.Context, req *domain.CheckoutRequest) error {
	query := `
		INSERT INTO checkout_requests (id, user_id, amount, status, transfer_number, created_at, resolved_at, refunded)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		req.ID,
		req.UserID,
		req.Amount.String(),
		string(req.Status),
		nullString(req.TransferNumber),
		req.CreatedAt,
		nullTime(req.ResolvedAt),
		req.Refunded,
	)
	if err != nil {
		return translateError("insert checkout request", err)
	}

	return nil
}

// Update writes the resolution columns of a checkout request
func (r *checkoutRepository) Update(ctx context.Context, req *domain.CheckoutRequest) error {
	query := `
		UPDATE checkout_requests
		SET status = $1, transfer_number = $2, resolved_at = $3, refunded = $4
		WHERE id = $5
	`

	res, err := r.q.ExecContext(ctx, query,
		string(req.Status),
		nullString(req.TransferNumber),
		nullTime(req.ResolvedAt),
		req.Refunded,
		req.ID,
	)
	if err != nil {
		return translateError(fmt.Sprintf("update checkout request %s", req.ID), err)
	}

	return requireOneRow(res, fmt.Sprintf("update checkout request %s", req.ID))
}

// ListByUser retrieves all checkout requests owned by an account, newest first
func (r *checkoutRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CheckoutRequest, error) {
	return r.list(ctx, selectCheckout+`WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListPendingBefore retrieves pending requests created before cutoff, oldest first
func (r *checkoutRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*domain.CheckoutRequest, error) {
	return r.list(ctx, selectCheckout+`WHERE status = $1 AND created_at < $2 ORDER BY created_at ASC`,
		string(domain.CheckoutStatusPending), cutoff)
}

func (r *checkoutRepository) list(ctx context.Context, query string, args ...any) ([]*domain.CheckoutRequest, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError("query checkout requests", err)
	}
	defer rows.Close()

	requests := make([]*domain.CheckoutRequest, 0)
	for rows.Next() {
		req, err := scanCheckout(rows)
		if err != nil {
			return nil, translateError("scan checkout request", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, translateError("iterate checkout requests", err)
	}

	return requests, nil
}

func scanCheckout(row rowScanner) (*domain.CheckoutRequest, error) {
	var req domain.CheckoutRequest
	var amountStr string
	var transferNumber sql.NullString
	var resolvedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.UserID,
		&amountStr,
		&req.Status,
		&transferNumber,
		&req.CreatedAt,
		&resolvedAt,
		&req.Refunded,
	)
	if err != nil {
		return nil, err
	}

	// Parse amount (NUMERIC)
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	req.Amount = amount
	req.TransferNumber = transferNumber.String

	if resolvedAt.Valid {
		t := resolvedAt.Time
		req.ResolvedAt = &t
	}

	return &req, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return translateError(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	}
	return nil
}
