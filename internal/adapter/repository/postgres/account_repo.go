package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/workledger/workledger-backend/internal/domain"
)

// accountRepository implements domain.AccountRepository
type accountRepository struct {
	q querier
}

const selectAccount = `
	SELECT id, full_name, balance, created_at
	FROM accounts
`

// GetByID retrieves an account by its ID
func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.q.QueryRowContext(ctx, selectAccount+`WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		return nil, translateError(fmt.Sprintf("get account %s", id), err)
	}
	return account, nil
}

// GetForUpdate retrieves an account and locks its row for the rest of the transaction
func (r *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row := r.q.QueryRowContext(ctx, selectAccount+`WHERE id = $1 FOR UPDATE`, id)
	account, err := scanAccount(row)
	if err != nil {
		return nil, translateError(fmt.Sprintf("lock account %s", id), err)
	}
	return account, nil
}

// Create creates a new account
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, full_name, balance, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.q.ExecContext(ctx, query,
		account.ID,
		account.FullName,
		account.Balance.String(),
		account.CreatedAt,
	)
	if err != nil {
		return translateError("create account", err)
	}

	return nil
}

// AdjustBalance adds delta to the balance in a single statement.
// The balance_non_negative CHECK constraint turns an overdraft into ErrInsufficientBalance.
func (r *accountRepository) AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1
		WHERE id = $2
		RETURNING balance
	`

	var balanceStr string
	if err := r.q.QueryRowContext(ctx, query, delta.String(), id).Scan(&balanceStr); err != nil {
		return decimal.Zero, translateError(fmt.Sprintf("adjust balance of account %s", id), err)
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: failed to parse balance: %w", domain.ErrStorage, err)
	}

	return balance, nil
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	var balanceStr string

	if err := row.Scan(&account.ID, &account.FullName, &balanceStr, &account.CreatedAt); err != nil {
		return nil, err
	}

	// Parse balance (NUMERIC)
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance: %w", err)
	}
	account.Balance = balance

	return &account, nil
}
