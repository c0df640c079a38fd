package postgres

import (
	"context"
	"fmt"
)

// balanceConstraint is the CHECK constraint that keeps balances non-negative
const balanceConstraint = "accounts_balance_non_negative"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id         UUID PRIMARY KEY,
		full_name  TEXT NOT NULL,
		balance    NUMERIC(14, 2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT ` + balanceConstraint + ` CHECK (balance >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          UUID PRIMARY KEY,
		title       TEXT NOT NULL,
		cost        NUMERIC(14, 2) NOT NULL CONSTRAINT tasks_cost_non_negative CHECK (cost >= 0),
		assigned_to UUID NOT NULL REFERENCES accounts (id),
		status      TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		credited_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_assigned_to_idx ON tasks (assigned_to)`,
	`CREATE TABLE IF NOT EXISTS checkout_requests (
		id              UUID PRIMARY KEY,
		user_id         UUID NOT NULL REFERENCES accounts (id),
		amount          NUMERIC(14, 2) NOT NULL CONSTRAINT checkout_amount_positive CHECK (amount > 0),
		status          TEXT NOT NULL CONSTRAINT checkout_status_known CHECK (status IN ('pending', 'approved', 'rejected')),
		transfer_number TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		resolved_at     TIMESTAMPTZ,
		refunded        BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS checkout_requests_user_id_idx ON checkout_requests (user_id)`,
	`CREATE INDEX IF NOT EXISTS checkout_requests_pending_idx ON checkout_requests (status, created_at)`,
}

// Migrate creates the ledger tables if they do not exist. Safe to run on every startup.
func Migrate(ctx context.Context, db *DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
