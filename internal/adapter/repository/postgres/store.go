package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/workledger/workledger-backend/internal/domain"
)

// Store implements domain.Store on PostgreSQL
type Store struct {
	db *DB
}

// NewStore creates a new ledger store over an open connection
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Repositories returns repositories bound to the connection pool, outside any transaction
func (s *Store) Repositories() domain.Repositories {
	return repositoriesFor(s.db)
}

// Do runs fn inside a READ COMMITTED transaction. Repositories take row locks with
// SELECT ... FOR UPDATE before any dependent write, which serializes concurrent
// callers on the same task, account or checkout request across service instances.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrStorage, err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = dbTx.Rollback()
		}
	}()

	if err := fn(ctx, repositoriesFor(dbTx)); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return translateError("commit transaction", err)
	}
	committed = true

	return nil
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

func repositoriesFor(q querier) domain.Repositories {
	return domain.Repositories{
		Accounts:  &accountRepository{q: q},
		Tasks:     &taskRepository{q: q},
		Checkouts: &checkoutRepository{q: q},
	}
}
