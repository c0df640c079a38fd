// Package boltstore provides a BoltDB-backed ledger store.
//
// BoltDB keeps all data in a single file and allows one writer at a time, so
// every unit of work runs inside one serialized read-write transaction. Records
// are stored as JSON, keyed by their UUID.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/workledger/workledger-backend/internal/domain"
)

var (
	accountsBucket  = []byte("accounts")
	tasksBucket     = []byte("tasks")
	checkoutsBucket = []byte("checkout_requests")
)

// Store implements domain.Store on BoltDB
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) a BoltDB file at path and ensures the ledger buckets exist
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{accountsBucket, tasksBucket, checkoutsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database file lock
func (s *Store) Close() error {
	return s.db.Close()
}

// Repositories returns repositories that open their own short transaction per call
func (s *Store) Repositories() domain.Repositories {
	return repositoriesFor(dbRunner{db: s.db})
}

// Do runs fn inside one read-write bolt transaction. Bolt rolls back when fn
// returns an error or panics and commits otherwise.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	return wrapBoltErr(s.db.Update, func(tx *bolt.Tx) error {
		return fn(ctx, repositoriesFor(txRunner{tx: tx}))
	})
}

// runner abstracts over "inside an existing transaction" and "open one per call"
type runner interface {
	view(fn func(tx *bolt.Tx) error) error
	update(fn func(tx *bolt.Tx) error) error
}

type dbRunner struct {
	db *bolt.DB
}

func (r dbRunner) view(fn func(tx *bolt.Tx) error) error {
	return wrapBoltErr(r.db.View, fn)
}

func (r dbRunner) update(fn func(tx *bolt.Tx) error) error {
	return wrapBoltErr(r.db.Update, fn)
}

// wrapBoltErr passes fn's own (already classified) error through and marks
// anything bolt returns on its own, such as a failed commit, as ErrStorage
func wrapBoltErr(run func(func(*bolt.Tx) error) error, fn func(tx *bolt.Tx) error) error {
	var fnErr error
	err := run(func(tx *bolt.Tx) error {
		fnErr = fn(tx)
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

type txRunner struct {
	tx *bolt.Tx
}

func (r txRunner) view(fn func(tx *bolt.Tx) error) error   { return fn(r.tx) }
func (r txRunner) update(fn func(tx *bolt.Tx) error) error { return fn(r.tx) }

func repositoriesFor(r runner) domain.Repositories {
	return domain.Repositories{
		Accounts:  &accountRepository{r: r},
		Tasks:     &taskRepository{r: r},
		Checkouts: &checkoutRepository{r: r},
	}
}

// get decodes the record stored under key into v, or returns ErrNotFound
func get(tx *bolt.Tx, bucket []byte, key string, v any) error {
	data := tx.Bucket(bucket).Get([]byte(key))
	if data == nil {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, bucket, key)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: failed to decode %s %s: %w", domain.ErrStorage, bucket, key, err)
	}
	return nil
}

// put encodes v and stores it under key
func put(tx *bolt.Tx, bucket []byte, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s %s: %w", domain.ErrStorage, bucket, key, err)
	}
	if err := tx.Bucket(bucket).Put([]byte(key), data); err != nil {
		return fmt.Errorf("%w: failed to write %s %s: %w", domain.ErrStorage, bucket, key, err)
	}
	return nil
}

// exists reports whether a key is present in bucket
func exists(tx *bolt.Tx, bucket []byte, key string) bool {
	return tx.Bucket(bucket).Get([]byte(key)) != nil
}

// scan decodes every record in bucket and passes it to keep
func scan[T any](tx *bolt.Tx, bucket []byte, keep func(rec *T)) error {
	return tx.Bucket(bucket).ForEach(func(k, v []byte) error {
		rec := new(T)
		if err := json.Unmarshal(v, rec); err != nil {
			return fmt.Errorf("%w: failed to decode %s %s: %w", domain.ErrStorage, bucket, k, err)
		}
		keep(rec)
		return nil
	})
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}
