package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airlineops/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx, so the same
// repository code runs both standalone and inside a coordinated transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Transactor runs a function inside a single storage transaction. Either
// every write inside fn commits, or none of them are visible.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(db DB) error) error
}

type PGTransactor struct {
	pool        *pgxpool.Pool
	maxAttempts int
}

func NewTransactor(pool *pgxpool.Pool, maxAttempts int) *PGTransactor {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &PGTransactor{pool: pool, maxAttempts: maxAttempts}
}

// WithinTx retries fn on serialization failures and deadlocks up to the
// configured attempt count, then surfaces ErrTransactionConflict. All other
// errors abort immediately and roll the transaction back.
func (t *PGTransactor) WithinTx(ctx context.Context, fn func(db DB) error) error {
	var lastErr error
	for attempt := 0; attempt < t.maxAttempts; attempt++ {
		err := t.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", domain.ErrTransactionConflict, lastErr)
}

func (t *PGTransactor) runOnce(ctx context.Context, fn func(db DB) error) error {
	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SQLSTATE 40001 serialization_failure, 40P01 deadlock_detected.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Transactor = (*PGTransactor)(nil)
