package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// Querier is satisfied by the pool and by transactions
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UniqueViolation is the SQLSTATE for unique constraint violations
const UniqueViolation = "23505"

// WithTx runs fn inside a transaction, committing when fn returns nil
func (db *DB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// WithSavepoint runs fn inside a nested transaction of tx. On error only the
// work done by fn is rolled back and tx stays usable.
func WithSavepoint(ctx context.Context, tx pgx.Tx, fn func(sp pgx.Tx) error) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to create savepoint")
	}
	if err := fn(sp); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return errors.Wrap(rbErr, "failed to roll back savepoint")
		}
		return err
	}
	return sp.Commit(ctx)
}

// IsUniqueViolation reports whether err is a unique violation, optionally
// of the named constraint
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// IsNoRows reports whether err means the query matched nothing
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
