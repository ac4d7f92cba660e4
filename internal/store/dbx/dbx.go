package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/5w1tchy/library-api/internal/apperr"
)

// DBTX lets store functions run against *sql.DB and *sql.Tx alike.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithinTx runs fn in a READ COMMITTED transaction (commit on nil, rollback on error or panic).
func WithinTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// AdvisoryXactLock serializes callers on key until the surrounding tx ends.
func AdvisoryXactLock(ctx context.Context, tx *sql.Tx, key string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("advisory lock %q: %w", key, err)
	}
	return nil
}

// MapPGError normalizes sql.ErrNoRows to apperr.ErrNotFound and tags pg constraint errors.
func MapPGError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if p, ok := apperr.FromPG(err); ok {
		switch p.Kind {
		case apperr.KindConflict:
			return fmt.Errorf("%w: %s: %w", apperr.ErrConflict, p.Message, err)
		case apperr.KindValidation:
			return fmt.Errorf("%w: %s: %w", apperr.ErrInvalid, p.Message, err)
		}
	}
	return err
}

// Affected returns sql.ErrNoRows when res touched nothing.
func Affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
