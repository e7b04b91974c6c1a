// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// a helper to run functions inside a transaction, and the mapping of
// driver failures onto the storage error taxonomy.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/motionboard/internal/common"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if err := boards.DeleteByID(ctx, id); err != nil {
//	        return err
//	    }
//	    _, err := media.DeleteByBoard(ctx, id)
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return StorageError("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = StorageError("commit transaction", cerr)
		}
	}()

	err = fn(ctx, tx)
	return err
}

// StorageError classifies err for operation op. sql.ErrNoRows becomes
// common.ErrorNotFound, errors that already carry a sentinel from
// internal/common pass through, and everything else is reported as
// common.ErrStorageUnavailable with the driver error attached.
func StorageError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, common.ErrorNotFound)
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrStorageUnavailable):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, common.ErrStorageUnavailable, err)
	}
}

// ExpectOne checks that exactly one row was affected, mapping zero rows to
// common.ErrorNotFound.
func ExpectOne(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return StorageError(op+": rows affected", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("%s: %w", op, common.ErrorNotFound)
	default:
		return fmt.Errorf("%s: %w: unexpected rows affected: %d", op, common.ErrStorageUnavailable, n)
	}
}
