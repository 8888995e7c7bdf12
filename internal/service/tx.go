package service

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-academic-api/pkg/database"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

var serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

// runInTx executes fn in a transaction, rolling back when fn fails. PostgreSQL
// serialization failures surface as CONCURRENT_UPDATE so clients can retry.
func runInTx(ctx context.Context, provider txProvider, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) error {
	if provider == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := provider.BeginTxx(ctx, opts)
	if err != nil {
		return txError(err, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return txError(err, "")
	}
	if err := tx.Commit(); err != nil {
		return txError(err, "failed to commit transaction")
	}
	return nil
}

func txError(err error, message string) error {
	if database.IsSerializationFailure(err) {
		return concurrentUpdate(err)
	}
	if message == "" {
		return err
	}
	return appErrors.Internal(err, message)
}

func concurrentUpdate(err error) error {
	return appErrors.Wrap(err, appErrors.ErrConcurrentUpdate.Code, appErrors.ErrConcurrentUpdate.Status, appErrors.ErrConcurrentUpdate.Message)
}
