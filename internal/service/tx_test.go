package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func assertCode(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %T", err)
	assert.Equal(t, want.Code, appErr.Code)
	assert.Equal(t, want.Status, appErr.Status)
}

func TestRunInTxCommitsOnSuccess(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := runInTx(context.Background(), provider, nil, func(tx *sqlx.Tx) error { return nil })
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := runInTx(context.Background(), provider, nil, func(tx *sqlx.Tx) error {
		return appErrors.ErrSlotNotFound
	})
	assertCode(t, err, appErrors.ErrSlotNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxMapsSerializationFailure(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pq.Error{Code: "40001"})

	err := runInTx(context.Background(), provider, serializable, func(tx *sqlx.Tx) error { return nil })
	assertCode(t, err, appErrors.ErrConcurrentUpdate)
}

func TestRunInTxMapsSerializationFailureFromStatement(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := runInTx(context.Background(), provider, serializable, func(tx *sqlx.Tx) error {
		return appErrors.Internal(&pq.Error{Code: "40001"}, "failed to assign slot")
	})
	assertCode(t, err, appErrors.ErrConcurrentUpdate)
}

func TestRunInTxWithoutProvider(t *testing.T) {
	err := runInTx(context.Background(), nil, nil, func(tx *sqlx.Tx) error { return nil })
	assertCode(t, err, appErrors.ErrInternal)
}
