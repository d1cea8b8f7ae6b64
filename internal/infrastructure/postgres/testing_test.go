package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/transaction"
)

func setupMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() {
		sqlxDB.Close()
	})
	return sqlxDB, mock
}

// beginMockTx は sqlmock 上でトランザクションを開始する
func beginMockTx(t *testing.T, db *sqlx.DB, mock sqlmock.Sqlmock) transaction.Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := NewTxManager(db).Begin(context.Background())
	require.NoError(t, err)
	return tx
}

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }
