package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS workspaces (id INTEGER PRIMARY KEY, balance INTEGER NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO workspaces(id, balance) VALUES (1, 0)`)
	require.NoError(t, err)
	return db
}

func balance(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT balance FROM workspaces WHERE id = 1`).Scan(&n))
	return n
}

func addToBalance(ctx context.Context, tx DBTX, delta int) error {
	_, err := tx.ExecContext(ctx, `UPDATE workspaces SET balance = balance + ? WHERE id = 1`, delta)
	return err
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return addToBalance(ctx, tx, 5000)
	})
	require.NoError(t, err)
	require.Equal(t, 5000, balance(t, db))
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, addToBalance(ctx, tx, 5000))
		return errors.New("item update failed")
	})
	require.Error(t, err)
	require.Equal(t, 0, balance(t, db), "balance change must be rolled back")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, balance(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, addToBalance(ctx, tx, -500))
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err, "begin should fail when DB is closed")
}

func TestSQLRunner_DelegatesToWithTx(t *testing.T) {
	db := setupDB(t)
	var r TxRunner = SQLRunner{DB: db}

	err := r.WithTx(context.Background(), func(ctx context.Context, tx DBTX) error {
		return addToBalance(ctx, tx, 250)
	})
	require.NoError(t, err)
	require.Equal(t, 250, balance(t, db))
}
