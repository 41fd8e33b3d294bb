package workspaces

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var wsCols = []string{"id", "balance", "cycle_start_day", "cycle_end_day", "created_at", "updated_at"}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+workspaces\s*\(balance,\s*cycle_start_day,\s*cycle_end_day\)`).
		WithArgs(decimal.Zero, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	ws, err := repo.Create(context.Background(), &models.Workspace{Balance: decimal.Zero})
	require.NoError(t, err)
	assert.Equal(t, int64(7), ws.ID)
	assert.Nil(t, ws.CycleStartDay)
}

func TestGetForUpdate_ScansNullableDays(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)FROM\s+workspaces\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(wsCols).AddRow(int64(7), "1000.50", 5, 4, now, now))
	mock.ExpectQuery(`(?s)FROM\s+workspaces\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(wsCols).AddRow(int64(8), "0", nil, nil, now, now))

	ws, err := repo.GetForUpdate(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ws.Balance.Equal(decimal.RequireFromString("1000.50")))
	require.NotNil(t, ws.CycleStartDay)
	assert.Equal(t, 5, *ws.CycleStartDay)
	assert.Equal(t, 4, *ws.CycleEndDay)

	empty, err := repo.GetByID(context.Background(), 8)
	require.NoError(t, err)
	assert.Nil(t, empty.CycleStartDay)
	assert.Nil(t, empty.CycleEndDay)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+workspaces`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAddToBalance_IsAtomicIncrement(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^UPDATE\s+workspaces\s+SET\s+balance\s*=\s*balance\s*\+\s*\$2.*RETURNING\s+balance$`).
		WithArgs(int64(7), decimal.NewFromInt(-500)).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("500.00"))

	got, err := repo.AddToBalance(context.Background(), 7, decimal.NewFromInt(-500))
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(500)))
}

func TestSetBalance(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)^UPDATE\s+workspaces\s+SET\s+balance\s*=\s*\$2`).
		WithArgs(int64(7), decimal.NewFromInt(250)).
		WillReturnRows(sqlmock.NewRows(wsCols).AddRow(int64(7), "250", nil, nil, now, now))

	ws, err := repo.SetBalance(context.Background(), 7, decimal.NewFromInt(250))
	require.NoError(t, err)
	assert.True(t, ws.Balance.Equal(decimal.NewFromInt(250)))
}

func TestSetCycleDays(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	start, end := 1, 31
	mock.ExpectExec(`UPDATE\s+workspaces\s+SET\s+cycle_start_day`).
		WithArgs(int64(7), 1, 31).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+workspaces\s+SET\s+cycle_start_day`).
		WithArgs(int64(7), nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+workspaces\s+SET\s+cycle_start_day`).
		WithArgs(int64(9), nil, nil).
		WillReturnError(errors.New("db down"))

	require.NoError(t, repo.SetCycleDays(context.Background(), 7, &start, &end))
	require.NoError(t, repo.SetCycleDays(context.Background(), 7, nil, nil))
	assert.ErrorContains(t, repo.SetCycleDays(context.Background(), 9, nil, nil), "db error")
	assert.NoError(t, mock.ExpectationsWereMet())
}
