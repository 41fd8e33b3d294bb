package items

import (
	"context"
	"database/sql"
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

var itemCols = []string{"id", "workspace_id", "type", "label", "amount", "day_of_month", "is_paid", "created_at", "updated_at"}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+items\s*\(workspace_id,\s*type,\s*label,\s*amount,\s*day_of_month,\s*is_paid\)`).
		WithArgs(int64(10), "INCOME", "Salary", decimal.NewFromInt(5000), 1, false).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(int64(1), int64(10), "INCOME", "Salary", "5000.00", 1, false, now, now))

	got, err := repo.Create(context.Background(), &models.Item{
		WorkspaceID: 10, Type: models.ItemIncome, Label: "Salary", Amount: decimal.NewFromInt(5000), DayOfMonth: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, models.ItemIncome, got.Type)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(5000)))
}

func TestGetForUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)FROM\s+items\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE$`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(int64(1), int64(10), "RENT", "Rent", "500", 3, true, now, now))
	mock.ExpectQuery(`(?s)FROM\s+items\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(2)).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetForUpdate(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, got.IsPaid)
	assert.Equal(t, 3, got.DayOfMonth)

	_, err = repo.GetByID(context.Background(), 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListByWorkspace(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)WHERE\s+workspace_id\s*=\s*\$1\s+ORDER\s+BY\s+day_of_month,\s*id`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(int64(1), int64(10), "INCOME", "Salary", "5000", 1, false, now, now).
			AddRow(int64(2), int64(10), "RENT", "Rent", "1500", 3, false, now, now))
	mock.ExpectQuery(`FROM\s+items`).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(itemCols))

	got, err := repo.ListByWorkspace(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Rent", got[1].Label)

	empty, err := repo.ListByWorkspace(context.Background(), 11)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)^UPDATE\s+items\s+SET\s+type\s*=\s*\$2`).
		WithArgs(int64(1), "RENT", "Flat", decimal.NewFromInt(900), 5, true).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(int64(1), int64(10), "RENT", "Flat", "900", 5, true, now, now))

	got, err := repo.Update(context.Background(), &models.Item{
		ID: 1, Type: models.ItemRent, Label: "Flat", Amount: decimal.NewFromInt(900), DayOfMonth: 5, IsPaid: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Flat", got.Label)
}

func TestDeleteAndResetPaid(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE\s+FROM\s+items`).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+items`).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`(?s)UPDATE\s+items\s+SET\s+is_paid\s*=\s*false`).WithArgs(int64(10)).WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.Delete(context.Background(), 1))
	assert.ErrorIs(t, repo.Delete(context.Background(), 2), common.ErrorNotFound)

	n, err := repo.ResetPaid(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
