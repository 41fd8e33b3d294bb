package cycles

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

var cycleCols = []string{"id", "workspace_id", "cycle_label", "final_balance", "items_snapshot", "archive_key", "created_at"}

func TestCreate_EncodesSnapshot(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+completed_cycles`).
		WithArgs(int64(10), "Jan 1 - Jan 31", decimal.NewFromInt(250), sqlmock.AnyArg(), "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(4), now))

	got, err := repo.Create(context.Background(), &models.CompletedCycle{
		WorkspaceID:  10,
		CycleLabel:   "Jan 1 - Jan 31",
		FinalBalance: decimal.NewFromInt(250),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ID)
	assert.NotNil(t, got.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByWorkspace_DecodesItems(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	snapshot := `[{"id":1,"workspaceId":10,"type":"RENT","label":"Rent","amount":"1500","dayOfMonth":3,"isPaid":true}]`
	mock.ExpectQuery(`(?s)WHERE\s+workspace_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(cycleCols).
			AddRow(int64(2), int64(10), "Feb 1 - Feb 28", "100", []byte(snapshot), "", now).
			AddRow(int64(1), int64(10), "Jan 1 - Jan 31", "50", []byte(`[]`), "cycles/10/1.json", now.Add(-time.Hour)))

	got, err := repo.ListByWorkspace(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Len(t, got[0].Items, 1)
	assert.Equal(t, models.ItemRent, got[0].Items[0].Type)
	assert.True(t, got[0].Items[0].Amount.Equal(decimal.NewFromInt(1500)))
	assert.Empty(t, got[1].Items)
	assert.Equal(t, "cycles/10/1.json", got[1].ArchiveKey)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+completed_cycles\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete_ScopedToWorkspace(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE\s+FROM\s+completed_cycles\s+WHERE\s+id\s*=\s*\$1\s+AND\s+workspace_id\s*=\s*\$2`).
		WithArgs(int64(3), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+completed_cycles`).
		WithArgs(int64(3), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 10, 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), 11, 3), common.ErrorNotFound)
}

func TestSetArchiveKey(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE\s+completed_cycles\s+SET\s+archive_key`).
		WithArgs(int64(3), "cycles/10/3.json").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetArchiveKey(context.Background(), 3, "cycles/10/3.json"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
