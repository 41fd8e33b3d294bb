package workspaces

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/shopspring/decimal"
)

const workspaceColumns = `id, balance, cycle_start_day, cycle_end_day, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ws *models.Workspace) (*models.Workspace, error) {
	query :=
		`INSERT INTO workspaces (balance, cycle_start_day, cycle_end_day)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, ws.Balance, ws.CycleStartDay, ws.CycleEndDay).
		Scan(&ws.ID, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ws, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Workspace, error) {
	return r.getOne(ctx, `SELECT `+workspaceColumns+` FROM workspaces WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id int64) (*models.Workspace, error) {
	return r.getOne(ctx, `SELECT `+workspaceColumns+` FROM workspaces WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) SetBalance(ctx context.Context, id int64, balance decimal.Decimal) (*models.Workspace, error) {
	return r.getOne(ctx,
		`UPDATE workspaces SET balance = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+workspaceColumns, id, balance)
}

func (r *PostgresRepository) AddToBalance(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	query :=
		`UPDATE workspaces SET balance = balance + $2, updated_at = now()
		 WHERE id = $1
		 RETURNING balance`

	var balance decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, id, delta).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, common.ErrorNotFound
		}
		return decimal.Zero, fmt.Errorf("db error: %w", err)
	}
	return balance, nil
}

func (r *PostgresRepository) SetCycleDays(ctx context.Context, id int64, start, end *int) error {
	query :=
		`UPDATE workspaces SET cycle_start_day = $2, cycle_end_day = $3, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, start, end)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Workspace, error) {
	ws := &models.Workspace{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&ws.ID, &ws.Balance, &ws.CycleStartDay, &ws.CycleEndDay, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ws, nil
}
