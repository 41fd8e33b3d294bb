package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

const itemColumns = `id, workspace_id, type, label, amount, day_of_month, is_paid, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.Item, error) {
	it := &models.Item{}
	var ty string
	if err := s.Scan(&it.ID, &it.WorkspaceID, &ty, &it.Label, &it.Amount,
		&it.DayOfMonth, &it.IsPaid, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	it.Type = models.ItemType(ty)
	return it, nil
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	query :=
		`INSERT INTO items (workspace_id, type, label, amount, day_of_month, is_paid)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + itemColumns

	return r.getOne(ctx, query, item.WorkspaceID, string(item.Type), item.Label, item.Amount, item.DayOfMonth, item.IsPaid)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id int64) (*models.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE workspace_id = $1
		 ORDER BY day_of_month, id`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	query :=
		`UPDATE items
		 SET type = $2, label = $3, amount = $4, day_of_month = $5, is_paid = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + itemColumns

	return r.getOne(ctx, query, item.ID, string(item.Type), item.Label, item.Amount, item.DayOfMonth, item.IsPaid)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ResetPaid(ctx context.Context, workspaceID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE items SET is_paid = false, updated_at = now()
		 WHERE workspace_id = $1 AND is_paid`, workspaceID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Item, error) {
	it, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return it, nil
}
