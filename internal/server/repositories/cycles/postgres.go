package cycles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

const cycleColumns = `id, workspace_id, cycle_label, final_balance, items_snapshot, COALESCE(archive_key, ''), created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCycle(s scanner) (*models.CompletedCycle, error) {
	c := &models.CompletedCycle{}
	var snapshot []byte
	if err := s.Scan(&c.ID, &c.WorkspaceID, &c.CycleLabel, &c.FinalBalance, &snapshot, &c.ArchiveKey, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &c.Items); err != nil {
		return nil, fmt.Errorf("decode items snapshot: %w", err)
	}
	if c.Items == nil {
		c.Items = []models.Item{}
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.CompletedCycle) (*models.CompletedCycle, error) {
	items := c.Items
	if items == nil {
		items = []models.Item{}
	}
	snapshot, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode items snapshot: %w", err)
	}

	query :=
		`INSERT INTO completed_cycles (workspace_id, cycle_label, final_balance, items_snapshot, archive_key)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query, c.WorkspaceID, c.CycleLabel, c.FinalBalance, string(snapshot), c.ArchiveKey).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.Items = items
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.CompletedCycle, error) {
	c, err := scanCycle(r.db.QueryRowContext(ctx, `SELECT `+cycleColumns+` FROM completed_cycles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]models.CompletedCycle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cycleColumns+` FROM completed_cycles
		 WHERE workspace_id = $1
		 ORDER BY created_at DESC, id DESC`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.CompletedCycle, 0)
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, workspaceID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM completed_cycles WHERE id = $1 AND workspace_id = $2`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SetArchiveKey(ctx context.Context, id int64, key string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE completed_cycles SET archive_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
