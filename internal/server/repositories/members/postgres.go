package members

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, workspaceID, userID int64, p models.Permission) error {
	query :=
		`INSERT INTO workspace_users (user_id, workspace_id, permission)
		 VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, userID, workspaceID, string(p)); err != nil {
		if _, ok := dbx.UniqueViolation(err); ok {
			return common.ErrAlreadyMember
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Permission(ctx context.Context, workspaceID, userID int64) (models.Permission, error) {
	query :=
		`SELECT permission FROM workspace_users
		 WHERE user_id = $1 AND workspace_id = $2`

	var p string
	if err := r.db.QueryRowContext(ctx, query, userID, workspaceID).Scan(&p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return models.Permission(p), nil
}

func (r *PostgresRepository) OwnedWorkspaceID(ctx context.Context, userID int64) (int64, error) {
	query :=
		`SELECT workspace_id FROM workspace_users
		 WHERE user_id = $1 AND permission = 'OWNER'
		 ORDER BY workspace_id
		 LIMIT 1`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) List(ctx context.Context, workspaceID int64) ([]models.Member, error) {
	query :=
		`SELECT wu.workspace_id, u.id, u.username, u.display_name, wu.permission
		 FROM workspace_users wu
		 JOIN users u ON u.id = wu.user_id
		 WHERE wu.workspace_id = $1
		 ORDER BY wu.created_at, u.id`

	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.Member
	for rows.Next() {
		var m models.Member
		var p string
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Username, &m.DisplayName, &p); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.Permission = models.Permission(p)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListShared(ctx context.Context, userID int64) ([]models.SharedWorkspace, error) {
	query :=
		`SELECT wu.workspace_id, COALESCE(owner.display_name, 'Unknown'), wu.permission
		 FROM workspace_users wu
		 LEFT JOIN workspace_users ow ON ow.workspace_id = wu.workspace_id AND ow.permission = 'OWNER'
		 LEFT JOIN users owner ON owner.id = ow.user_id
		 WHERE wu.user_id = $1 AND wu.permission <> 'OWNER'
		 ORDER BY wu.workspace_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.SharedWorkspace
	for rows.Next() {
		var s models.SharedWorkspace
		var p string
		if err := rows.Scan(&s.WorkspaceID, &s.OwnerDisplayName, &p); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		s.Permission = models.Permission(p)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, workspaceID, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM workspace_users WHERE user_id = $1 AND workspace_id = $2`, userID, workspaceID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
