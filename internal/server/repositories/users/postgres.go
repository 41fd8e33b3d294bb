package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

const userColumns = `id, username, display_name, password_hash, token_version,
		        COALESCE(email_encrypted, ''), COALESCE(email_hash, ''), created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, display_name, password_hash, email_encrypted, email_hash)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
		 RETURNING id, token_version, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.DisplayName, user.PasswordHash, user.EmailEncrypted, user.EmailHash,
	).Scan(&user.ID, &user.TokenVersion, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, mapUniqueErr(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *PostgresRepository) FindByUsernameFold(ctx context.Context, username string, excludeID int64) (*models.User, error) {
	return r.getOne(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE lower(username) = lower($1) AND id <> $2
		 LIMIT 1`, username, excludeID)
}

func (r *PostgresRepository) GetTokenVersion(ctx context.Context, id int64) (int, error) {
	var v int
	err := r.db.QueryRowContext(ctx, `SELECT token_version FROM users WHERE id = $1`, id).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) IncrementTokenVersion(ctx context.Context, id int64) (int, error) {
	query :=
		`UPDATE users SET token_version = token_version + 1, updated_at = now()
		 WHERE id = $1
		 RETURNING token_version`

	return r.returnVersion(ctx, query, id)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, hash string) (int, error) {
	query :=
		`UPDATE users SET password_hash = $2, token_version = token_version + 1, updated_at = now()
		 WHERE id = $1
		 RETURNING token_version`

	return r.returnVersion(ctx, query, id, hash)
}

func (r *PostgresRepository) UpdateEmail(ctx context.Context, id int64, emailHash, emailEncrypted string) error {
	query :=
		`UPDATE users SET email_hash = $2, email_encrypted = $3, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, emailHash, emailEncrypted)
	if err != nil {
		return mapUniqueErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.TokenVersion,
		&u.EmailEncrypted, &u.EmailHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) returnVersion(ctx context.Context, query string, args ...any) (int, error) {
	var v int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func mapUniqueErr(err error) error {
	if constraint, ok := dbx.UniqueViolation(err); ok {
		switch constraint {
		case "users_email_hash_key":
			return common.ErrEmailTaken
		default:
			return common.ErrUsernameTaken
		}
	}
	return fmt.Errorf("db error: %w", err)
}
