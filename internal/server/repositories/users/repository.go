package users

import (
	"context"

	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

type Repository interface {
	// Create fails with common.ErrUsernameTaken or common.ErrEmailTaken on
	// uniqueness violations.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// FindByUsernameFold matches case-insensitively and skips excludeID.
	FindByUsernameFold(ctx context.Context, username string, excludeID int64) (*models.User, error)
	GetTokenVersion(ctx context.Context, id int64) (int, error)
	// IncrementTokenVersion bumps the version by one and returns the new value.
	IncrementTokenVersion(ctx context.Context, id int64) (int, error)
	// UpdatePassword stores hash and bumps the token version in one statement.
	UpdatePassword(ctx context.Context, id int64, hash string) (int, error)
	UpdateEmail(ctx context.Context, id int64, emailHash, emailEncrypted string) error
}
