package resettokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.PasswordResetToken) (*models.PasswordResetToken, error)
	// GetByHash locks the token row until the surrounding transaction ends.
	GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	// MarkUsed reports false when the token was already used.
	MarkUsed(ctx context.Context, id int64, at time.Time) (bool, error)
	// InvalidateForUser marks every outstanding token of the user as used.
	InvalidateForUser(ctx context.Context, userID int64, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
