package cycles

import (
	"context"

	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.CompletedCycle) (*models.CompletedCycle, error)
	GetByID(ctx context.Context, id int64) (*models.CompletedCycle, error)
	// ListByWorkspace returns snapshots newest first.
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]models.CompletedCycle, error)
	// Delete removes the cycle only if it belongs to workspaceID.
	Delete(ctx context.Context, workspaceID, id int64) error
	SetArchiveKey(ctx context.Context, id int64, key string) error
}
