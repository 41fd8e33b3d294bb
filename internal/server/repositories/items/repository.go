package items

import (
	"context"

	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	GetByID(ctx context.Context, id int64) (*models.Item, error)
	// GetForUpdate locks the item row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*models.Item, error)
	// ListByWorkspace orders by due day, then id.
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]models.Item, error)
	// Update writes type, label, amount, day and paid flag.
	Update(ctx context.Context, item *models.Item) (*models.Item, error)
	Delete(ctx context.Context, id int64) error
	// ResetPaid clears every paid flag in the workspace.
	ResetPaid(ctx context.Context, workspaceID int64) (int64, error)
}
