package workspaces

import (
	"context"

	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, ws *models.Workspace) (*models.Workspace, error)
	GetByID(ctx context.Context, id int64) (*models.Workspace, error)
	// GetForUpdate locks the workspace row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*models.Workspace, error)
	SetBalance(ctx context.Context, id int64, balance decimal.Decimal) (*models.Workspace, error)
	// AddToBalance applies delta atomically and returns the new balance.
	AddToBalance(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error)
	SetCycleDays(ctx context.Context, id int64, start, end *int) error
}
