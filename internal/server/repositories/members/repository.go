package members

import (
	"context"

	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

// Repository manages workspace memberships.
type Repository interface {
	// Add fails with common.ErrAlreadyMember when the user is already in the
	// workspace.
	Add(ctx context.Context, workspaceID, userID int64, p models.Permission) error
	// Permission returns common.ErrorNotFound when the user is not a member.
	Permission(ctx context.Context, workspaceID, userID int64) (models.Permission, error)
	OwnedWorkspaceID(ctx context.Context, userID int64) (int64, error)
	List(ctx context.Context, workspaceID int64) ([]models.Member, error)
	ListShared(ctx context.Context, userID int64) ([]models.SharedWorkspace, error)
	Remove(ctx context.Context, workspaceID, userID int64) error
}
