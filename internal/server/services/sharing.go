package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

const (
	msgMemberNotFound   = "Member not found"
	msgViewerCannotAdd  = "Viewers cannot add members"
	msgMemberAddsViewer = "Members can only add viewers"
	msgViewerCannotRm   = "Viewers cannot remove members"
	msgOwnerCannotLeave = "Owner cannot leave their workspace"
	msgCannotRemoveOwn  = "Cannot remove the workspace owner"
)

type SharingService struct {
	Deps
}

func NewSharingService(d Deps) *SharingService {
	return &SharingService{Deps: d}
}

// SearchUser looks a user up by exact, case-insensitive username. The caller
// never finds themselves; a miss returns nil without error.
func (s *SharingService) SearchUser(ctx context.Context, callerID int64, username string) (*models.UserSummary, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, common.Validation("Username query parameter is required")
	}
	u, err := s.Repos.Users(s.DB).FindByUsernameFold(ctx, username, callerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	sum := u.Summary()
	return &sum, nil
}

// ListShared returns the workspaces the user was invited to.
func (s *SharingService) ListShared(ctx context.Context, userID int64) ([]models.SharedWorkspace, error) {
	out, err := s.Repos.Members(s.DB).ListShared(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.SharedWorkspace{}
	}
	return out, nil
}

func (s *SharingService) Members(ctx context.Context, userID, workspaceID int64) ([]models.Member, error) {
	if _, _, err := s.resolveWorkspace(ctx, s.DB, userID, &workspaceID, msgAccessDenied); err != nil {
		return nil, err
	}
	out, err := s.Repos.Members(s.DB).List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Member{}
	}
	return out, nil
}

// AddMember grants target a MEMBER or VIEWER seat. Owners grant either,
// members grant VIEWER only, viewers grant nothing.
func (s *SharingService) AddMember(ctx context.Context, callerID, workspaceID, targetID int64, p models.Permission) error {
	if targetID <= 0 {
		return common.Validation("userId is required")
	}
	if p != models.PermissionMember && p != models.PermissionViewer {
		return common.Validation("Permission must be MEMBER or VIEWER")
	}

	return s.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, caller, err := s.resolveWorkspace(ctx, tx, callerID, &workspaceID, msgAccessDenied)
		if err != nil {
			return err
		}
		if !caller.CanAddMembers() {
			return common.Forbidden(msgViewerCannotAdd)
		}
		if !caller.CanGrant(p) {
			return common.Forbidden(msgMemberAddsViewer)
		}

		if _, err := s.Repos.Users(tx).GetByID(ctx, targetID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NotFound(msgUserNotFound)
			}
			return err
		}
		if err := s.Repos.Members(tx).Add(ctx, workspaceID, targetID, p); err != nil {
			return err
		}
		s.logger().Info(ctx, "member added", "workspace_id", workspaceID, "user_id", targetID, "permission", string(p))
		return nil
	})
}

// RemoveMember removes target from the workspace. Anyone but the owner may
// remove themselves; removing someone else takes OWNER or MEMBER and can
// never target the owner.
func (s *SharingService) RemoveMember(ctx context.Context, callerID, workspaceID, targetID int64) error {
	return s.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		members := s.Repos.Members(tx)

		_, caller, err := s.resolveWorkspace(ctx, tx, callerID, &workspaceID, msgAccessDenied)
		if err != nil {
			return err
		}

		target, err := members.Permission(ctx, workspaceID, targetID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NotFound(msgMemberNotFound)
			}
			return err
		}

		if targetID == callerID {
			if !target.CanLeave() {
				return common.Forbidden(msgOwnerCannotLeave)
			}
		} else {
			if !caller.CanRemoveOthers() {
				return common.Forbidden(msgViewerCannotRm)
			}
			if target == models.PermissionOwner {
				return common.Forbidden(msgCannotRemoveOwn)
			}
		}

		if err := members.Remove(ctx, workspaceID, targetID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NotFound(msgMemberNotFound)
			}
			return err
		}
		s.logger().Info(ctx, "member removed", "workspace_id", workspaceID, "user_id", targetID, "by", callerID)
		return nil
	})
}
