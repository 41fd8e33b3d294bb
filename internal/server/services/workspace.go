package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/archive"
	"github.com/dmitrijs2005/fintracker/internal/server/cycle"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/shopspring/decimal"
)

const (
	msgCycleNotFound    = "Cycle not found"
	msgArchiveDisabled  = "Cycle archive is not available"
	maxBalanceMagnitude = 1e10
)

// WorkspaceView is everything the dashboard shows for one workspace.
type WorkspaceView struct {
	Workspace  models.Workspace
	Items      []models.Item
	Cards      cycle.BalanceCards
	CycleLabel string
	Permission models.Permission
}

type WorkspaceService struct {
	Deps
	// archive is nil when cycle archiving is disabled.
	archive archive.Store
}

func NewWorkspaceService(d Deps, store archive.Store) *WorkspaceService {
	return &WorkspaceService{Deps: d, archive: store}
}

// Get loads a workspace the caller belongs to; nil workspaceID means the
// caller's own. Stale cycle days are corrected on the way.
func (s *WorkspaceService) Get(ctx context.Context, userID int64, workspaceID *int64) (*WorkspaceView, error) {
	id, perm, err := s.resolveWorkspace(ctx, s.DB, userID, workspaceID, msgAccessDenied)
	if err != nil {
		return nil, err
	}

	ws, err := s.Repos.Workspaces(s.DB).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(msgNoWorkspace)
		}
		return nil, err
	}
	items, err := s.Repos.Items(s.DB).ListByWorkspace(ctx, id)
	if err != nil {
		return nil, err
	}

	days := cycle.CalculateCycleDays(items)
	if !days.Equal(ws.CycleStartDay, ws.CycleEndDay) {
		if err := s.Repos.Workspaces(s.DB).SetCycleDays(ctx, id, days.StartDay, days.EndDay); err != nil {
			return nil, err
		}
		ws.CycleStartDay, ws.CycleEndDay = days.StartDay, days.EndDay
	}

	return &WorkspaceView{
		Workspace:  *ws,
		Items:      items,
		Cards:      cycle.CalculateBalanceCards(ws.Balance, items),
		CycleLabel: cycle.LabelFor(days, s.now()),
		Permission: perm,
	}, nil
}

func (s *WorkspaceService) SetBalance(ctx context.Context, userID int64, workspaceID *int64, balance decimal.Decimal) (*models.Workspace, error) {
	if balance.Abs().GreaterThanOrEqual(decimal.NewFromFloat(maxBalanceMagnitude)) {
		return nil, common.Validation("Balance is out of range")
	}

	id, perm, err := s.resolveWorkspace(ctx, s.DB, userID, workspaceID, msgInsufficientPermissions)
	if err != nil {
		return nil, err
	}
	if !perm.CanEdit() {
		return nil, common.Forbidden(msgInsufficientPermissions)
	}

	ws, err := s.Repos.Workspaces(s.DB).SetBalance(ctx, id, balance.Round(2))
	if err != nil {
		return nil, err
	}
	s.logger().Info(ctx, "balance set", "workspace_id", id, "user_id", userID)
	return ws, nil
}

// ownWorkspace is the caller's OWNER workspace; cycle history is only
// reachable through it.
func (s *WorkspaceService) ownWorkspace(ctx context.Context, userID int64) (int64, error) {
	id, err := s.Repos.Members(s.DB).OwnedWorkspaceID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.NotFound(msgNoWorkspace)
		}
		return 0, err
	}
	return id, nil
}

// ListCycles returns the caller's completed cycles, newest first.
func (s *WorkspaceService) ListCycles(ctx context.Context, userID int64) ([]models.CompletedCycle, error) {
	id, err := s.ownWorkspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Repos.Cycles(s.DB).ListByWorkspace(ctx, id)
}

func (s *WorkspaceService) DeleteCycle(ctx context.Context, userID, cycleID int64) error {
	id, err := s.ownWorkspace(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Repos.Cycles(s.DB).Delete(ctx, id, cycleID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NotFound(msgCycleNotFound)
		}
		return err
	}
	return nil
}

// Reset snapshots the balance and items into a completed cycle and marks
// every item unpaid, atomically. The balance itself is left as it is.
// When archiving is enabled the snapshot is also uploaded; upload failures
// are logged and do not fail the reset.
func (s *WorkspaceService) Reset(ctx context.Context, userID int64, workspaceID *int64) (*models.CompletedCycle, error) {
	var cc *models.CompletedCycle

	err := s.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		id, perm, err := s.resolveWorkspace(ctx, tx, userID, workspaceID, msgInsufficientPermissions)
		if err != nil {
			return err
		}
		if !perm.CanEdit() {
			return common.Forbidden(msgInsufficientPermissions)
		}

		ws, err := s.Repos.Workspaces(tx).GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		items, err := s.Repos.Items(tx).ListByWorkspace(ctx, id)
		if err != nil {
			return err
		}

		cc, err = s.Repos.Cycles(tx).Create(ctx, &models.CompletedCycle{
			WorkspaceID:  id,
			CycleLabel:   cycle.LabelFor(cycle.CalculateCycleDays(items), s.now()),
			FinalBalance: ws.Balance,
			Items:        items,
		})
		if err != nil {
			return err
		}
		_, err = s.Repos.Items(tx).ResetPaid(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger().Info(ctx, "workspace reset", "workspace_id", cc.WorkspaceID, "cycle_id", cc.ID)

	if s.archive != nil {
		if err := s.upload(ctx, cc); err != nil {
			s.logger().Warn(ctx, "cycle archive upload failed", "cycle_id", cc.ID, "error", err)
		}
	}
	return cc, nil
}

func (s *WorkspaceService) upload(ctx context.Context, cc *models.CompletedCycle) error {
	body, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("encode cycle: %w", err)
	}
	key := archive.CycleKey(cc.WorkspaceID, cc.ID, cc.CreatedAt)
	if err := s.archive.Put(ctx, key, body); err != nil {
		return err
	}
	if err := s.Repos.Cycles(s.DB).SetArchiveKey(ctx, cc.ID, key); err != nil {
		return err
	}
	cc.ArchiveKey = key
	return nil
}

// ExportURL returns a short-lived download link for a completed cycle of
// the caller's workspace, uploading the snapshot first if it never was.
func (s *WorkspaceService) ExportURL(ctx context.Context, userID, cycleID int64) (string, error) {
	if s.archive == nil {
		return "", common.NotFound(msgArchiveDisabled)
	}
	id, err := s.ownWorkspace(ctx, userID)
	if err != nil {
		return "", err
	}

	cc, err := s.Repos.Cycles(s.DB).GetByID(ctx, cycleID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.NotFound(msgCycleNotFound)
		}
		return "", err
	}
	if cc.WorkspaceID != id {
		return "", common.NotFound(msgCycleNotFound)
	}

	if cc.ArchiveKey == "" {
		if err := s.upload(ctx, cc); err != nil {
			return "", err
		}
	}
	return s.archive.PresignGet(ctx, cc.ArchiveKey)
}
