// Package services contains the server-side business logic: sessions and
// accounts, workspaces and their cycles, items, and workspace sharing.
// Services read through Deps.DB and run read-then-write sequences inside
// Deps.Tx so that balance and permission checks cannot race.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/logging"
	"github.com/dmitrijs2005/fintracker/internal/server/cycle"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/dmitrijs2005/fintracker/internal/server/repositories/repomanager"
)

// Deps bundles what every service needs.
type Deps struct {
	DB    dbx.DBTX
	Tx    dbx.TxRunner
	Repos repomanager.RepositoryManager
	Log   logging.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logger() logging.Logger {
	if d.Log != nil {
		return d.Log
	}
	return logging.Nop()
}

const (
	msgInsufficientPermissions = "Insufficient permissions"
	msgAccessDenied            = "Access denied"
	msgNoWorkspace             = "No workspace found"
)

// resolveWorkspace picks the requested workspace, or the caller's own when
// workspaceID is nil, and returns the caller's permission in it. A caller
// without membership gets Forbidden(denied).
func (d Deps) resolveWorkspace(ctx context.Context, db dbx.DBTX, userID int64, workspaceID *int64, denied string) (int64, models.Permission, error) {
	members := d.Repos.Members(db)

	var id int64
	if workspaceID != nil {
		id = *workspaceID
	} else {
		owned, err := members.OwnedWorkspaceID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return 0, "", common.NotFound(msgNoWorkspace)
			}
			return 0, "", err
		}
		id = owned
	}

	p, err := members.Permission(ctx, id, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, "", common.Forbidden(denied)
		}
		return 0, "", err
	}
	return id, p, nil
}

// syncCycleDays recomputes the workspace's cycle days from its items and
// stores them if they changed.
func (d Deps) syncCycleDays(ctx context.Context, db dbx.DBTX, workspaceID int64) (cycle.Days, error) {
	ws, err := d.Repos.Workspaces(db).GetByID(ctx, workspaceID)
	if err != nil {
		return cycle.Days{}, err
	}
	items, err := d.Repos.Items(db).ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return cycle.Days{}, err
	}
	days := cycle.CalculateCycleDays(items)
	if !days.Equal(ws.CycleStartDay, ws.CycleEndDay) {
		if err := d.Repos.Workspaces(db).SetCycleDays(ctx, workspaceID, days.StartDay, days.EndDay); err != nil {
			return cycle.Days{}, err
		}
	}
	return days, nil
}
