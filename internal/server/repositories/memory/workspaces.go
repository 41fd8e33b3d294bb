package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/shopspring/decimal"
)

type WorkspaceRepository struct {
	s  *Store
	db dbx.DBTX
}

func copyDay(d *int) *int {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

func (r *WorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) (*models.Workspace, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	ws.ID = r.s.nextID()
	ws.CreatedAt, ws.UpdatedAt = now, now
	row := *ws
	row.CycleStartDay, row.CycleEndDay = copyDay(ws.CycleStartDay), copyDay(ws.CycleEndDay)
	record(r.db, r.s.t.workspaces, ws.ID)
	r.s.t.workspaces[ws.ID] = row
	return ws, nil
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id int64) (*models.Workspace, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ws, ok := r.s.t.workspaces[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &ws, nil
}

// GetForUpdate is GetByID: Store.WithTx already serialises transactions.
func (r *WorkspaceRepository) GetForUpdate(ctx context.Context, id int64) (*models.Workspace, error) {
	return r.GetByID(ctx, id)
}

func (r *WorkspaceRepository) SetBalance(ctx context.Context, id int64, balance decimal.Decimal) (*models.Workspace, error) {
	return r.update(id, func(ws *models.Workspace) {
		ws.Balance = balance
	})
}

func (r *WorkspaceRepository) AddToBalance(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	ws, err := r.update(id, func(ws *models.Workspace) {
		ws.Balance = ws.Balance.Add(delta)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return ws.Balance, nil
}

func (r *WorkspaceRepository) SetCycleDays(ctx context.Context, id int64, start, end *int) error {
	_, err := r.update(id, func(ws *models.Workspace) {
		ws.CycleStartDay, ws.CycleEndDay = copyDay(start), copyDay(end)
	})
	return err
}

func (r *WorkspaceRepository) update(id int64, fn func(ws *models.Workspace)) (*models.Workspace, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ws, ok := r.s.t.workspaces[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	fn(&ws)
	ws.UpdatedAt = time.Now()
	record(r.db, r.s.t.workspaces, id)
	r.s.t.workspaces[id] = ws
	out := ws
	return &out, nil
}
