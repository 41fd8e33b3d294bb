package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

type ItemRepository struct {
	s  *Store
	db dbx.DBTX
}

func (r *ItemRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.t.workspaces[item.WorkspaceID]; !ok {
		return nil, common.ErrorNotFound
	}
	now := time.Now()
	row := *item
	row.ID = r.s.nextID()
	row.CreatedAt, row.UpdatedAt = now, now
	record(r.db, r.s.t.items, row.ID)
	r.s.t.items[row.ID] = row
	return &row, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.t.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &it, nil
}

func (r *ItemRepository) GetForUpdate(ctx context.Context, id int64) (*models.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Item, 0)
	for _, it := range r.s.t.items {
		if it.WorkspaceID == workspaceID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfMonth != out[j].DayOfMonth {
			return out[i].DayOfMonth < out[j].DayOfMonth
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.t.items[item.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cur.Type = item.Type
	cur.Label = item.Label
	cur.Amount = item.Amount
	cur.DayOfMonth = item.DayOfMonth
	cur.IsPaid = item.IsPaid
	cur.UpdatedAt = time.Now()
	record(r.db, r.s.t.items, item.ID)
	r.s.t.items[item.ID] = cur
	return &cur, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.t.items[id]; !ok {
		return common.ErrorNotFound
	}
	record(r.db, r.s.t.items, id)
	delete(r.s.t.items, id)
	return nil
}

func (r *ItemRepository) ResetPaid(ctx context.Context, workspaceID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	now := time.Now()
	for id, it := range r.s.t.items {
		if it.WorkspaceID == workspaceID && it.IsPaid {
			it.IsPaid = false
			it.UpdatedAt = now
			record(r.db, r.s.t.items, id)
			r.s.t.items[id] = it
			n++
		}
	}
	return n, nil
}
