package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

type CycleRepository struct {
	s  *Store
	db dbx.DBTX
}

func (r *CycleRepository) Create(ctx context.Context, c *models.CompletedCycle) (*models.CompletedCycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row := *c
	row.Items = append([]models.Item{}, c.Items...)
	row.ID = r.s.nextID()
	row.CreatedAt = time.Now()
	record(r.db, r.s.t.cycles, row.ID)
	r.s.t.cycles[row.ID] = row

	c.ID, c.CreatedAt, c.Items = row.ID, row.CreatedAt, row.Items
	return c, nil
}

func (r *CycleRepository) GetByID(ctx context.Context, id int64) (*models.CompletedCycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.t.cycles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r *CycleRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]models.CompletedCycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.CompletedCycle, 0)
	for _, c := range r.s.t.cycles {
		if c.WorkspaceID == workspaceID {
			out = append(out, c)
		}
	}
	// ids grow with creation time, so they break timestamp ties
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *CycleRepository) Delete(ctx context.Context, workspaceID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.t.cycles[id]
	if !ok || c.WorkspaceID != workspaceID {
		return common.ErrorNotFound
	}
	record(r.db, r.s.t.cycles, id)
	delete(r.s.t.cycles, id)
	return nil
}

func (r *CycleRepository) SetArchiveKey(ctx context.Context, id int64, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.t.cycles[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.ArchiveKey = key
	record(r.db, r.s.t.cycles, id)
	r.s.t.cycles[id] = c
	return nil
}
