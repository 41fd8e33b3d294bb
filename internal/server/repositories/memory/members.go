package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

type MemberRepository struct {
	s  *Store
	db dbx.DBTX
}

func (r *MemberRepository) Add(ctx context.Context, workspaceID, userID int64, p models.Permission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := memberKey{workspaceID: workspaceID, userID: userID}
	if _, ok := r.s.t.members[key]; ok {
		return common.ErrAlreadyMember
	}
	record(r.db, r.s.t.members, key)
	r.s.t.members[key] = memberRow{permission: p, seq: r.s.nextID()}
	return nil
}

func (r *MemberRepository) Permission(ctx context.Context, workspaceID, userID int64) (models.Permission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.t.members[memberKey{workspaceID: workspaceID, userID: userID}]
	if !ok {
		return "", common.ErrorNotFound
	}
	return row.permission, nil
}

func (r *MemberRepository) OwnedWorkspaceID(ctx context.Context, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var id int64
	for k, row := range r.s.t.members {
		if k.userID == userID && row.permission == models.PermissionOwner && (id == 0 || k.workspaceID < id) {
			id = k.workspaceID
		}
	}
	if id == 0 {
		return 0, common.ErrorNotFound
	}
	return id, nil
}

func (r *MemberRepository) List(ctx context.Context, workspaceID int64) ([]models.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type ordered struct {
		m   models.Member
		seq int64
	}
	var rows []ordered
	for k, row := range r.s.t.members {
		if k.workspaceID != workspaceID {
			continue
		}
		u, ok := r.s.t.users[k.userID]
		if !ok {
			continue
		}
		rows = append(rows, ordered{
			m: models.Member{
				WorkspaceID: workspaceID,
				UserID:      u.ID,
				Username:    u.Username,
				DisplayName: u.DisplayName,
				Permission:  row.permission,
			},
			seq: row.seq,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	var out []models.Member
	for _, o := range rows {
		out = append(out, o.m)
	}
	return out, nil
}

func (r *MemberRepository) ListShared(ctx context.Context, userID int64) ([]models.SharedWorkspace, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.SharedWorkspace
	for k, row := range r.s.t.members {
		if k.userID != userID || row.permission == models.PermissionOwner {
			continue
		}
		owner := "Unknown"
		for ok2, orow := range r.s.t.members {
			if ok2.workspaceID == k.workspaceID && orow.permission == models.PermissionOwner {
				if u, found := r.s.t.users[ok2.userID]; found {
					owner = u.DisplayName
				}
			}
		}
		out = append(out, models.SharedWorkspace{
			WorkspaceID:      k.workspaceID,
			OwnerDisplayName: owner,
			Permission:       row.permission,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkspaceID < out[j].WorkspaceID })
	return out, nil
}

func (r *MemberRepository) Remove(ctx context.Context, workspaceID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := memberKey{workspaceID: workspaceID, userID: userID}
	if _, ok := r.s.t.members[key]; !ok {
		return common.ErrorNotFound
	}
	record(r.db, r.s.t.members, key)
	delete(r.s.t.members, key)
	return nil
}
