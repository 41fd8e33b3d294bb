package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

type ResetTokenRepository struct {
	s  *Store
	db dbx.DBTX
}

func (r *ResetTokenRepository) Create(ctx context.Context, t *models.PasswordResetToken) (*models.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.t.tokens {
		if existing.TokenHash == t.TokenHash {
			return nil, common.Conflict("duplicate reset token")
		}
	}
	t.ID = r.s.nextID()
	t.CreatedAt = time.Now()
	record(r.db, r.s.t.tokens, t.ID)
	r.s.t.tokens[t.ID] = *t
	return t, nil
}

func (r *ResetTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.t.tokens {
		if t.TokenHash == tokenHash {
			return &t, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id int64, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.t.tokens[id]
	if !ok || t.UsedAt != nil {
		return false, nil
	}
	used := at
	t.UsedAt = &used
	record(r.db, r.s.t.tokens, id)
	r.s.t.tokens[id] = t
	return true, nil
}

func (r *ResetTokenRepository) InvalidateForUser(ctx context.Context, userID int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, t := range r.s.t.tokens {
		if t.UserID == userID && t.UsedAt == nil {
			used := at
			t.UsedAt = &used
			record(r.db, r.s.t.tokens, id)
			r.s.t.tokens[id] = t
		}
	}
	return nil
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, t := range r.s.t.tokens {
		if t.ExpiresAt.Before(before) || t.UsedAt != nil {
			record(r.db, r.s.t.tokens, id)
			delete(r.s.t.tokens, id)
			n++
		}
	}
	return n, nil
}
