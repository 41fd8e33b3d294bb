package memory

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

type UserRepository struct {
	s  *Store
	db dbx.DBTX
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.t.users {
		if u.Username == user.Username {
			return nil, common.ErrUsernameTaken
		}
		if user.EmailHash != "" && u.EmailHash == user.EmailHash {
			return nil, common.ErrEmailTaken
		}
	}

	now := time.Now()
	user.ID = r.s.nextID()
	user.TokenVersion = 0
	user.CreatedAt, user.UpdatedAt = now, now
	record(r.db, r.s.t.users, user.ID)
	r.s.t.users[user.ID] = *user

	out := *user
	return &out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.t.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *UserRepository) FindByUsernameFold(ctx context.Context, username string, excludeID int64) (*models.User, error) {
	return r.find(func(u models.User) bool {
		return u.ID != excludeID && strings.EqualFold(u.Username, username)
	})
}

func (r *UserRepository) GetTokenVersion(ctx context.Context, id int64) (int, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return u.TokenVersion, nil
}

func (r *UserRepository) IncrementTokenVersion(ctx context.Context, id int64) (int, error) {
	return r.update(id, func(u *models.User) error {
		u.TokenVersion++
		return nil
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) (int, error) {
	return r.update(id, func(u *models.User) error {
		u.PasswordHash = hash
		u.TokenVersion++
		return nil
	})
}

func (r *UserRepository) UpdateEmail(ctx context.Context, id int64, emailHash, emailEncrypted string) error {
	r.s.mu.Lock()
	for _, u := range r.s.t.users {
		if u.ID != id && u.EmailHash != "" && u.EmailHash == emailHash {
			r.s.mu.Unlock()
			return common.ErrEmailTaken
		}
	}
	r.s.mu.Unlock()

	_, err := r.update(id, func(u *models.User) error {
		u.EmailHash = emailHash
		u.EmailEncrypted = emailEncrypted
		return nil
	})
	return err
}

func (r *UserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.t.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UserRepository) update(id int64, fn func(u *models.User) error) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.t.users[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	if err := fn(&u); err != nil {
		return 0, err
	}
	u.UpdatedAt = time.Now()
	record(r.db, r.s.t.users, id)
	r.s.t.users[id] = u
	return u.TokenVersion, nil
}
