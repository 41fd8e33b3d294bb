package memory

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/repositories/cycles"
	"github.com/dmitrijs2005/fintracker/internal/server/repositories/items"
	"github.com/dmitrijs2005/fintracker/internal/server/repositories/members"
	"github.com/dmitrijs2005/fintracker/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/fintracker/internal/server/repositories/users"
	"github.com/dmitrijs2005/fintracker/internal/server/repositories/workspaces"
)

// Manager satisfies repomanager.RepositoryManager. Every repository works on
// the Store; the DBTX tells them whether writes belong to a transaction.
type Manager struct {
	store *Store
}

func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

func (m *Manager) Store() *Store { return m.store }

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *Manager) Users(db dbx.DBTX) users.Repository {
	return &UserRepository{s: m.store, db: db}
}

func (m *Manager) Workspaces(db dbx.DBTX) workspaces.Repository {
	return &WorkspaceRepository{s: m.store, db: db}
}

func (m *Manager) Members(db dbx.DBTX) members.Repository {
	return &MemberRepository{s: m.store, db: db}
}

func (m *Manager) Items(db dbx.DBTX) items.Repository {
	return &ItemRepository{s: m.store, db: db}
}

func (m *Manager) Cycles(db dbx.DBTX) cycles.Repository {
	return &CycleRepository{s: m.store, db: db}
}

func (m *Manager) ResetTokens(db dbx.DBTX) resettokens.Repository {
	return &ResetTokenRepository{s: m.store, db: db}
}
