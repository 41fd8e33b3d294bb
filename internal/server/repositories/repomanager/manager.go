package repomanager

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

// RepositoryManager builds repositories bound to a DBTX, so the same
// factory serves plain queries and transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Workspaces(db dbx.DBTX) workspaces.Repository
	Members(db dbx.DBTX) members.Repository
	Items(db dbx.DBTX) items.Repository
	Cycles(db dbx.DBTX) cycles.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
}
