package admin

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fintracker/internal/server/repositories/repomanager"
)

// PostgresMigrator applies the embedded goose migrations to db.
type PostgresMigrator struct {
	DB    *sql.DB
	Repos *repomanager.PostgresRepositoryManager
}

func (m PostgresMigrator) Up(ctx context.Context) error {
	return m.Repos.RunMigrations(ctx, m.DB)
}

func (m PostgresMigrator) Down(ctx context.Context) error {
	return m.Repos.RollbackMigration(ctx, m.DB)
}

func (m PostgresMigrator) Status(ctx context.Context) (int64, error) {
	return m.Repos.MigrationStatus(ctx, m.DB)
}
