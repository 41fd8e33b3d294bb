// Command migrate manages the database schema.
//
//	migrate up|down|status [-d dsn]
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/fintracker/internal/admin"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/config"
	"github.com/dmitrijs2005/fintracker/internal/server/repositories/repomanager"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate up|down|status [-d dsn]")
	}
	command := os.Args[1]

	ctx := context.Background()
	cfg := config.LoadConfig()

	pool := dbx.NewPool("pgx")
	defer pool.CloseAll()

	db, err := pool.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}

	m := admin.PostgresMigrator{DB: db, Repos: repomanager.NewPostgresRepositoryManager()}
	if err := admin.Migrate(ctx, m, command, os.Stdout); err != nil {
		log.Printf("%v", err)
		pool.CloseAll()
		os.Exit(1)
	}
}
