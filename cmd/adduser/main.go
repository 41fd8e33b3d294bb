package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/admin"
	"github.com/dmitrijs2005/fintracker/internal/server"
	"github.com/dmitrijs2005/fintracker/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	err = admin.AddUser(ctx, app.Auth, os.Stdin, os.Stdout)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = app.Stop(stopCtx)

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
