package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/fintracker/internal/server"
	"github.com/dmitrijs2005/fintracker/internal/server/config"
	gfshutdown "github.com/gelmium/graceful-shutdown"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := app.Start(ctx); err != nil {
		log.Printf("start: %v", err)
		os.Exit(1)
	}

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"fintracker": func(ctx context.Context) error {
				return app.Stop(ctx)
			},
		},
	)

	select {
	case code := <-wait:
		os.Exit(code)
	case <-app.Failed():
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := app.Stop(stopCtx); err != nil {
			app.Logger().Error(stopCtx, "shutdown", "error", err)
		}
		os.Exit(1)
	}
}
