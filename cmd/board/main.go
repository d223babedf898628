package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erikaambiru/azure-devsecops-demo/config"
	"github.com/erikaambiru/azure-devsecops-demo/internal/adapters/primary/cli"
	"github.com/erikaambiru/azure-devsecops-demo/internal/adapters/secondary/apiclient"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/services"
	"github.com/erikaambiru/azure-devsecops-demo/internal/platform/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load("board")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	// Les logs vont sur stderr pour ne pas polluer l'affichage
	telemetry.InitLogger(os.Stderr, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.InitTracer(ctx, cfg)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	api, err := apiclient.New(cfg.APIURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	// Le store est construit ici et injecté : pas de singleton global
	store := services.NewStore(api,
		services.WithLogger(slog.Default()),
		services.WithRequestTimeout(cfg.RequestTimeout),
	)

	app := cli.New(store, os.Stdout, time.Now)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		// L'erreur de synchro est déjà affichée dans la barre de statut
		if !errors.Is(err, cli.ErrSyncFailed) {
			fmt.Fprintln(os.Stderr, "board:", err)
		}
		return 1
	}
	return 0
}
