// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

// Command server runs the realtime mine monitoring subsystem: the
// WebSocket gateway, the facility state store, the alert and emergency
// ledger, and the HTTP read surface.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Aryam2121/CoalMine-B/internal/api"
	"github.com/Aryam2121/CoalMine-B/internal/auth"
	"github.com/Aryam2121/CoalMine-B/internal/config"
	"github.com/Aryam2121/CoalMine-B/internal/gateway"
	"github.com/Aryam2121/CoalMine-B/internal/ledger"
	"github.com/Aryam2121/CoalMine-B/internal/logging"
	"github.com/Aryam2121/CoalMine-B/internal/monitor"
	"github.com/Aryam2121/CoalMine-B/internal/supervisor"
	"github.com/Aryam2121/CoalMine-B/internal/supervisor/services"
	"github.com/Aryam2121/CoalMine-B/internal/threshold"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("storage", cfg.Storage.Path).
		Msg("Starting mine monitoring server")

	// Persistence. An empty storage path keeps everything in memory,
	// which is only suitable for local development.
	var (
		history monitor.History
		ldg     ledger.Ledger
	)
	if cfg.Storage.Path != "" {
		opts := badger.DefaultOptions(cfg.Storage.Path).WithLogger(nil)
		db, err := badger.Open(opts)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Error().Err(err).Msg("Failed to close storage")
			}
		}()
		history = monitor.NewBadgerHistory(db, cfg.Storage.SnapshotRetention)
		ldg = ledger.NewBadgerLedger(db)
	} else {
		logging.Warn().Msg("No storage path configured, running with in-memory persistence")
		history = monitor.NewMemoryHistory()
		ldg = ledger.NewMemoryLedger()
	}

	verifier, err := auth.NewJWTVerifier(&cfg.Security)
	if err != nil {
		return fmt.Errorf("init verifier: %w", err)
	}

	store := monitor.NewStore(history)
	limits := threshold.Limits{
		MethanePct:        cfg.Thresholds.MethanePct,
		CarbonMonoxidePPM: cfg.Thresholds.CarbonMonoxidePPM,
	}

	hub := gateway.NewHub()
	dispatcher := gateway.NewDispatcher(hub, store, ldg, limits)

	handler := api.NewHandler(store, ldg, hub, dispatcher, verifier, cfg.Gateway, cfg.Security.CORSOrigins)
	router := api.NewRouter(handler, cfg.Security)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddRealtimeService(services.NewGatewayHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}
