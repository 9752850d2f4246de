/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the pledge engine backend: the JSON-document
  store, the HTTP boundary for the dashboard and display windows, the
  push hub, and the announcement expiry sweeper.

STARTUP SEQUENCE:
  1. Load configuration (env / .env, flags override)
  2. Configure logging
  3. Open the document store (logging which load path was taken)
  4. Wire handler, push hub, sweeper
  5. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port  HTTP server port (overrides PORT)
  -data  Data directory holding db.json (overrides DATA_DIR)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop the sweeper, close the push hub (display
  streams end), drain in-flight requests (10s timeout), exit.
*/
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pledgewall/pledge-engine/api"
	"github.com/pledgewall/pledge-engine/config"
	"github.com/pledgewall/pledge-engine/logging"
	"github.com/pledgewall/pledge-engine/store/jsonfile"
)

func main() {
	cfg := config.Load()

	port := flag.String("port", "", "HTTP server port (overrides PORT)")
	dataDir := flag.String("data", "", "data directory (overrides DATA_DIR)")
	flag.Parse()
	if *port != "" {
		cfg.Port = *port
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	logging.Setup()

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := jsonfile.New(cfg.DataDir, jsonfile.WithLocale(cfg.LocaleTag()))
	if err != nil {
		slog.Error("failed to open document store", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	slog.Info("document store ready",
		"path", store.Path(),
		"outcome", store.Outcome().String(),
		"year", store.CurrentYear().Label,
	)
	if store.Outcome() == jsonfile.OutcomeRecovered {
		slog.Warn("document was unreadable and has been replaced with a fresh one")
	}

	hub := api.NewHub(func() []api.Event {
		return []api.Event{{
			Type: api.EventActiveAnnouncements,
			Data: store.ActiveAnnouncements(),
		}}
	})

	handler := api.NewHandler(store, hub)
	handler.Limits = api.Limits{
		RecentCommitments: cfg.RecentCommitmentsLimit,
		Persons:           cfg.PersonsLimit,
		Search:            cfg.SearchLimit,
	}
	handler.ArchiveDir = cfg.ArchiveDir

	sweeper := api.NewExpirySweeper(store, hub)
	sweeper.CheckInterval = cfg.SweepInterval
	sweeper.Start()

	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", "http://localhost:"+cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	sweeper.Stop()
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
