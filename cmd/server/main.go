package main

import (
	"context"
	"fmt"
	"os"

	"github.com/clinicgate/clinicgate/internal/client"
	"github.com/clinicgate/clinicgate/internal/config"
	"github.com/clinicgate/clinicgate/internal/logger"
	"github.com/clinicgate/clinicgate/internal/router"
	"github.com/clinicgate/clinicgate/internal/server"
	"github.com/clinicgate/clinicgate/internal/session"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	api, err := client.New(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API client")
	}

	store, err := session.Open(context.Background(), cfg, api, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Session.Backend).Msg("Failed to open session store")
	}

	// Create server
	srv := server.New(cfg, log, store, router.Default(), version)

	log.Info().
		Str("version", version).
		Str("api", cfg.API.BaseURL).
		Str("session_backend", cfg.Session.Backend).
		Msg("Starting clinicgate portal...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
