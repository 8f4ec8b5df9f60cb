package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/clinicgate/clinicgate/internal/client"
	"github.com/clinicgate/clinicgate/internal/config"
	"github.com/clinicgate/clinicgate/internal/logger"
	"github.com/clinicgate/clinicgate/internal/session"
)

// env holds what every session-aware command needs
type env struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *session.Store
}

// loadConfig loads the configuration. The CLI keeps its session in the OS
// keyring unless SESSION_BACKEND says otherwise.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("SESSION_BACKEND") == "" {
		cfg.Session.Backend = config.BackendKeyring
	}

	return cfg, nil
}

// openEnv loads config, sets up logging to stderr and opens the session store.
// Callers must call close.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger.InitTo(os.Stderr, cfg.Logging.Level, "console")
	log := logger.GetLogger()

	api, err := client.New(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		return nil, err
	}

	store, err := session.Open(ctx, cfg, api, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	return &env{cfg: cfg, log: log, store: store}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn().Err(err).Msg("Failed to close session store")
	}
}
