package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinicgate/clinicgate/internal/config"
)

// NewPersister builds the persister selected by SESSION_BACKEND. The
// memory backend has none.
func NewPersister(cfg *config.Config) (Persister, error) {
	switch cfg.Session.Backend {
	case config.BackendMemory:
		return nil, nil
	case config.BackendKeyring:
		return NewKeyringPersister(cfg.Session.Key, cfg.API.BaseURL), nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address})
		return NewRedisPersister(rdb, cfg.Session.Key), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

// Open builds a store for the configured backend and restores any
// persisted session
func Open(ctx context.Context, cfg *config.Config, api API, log zerolog.Logger) (*Store, error) {
	persister, err := NewPersister(cfg)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithLogger(log)}
	if persister != nil {
		opts = append(opts, WithPersister(persister))
	}

	store := New(api, opts...)
	if err := store.Open(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
