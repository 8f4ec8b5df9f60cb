package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPersister stores the snapshot under a single redis key. It is read
// once, when the store opens.
type RedisPersister struct {
	rdb *redis.Client
	key string
}

// NewRedisPersister wraps an existing client. Close closes it.
func NewRedisPersister(rdb *redis.Client, key string) *RedisPersister {
	return &RedisPersister{rdb: rdb, key: key}
}

// Load implements Persister
func (p *RedisPersister) Load(ctx context.Context) (*Snapshot, error) {
	data, err := p.rdb.Get(ctx, p.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decodeSnapshot(data)
}

// Save implements Persister
func (p *RedisPersister) Save(ctx context.Context, snap Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := p.rdb.Set(ctx, p.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear implements Persister
func (p *RedisPersister) Clear(ctx context.Context) error {
	if err := p.rdb.Del(ctx, p.key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the underlying redis client
func (p *RedisPersister) Close() error {
	return p.rdb.Close()
}
