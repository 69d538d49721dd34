// Package ephemeral wraps the Redis-backed state that does not need
// durable, transactional storage: presence heartbeats, file reservations,
// the project event bus, and the wait/wake signaling used by chat and the
// inbox. Everything here is rebuildable from zero after a flush; nothing
// here is a system of record (spec.md §5).
package ephemeral

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Store struct {
	rdb *redis.Client
}

func Open(url string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Store{rdb: redis.NewClient(opts)}, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) Healthy(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func projectKey(parts ...string) string {
	key := "beadhub"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}
