// Package store is the durable store (spec.md §4.C1): relational storage of
// projects, repos, workspaces, claims, issues, subscriptions, outbox, audit,
// and policies, in three logical namespaces (auth, domain, issues) inside
// one Postgres database behind one connection pool.
//
// The shape (Open/Close/migrate as methods on one Store, migrations as an
// ordered slice of forward-only statements run at startup) follows the
// teacher's internal/store/store.go. The driver is jackc/pgx/v5 rather than
// the teacher's modernc.org/sqlite because spec.md requires GIN trigram
// indexes and SELECT ... FOR UPDATE SKIP LOCKED, both Postgres-only.
package store

import (
	"context"
	"fmt"
	"runtime"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	Pool *pgxpool.Pool
}

func Open(ctx context.Context, databaseURL string) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	// Sized ~2x CPU cores per spec.md §5, with a floor of 4. pgxpool's own
	// default is only the larger of 4 and runtime.NumCPU(), so raise it here.
	if n := int32(2 * runtime.NumCPU()); poolCfg.MaxConns < n {
		poolCfg.MaxConns = n
	}
	if poolCfg.MaxConns < 4 {
		poolCfg.MaxConns = 4
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s == nil || s.Pool == nil {
		return
	}
	s.Pool.Close()
}

func (s *Store) Healthy(ctx context.Context) error {
	var one int
	return s.Pool.QueryRow(ctx, "SELECT 1").Scan(&one)
}

// Migrate applies the forward-only migrations in order. It is safe to run
// on every boot: every statement is idempotent (IF NOT EXISTS / ON CONFLICT).
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
