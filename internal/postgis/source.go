// Package postgis reads layer schemas and features from a PostGIS database.
package postgis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	srvErrors "github.com/geowfs/wfs-gateway/pkg/errors"
)

// Source is a pgx pool on the feature database.
type Source struct {
	pool   *pgxpool.Pool
	logger *zap.SugaredLogger
}

// Connect opens a pool on dsn and pings it.
func Connect(ctx context.Context, dsn string, maxConns int32) (*Source, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgis dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, srvErrors.NewSourceUnavailableError(err)
	}

	s := NewSource(pool)
	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func NewSource(pool *pgxpool.Pool) *Source {
	return &Source{
		pool:   pool,
		logger: zap.S().Named("postgis"),
	}
}

func (s *Source) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.pool.Ping(pingCtx); err != nil {
		return srvErrors.NewSourceUnavailableError(err)
	}
	return nil
}

func (s *Source) Close() {
	s.pool.Close()
}

// classify turns connection failures into SourceUnavailableError and
// leaves query errors as they are.
func classify(err error) error {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) {
		return srvErrors.NewSourceUnavailableError(err)
	}
	return err
}
