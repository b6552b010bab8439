// Package postgresframe is the illustrative external-collaborator adapter:
// a frame.Reader backed by Postgres via bun/pgdriver instead of the
// in-memory model.Store used by the core's tests. It bootstraps its own
// tables, loads a snapshot into a Reader, and offers one batch write
// (Persist) for seeding a snapshot from a model.Store; incremental
// mutation, undo/redo, and change notification belong to whatever owns
// the design graph, not to this package.
package postgresframe

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Config holds the connection parameters for the backing Postgres
// instance.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns sane pool defaults for a single dsn.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:             dsn,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

// NewDB opens a pooled connection and registers the object/edge row
// models with bun's dialect. It pings before returning so a misconfigured
// dsn fails fast at startup rather than on the first query.
func NewDB(ctx context.Context, cfg Config) (*bun.DB, error) {
	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN))
	sqldb := sql.OpenDB(connector)
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel((*objectRow)(nil), (*edgeRow)(nil))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgresframe: ping: %w", err)
	}

	log.Info().Str("max_open_conns", fmt.Sprint(cfg.MaxOpenConns)).Msg("postgresframe: connected")
	return db, nil
}

// Bootstrap creates the object/edge tables if they do not already exist.
// It never drops or alters an existing schema.
func Bootstrap(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*objectRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("postgresframe: create objects table: %w", err)
	}
	if _, err := db.NewCreateTable().Model((*edgeRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("postgresframe: create edges table: %w", err)
	}
	log.Debug().Msg("postgresframe: schema bootstrapped")
	return nil
}

// Close releases the pool.
func Close(db *bun.DB) error {
	return db.Close()
}

// Stats reports the underlying pool's sql.DBStats, for health checks and
// metrics scraping.
func Stats(db *bun.DB) sql.DBStats {
	return db.Stats()
}
