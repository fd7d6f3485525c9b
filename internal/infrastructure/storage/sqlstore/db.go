// Package sqlstore provides the relational store shared by every repository:
// a sqlx handle, dialect capabilities, the transaction manager and migrations.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver name = "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // database/sql driver name = "sqlite3"

	"stockroom/pkg/logger"
)

// Config holds connection configuration.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig(driver, dsn string) Config {
	return Config{
		Driver:          driver,
		DSN:             dsn,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// DB wraps sqlx.DB together with the capabilities of the connected store.
type DB struct {
	*sqlx.DB
	caps    Capabilities
	locker  RowLocker
	builder squirrel.StatementBuilderType
}

// Open connects, applies pool settings and verifies the connection.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	sqlxDB, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlxDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlxDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlxDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlxDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlxDB.PingContext(ctx); err != nil {
		_ = sqlxDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := New(sqlxDB)
	logger.Info(ctx, "database connection established",
		"driver", cfg.Driver,
		"dialect", db.caps.Dialect,
		"locking_reads", db.caps.LockingReads,
	)
	return db, nil
}

// New wraps an existing sqlx handle. Capabilities come from its driver name.
func New(sqlxDB *sqlx.DB) *DB {
	caps := DetectCapabilities(sqlxDB.DriverName())
	return &DB{
		DB:      sqlxDB,
		caps:    caps,
		locker:  NewRowLocker(caps),
		builder: squirrel.StatementBuilder.PlaceholderFormat(caps.PlaceholderFormat()),
	}
}

// Capabilities returns what the connected store supports.
func (d *DB) Capabilities() Capabilities { return d.caps }

// Locker returns the row-locking strategy chosen for this connection.
func (d *DB) Locker() RowLocker { return d.locker }

// Builder returns a squirrel builder with the dialect's placeholder format.
func (d *DB) Builder() squirrel.StatementBuilderType { return d.builder }

// LogStats logs connection pool statistics.
func (d *DB) LogStats(ctx context.Context) {
	s := d.DB.Stats()
	logger.Info(ctx, "database pool stats",
		"open", s.OpenConnections,
		"in_use", s.InUse,
		"idle", s.Idle,
		"wait_count", s.WaitCount,
	)
}
