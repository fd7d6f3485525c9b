package sqlstore

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

// Dialect names the SQL flavour behind a connection.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
	DialectMySQL    Dialect = "mysql"
)

// Capabilities describes what the connected store can do. It is computed once
// per DB from the driver name and never re-queried.
type Capabilities struct {
	Dialect Dialect

	// LockingReads is true when the dialect understands SELECT ... FOR UPDATE.
	LockingReads bool

	// StatementTimeout is true when SET LOCAL statement_timeout is available.
	StatementTimeout bool
}

// DetectCapabilities maps a database/sql driver name to Capabilities.
// Unknown drivers get no optional features.
func DetectCapabilities(driverName string) Capabilities {
	switch strings.ToLower(driverName) {
	case "pgx", "pgx/v5", "postgres", "postgresql":
		return Capabilities{Dialect: DialectPostgres, LockingReads: true, StatementTimeout: true}
	case "mysql":
		return Capabilities{Dialect: DialectMySQL, LockingReads: true}
	case "sqlite3", "sqlite":
		return Capabilities{Dialect: DialectSQLite}
	default:
		return Capabilities{Dialect: Dialect(driverName)}
	}
}

// PlaceholderFormat returns the squirrel placeholder style for the dialect.
func (c Capabilities) PlaceholderFormat() squirrel.PlaceholderFormat {
	if c.Dialect == DialectPostgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

// RowLocker turns a SELECT into a locking read when asked to and when the store
// supports it. Repositories never branch on the dialect themselves.
type RowLocker interface {
	Lock(q squirrel.SelectBuilder, forUpdate bool) squirrel.SelectBuilder
	Supported() bool
}

// NewRowLocker picks the locking strategy for the given capabilities.
func NewRowLocker(caps Capabilities) RowLocker {
	if caps.LockingReads {
		return forUpdateLocker{}
	}
	return plainReadLocker{}
}

type forUpdateLocker struct{}

func (forUpdateLocker) Lock(q squirrel.SelectBuilder, forUpdate bool) squirrel.SelectBuilder {
	if !forUpdate {
		return q
	}
	return q.Suffix("FOR UPDATE")
}

func (forUpdateLocker) Supported() bool { return true }

// plainReadLocker ignores lock requests.
type plainReadLocker struct{}

func (plainReadLocker) Lock(q squirrel.SelectBuilder, _ bool) squirrel.SelectBuilder { return q }

func (plainReadLocker) Supported() bool { return false }
