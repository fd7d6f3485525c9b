// Package sqlstoretest opens throwaway SQLite stores for repository and service tests.
package sqlstoretest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"stockroom/internal/infrastructure/storage/sqlstore"
)

// NewSQLite opens a migrated SQLite database in t.TempDir().
// A single connection keeps concurrent test writers from hitting SQLITE_BUSY.
func NewSQLite(t testing.TB) *sqlstore.DB {
	t.Helper()

	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "stockroom.db") + "?_foreign_keys=on&_busy_timeout=5000"

	db, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:       "sqlite3",
		DSN:          dsn,
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlstore.Migrate(ctx, db))
	return db
}
