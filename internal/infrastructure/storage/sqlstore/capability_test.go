package sqlstore

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCapabilities(t *testing.T) {
	tests := []struct {
		driver  string
		dialect Dialect
		locking bool
	}{
		{"pgx", DialectPostgres, true},
		{"postgres", DialectPostgres, true},
		{"mysql", DialectMySQL, true},
		{"sqlite3", DialectSQLite, false},
		{"oracle", Dialect("oracle"), false},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			caps := DetectCapabilities(tt.driver)
			assert.Equal(t, tt.dialect, caps.Dialect)
			assert.Equal(t, tt.locking, caps.LockingReads)
			assert.Equal(t, tt.locking, NewRowLocker(caps).Supported())
		})
	}
}

func TestRowLocker_Postgres(t *testing.T) {
	caps := DetectCapabilities("pgx")
	b := squirrel.StatementBuilder.PlaceholderFormat(caps.PlaceholderFormat())
	locker := NewRowLocker(caps)

	q := b.Select("last_auto_order_date").From("products").Where("id = ?", "p-1")

	sql, args, err := locker.Lock(q, true).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT last_auto_order_date FROM products WHERE id = $1 FOR UPDATE", sql)
	assert.Equal(t, []any{"p-1"}, args)

	sql, _, err = locker.Lock(q, false).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT last_auto_order_date FROM products WHERE id = $1", sql)
}

func TestRowLocker_SQLiteSkipsLock(t *testing.T) {
	caps := DetectCapabilities("sqlite3")
	locker := NewRowLocker(caps)

	q := squirrel.StatementBuilder.PlaceholderFormat(caps.PlaceholderFormat()).
		Select("id").From("capture_tasks").Where("id = ?", "t-1")

	sql, _, err := locker.Lock(q, true).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM capture_tasks WHERE id = ?", sql)
}
