// Package settings_repo persists key/value settings.
package settings_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"stockroom/internal/core/apperror"
	"stockroom/internal/domain/settings"
	"stockroom/internal/infrastructure/storage/sqlstore"
)

const settingsTable = "settings"

var _ settings.Repository = (*Repo)(nil)

type row struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Repo implements settings.Repository.
type Repo struct {
	txm     *sqlstore.TxManager
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// New creates a settings repository.
func New(txm *sqlstore.TxManager) *Repo {
	return &Repo{txm: txm, builder: txm.DB().Builder(), now: time.Now}
}

// LoadAll returns every row as a flat snapshot keyed by the dotted key.
func (r *Repo) LoadAll(ctx context.Context) (settings.Snapshot, error) {
	sql, args, err := r.builder.Select("key", "value").From(settingsTable).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []row
	if err := sqlscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	snap := make(settings.Snapshot, len(rows))
	for _, rw := range rows {
		snap[rw.Key] = rw.Value
	}
	return snap, nil
}

// Set upserts a setting.
func (r *Repo) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperror.NewValidation("setting key is required")
	}

	q := r.builder.Insert(settingsTable).
		Columns("key", "value", "updated_at").
		Values(key, value, r.now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
