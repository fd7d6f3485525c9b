// Package settings provides the application's key/value settings and the
// in-memory snapshot other components read their overrides from.
package settings

import (
	"context"
	"strings"
)

// Snapshot is a point-in-time copy of settings. Values may be nested maps
// (from structured config) or flat dotted keys (from the settings table).
type Snapshot map[string]any

// Lookup resolves a dotted key path such as "autoorders.min_interval_minutes".
// A flat entry with the full key wins over a nested path.
func (s Snapshot) Lookup(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	if v, ok := s[key]; ok {
		return v, true
	}

	parts := strings.Split(key, ".")
	var cur any = map[string]any(s)
	for _, part := range parts {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Snapshot:
		return m, true
	default:
		return nil, false
	}
}

// Repository persists settings rows.
type Repository interface {
	LoadAll(ctx context.Context) (Snapshot, error)
	Set(ctx context.Context, key, value string) error
}
