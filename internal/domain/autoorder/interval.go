// Package autoorder decides whether an automatic reorder may be placed for a
// product and places it.
package autoorder

import (
	"context"
	"sync"

	"stockroom/pkg/logger"
)

// DefaultMinIntervalMinutes applies when no source provides a usable value.
const DefaultMinIntervalMinutes = 30

// SettingsKey is the key path of the interval in the global settings object.
const SettingsKey = "autoorders.min_interval_minutes"

// Source is one layer of interval configuration. ok=false means "not set here,
// ask the next layer"; missing or malformed sources report ok=false.
type Source interface {
	Name() string
	MinIntervalMinutes(ctx context.Context) (minutes int, ok bool)
}

// IntervalProvider yields the configured minimum interval.
type IntervalProvider interface {
	MinIntervalMinutes(ctx context.Context) int
}

// IntervalResolver walks its sources in order and caches the first present
// value for its own lifetime. A new resolver re-resolves from scratch.
type IntervalResolver struct {
	sources []Source

	once    sync.Once
	minutes int
}

// NewIntervalResolver creates a resolver consulting sources in the given order.
func NewIntervalResolver(sources ...Source) *IntervalResolver {
	return &IntervalResolver{sources: sources}
}

// MinIntervalMinutes returns the configured interval, always >= 1.
func (r *IntervalResolver) MinIntervalMinutes(ctx context.Context) int {
	r.once.Do(func() {
		r.minutes = r.resolve(ctx)
	})
	return r.minutes
}

func (r *IntervalResolver) resolve(ctx context.Context) int {
	value, from := 0, "default"
	for _, src := range r.sources {
		if v, ok := src.MinIntervalMinutes(ctx); ok {
			value, from = v, src.Name()
			break
		}
	}

	if value <= 0 {
		value = DefaultMinIntervalMinutes
	}
	value = max(1, value)

	logger.Debug(ctx, "auto-order interval resolved", "minutes", value, "source", from)
	return value
}

// SourceFunc adapts a function to Source.
type SourceFunc struct {
	Label string
	Fn    func(ctx context.Context) (int, bool)
}

func (s SourceFunc) Name() string { return s.Label }

func (s SourceFunc) MinIntervalMinutes(ctx context.Context) (int, bool) { return s.Fn(ctx) }
