package autoorder

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/pkg/logger"
)

var tracer = otel.Tracer("stockroom/autoorder")

// timestampLayouts are tried in order. Layouts without an offset are read in
// the guard's location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Guard answers whether a new automatic order may be placed for a product.
// It does not open transactions: callers that need the check and the order
// insert to be atomic run both inside one tx.Manager transaction and pass
// forUpdate=true.
type Guard struct {
	interval IntervalProvider
	products LastOrderReader
	observer Observer
	now      func() time.Time
	location *time.Location
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) { g.now = now }
}

// WithLocation sets the zone used for stored timestamps that carry no offset.
func WithLocation(loc *time.Location) GuardOption {
	return func(g *Guard) {
		if loc != nil {
			g.location = loc
		}
	}
}

// WithObserver reports outcomes to o.
func WithObserver(o Observer) GuardOption {
	return func(g *Guard) {
		if o != nil {
			g.observer = o
		}
	}
}

// NewGuard creates a guard.
func NewGuard(interval IntervalProvider, products LastOrderReader, opts ...GuardOption) *Guard {
	g := &Guard{
		interval: interval,
		products: products,
		observer: nopObserver{},
		now:      time.Now,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ConfiguredMinIntervalMinutes exposes the resolved global floor.
func (g *Guard) ConfiguredMinIntervalMinutes(ctx context.Context) int {
	return g.interval.MinIntervalMinutes(ctx)
}

// EffectiveInterval is the stricter of the configured floor and the request.
// Requests below 1 count as 1.
func (g *Guard) EffectiveInterval(ctx context.Context, requestedMinutes int) int {
	return max(g.interval.MinIntervalMinutes(ctx), max(1, requestedMinutes))
}

// CanPlaceAutoOrder checks the time since the product's last auto-order
// against the effective interval. Storage failures deny.
func (g *Guard) CanPlaceAutoOrder(ctx context.Context, productID id.ID, requestedMinutes int, forUpdate bool) CheckResult {
	ctx, span := tracer.Start(ctx, "autoorder.check")
	defer span.End()

	res := g.check(ctx, productID, requestedMinutes, forUpdate)

	span.SetAttributes(
		attribute.String("product.id", productID.String()),
		attribute.Bool("autoorder.allowed", res.Allowed),
		attribute.String("autoorder.outcome", string(res.Outcome)),
	)
	g.observer.ObserveCheck(res.Outcome)
	return res
}

func (g *Guard) check(ctx context.Context, productID id.ID, requestedMinutes int, forUpdate bool) CheckResult {
	interval := g.EffectiveInterval(ctx, requestedMinutes)

	raw, err := g.products.LastAutoOrderDate(ctx, productID, forUpdate)
	if err != nil {
		if apperror.IsNotFound(err) {
			return CheckResult{Reason: ReasonProductNotFound, Outcome: OutcomeProductNotFound, IntervalMinutes: interval}
		}
		logger.Error(ctx, "auto-order interval check failed", "product_id", productID, "error", err)
		return CheckResult{Reason: ReasonCheckFailed, Outcome: OutcomeCheckFailed, IntervalMinutes: interval}
	}

	if isEmptyTimestamp(raw) {
		return allow(OutcomeNoPriorOrder, interval)
	}

	last, err := g.parseTimestamp(raw)
	if err != nil {
		// Lenient on purpose: a corrupt timestamp must not block reordering forever.
		logger.Warn(ctx, "unparsable last auto-order date treated as no prior order",
			"product_id", productID, "value", raw, "error", err)
		return allow(OutcomeUnparsableTimestamp, interval)
	}

	now := g.now().In(last.Location())
	elapsed := max(0, int(math.Floor(now.Sub(last).Seconds()/60)))

	res := CheckResult{
		LastOrderAt:     &last,
		ElapsedMinutes:  elapsed,
		IntervalMinutes: interval,
	}

	if elapsed < interval {
		res.RemainingMinutes = max(0, interval-elapsed)
		res.Outcome = OutcomeTooSoon
		res.Reason = fmt.Sprintf(
			"auto-order already placed at %s (%d min ago); minimum interval is %d min, %d min remaining",
			last.Format("2006-01-02 15:04:05"), elapsed, interval, res.RemainingMinutes,
		)
		return res
	}

	res.Allowed = true
	res.Reason = ReasonNoRecentOrder
	res.Outcome = OutcomeIntervalElapsed
	return res
}

func allow(outcome Outcome, interval int) CheckResult {
	return CheckResult{Allowed: true, Reason: ReasonNoRecentOrder, Outcome: outcome, IntervalMinutes: interval}
}

func (g *Guard) parseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, g.location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}

// isEmptyTimestamp covers NULL (""), blanks and all-zero legacy values such as
// '0000-00-00 00:00:00'.
func isEmptyTimestamp(raw string) bool {
	return strings.IndexFunc(raw, func(r rune) bool {
		return !strings.ContainsRune("0-:. T", r)
	}) == -1
}
