package autoorder

import (
	"time"

	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

// DefaultRequestedInterval is what callers pass when they have no interval of
// their own; the configured minimum still applies on top of it.
const DefaultRequestedInterval = 30

// Reasons reported by the guard.
const (
	ReasonNoRecentOrder   = "no recent auto-order"
	ReasonProductNotFound = "product not found for auto-order check"
	ReasonCheckFailed     = "interval check failed"
)

// Outcome classifies a check for metrics and callers that need to branch.
type Outcome string

const (
	OutcomeNoPriorOrder        Outcome = "no_prior_order"
	OutcomeUnparsableTimestamp Outcome = "unparsable_timestamp"
	OutcomeIntervalElapsed     Outcome = "interval_elapsed"
	OutcomeTooSoon             Outcome = "too_soon"
	OutcomeProductNotFound     Outcome = "product_not_found"
	OutcomeCheckFailed         Outcome = "check_failed"
)

// CheckResult is the answer to "may an auto-order be placed now?".
// It is built fresh per call and never persisted.
type CheckResult struct {
	Allowed bool
	Reason  string
	Outcome Outcome

	// Populated when a prior order timestamp was usable.
	LastOrderAt      *time.Time
	ElapsedMinutes   int
	IntervalMinutes  int
	RemainingMinutes int
}

// Order is a placed automatic purchase order line.
type Order struct {
	ID                       id.ID       `db:"id" json:"id"`
	ProductID                id.ID       `db:"product_id" json:"productId"`
	Quantity                 int         `db:"quantity" json:"quantity"`
	UnitCost                 types.Money `db:"unit_cost" json:"unitCost"`
	Amount                   types.Money `db:"amount" json:"amount"`
	EffectiveIntervalMinutes int         `db:"effective_interval_minutes" json:"effectiveIntervalMinutes"`
	CreatedAt                time.Time   `db:"created_at" json:"createdAt"`
}
