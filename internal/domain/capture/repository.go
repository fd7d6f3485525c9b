package capture

import (
	"context"
	"time"

	"stockroom/internal/core/id"
	"stockroom/internal/domain/product"
)

// Repository persists capture tasks. Every mutation is a single statement and
// returns apperror NotFound when no row matched.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	Assign(ctx context.Context, taskID id.ID, userID string) error

	// Increment adds amount and sets status in_progress. With
	// includeCompleted=false completed tasks are not matched.
	Increment(ctx context.Context, taskID id.ID, amount int, includeCompleted bool) error

	// Decrement subtracts amount clamped at zero and derives the status from
	// the result in the same statement.
	Decrement(ctx context.Context, taskID id.ID, amount int, includeCompleted bool) error

	MarkCompleted(ctx context.Context, taskID id.ID, at time.Time) error

	// ListOpen returns pending and in_progress tasks, oldest first.
	ListOpen(ctx context.Context) ([]Task, error)

	GetByID(ctx context.Context, taskID id.ID, forUpdate bool) (*Task, error)
}

// ProductLookup resolves scanned barcodes.
type ProductLookup interface {
	GetByBarcode(ctx context.Context, barcode string) (*product.Product, error)
}

// Direction labels a scan for observers.
type Direction string

const (
	DirectionIncrement Direction = "increment"
	DirectionDecrement Direction = "decrement"
)

// ScanObserver is told about applied scans.
type ScanObserver interface {
	ObserveScan(direction Direction, amount int)
}

type nopScanObserver struct{}

func (nopScanObserver) ObserveScan(Direction, int) {}
