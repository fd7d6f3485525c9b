package product

import (
	"context"
	"time"

	"stockroom/internal/core/id"
)

// Repository defines persistence operations for products.
type Repository interface {
	Create(ctx context.Context, p *Product) error

	// GetByID returns apperror NotFound when the product does not exist.
	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	GetByBarcode(ctx context.Context, barcode string) (*Product, error)

	// LastAutoOrderDate returns the raw last_auto_order_date ("" for NULL).
	// With forUpdate the row is read under a lock when the store supports it.
	LastAutoOrderDate(ctx context.Context, productID id.ID, forUpdate bool) (string, error)

	// TouchLastAutoOrder records the time an auto-order was placed.
	TouchLastAutoOrder(ctx context.Context, productID id.ID, at time.Time) error

	// ListReorderCandidates returns products at or below their reorder point.
	ListReorderCandidates(ctx context.Context, limit int) ([]Product, error)
}
