package autoorder

import (
	"context"
	"time"

	"stockroom/internal/core/id"
	"stockroom/internal/domain/product"
)

// LastOrderReader is the slice of the product repository the guard needs.
type LastOrderReader interface {
	LastAutoOrderDate(ctx context.Context, productID id.ID, forUpdate bool) (string, error)
}

// ProductStore is the slice of the product repository placement needs.
type ProductStore interface {
	LastOrderReader
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
	TouchLastAutoOrder(ctx context.Context, productID id.ID, at time.Time) error
	ListReorderCandidates(ctx context.Context, limit int) ([]product.Product, error)
}

// OrderRepository persists placed auto-orders.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	ListByProduct(ctx context.Context, productID id.ID, limit int) ([]Order, error)
}

// Observer receives guard and placement outcomes. Implemented by the metrics package.
type Observer interface {
	ObserveCheck(outcome Outcome)
	ObservePlaced()
}

type nopObserver struct{}

func (nopObserver) ObserveCheck(Outcome) {}
func (nopObserver) ObservePlaced()       {}
