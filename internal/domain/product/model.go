// Package product holds the product aggregate as seen by the reorder and
// capture workflows.
package product

import (
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

// Product is a stocked item.
type Product struct {
	ID              id.ID       `db:"id" json:"id"`
	SKU             string      `db:"sku" json:"sku"`
	Barcode         *string     `db:"barcode" json:"barcode,omitempty"`
	Name            string      `db:"name" json:"name"`
	Quantity        int         `db:"quantity" json:"quantity"`
	ReorderPoint    int         `db:"reorder_point" json:"reorderPoint"`
	ReorderQuantity int         `db:"reorder_quantity" json:"reorderQuantity"`
	UnitCost        types.Money `db:"unit_cost" json:"unitCost"`

	// LastAutoOrderDate is the raw stored value. Legacy rows may hold '' or
	// '0000-00-00 00:00:00'; the auto-order guard interprets it.
	LastAutoOrderDate *string `db:"last_auto_order_date" json:"lastAutoOrderDate,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewProduct creates a product with a fresh id.
func NewProduct(sku, name string) *Product {
	return &Product{
		ID:        id.New(),
		SKU:       sku,
		Name:      name,
		UnitCost:  types.Zero(),
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks invariants before persisting.
func (p *Product) Validate() error {
	if p.SKU == "" {
		return apperror.NewValidation("sku is required")
	}
	if p.Name == "" {
		return apperror.NewValidation("name is required")
	}
	if p.Quantity < 0 || p.ReorderPoint < 0 || p.ReorderQuantity < 0 {
		return apperror.NewValidation("quantities must not be negative")
	}
	if p.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost must not be negative")
	}
	return nil
}

// NeedsReorder reports whether stock has fallen to the reorder point.
func (p *Product) NeedsReorder() bool {
	return p.ReorderQuantity > 0 && p.Quantity <= p.ReorderPoint
}
