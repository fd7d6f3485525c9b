package product

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/types"
)

func TestProduct_Validate(t *testing.T) {
	p := NewProduct("SKU-1", "Pallet wrap")
	assert.NoError(t, p.Validate())

	p.ReorderPoint = -1
	assert.True(t, apperror.IsValidation(p.Validate()))

	p = NewProduct("", "x")
	assert.True(t, apperror.IsValidation(p.Validate()))

	p = NewProduct("SKU-2", "Tape")
	p.UnitCost = types.MustMoney("-0.01")
	assert.True(t, apperror.IsValidation(p.Validate()))
}

func TestProduct_NeedsReorder(t *testing.T) {
	p := NewProduct("SKU-1", "Pallet wrap")
	p.Quantity, p.ReorderPoint, p.ReorderQuantity = 5, 5, 20
	assert.True(t, p.NeedsReorder())

	p.Quantity = 6
	assert.False(t, p.NeedsReorder())

	p.Quantity, p.ReorderQuantity = 0, 0
	assert.False(t, p.NeedsReorder())
}
