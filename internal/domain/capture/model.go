// Package capture implements barcode-driven physical count tasks.
//
// A task moves pending -> in_progress -> completed. Scans change the counted
// quantity with single atomic updates; the quantity never drops below zero.
package capture

import (
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
)

// Status is the lifecycle state of a capture task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// IsOpen reports whether the task still belongs in the work queue.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusInProgress
}

// Task is one physical count of a product at a location.
type Task struct {
	ID               id.ID      `db:"id" json:"id"`
	ProductID        id.ID      `db:"product_id" json:"productId"`
	LocationID       string     `db:"location_id" json:"locationId"`
	ExpectedQuantity int        `db:"expected_quantity" json:"expectedQuantity"`
	ScannedQuantity  int        `db:"scanned_quantity" json:"scannedQuantity"`
	Status           Status     `db:"status" json:"status"`
	AssignedTo       *string    `db:"assigned_to" json:"assignedTo,omitempty"`
	CreatedBy        string     `db:"created_by" json:"createdBy"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	CompletedAt      *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}

// NewTask creates a pending task with nothing scanned.
func NewTask(productID id.ID, locationID string, expectedQuantity int, createdBy string, now time.Time) *Task {
	return &Task{
		ID:               id.New(),
		ProductID:        productID,
		LocationID:       locationID,
		ExpectedQuantity: expectedQuantity,
		Status:           StatusPending,
		CreatedBy:        createdBy,
		CreatedAt:        now.UTC(),
	}
}

// Validate checks a task before it is stored.
func (t *Task) Validate() error {
	if id.IsNil(t.ProductID) {
		return apperror.NewValidation("product id is required")
	}
	if t.LocationID == "" {
		return apperror.NewValidation("location id is required")
	}
	if t.ExpectedQuantity < 0 {
		return apperror.NewValidation("expected quantity must not be negative")
	}
	if t.ScannedQuantity < 0 {
		return apperror.NewValidation("scanned quantity must not be negative")
	}
	return nil
}

// Discrepancy is scanned minus expected.
func (t *Task) Discrepancy() int {
	return t.ScannedQuantity - t.ExpectedQuantity
}
