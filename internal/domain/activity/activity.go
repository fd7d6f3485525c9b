// Package activity defines the activity log sink that domain services report
// to. Recording is fire-and-forget: a failed write never fails the operation.
package activity

import "context"

// Action names a recorded event.
type Action string

const (
	ActionTaskCreated     Action = "capture_task.created"
	ActionTaskAssigned    Action = "capture_task.assigned"
	ActionTaskScanned     Action = "capture_task.scanned"
	ActionTaskUnscanned   Action = "capture_task.unscanned"
	ActionTaskCompleted   Action = "capture_task.completed"
	ActionAutoOrderPlaced Action = "auto_order.placed"
	ActionAutoOrderDenied Action = "auto_order.denied"
)

// Entry is one activity record.
type Entry struct {
	EntityType string
	EntityID   string
	Action     Action
	Details    map[string]any
}

// Sink receives activity entries.
type Sink interface {
	Record(ctx context.Context, entry Entry)
}

// NopSink discards entries.
type NopSink struct{}

func (NopSink) Record(context.Context, Entry) {}
