package capture

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/product"
)

// memRepo mirrors the SQL repository's single-statement semantics.
type memRepo struct {
	mu    sync.Mutex
	tasks map[id.ID]*Task
	err   error
}

func newMemRepo() *memRepo {
	return &memRepo{tasks: make(map[id.ID]*Task)}
}

func (r *memRepo) Create(_ context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *memRepo) update(taskID id.ID, includeCompleted bool, fn func(t *Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	t, ok := r.tasks[taskID]
	if !ok || (!includeCompleted && t.Status == StatusCompleted) {
		return apperror.NewNotFound("capture_task", taskID.String())
	}
	fn(t)
	return nil
}

func (r *memRepo) Assign(_ context.Context, taskID id.ID, userID string) error {
	return r.update(taskID, true, func(t *Task) { t.AssignedTo = &userID })
}

func (r *memRepo) Increment(_ context.Context, taskID id.ID, amount int, includeCompleted bool) error {
	return r.update(taskID, includeCompleted, func(t *Task) {
		t.ScannedQuantity += amount
		t.Status = StatusInProgress
	})
}

func (r *memRepo) Decrement(_ context.Context, taskID id.ID, amount int, includeCompleted bool) error {
	return r.update(taskID, includeCompleted, func(t *Task) {
		t.ScannedQuantity = max(0, t.ScannedQuantity-amount)
		if t.ScannedQuantity > 0 {
			t.Status = StatusInProgress
		} else {
			t.Status = StatusPending
		}
	})
}

func (r *memRepo) MarkCompleted(_ context.Context, taskID id.ID, at time.Time) error {
	return r.update(taskID, true, func(t *Task) {
		t.Status = StatusCompleted
		t.CompletedAt = &at
	})
}

func (r *memRepo) ListOpen(_ context.Context) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []Task
	for _, t := range r.tasks {
		if t.Status.IsOpen() {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memRepo) GetByID(_ context.Context, taskID id.ID, _ bool) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.tasks[taskID]
	if !ok {
		return nil, apperror.NewNotFound("capture_task", taskID.String())
	}
	cp := *t
	return &cp, nil
}

type memProducts map[string]*product.Product

func (m memProducts) GetByBarcode(_ context.Context, barcode string) (*product.Product, error) {
	if p, ok := m[barcode]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("product", barcode)
}

var errStorage = errors.New("disk I/O error")
