package capture

import (
	"context"
	"time"

	"stockroom/internal/core/apperror"
	appctx "stockroom/internal/core/context"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/activity"
	"stockroom/pkg/logger"
)

// Service drives capture tasks through their lifecycle. Mutations return an
// error on failure; storage causes are logged here and returned wrapped.
type Service struct {
	repo     Repository
	products ProductLookup
	policy   ScanPolicy
	activity activity.Sink
	observer ScanObserver
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPolicy sets the scan policy. The default is ReopenOnScan.
func WithPolicy(p ScanPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithProducts enables ScanBarcode.
func WithProducts(products ProductLookup) Option {
	return func(s *Service) { s.products = products }
}

// WithActivity sets the activity sink.
func WithActivity(sink activity.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.activity = sink
		}
	}
}

// WithObserver reports applied scans to o.
func WithObserver(o ScanObserver) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a capture service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		policy:   ReopenOnScan,
		activity: activity.NopSink{},
		observer: nopScanObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the active scan policy.
func (s *Service) Policy() ScanPolicy { return s.policy }

// CreateTask opens a pending count task.
func (s *Service) CreateTask(ctx context.Context, productID id.ID, locationID string, expectedQuantity int, createdBy string) (id.ID, error) {
	if createdBy == "" {
		createdBy = appctx.GetUserID(ctx)
	}

	task := NewTask(productID, locationID, expectedQuantity, createdBy, s.now())
	if err := task.Validate(); err != nil {
		return id.ID{}, err
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return id.ID{}, s.fail(ctx, "create capture task", task.ID, err)
	}

	s.record(ctx, task.ID, activity.ActionTaskCreated, map[string]any{
		"product_id":        productID.String(),
		"location_id":       locationID,
		"expected_quantity": expectedQuantity,
	})
	return task.ID, nil
}

// AssignToWorker sets the assignee. Status is left unchanged.
func (s *Service) AssignToWorker(ctx context.Context, taskID id.ID, userID string) error {
	if userID == "" {
		return apperror.NewValidation("user id is required")
	}
	if err := s.repo.Assign(ctx, taskID, userID); err != nil {
		return s.fail(ctx, "assign capture task", taskID, err)
	}
	s.record(ctx, taskID, activity.ActionTaskAssigned, map[string]any{"assigned_to": userID})
	return nil
}

// IncrementScannedQuantity adds amount to the counted quantity and moves the
// task to in_progress.
func (s *Service) IncrementScannedQuantity(ctx context.Context, taskID id.ID, amount int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	err := s.repo.Increment(ctx, taskID, amount, s.policy.AllowsCompleted())
	if err != nil {
		return s.fail(ctx, "increment scanned quantity", taskID, s.classifyScanMiss(ctx, taskID, err))
	}
	s.observer.ObserveScan(DirectionIncrement, amount)
	s.record(ctx, taskID, activity.ActionTaskScanned, map[string]any{"amount": amount})
	return nil
}

// DecrementScannedQuantity subtracts amount, clamping at zero. The task is
// pending when nothing remains counted and in_progress otherwise.
func (s *Service) DecrementScannedQuantity(ctx context.Context, taskID id.ID, amount int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	err := s.repo.Decrement(ctx, taskID, amount, s.policy.AllowsCompleted())
	if err != nil {
		return s.fail(ctx, "decrement scanned quantity", taskID, s.classifyScanMiss(ctx, taskID, err))
	}
	s.observer.ObserveScan(DirectionDecrement, amount)
	s.record(ctx, taskID, activity.ActionTaskUnscanned, map[string]any{"amount": amount})
	return nil
}

// MarkCompleted closes the task. Scanned and expected quantities are not compared.
func (s *Service) MarkCompleted(ctx context.Context, taskID id.ID) error {
	if err := s.repo.MarkCompleted(ctx, taskID, s.now().UTC()); err != nil {
		return s.fail(ctx, "complete capture task", taskID, err)
	}
	s.record(ctx, taskID, activity.ActionTaskCompleted, nil)
	return nil
}

// GetPendingTasks returns the open work queue, oldest first.
func (s *Service) GetPendingTasks(ctx context.Context) ([]Task, error) {
	tasks, err := s.repo.ListOpen(ctx)
	if err != nil {
		logger.Error(ctx, "list pending capture tasks failed", "error", err)
		return nil, apperror.NewDatabase("list pending capture tasks", err)
	}
	return tasks, nil
}

// GetTaskByID loads a task, under a row lock when forUpdate is set and the
// store supports it.
func (s *Service) GetTaskByID(ctx context.Context, taskID id.ID, forUpdate bool) (*Task, error) {
	task, err := s.repo.GetByID(ctx, taskID, forUpdate)
	if err != nil {
		return nil, s.fail(ctx, "get capture task", taskID, err)
	}
	return task, nil
}

// ScanBarcode counts one unit of the scanned product against the task.
func (s *Service) ScanBarcode(ctx context.Context, taskID id.ID, barcode string) (*Task, error) {
	if s.products == nil {
		return nil, apperror.NewInternal(nil).WithDetail("reason", "barcode lookup not configured")
	}
	if barcode == "" {
		return nil, apperror.NewValidation("barcode is required")
	}

	task, err := s.GetTaskByID(ctx, taskID, false)
	if err != nil {
		return nil, err
	}

	p, err := s.products.GetByBarcode(ctx, barcode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, err
		}
		return nil, s.fail(ctx, "resolve barcode", taskID, err)
	}
	if p.ID != task.ProductID {
		return nil, apperror.NewBusinessRule(apperror.CodeBarcodeMismatch, "barcode does not belong to the task's product").
			WithDetail("task_id", taskID.String()).
			WithDetail("barcode", barcode)
	}

	if err := s.IncrementScannedQuantity(ctx, taskID, 1); err != nil {
		return nil, err
	}
	return s.GetTaskByID(ctx, taskID, false)
}

// classifyScanMiss turns a no-row update into TaskCompleted when the task
// exists but the policy excluded it.
func (s *Service) classifyScanMiss(ctx context.Context, taskID id.ID, err error) error {
	if !apperror.IsNotFound(err) || s.policy.AllowsCompleted() {
		return err
	}
	task, getErr := s.repo.GetByID(ctx, taskID, false)
	if getErr != nil || task.Status != StatusCompleted {
		return err
	}
	return apperror.NewBusinessRule(apperror.CodeTaskCompleted, "capture task is already completed").
		WithDetail("task_id", taskID.String())
}

// fail logs storage causes and classifies them. Domain errors pass through.
func (s *Service) fail(ctx context.Context, op string, taskID id.ID, err error) error {
	if _, ok := apperror.AsAppError(err); ok {
		logger.Warn(ctx, op+" rejected", "task_id", taskID, "error", err)
		return err
	}
	logger.Error(ctx, op+" failed", "task_id", taskID, "error", err)
	return apperror.NewDatabase(op, err).WithDetail("task_id", taskID.String())
}

func (s *Service) record(ctx context.Context, taskID id.ID, action activity.Action, details map[string]any) {
	s.activity.Record(ctx, activity.Entry{
		EntityType: "capture_task",
		EntityID:   taskID.String(),
		Action:     action,
		Details:    details,
	})
}

func validateAmount(amount int) error {
	if amount < 1 {
		return apperror.NewValidation("scan amount must be at least 1").WithDetail("amount", amount)
	}
	return nil
}
