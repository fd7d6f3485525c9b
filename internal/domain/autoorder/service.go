package autoorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/tx"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/activity"
	"stockroom/pkg/logger"
)

// PlaceRequest asks for one automatic order.
type PlaceRequest struct {
	ProductID id.ID

	// Quantity defaults to the product's reorder quantity when zero.
	Quantity int

	// MinIntervalMinutes is the caller's requested spacing; the configured
	// floor still applies. Zero means DefaultRequestedInterval.
	MinIntervalMinutes int
}

// Service places automatic orders behind the duplicate guard.
type Service struct {
	guard     *Guard
	products  ProductStore
	orders    OrderRepository
	txManager tx.Manager
	activity  activity.Sink
	observer  Observer
	now       func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithActivity sets the activity sink.
func WithActivity(sink activity.Sink) ServiceOption {
	return func(s *Service) {
		if sink != nil {
			s.activity = sink
		}
	}
}

// WithServiceObserver reports placements to o.
func WithServiceObserver(o Observer) ServiceOption {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithServiceClock overrides time.Now for order timestamps.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a placement service.
func NewService(guard *Guard, products ProductStore, orders OrderRepository, txManager tx.Manager, opts ...ServiceOption) *Service {
	s := &Service{
		guard:     guard,
		products:  products,
		orders:    orders,
		txManager: txManager,
		activity:  activity.NopSink{},
		observer:  nopObserver{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Place checks the guard under a row lock and, when allowed, records the order
// and stamps the product, all in one transaction.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	if id.IsNil(req.ProductID) {
		return nil, apperror.NewValidation("product id is required")
	}
	if req.Quantity < 0 {
		return nil, apperror.NewValidation("quantity must not be negative")
	}
	requested := req.MinIntervalMinutes
	if requested == 0 {
		requested = DefaultRequestedInterval
	}

	var order *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		check := s.guard.CanPlaceAutoOrder(ctx, req.ProductID, requested, true)
		if !check.Allowed {
			return denialError(req.ProductID, check)
		}

		p, err := s.products.GetByID(ctx, req.ProductID)
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}

		qty := req.Quantity
		if qty == 0 {
			qty = p.ReorderQuantity
		}
		if qty <= 0 {
			return apperror.NewValidation("product has no reorder quantity").WithDetail("product_id", req.ProductID)
		}

		now := s.now().UTC()
		order = &Order{
			ID:                       id.New(),
			ProductID:                p.ID,
			Quantity:                 qty,
			UnitCost:                 p.UnitCost,
			Amount:                   types.LineAmount(p.UnitCost, qty),
			EffectiveIntervalMinutes: check.IntervalMinutes,
			CreatedAt:                now,
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create auto-order: %w", err)
		}
		if err := s.products.TouchLastAutoOrder(ctx, p.ID, now); err != nil {
			return fmt.Errorf("touch last auto-order: %w", err)
		}
		return nil
	})
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeDuplicateAutoOrder {
			s.activity.Record(ctx, activity.Entry{
				EntityType: "product",
				EntityID:   req.ProductID.String(),
				Action:     activity.ActionAutoOrderDenied,
				Details:    map[string]any{"reason": appErr.Message},
			})
		} else {
			logger.Error(ctx, "auto-order placement failed", "product_id", req.ProductID, "error", err)
		}
		return nil, err
	}

	s.observer.ObservePlaced()
	s.activity.Record(ctx, activity.Entry{
		EntityType: "product",
		EntityID:   order.ProductID.String(),
		Action:     activity.ActionAutoOrderPlaced,
		Details: map[string]any{
			"order_id":         order.ID.String(),
			"quantity":         order.Quantity,
			"amount":           order.Amount.StringFixed(2),
			"interval_minutes": order.EffectiveIntervalMinutes,
		},
	})
	logger.Info(ctx, "auto-order placed",
		"product_id", order.ProductID,
		"order_id", order.ID,
		"quantity", order.Quantity,
	)
	return order, nil
}

func denialError(productID id.ID, check CheckResult) error {
	switch check.Outcome {
	case OutcomeProductNotFound:
		return apperror.NewNotFound("product", productID.String())
	case OutcomeCheckFailed:
		return apperror.NewDatabase("auto-order interval check", errors.New(check.Reason)).
			WithDetail("product_id", productID.String())
	}
	return apperror.NewDuplicateAutoOrder(productID.String(), check.Reason, check.RemainingMinutes).
		WithDetail("outcome", string(check.Outcome)).
		WithDetail("interval_minutes", check.IntervalMinutes)
}

// CycleReport summarises one reorder pass.
type CycleReport struct {
	Candidates int
	Placed     []Order
	Denied     int
	Failed     int
}

// RunReorderCycle places auto-orders for every product at or below its
// reorder point. Each product gets its own transaction so one failure does not
// roll back the others.
func (s *Service) RunReorderCycle(ctx context.Context, limit int) (CycleReport, error) {
	var report CycleReport

	candidates, err := s.products.ListReorderCandidates(ctx, limit)
	if err != nil {
		return report, apperror.NewDatabase("list reorder candidates", err)
	}
	report.Candidates = len(candidates)

	for _, p := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		order, err := s.Place(ctx, PlaceRequest{ProductID: p.ID})
		var appErr *apperror.AppError
		switch {
		case err == nil:
			report.Placed = append(report.Placed, *order)
		case errors.As(err, &appErr) && appErr.Code == apperror.CodeDuplicateAutoOrder:
			report.Denied++
			logger.Debug(ctx, "auto-order skipped", "product_id", p.ID, "reason", appErr.Message)
		default:
			report.Failed++
		}
	}

	return report, nil
}

// ConfiguredMinIntervalMinutes returns the global floor.
func (s *Service) ConfiguredMinIntervalMinutes(ctx context.Context) int {
	return s.guard.ConfiguredMinIntervalMinutes(ctx)
}

// History lists placed orders for a product, newest first.
func (s *Service) History(ctx context.Context, productID id.ID, limit int) ([]Order, error) {
	orders, err := s.orders.ListByProduct(ctx, productID, limit)
	if err != nil {
		return nil, apperror.NewDatabase("list auto-orders", err)
	}
	return orders, nil
}
