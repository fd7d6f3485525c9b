// Package autoorder_repo stores placed automatic orders.
package autoorder_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/autoorder"
	"stockroom/internal/infrastructure/storage/sqlstore"
)

const ordersTable = "auto_orders"

var orderColumns = sqlstore.Columns[autoorder.Order]()

var _ autoorder.OrderRepository = (*Repo)(nil)

// Repo implements autoorder.OrderRepository.
type Repo struct {
	txm     *sqlstore.TxManager
	builder squirrel.StatementBuilderType
}

// New creates an auto-order repository.
func New(txm *sqlstore.TxManager) *Repo {
	return &Repo{txm: txm, builder: txm.DB().Builder()}
}

// Create inserts an order row.
func (r *Repo) Create(ctx context.Context, o *autoorder.Order) error {
	q := r.builder.Insert(ordersTable).
		Columns(orderColumns...).
		Values(o.ID, o.ProductID, o.Quantity, o.UnitCost, o.Amount, o.EffectiveIntervalMinutes, o.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).ExecContext(ctx, sql, args...); err != nil {
		if sqlstore.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("product", o.ProductID.String()).WithCause(err)
		}
		return fmt.Errorf("insert auto-order: %w", err)
	}
	return nil
}

// ListByProduct returns a product's orders, newest first.
func (r *Repo) ListByProduct(ctx context.Context, productID id.ID, limit int) ([]autoorder.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var orders []autoorder.Order
	if err := sqlscan.Select(ctx, r.txm.GetQuerier(ctx), &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("list auto-orders: %w", err)
	}
	return orders, nil
}
