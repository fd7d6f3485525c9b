// Package product_repo provides the SQL implementation of product.Repository.
package product_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/product"
	"stockroom/internal/infrastructure/storage/sqlstore"
)

const productsTable = "products"

var productColumns = sqlstore.Columns[product.Product]()

// Compile-time check.
var _ product.Repository = (*Repo)(nil)

// Repo implements product.Repository.
type Repo struct {
	txm     *sqlstore.TxManager
	builder squirrel.StatementBuilderType
	locker  sqlstore.RowLocker
}

// New creates a product repository bound to txm's store.
func New(txm *sqlstore.TxManager) *Repo {
	db := txm.DB()
	return &Repo{
		txm:     txm,
		builder: db.Builder(),
		locker:  db.Locker(),
	}
}

// Create inserts a product.
func (r *Repo) Create(ctx context.Context, p *product.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.SKU, p.Barcode, p.Name, p.Quantity, p.ReorderPoint,
			p.ReorderQuantity, p.UnitCost, p.LastAutoOrderDate, p.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).ExecContext(ctx, sql, args...); err != nil {
		if sqlstore.IsUniqueViolation(err) {
			return apperror.NewDuplicate("product", "sku or barcode", p.SKU).WithCause(err)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product.
func (r *Repo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"id": productID}, productID.String())
}

// GetByBarcode retrieves the product carrying barcode.
func (r *Repo) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"barcode": barcode}, barcode)
}

func (r *Repo) getOne(ctx context.Context, where squirrel.Sqlizer, key string) (*product.Product, error) {
	q := r.builder.Select(productColumns...).From(productsTable).Where(where)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := sqlscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", key)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// LastAutoOrderDate reads last_auto_order_date, under a row lock when
// forUpdate is set and the store supports locking reads.
func (r *Repo) LastAutoOrderDate(ctx context.Context, productID id.ID, forUpdate bool) (string, error) {
	q := r.builder.Select("last_auto_order_date").
		From(productsTable).
		Where(squirrel.Eq{"id": productID})
	q = r.locker.Lock(q, forUpdate)

	sql, args, err := q.ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var last *string
	if err := r.txm.GetQuerier(ctx).QueryRowContext(ctx, sql, args...).Scan(&last); err != nil {
		if sqlscan.NotFound(err) {
			return "", apperror.NewNotFound("product", productID.String())
		}
		return "", fmt.Errorf("read last auto-order date: %w", err)
	}
	if last == nil {
		return "", nil
	}
	return *last, nil
}

// TouchLastAutoOrder stores at as the product's last auto-order time.
func (r *Repo) TouchLastAutoOrder(ctx context.Context, productID id.ID, at time.Time) error {
	q := r.builder.Update(productsTable).
		Set("last_auto_order_date", at.UTC().Format(time.RFC3339Nano)).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.txm.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("touch last auto-order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

// ListReorderCandidates returns products at or below their reorder point that
// have a reorder quantity, oldest first.
func (r *Repo) ListReorderCandidates(ctx context.Context, limit int) ([]product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Gt{"reorder_quantity": 0}).
		Where("quantity <= reorder_point").
		OrderBy("created_at", "id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []product.Product
	if err := sqlscan.Select(ctx, r.txm.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list reorder candidates: %w", err)
	}
	return products, nil
}
