//go:build integration

package autoorder_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/autoorder"
	"stockroom/internal/domain/product"
	"stockroom/internal/infrastructure/storage/sqlstore"
	"stockroom/internal/infrastructure/storage/sqlstore/autoorder_repo"
	"stockroom/internal/infrastructure/storage/sqlstore/product_repo"
	"stockroom/internal/infrastructure/storage/sqlstore/sqlstoretest"
)

func TestPlace_ConcurrentCallersPlaceOnce_Postgres(t *testing.T) {
	ctx := context.Background()
	db := sqlstoretest.NewPostgres(t)
	require.True(t, db.Capabilities().LockingReads)

	txm := sqlstore.NewTxManager(db)
	products := product_repo.New(txm)
	orders := autoorder_repo.New(txm)

	p := product.NewProduct("SKU-PG", "Pallet wrap")
	p.ReorderPoint, p.ReorderQuantity = 5, 10
	p.UnitCost = types.MustMoney("4.20")
	require.NoError(t, products.Create(ctx, p))

	resolver := autoorder.NewIntervalResolver(autoorder.SourceFunc{
		Label: "test",
		Fn:    func(context.Context) (int, bool) { return 30, true },
	})
	svc := autoorder.NewService(autoorder.NewGuard(resolver, products), products, orders, txm)

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		placed  int
		denied  int
		failure []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Place(ctx, autoorder.PlaceRequest{ProductID: p.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case apperror.HasCode(err, apperror.CodeDuplicateAutoOrder):
				denied++
			default:
				failure = append(failure, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, failure)
	assert.Equal(t, 1, placed)
	assert.Equal(t, callers-1, denied)

	history, err := orders.ListByProduct(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestLastAutoOrderDate_TimestamptzRoundTrip_Postgres(t *testing.T) {
	ctx := context.Background()
	txm := sqlstore.NewTxManager(sqlstoretest.NewPostgres(t))
	products := product_repo.New(txm)

	p := product.NewProduct("SKU-TS", "Labels")
	require.NoError(t, products.Create(ctx, p))

	at := time.Now().Add(-10 * time.Minute).Truncate(time.Microsecond)
	require.NoError(t, products.TouchLastAutoOrder(ctx, p.ID, at))

	resolver := autoorder.NewIntervalResolver(autoorder.SourceFunc{
		Label: "test",
		Fn:    func(context.Context) (int, bool) { return 30, true },
	})
	res := autoorder.NewGuard(resolver, products).CanPlaceAutoOrder(ctx, p.ID, 30, false)

	assert.False(t, res.Allowed)
	assert.Equal(t, autoorder.OutcomeTooSoon, res.Outcome)
	assert.InDelta(t, 20, res.RemainingMinutes, 1)
}
