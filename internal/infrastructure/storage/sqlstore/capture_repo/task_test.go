package capture_repo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/capture"
	"stockroom/internal/domain/product"
	"stockroom/internal/infrastructure/storage/sqlstore"
	"stockroom/internal/infrastructure/storage/sqlstore/capture_repo"
	"stockroom/internal/infrastructure/storage/sqlstore/product_repo"
	"stockroom/internal/infrastructure/storage/sqlstore/sqlstoretest"
)

type env struct {
	txm     *sqlstore.TxManager
	repo    *capture_repo.Repo
	product *product.Product
}

func setup(t *testing.T) *env {
	t.Helper()
	db := sqlstoretest.NewSQLite(t)
	txm := sqlstore.NewTxManager(db)

	p := product.NewProduct("SKU-1", "Pallet wrap")
	require.NoError(t, product_repo.New(txm).Create(context.Background(), p))

	return &env{txm: txm, repo: capture_repo.New(txm), product: p}
}

func (e *env) newTask(t *testing.T, createdAt time.Time) *capture.Task {
	t.Helper()
	task := capture.NewTask(e.product.ID, "A-01", 10, "supervisor", createdAt)
	require.NoError(t, e.repo.Create(context.Background(), task))
	return task
}

func (e *env) get(t *testing.T, taskID id.ID) *capture.Task {
	t.Helper()
	task, err := e.repo.GetByID(context.Background(), taskID, false)
	require.NoError(t, err)
	return task
}

func TestRepo_CreateAndGet(t *testing.T) {
	e := setup(t)
	created := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	task := e.newTask(t, created)

	got := e.get(t, task.ID)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, e.product.ID, got.ProductID)
	assert.Equal(t, "A-01", got.LocationID)
	assert.Equal(t, 10, got.ExpectedQuantity)
	assert.Equal(t, 0, got.ScannedQuantity)
	assert.Equal(t, capture.StatusPending, got.Status)
	assert.Nil(t, got.AssignedTo)
	assert.Nil(t, got.CompletedAt)
	assert.True(t, created.Equal(got.CreatedAt))

	_, err := e.repo.GetByID(context.Background(), id.New(), false)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRepo_CreateUnknownProduct(t *testing.T) {
	e := setup(t)
	task := capture.NewTask(id.New(), "A-01", 1, "s", time.Now())

	err := e.repo.Create(context.Background(), task)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRepo_IncrementDecrement(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	task := e.newTask(t, time.Now())

	require.NoError(t, e.repo.Increment(ctx, task.ID, 4, true))
	got := e.get(t, task.ID)
	assert.Equal(t, 4, got.ScannedQuantity)
	assert.Equal(t, capture.StatusInProgress, got.Status)

	require.NoError(t, e.repo.Decrement(ctx, task.ID, 1, true))
	got = e.get(t, task.ID)
	assert.Equal(t, 3, got.ScannedQuantity)
	assert.Equal(t, capture.StatusInProgress, got.Status)

	require.NoError(t, e.repo.Decrement(ctx, task.ID, 10, true))
	got = e.get(t, task.ID)
	assert.Equal(t, 0, got.ScannedQuantity)
	assert.Equal(t, capture.StatusPending, got.Status)

	assert.True(t, apperror.IsNotFound(e.repo.Increment(ctx, id.New(), 1, true)))
	assert.True(t, apperror.IsNotFound(e.repo.Decrement(ctx, id.New(), 1, true)))
}

func TestRepo_CompletedTasks(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	task := e.newTask(t, time.Now())
	at := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

	require.NoError(t, e.repo.MarkCompleted(ctx, task.ID, at))
	got := e.get(t, task.ID)
	assert.Equal(t, capture.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, at.Equal(*got.CompletedAt))

	err := e.repo.Increment(ctx, task.ID, 1, false)
	assert.True(t, apperror.IsNotFound(err), "completed tasks are excluded")
	assert.Equal(t, capture.StatusCompleted, e.get(t, task.ID).Status)

	require.NoError(t, e.repo.Increment(ctx, task.ID, 1, true))
	assert.Equal(t, capture.StatusInProgress, e.get(t, task.ID).Status)
}

func TestRepo_AssignAndListOpen(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	newer := e.newTask(t, base.Add(2*time.Hour))
	older := e.newTask(t, base)
	done := e.newTask(t, base.Add(time.Hour))
	require.NoError(t, e.repo.MarkCompleted(ctx, done.ID, base.Add(3*time.Hour)))
	require.NoError(t, e.repo.Assign(ctx, newer.ID, "worker-1"))

	got := e.get(t, newer.ID)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, "worker-1", *got.AssignedTo)
	assert.Equal(t, capture.StatusPending, got.Status)

	tasks, err := e.repo.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, older.ID, tasks[0].ID)
	assert.Equal(t, newer.ID, tasks[1].ID)
}

func TestRepo_ConcurrentScansLoseNoUpdates(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	task := e.newTask(t, time.Now())
	require.NoError(t, e.repo.Increment(ctx, task.ID, 100, true))

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- e.repo.Increment(ctx, task.ID, 3, true)
		}()
		go func() {
			defer wg.Done()
			errs <- e.repo.Decrement(ctx, task.ID, 2, true)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got := e.get(t, task.ID)
	assert.Equal(t, 100+workers*3-workers*2, got.ScannedQuantity)
	assert.Equal(t, capture.StatusInProgress, got.Status)
}

func TestRepo_GetByIDForUpdateInsideTransaction(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	task := e.newTask(t, time.Now())

	err := e.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := e.repo.GetByID(ctx, task.ID, true)
		if err != nil {
			return err
		}
		return e.repo.Increment(ctx, locked.ID, 2, true)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, e.get(t, task.ID).ScannedQuantity)
}
