// Package capture_repo provides the SQL implementation of capture.Repository.
// Scan updates compute quantity and status server-side in one statement so
// concurrent scans cannot lose updates.
package capture_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/capture"
	"stockroom/internal/infrastructure/storage/sqlstore"
)

const tasksTable = "capture_tasks"

var taskColumns = sqlstore.Columns[capture.Task]()

var _ capture.Repository = (*Repo)(nil)

// Repo implements capture.Repository.
type Repo struct {
	txm     *sqlstore.TxManager
	builder squirrel.StatementBuilderType
	locker  sqlstore.RowLocker
}

// New creates a capture task repository.
func New(txm *sqlstore.TxManager) *Repo {
	db := txm.DB()
	return &Repo{txm: txm, builder: db.Builder(), locker: db.Locker()}
}

// Create inserts a task.
func (r *Repo) Create(ctx context.Context, t *capture.Task) error {
	q := r.builder.Insert(tasksTable).
		Columns(taskColumns...).
		Values(
			t.ID, t.ProductID, t.LocationID, t.ExpectedQuantity, t.ScannedQuantity,
			string(t.Status), t.AssignedTo, t.CreatedBy, t.CreatedAt, t.CompletedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).ExecContext(ctx, sql, args...); err != nil {
		if sqlstore.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("product", t.ProductID.String()).WithCause(err)
		}
		return fmt.Errorf("insert capture task: %w", err)
	}
	return nil
}

// Assign sets assigned_to.
func (r *Repo) Assign(ctx context.Context, taskID id.ID, userID string) error {
	q := r.builder.Update(tasksTable).
		Set("assigned_to", userID).
		Where(squirrel.Eq{"id": taskID})
	return r.execOne(ctx, q, taskID, "assign")
}

// Increment adds amount and marks the task in_progress.
func (r *Repo) Increment(ctx context.Context, taskID id.ID, amount int, includeCompleted bool) error {
	q := r.builder.Update(tasksTable).
		Set("scanned_quantity", squirrel.Expr("scanned_quantity + ?", amount)).
		Set("status", string(capture.StatusInProgress)).
		Where(squirrel.Eq{"id": taskID})
	if !includeCompleted {
		q = q.Where(squirrel.NotEq{"status": string(capture.StatusCompleted)})
	}
	return r.execOne(ctx, q, taskID, "increment")
}

// Decrement subtracts amount clamped at zero.
func (r *Repo) Decrement(ctx context.Context, taskID id.ID, amount int, includeCompleted bool) error {
	return r.execOne(ctx, r.decrementQuery(taskID, amount, includeCompleted), taskID, "decrement")
}

// decrementQuery assigns status before scanned_quantity so both CASEs read the
// pre-update quantity, including on dialects that apply SET left to right.
func (r *Repo) decrementQuery(taskID id.ID, amount int, includeCompleted bool) squirrel.UpdateBuilder {
	q := r.builder.Update(tasksTable).
		Set("status", squirrel.Expr(
			"CASE WHEN scanned_quantity - ? > 0 THEN '"+string(capture.StatusInProgress)+
				"' ELSE '"+string(capture.StatusPending)+"' END", amount)).
		Set("scanned_quantity", squirrel.Expr(
			"CASE WHEN scanned_quantity - ? > 0 THEN scanned_quantity - ? ELSE 0 END", amount, amount)).
		Where(squirrel.Eq{"id": taskID})
	if !includeCompleted {
		q = q.Where(squirrel.NotEq{"status": string(capture.StatusCompleted)})
	}
	return q
}

// MarkCompleted sets status completed and completed_at.
func (r *Repo) MarkCompleted(ctx context.Context, taskID id.ID, at time.Time) error {
	q := r.builder.Update(tasksTable).
		Set("status", string(capture.StatusCompleted)).
		Set("completed_at", at).
		Where(squirrel.Eq{"id": taskID})
	return r.execOne(ctx, q, taskID, "complete")
}

// ListOpen returns pending and in_progress tasks, oldest first.
func (r *Repo) ListOpen(ctx context.Context) ([]capture.Task, error) {
	q := r.builder.Select(taskColumns...).
		From(tasksTable).
		Where(squirrel.Eq{"status": []string{string(capture.StatusPending), string(capture.StatusInProgress)}}).
		OrderBy("created_at", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var tasks []capture.Task
	if err := sqlscan.Select(ctx, r.txm.GetQuerier(ctx), &tasks, sql, args...); err != nil {
		return nil, fmt.Errorf("list open capture tasks: %w", err)
	}
	return tasks, nil
}

// GetByID loads a task, locking the row when asked and supported.
func (r *Repo) GetByID(ctx context.Context, taskID id.ID, forUpdate bool) (*capture.Task, error) {
	q := r.builder.Select(taskColumns...).
		From(tasksTable).
		Where(squirrel.Eq{"id": taskID})
	q = r.locker.Lock(q, forUpdate)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t capture.Task
	if err := sqlscan.Get(ctx, r.txm.GetQuerier(ctx), &t, sql, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, apperror.NewNotFound("capture_task", taskID.String())
		}
		return nil, fmt.Errorf("get capture task: %w", err)
	}
	return &t, nil
}

func (r *Repo) execOne(ctx context.Context, q squirrel.UpdateBuilder, taskID id.ID, op string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}

	res, err := r.txm.GetQuerier(ctx).ExecContext(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s capture task: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s capture task: rows affected: %w", op, err)
	}
	if n == 0 {
		return apperror.NewNotFound("capture_task", taskID.String())
	}
	return nil
}
