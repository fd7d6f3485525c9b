package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/klauspost/compress/zstd"

	appctx "stockroom/internal/core/context"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/activity"
	"stockroom/pkg/logger"
)

const activityTable = "activity_log"

var activityColumns = Columns[ActivityRecord]()

// CompressionAlgo specifies how a payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// ActivityRecord is a stored activity row. Payload is always decompressed on read.
type ActivityRecord struct {
	ID                id.ID           `db:"id"`
	EntityType        string          `db:"entity_type"`
	EntityID          string          `db:"entity_id"`
	Action            activity.Action `db:"action"`
	UserID            string          `db:"user_id"`
	Payload           []byte          `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// Details decodes the JSON payload.
func (r ActivityRecord) Details() (map[string]any, error) {
	if len(r.Payload) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(r.Payload, &m); err != nil {
		return nil, fmt.Errorf("decode activity payload: %w", err)
	}
	return m, nil
}

var _ activity.Sink = (*ActivityLog)(nil)

// ActivityLog writes activity entries, compressing large payloads with zstd.
type ActivityLog struct {
	txm               *TxManager
	builder           squirrel.StatementBuilderType
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
	now               func() time.Time
}

// ActivityOption configures an ActivityLog.
type ActivityOption func(*ActivityLog)

// WithCompressThreshold sets the payload size in bytes above which payloads
// are compressed. Default 4KB.
func WithCompressThreshold(n int) ActivityOption {
	return func(a *ActivityLog) { a.compressThreshold = n }
}

// NewActivityLog creates an activity log writer.
func NewActivityLog(txm *TxManager, opts ...ActivityOption) (*ActivityLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	a := &ActivityLog{
		txm:               txm,
		builder:           txm.DB().Builder(),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 4 * 1024,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Record writes entry. Failures are logged and never returned to the caller.
func (a *ActivityLog) Record(ctx context.Context, entry activity.Entry) {
	if err := a.Log(ctx, entry); err != nil {
		logger.Warn(ctx, "activity log write failed",
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"action", entry.Action,
			"error", err,
		)
	}
}

// Log writes entry and reports failures.
func (a *ActivityLog) Log(ctx context.Context, entry activity.Entry) error {
	var payload []byte
	if len(entry.Details) > 0 {
		var err error
		if payload, err = json.Marshal(entry.Details); err != nil {
			return fmt.Errorf("marshal activity details: %w", err)
		}
	}

	rec := ActivityRecord{
		ID:              id.New(),
		EntityType:      entry.EntityType,
		EntityID:        entry.EntityID,
		Action:          entry.Action,
		UserID:          appctx.GetUserID(ctx),
		Payload:         payload,
		CompressionAlgo: CompressionNone,
		CreatedAt:       a.now().UTC(),
	}
	if len(payload) > a.compressThreshold {
		rec.PayloadCompressed = a.encoder.EncodeAll(payload, nil)
		rec.Payload = nil
		rec.CompressionAlgo = CompressionZstd
	}

	q := a.builder.Insert(activityTable).
		Columns(activityColumns...).
		Values(rec.ID, rec.EntityType, rec.EntityID, string(rec.Action), rec.UserID,
			rec.Payload, rec.PayloadCompressed, string(rec.CompressionAlgo), rec.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := a.txm.GetQuerier(ctx).ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// History returns an entity's activity, newest first, with payloads decompressed.
func (a *ActivityLog) History(ctx context.Context, entityType, entityID string, limit int) ([]ActivityRecord, error) {
	q := a.builder.Select(activityColumns...).
		From(activityTable).
		Where(squirrel.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []ActivityRecord
	if err := sqlscan.Select(ctx, a.txm.GetQuerier(ctx), &records, sql, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	for i := range records {
		rec := &records[i]
		if rec.CompressionAlgo == CompressionZstd && len(rec.PayloadCompressed) > 0 {
			decompressed, err := a.decoder.DecodeAll(rec.PayloadCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress payload: %w", err)
			}
			rec.Payload = decompressed
			rec.PayloadCompressed = nil
		}
	}
	return records, nil
}
