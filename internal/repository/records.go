package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/conferente/labelscan/internal/common"
	"github.com/conferente/labelscan/internal/entity"
)

// RecordRepository persists finished weighings. The typed columns exist for
// filtering and export; the full record rides along as a JSON document so
// new fields never need a migration.
type RecordRepository interface {
	Save(ctx context.Context, rec *entity.WeighingRecord) error
	List(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.WeighingRecord, error)
	LastBySupplier(ctx context.Context, supplier string) (*entity.WeighingRecord, error)
	Delete(ctx context.Context, id string) error
}

type recordRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRecordRepository(db *sql.DB, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepository{db: db, logger: logger}
}

func (r *recordRepository) Save(ctx context.Context, rec *entity.WeighingRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO weighing_records
			(id, created_at, supplier, product, gross_weight, note_weight, net_weight, tare_total, status, document)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			supplier = excluded.supplier,
			product = excluded.product,
			gross_weight = excluded.gross_weight,
			note_weight = excluded.note_weight,
			net_weight = excluded.net_weight,
			tare_total = excluded.tare_total,
			status = excluded.status,
			document = excluded.document`,
		rec.ID, rec.Timestamp.UTC().Format(time.RFC3339Nano),
		rec.Supplier, rec.Product,
		rec.GrossWeight, rec.NoteWeight, rec.NetWeight, rec.TareTotal,
		string(rec.Status), string(doc))
	if err != nil {
		r.logger.Error("failed to save weighing record", "record_id", rec.ID, "error", err)
		return fmt.Errorf("save record: %w", err)
	}

	r.logger.Info("weighing record saved",
		"record_id", rec.ID,
		"supplier", rec.Supplier,
		"product", rec.Product,
		"status", rec.Status,
	)
	return nil
}

func (r *recordRepository) List(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.WeighingRecord, error) {
	q := `SELECT document FROM weighing_records`
	var args []any
	var where []string
	if fromDate != nil {
		where = append(where, `created_at >= ?`)
		args = append(args, fromDate.UTC().Format(time.RFC3339Nano))
	}
	if toDate != nil {
		where = append(where, `created_at <= ?`)
		args = append(args, toDate.UTC().Format(time.RFC3339Nano))
	}
	for i, w := range where {
		if i == 0 {
			q += ` WHERE ` + w
		} else {
			q += ` AND ` + w
		}
	}
	q += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list weighing records", "error", err)
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*entity.WeighingRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec entity.WeighingRecord
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *recordRepository) LastBySupplier(ctx context.Context, supplier string) (*entity.WeighingRecord, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM weighing_records
		 WHERE supplier = ? ORDER BY created_at DESC LIMIT 1`,
		supplier).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("last record for %q: %w", supplier, err)
	}
	var rec entity.WeighingRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

func (r *recordRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM weighing_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
