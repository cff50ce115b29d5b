package repository

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conferente/labelscan/constants"
	"github.com/conferente/labelscan/internal/common"
	"github.com/conferente/labelscan/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenAppliesSchemaAndPings(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, HealthCheck(context.Background(), db, time.Second, testLogger()))
}

func TestKnowledgeRepositoryRoundtrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewKnowledgeRepository(db, nil)
	ctx := context.Background()

	kb, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, kb)

	in := entity.NewKnowledgeBase()
	in.Suppliers = []string{"seara"}
	in.Products = []string{"file de frango"}
	in.Patterns["seara::file de frango"] = &entity.LearningPattern{
		Supplier:         "seara",
		Product:          "file de frango",
		TotalReadings:    3,
		AverageNetWeight: 14.5,
		LastReading:      time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.Suppliers, out.Suppliers)
	require.Contains(t, out.Patterns, "seara::file de frango")
	assert.Equal(t, 3, out.Patterns["seara::file de frango"].TotalReadings)

	// second save overwrites, not duplicates
	in.Suppliers = append(in.Suppliers, "aurora")
	require.NoError(t, repo.Save(ctx, in))
	out, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, out.Suppliers, 2)
}

func sampleRecord(supplier string, ts time.Time) *entity.WeighingRecord {
	return &entity.WeighingRecord{
		Timestamp:   ts,
		Supplier:    supplier,
		Product:     "file de frango",
		GrossWeight: 151,
		NoteWeight:  148,
		NetWeight:   150.97,
		TareTotal:   0.03,
		Boxes:       entity.TareLine{Qty: 2, UnitTareKg: 0.015},
		Status:      constants.StatusError,
	}
}

func TestRecordRepositorySaveAndList(t *testing.T) {
	db := openTestDB(t)
	repo := NewRecordRepository(db, nil)
	ctx := context.Background()

	base := time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, sampleRecord("seara", base.Add(time.Duration(i)*time.Hour))))
	}

	all, err := repo.List(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "seara", all[0].Supplier)
	assert.Equal(t, entity.TareLine{Qty: 2, UnitTareKg: 0.015}, all[0].Boxes)

	from := base.Add(90 * time.Minute)
	filtered, err := repo.List(ctx, &from, nil)
	require.NoError(t, err)
	assert.Len(t, filtered, 1)
}

func TestRecordRepositoryLastBySupplier(t *testing.T) {
	db := openTestDB(t)
	repo := NewRecordRepository(db, nil)
	ctx := context.Background()

	base := time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)
	older := sampleRecord("seara", base)
	older.Batch = "OLD"
	newer := sampleRecord("seara", base.Add(time.Hour))
	newer.Batch = "NEW"
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	last, err := repo.LastBySupplier(ctx, "seara")
	require.NoError(t, err)
	assert.Equal(t, "NEW", last.Batch)

	_, err = repo.LastBySupplier(ctx, "aurora")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRecordRepositoryUpsertAndDelete(t *testing.T) {
	db := openTestDB(t)
	repo := NewRecordRepository(db, nil)
	ctx := context.Background()

	rec := sampleRecord("seara", time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, rec))
	require.NotEmpty(t, rec.ID)

	rec.Status = constants.StatusVerified
	require.NoError(t, repo.Save(ctx, rec))

	all, err := repo.List(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, constants.StatusVerified, all[0].Status)

	require.NoError(t, repo.Delete(ctx, rec.ID))
	assert.ErrorIs(t, repo.Delete(ctx, rec.ID), common.ErrNotFound)
}
