// Package export produces the XLSX report of weighing records.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/conferente/labelscan/internal/repository"
)

// Service is a tiny façade over the record repository that produces XLSX
// bytes for exports.
type Service struct {
	records repository.RecordRepository
	logger  *slog.Logger
}

func NewService(records repository.RecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

// ExportRecordsXLSX returns an XLSX workbook (as bytes) for the date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> every record.
func (s *Service) ExportRecordsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	recs, err := s.records.List(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Pesagens"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultSheet := f.GetSheetName(0); defaultSheet != sheet {
		_ = f.DeleteSheet(defaultSheet)
	}

	headers := []string{
		"Data",
		"Fornecedor",
		"Produto",
		"Peso Bruto (kg)",
		"Tara (kg)",
		"Peso Liquido (kg)",
		"Peso Nota (kg)",
		"Diferenca (kg)",
		"Lote",
		"Validade",
		"Status",
		"Analise",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if !r.Timestamp.IsZero() {
			write(1, r.Timestamp.Format("02/01/2006 15:04"))
		} else {
			write(1, "")
		}
		write(2, r.Supplier)
		write(3, r.Product)
		write(4, r.GrossWeight)
		write(5, r.TareTotal)
		write(6, r.NetWeight)
		write(7, r.NoteWeight)
		write(8, r.NetWeight-r.NoteWeight)
		write(9, r.Batch)
		write(10, r.ExpirationDate)
		write(11, string(r.Status))
		write(12, truncate(r.AIAnalysis, 140))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18) // date
	_ = f.SetColWidth(sheet, "B", "C", 28) // names
	_ = f.SetColWidth(sheet, "D", "H", 14) // weights
	_ = f.SetColWidth(sheet, "I", "J", 14) // batch, validity
	_ = f.SetColWidth(sheet, "K", "K", 10) // status
	_ = f.SetColWidth(sheet, "L", "L", 48) // analysis

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
