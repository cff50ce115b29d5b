// exportxlsx writes the weighing records to an XLSX workbook.
//
// usage: exportxlsx [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-o file.xlsx]
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/conferente/labelscan/internal/common"
	"github.com/conferente/labelscan/internal/export"
	repo "github.com/conferente/labelscan/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	fromFlag := flag.String("from", "", "start date (YYYY-MM-DD), inclusive")
	toFlag := flag.String("to", "", "end date (YYYY-MM-DD), inclusive")
	outFlag := flag.String("o", "pesagens.xlsx", "output file")
	flag.Parse()

	var from, to *time.Time
	if *fromFlag != "" {
		d, err := time.Parse("2006-01-02", *fromFlag)
		if err != nil {
			logger.Error("invalid -from date", "value", *fromFlag, "error", err)
			os.Exit(2)
		}
		from = &d
	}
	if *toFlag != "" {
		d, err := time.Parse("2006-01-02", *toFlag)
		if err != nil {
			logger.Error("invalid -to date", "value", *toFlag, "error", err)
			os.Exit(2)
		}
		to = &d
	}

	cfg := common.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := repo.Open(ctx, cfg.Database.Path, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, logger)

	svc := export.NewService(repo.NewRecordRepository(db, logger), logger)
	data, err := svc.ExportRecordsXLSX(ctx, from, to)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outFlag, data, 0o644); err != nil {
		logger.Error("write output", "path", *outFlag, "error", err)
		os.Exit(1)
	}
	logger.Info("export.written", "path", *outFlag, "bytes", len(data))
}
