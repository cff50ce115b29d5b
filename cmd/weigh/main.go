// weigh reconciles a delivery: summed gross entries minus tare against the
// invoice weight, saved as a weighing record. When the difference falls
// outside tolerance and a model key is configured, it asks for a short
// analysis of the likely cause.
//
// usage: weigh -supplier seara -product "file de frango" -gross 50,52,49 \
//
//	-invoice 148 -boxes 2 -boxtare 0.015
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/conferente/labelscan/constants"
	"github.com/conferente/labelscan/internal/common"
	"github.com/conferente/labelscan/internal/entity"
	"github.com/conferente/labelscan/internal/llm/gemini"
	"github.com/conferente/labelscan/internal/reconcile"
	repo "github.com/conferente/labelscan/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	supplier := flag.String("supplier", "", "supplier name (required)")
	product := flag.String("product", "", "product name (required)")
	gross := flag.String("gross", "", "gross weight entries, e.g. 50,52,49 (required)")
	invoice := flag.Float64("invoice", 0, "invoice (nota) weight in kg (required)")
	boxes := flag.Int("boxes", 0, "box count")
	boxTare := flag.Float64("boxtare", 0, "tare per box in kg")
	packQty := flag.Int("packqty", 0, "packaging unit count")
	packTare := flag.Float64("packtare", 0, "tare per packaging unit in kg")
	batch := flag.String("batch", "", "batch printed on the label")
	expiration := flag.String("exp", "", "expiration date DD/MM/YYYY")
	flag.Parse()

	if *supplier == "" || *product == "" || *gross == "" || *invoice <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	entries, err := reconcile.ParseGrossInput(*gross)
	if err != nil {
		logger.Error("invalid gross input", "error", err)
		os.Exit(2)
	}

	boxLine := entity.TareLine{Qty: *boxes, UnitTareKg: *boxTare}
	packLine := entity.TareLine{Qty: *packQty, UnitTareKg: *packTare}
	tare := reconcile.TotalTare(boxLine, packLine)

	result := reconcile.Reconcile(entries, tare, *invoice)
	logger.Info("weigh.reconciled",
		"supplier", *supplier,
		"product", *product,
		"net_kg", result.NetWeight,
		"difference_kg", result.Difference,
		"status", result.Status,
	)

	cfg := common.LoadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rec := &entity.WeighingRecord{
		Timestamp:          time.Now(),
		Supplier:           *supplier,
		Product:            *product,
		GrossWeight:        result.GrossTotal,
		NoteWeight:         result.Invoice,
		NetWeight:          result.NetWeight,
		TareTotal:          result.TareTotal,
		Boxes:              boxLine,
		Packaging:          packLine,
		GrossWeightDetails: result.GrossEntries,
		Batch:              *batch,
		ExpirationDate:     *expiration,
		Status:             result.Status,
		LabelSummary:       result.Summary(),
	}

	if result.Status == constants.StatusError && cfg.LLM.APIKey != "" {
		client := gemini.NewClient(gemini.Config{
			APIKey:     cfg.LLM.APIKey,
			Model:      cfg.LLM.Model,
			Timeout:    cfg.LLM.Timeout,
			MaxRetries: cfg.LLM.MaxRetries,
		}, logger)
		analysis, err := client.AnalyzeDiscrepancy(ctx, gemini.DiscrepancyRequest{
			Supplier:   *supplier,
			Product:    *product,
			NetWeight:  result.NetWeight,
			Invoice:    result.Invoice,
			Difference: result.Difference,
		})
		if err != nil {
			logger.Warn("discrepancy analysis unavailable", "error", err)
		} else {
			rec.AIAnalysis = analysis
		}
	}

	db, err := repo.Open(ctx, cfg.Database.Path, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, logger)

	if err := repo.NewRecordRepository(db, logger).Save(ctx, rec); err != nil {
		logger.Error("save record", "error", err)
		os.Exit(1)
	}

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		logger.Error("encode record", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(b))

	if result.Status == constants.StatusError {
		os.Exit(1)
	}
}
