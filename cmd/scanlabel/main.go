// scanlabel runs the full analysis cascade over one label photo, feeds the
// result into the learning store, and prints the reading plus the next-time
// prediction as JSON.
//
// usage: scanlabel <image-file> [supplier]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/conferente/labelscan/internal/cascade"
	"github.com/conferente/labelscan/internal/common"
	"github.com/conferente/labelscan/internal/knowledge"
	"github.com/conferente/labelscan/internal/labelextract"
	"github.com/conferente/labelscan/internal/llm/gemini"
	"github.com/conferente/labelscan/internal/ocr"
	repo "github.com/conferente/labelscan/internal/repository"
	"github.com/conferente/labelscan/internal/vision"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 || len(os.Args) > 3 {
		logger.Error("usage", "cmd", "scanlabel <image-file> [supplier]")
		os.Exit(2)
	}
	imagePath := os.Args[1]
	supplier := ""
	if len(os.Args) == 3 {
		supplier = os.Args[2]
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		logger.Error("read image", "path", imagePath, "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := repo.Open(ctx, cfg.Database.Path, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, logger)

	store, err := knowledge.NewStore(ctx, repo.NewKnowledgeRepository(db, logger), logger)
	if err != nil {
		logger.Error("load knowledge base", "error", err)
		os.Exit(1)
	}

	var visionTier cascade.TextDetector
	if cfg.Vision.APIKey != "" {
		vc, err := vision.NewClient(ctx, cfg.Vision.APIKey, cfg.Vision.MaxResults, logger)
		if err != nil {
			logger.Warn("vision tier unavailable", "error", err)
		} else {
			visionTier = vc
		}
	}
	var modelTier *gemini.Client
	if cfg.LLM.APIKey != "" {
		modelTier = gemini.NewClient(gemini.Config{
			APIKey:     cfg.LLM.APIKey,
			Model:      cfg.LLM.Model,
			Timeout:    cfg.LLM.Timeout,
			MaxRetries: cfg.LLM.MaxRetries,
		}, logger)
	}
	ocrTier := ocr.NewEngine(cfg.OCR.Language, cfg.OCR.TessdataDir, logger)

	var casc *cascade.Cascade
	if modelTier != nil {
		casc = cascade.New(visionTier, modelTier, ocrTier, logger)
	} else {
		casc = cascade.New(visionTier, nil, ocrTier, logger)
	}

	start := time.Now()
	res, err := casc.Analyze(ctx, cascade.Request{Image: image, Supplier: supplier})
	if err != nil {
		if errors.Is(err, cascade.ErrManualEntry) {
			logger.Error("analysis exhausted, enter the fields manually")
		} else {
			logger.Error("analysis failed", "error", err)
		}
		os.Exit(1)
	}

	out := struct {
		cascade.Result
		Prediction *knowledge.Prediction `json:"prediction,omitempty"`
		Changes    []string              `json:"critical_changes,omitempty"`
	}{Result: res}

	if supplier == "" {
		supplier = res.Label.Supplier
	}
	product := res.Label.Product
	if supplier != labelextract.Unresolved && product != labelextract.Unresolved &&
		supplier != "" && product != "" {
		if prev := store.RecentReadings(supplier, product, 1); len(prev) == 1 {
			out.Changes = knowledge.CriticalChanges(prev[0].Extracted, res.Label)
		}
		if _, err := store.StoreReading(ctx, supplier, product, res.Label); err != nil {
			logger.Warn("store reading", "error", err)
		}
		if pred, ok := knowledge.NewEngine(store).Predict(supplier, product); ok {
			out.Prediction = &pred
		}
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(b))

	logger.Info("scanlabel.done",
		"tier", res.Tier,
		"confidence", res.Label.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}
