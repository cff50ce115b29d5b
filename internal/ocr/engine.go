// Package ocr is the offline text tier: Tesseract over the label photo.
// Quality is well below the cloud tiers, so the cascade only reaches it when
// both of those fail.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/otiai10/gosseract/v2"
)

type Engine struct {
	language    string
	tessdataDir string
	log         *slog.Logger
}

func NewEngine(language, tessdataDir string, logger *slog.Logger) *Engine {
	if language == "" {
		language = "por"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{language: language, tessdataDir: tessdataDir, log: logger}
}

// DetectText runs Tesseract over the image bytes. A fresh client per call:
// gosseract clients are not safe for concurrent reuse.
func (e *Engine) DetectText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()

	client := gosseract.NewClient()
	defer func() {
		if err := client.Close(); err != nil {
			e.log.Warn("ocr.client_close_error", "error", err)
		}
	}()

	if e.tessdataDir != "" {
		if err := client.SetTessdataPrefix(e.tessdataDir); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("set ocr language %q: %w", e.language, err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set ocr image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		e.log.Error("ocr.text_error",
			"error", err,
			"image_bytes", len(image),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("tesseract: %w", err)
	}

	e.log.Info("ocr.text_ok",
		"language", e.language,
		"image_bytes", len(image),
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
