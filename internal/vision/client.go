// Package vision is the cloud text tier: Google Vision TEXT_DETECTION.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

type Client struct {
	svc        *vision.Service
	maxResults int64
	log        *slog.Logger
}

// NewClient builds the annotate client with API-key auth, matching the
// mobile deployment where no service account is provisioned.
func NewClient(ctx context.Context, apiKey string, maxResults int, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("vision: api key is required")
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	svc, err := vision.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("vision: build service: %w", err)
	}
	return &Client{svc: svc, maxResults: int64(maxResults), log: logger}, nil
}

// DetectText sends one image and returns the full detected text block.
func (c *Client) DetectText(ctx context.Context, image []byte) (string, error) {
	start := time.Now()

	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{{
				Type:       "TEXT_DETECTION",
				MaxResults: c.maxResults,
			}},
		}},
	}

	resp, err := c.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		c.log.Error("vision.annotate_error",
			"error", err,
			"image_bytes", len(image),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("vision annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return "", fmt.Errorf("vision: empty batch response")
	}

	r := resp.Responses[0]
	if r.Error != nil {
		c.log.Error("vision.api_error",
			"code", r.Error.Code,
			"message", r.Error.Message,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("vision api error %d: %s", r.Error.Code, r.Error.Message)
	}

	text := ""
	switch {
	case r.FullTextAnnotation != nil && r.FullTextAnnotation.Text != "":
		text = r.FullTextAnnotation.Text
	case len(r.TextAnnotations) > 0:
		text = r.TextAnnotations[0].Description
	}
	if text == "" {
		return "", fmt.Errorf("vision: no text detected")
	}

	c.log.Info("vision.detect_ok",
		"image_bytes", len(image),
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
