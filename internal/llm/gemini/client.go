package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conferente/labelscan/internal/llm"
)

const maxRetryWait = 10 * time.Second

type generateRequest struct {
	SystemInstruction *content          `json:"system_instruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature      float32 `json:"temperature"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

// ExtractLabel implements llm.LabelExtractor over generateContent with the
// label photo attached inline.
func (c *Client) ExtractLabel(ctx context.Context, req llm.ExtractRequest) (llm.LabelFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.label.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"image_bytes", len(req.ImageJPEG),
		"ocr_text_len", len(req.OCRText),
		"has_supplier", req.Supplier != "",
	)

	schema := llm.BuildLabelJSONSchema()
	body := generateRequest{
		SystemInstruction: &content{
			Parts: []part{{Text: llm.BuildSystemPrompt() + "\n\nJSON Schema:\n" + mustJSON(schema)}},
		},
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: llm.BuildUserPrompt(req)},
				{InlineData: &inlineData{
					MIMEType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(req.ImageJPEG),
				}},
			},
		}},
		GenerationConfig: &generationConfig{Temperature: 0, ResponseMIMEType: "application/json"},
	}

	text, err := c.generate(ctx, rid, body)
	if err != nil {
		c.log.Error("llm.label.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.LabelFields{}, nil, err
	}

	rawContent, err := llm.ExtractJSONObject(text)
	if err != nil {
		c.log.Error("llm.label.no_json",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.LabelFields{}, []byte(text), err
	}

	// Validate strictly first; sanitize and retry once on failure.
	if err := llm.ValidateLabelJSON(rawContent); err != nil {
		cleaned, adjusted, sErr := llm.SanitizeLabelJSON(rawContent, c.log)
		if sErr != nil {
			c.log.Error("llm.label.sanitize_failed",
				"req_id", rid, "error", sErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.LabelFields{}, rawContent, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := llm.ValidateLabelJSON(cleaned); vErr != nil {
			c.log.Error("llm.label.schema_validation_failed",
				"req_id", rid, "error", vErr, "content", string(cleaned),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.LabelFields{}, cleaned, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.log.Warn("llm.label.sanitize_applied",
			"req_id", rid, "adjusted", adjusted,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		rawContent = cleaned
	}

	var out llm.LabelFields
	if err := json.Unmarshal(rawContent, &out); err != nil {
		c.log.Error("llm.label.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.LabelFields{}, rawContent, fmt.Errorf("unmarshal fields: %w", err)
	}

	c.log.Info("llm.label.ok",
		"req_id", rid,
		"product", out.Product,
		"supplier", out.Supplier,
		"batch", out.Batch,
		"confidence", out.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, rawContent, nil
}

// Generate runs a text-only prompt and returns the reply verbatim.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	rid := uuid.New().String()
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: user}}}},
	}
	if system != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	return c.generate(ctx, rid, body)
}

// SuggestTemperature asks for the expected receiving temperature in Celsius
// for a product. The reply must be a bare number in a plausible range.
func (c *Client) SuggestTemperature(ctx context.Context, product, productType string) (int, error) {
	user := fmt.Sprintf(
		"Expected receiving temperature in Celsius for %q (storage: %s) at a food distribution warehouse. Respond with ONLY a number.",
		product, productType,
	)
	text, err := c.Generate(ctx, "You advise warehouse receiving inspections.", user)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("temperature reply not numeric: %q", text)
	}
	temp := int(v)
	if temp <= 0 || temp >= 50 {
		return 0, fmt.Errorf("temperature reply out of range: %d", temp)
	}
	return temp, nil
}

// DiscrepancyRequest describes one failed reconciliation for analysis.
type DiscrepancyRequest struct {
	Supplier   string
	Product    string
	NetWeight  float64
	Invoice    float64
	Difference float64
}

// AnalyzeDiscrepancy asks for a short, operator-facing explanation of a
// weight mismatch.
func (c *Client) AnalyzeDiscrepancy(ctx context.Context, req DiscrepancyRequest) (string, error) {
	user := fmt.Sprintf(
		"Delivery from %q of %q: invoice says %.3f kg, scale net weight is %.3f kg, difference %+.3f kg. In 2-3 sentences, list the most likely causes and what the operator should check before signing.",
		req.Supplier, req.Product, req.Invoice, req.NetWeight, req.Difference,
	)
	text, err := c.Generate(ctx, "You advise warehouse receiving inspections. Be concise and practical.", user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// generate posts one generateContent request, retrying rate-limit responses
// with exponential backoff. Other failures are returned immediately.
func (c *Client) generate(ctx context.Context, rid string, body generateRequest) (string, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + c.cfg.Model + ":generateContent"

	bs, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.cfg.RetryBaseWait << (attempt - 1)
			if wait > maxRetryWait {
				wait = maxRetryWait
			}
			if ra := retryAfter(lastErr); ra > 0 {
				wait = ra
			}
			c.log.Warn("llm.gemini.rate_limited",
				"req_id", rid, "attempt", attempt, "wait_ms", wait.Milliseconds())
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		text, err := c.post(ctx, endpoint, bs)
		if err == nil {
			return text, nil
		}
		lastErr = err
		var re *rateLimitError
		if !asRateLimit(err, &re) {
			return "", err
		}
	}
	return "", fmt.Errorf("gemini rate limited after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}

type rateLimitError struct {
	retryAfter time.Duration
	body       string
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("gemini status 429: %s", e.body)
}

func asRateLimit(err error, target **rateLimitError) bool {
	re, ok := err.(*rateLimitError)
	if ok {
		*target = re
	}
	return ok
}

func retryAfter(err error) time.Duration {
	var re *rateLimitError
	if asRateLimit(err, &re) {
		return re.retryAfter
	}
	return 0
}

func (c *Client) post(ctx context.Context, url string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini http error: %w", err)
	}
	defer func(b io.ReadCloser) {
		if err := b.Close(); err != nil {
			c.log.Warn("gemini response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		var ra time.Duration
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
				ra = time.Duration(secs) * time.Second
			}
		}
		return "", &rateLimitError{retryAfter: ra, body: strings.TrimSpace(string(raw))}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var gr struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in gemini response")
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
