// Package cascade runs the tiered label analysis: cloud text detection with
// rule extraction first, the vision model second, on-device OCR last. A tier
// failure falls through to the next; when every tier fails the caller gets
// ErrManualEntry and the operator types the fields in.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/conferente/labelscan/constants"
	"github.com/conferente/labelscan/internal/entity"
	"github.com/conferente/labelscan/internal/expiry"
	"github.com/conferente/labelscan/internal/labelextract"
	"github.com/conferente/labelscan/internal/llm"
	"github.com/conferente/labelscan/internal/textnorm"
)

// ErrManualEntry means no tier produced a usable reading.
var ErrManualEntry = errors.New("label analysis exhausted all tiers; manual entry required")

const (
	TierVision = "vision"
	TierModel  = "gemini"
	TierOCR    = "ocr"
)

// TextDetector reads raw text off an image. Both the cloud tier and the
// on-device tier satisfy it.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

type Request struct {
	Image    []byte
	Supplier string // operator-selected supplier, optional
}

type Result struct {
	RequestID       string
	Tier            string
	Label           entity.ExtractedLabel
	ConfidenceLabel string // reliable | review | low
	RiskAlert       string // non-empty when the expiration policy flags the product
	Notes           []string
}

type Cascade struct {
	vision    TextDetector
	model     llm.LabelExtractor
	ocr       TextDetector
	extractor *labelextract.Extractor
	log       *slog.Logger
	now       func() time.Time
}

// New wires the tiers. Any tier may be nil when not configured; it is
// skipped. The rule extractor is shared by both text tiers.
func New(vision TextDetector, model llm.LabelExtractor, ocr TextDetector, logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{
		vision:    vision,
		model:     model,
		ocr:       ocr,
		extractor: labelextract.New(logger),
		log:       logger,
		now:       time.Now,
	}
}

// Analyze runs the tiers in order and returns the first successful reading.
// A low confidence score is not a failure: the result carries the score and
// the operator corrects the fields, so later tiers are never invoked once a
// tier has answered.
func (c *Cascade) Analyze(ctx context.Context, req Request) (Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("cascade.analyze.start",
		"req_id", rid,
		"image_bytes", len(req.Image),
		"has_supplier", req.Supplier != "",
	)

	type tier struct {
		name string
		run  func(context.Context) (entity.ExtractedLabel, []string, error)
	}
	tiers := []tier{
		{TierVision, func(ctx context.Context) (entity.ExtractedLabel, []string, error) {
			return c.textTier(ctx, c.vision, req.Image)
		}},
		{TierModel, func(ctx context.Context) (entity.ExtractedLabel, []string, error) {
			return c.modelTier(ctx, req)
		}},
		{TierOCR, func(ctx context.Context) (entity.ExtractedLabel, []string, error) {
			return c.textTier(ctx, c.ocr, req.Image)
		}},
	}

	for _, t := range tiers {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		label, notes, err := t.run(ctx)
		if err != nil {
			c.log.Warn("cascade.tier.failed",
				"req_id", rid, "tier", t.name, "error", err)
			continue
		}

		res := c.finish(rid, t.name, label, notes)
		c.log.Info("cascade.analyze.ok",
			"req_id", rid,
			"tier", t.name,
			"confidence", label.Confidence,
			"confidence_label", res.ConfidenceLabel,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return res, nil
	}

	c.log.Error("cascade.analyze.exhausted",
		"req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
	return Result{RequestID: rid}, ErrManualEntry
}

var errTierDisabled = errors.New("tier not configured")

func (c *Cascade) textTier(ctx context.Context, det TextDetector, image []byte) (entity.ExtractedLabel, []string, error) {
	if det == nil {
		return entity.ExtractedLabel{}, nil, errTierDisabled
	}
	text, err := det.DetectText(ctx, image)
	if err != nil {
		return entity.ExtractedLabel{}, nil, err
	}
	f := c.extractor.Extract(textnorm.Normalize(text), text)
	return entity.ExtractedLabel{
		Product:        f.Product,
		Supplier:       f.Supplier,
		Batch:          f.Batch,
		ProductionDate: f.ManufacturingDate,
		ExpirationDate: f.ExpirationDate,
		TareKg:         f.TareKg,
		GrossWeightKg:  f.GrossWeightKg,
		NetWeightKg:    f.NetWeightKg,
		Type:           f.Type,
		Confidence:     f.Confidence,
	}, nil, nil
}

func (c *Cascade) modelTier(ctx context.Context, req Request) (entity.ExtractedLabel, []string, error) {
	if c.model == nil {
		return entity.ExtractedLabel{}, nil, errTierDisabled
	}
	fields, _, err := c.model.ExtractLabel(ctx, llm.ExtractRequest{
		ImageJPEG: req.Image,
		Supplier:  req.Supplier,
	})
	if err != nil {
		return entity.ExtractedLabel{}, nil, err
	}

	label := entity.ExtractedLabel{
		Product:        orReview(fields.Product),
		Supplier:       orReview(fields.Supplier),
		Batch:          orReview(fields.Batch),
		ProductionDate: orReview(fields.ProductionDate),
		ExpirationDate: orReview(fields.ExpirationDate),
		TareKg:         fields.TareKg,
		GrossWeightKg:  fields.GrossWeightKg,
		NetWeightKg:    fields.NetWeightKg,
		Temperature:    fields.LabelTemperature,
		SIF:            fields.SIF,
		Type:           constants.UnknownType,
		Confidence:     modelConfidence(fields.Confidence),
	}
	if t, ok := constants.CanonicalizeType(fields.Type); ok {
		label.Type = t
	}

	// Consistency advisories never block the reading; they ride along for
	// the operator to judge.
	var notes []string
	if fields.GrossWeightKg != nil && fields.NetWeightKg != nil && *fields.GrossWeightKg < *fields.NetWeightKg {
		notes = append(notes, fmt.Sprintf(
			"gross weight %.3f kg is below net weight %.3f kg", *fields.GrossWeightKg, *fields.NetWeightKg))
	}
	if prod, err1 := expiry.ParseDate(fields.ProductionDate); err1 == nil {
		if exp, err2 := expiry.ParseDate(fields.ExpirationDate); err2 == nil && !prod.Before(exp) {
			notes = append(notes, fmt.Sprintf(
				"production date %s is not before expiration date %s", fields.ProductionDate, fields.ExpirationDate))
		}
	}
	if fields.Notes != "" {
		notes = append(notes, fields.Notes)
	}
	return label, notes, nil
}

func (c *Cascade) finish(rid, tier string, label entity.ExtractedLabel, notes []string) Result {
	res := Result{
		RequestID:       rid,
		Tier:            tier,
		Label:           label,
		ConfidenceLabel: ConfidenceLabel(label.Confidence),
		Notes:           notes,
	}
	if label.ExpirationDate != labelextract.Unresolved {
		res.RiskAlert = expiry.Evaluate(label.ExpirationDate, label.Type, c.now())
	}
	return res
}

// ConfidenceLabel buckets the numeric score for the UI.
func ConfidenceLabel(confidence int) string {
	switch {
	case confidence >= constants.ConfidenceReliable:
		return "reliable"
	case confidence >= constants.ConfidenceReview:
		return "review"
	default:
		return "low"
	}
}

func orReview(s string) string {
	if s == "" {
		return labelextract.Unresolved
	}
	return s
}

// modelConfidence maps the model's self-reported bucket onto the numeric
// scale the rule extractor uses.
func modelConfidence(c string) int {
	switch c {
	case "high":
		return 90
	case "medium":
		return 60
	default:
		return 30
	}
}
