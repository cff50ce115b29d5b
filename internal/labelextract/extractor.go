// Package labelextract turns normalized label text into structured fields.
//
// Extraction is a single pass over an ordered rule table: each rule resolves
// one field from the normalized text or the candidate line list, first match
// wins, and no rule revisits a field another rule resolved. New label formats
// are supported by appending rules, not by forking the extractor.
package labelextract

import (
	"log/slog"
	"strings"

	"github.com/conferente/labelscan/constants"
	"github.com/conferente/labelscan/internal/textnorm"
)

// Unresolved is the sentinel for string fields the rules could not fill;
// the UI shows these for manual review.
const Unresolved = "review"

// Fields is the extraction result. Weight fields are nil when not found.
type Fields struct {
	Product           string
	Supplier          string
	Batch             string
	ManufacturingDate string // DD/MM/YYYY
	ExpirationDate    string // DD/MM/YYYY
	TareKg            *float64
	GrossWeightKg     *float64
	NetWeightKg       *float64
	Type              constants.ProductType
	Confidence        int
}

type rule struct {
	field string
	apply func(in input, f *Fields)
}

type input struct {
	text     string   // normalized, lowercase, single-spaced
	lines    []string // normalized candidate lines
	rawLines []string // case-preserved lines, for uppercase token heuristics
}

// Ordered: dates first (they anchor batch/tare heuristics), weights before
// the name rules so name scoring can skip weight-bearing lines, supplier
// before product so the product rule can exclude the supplier line.
var rules = []rule{
	{"dates", extractDates},
	{"batch", extractBatch},
	{"tare", extractTare},
	{"weights", extractGrossNet},
	{"supplier", extractSupplier},
	{"product", extractProduct},
	{"type", extractType},
}

type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract runs the rule table over the normalized text plus the original
// (case-preserved) text. It never fails: anything the rules cannot resolve
// stays at its sentinel and lowers the confidence score instead.
func (e *Extractor) Extract(normalized, original string) Fields {
	in := input{
		text:     normalized,
		lines:    textnorm.CandidateLines(original),
		rawLines: splitRawLines(original),
	}

	f := Fields{
		Product:           Unresolved,
		Supplier:          Unresolved,
		Batch:             Unresolved,
		ManufacturingDate: Unresolved,
		ExpirationDate:    Unresolved,
		Type:              constants.UnknownType,
	}
	for _, r := range rules {
		r.apply(in, &f)
	}
	f.Confidence = ConfidenceScore(f)

	e.logger.Debug("labelextract.done",
		"confidence", f.Confidence,
		"product", f.Product,
		"supplier", f.Supplier,
		"batch", f.Batch,
	)
	return f
}

// ConfidenceScore is a weighted completeness heuristic, not a probability.
// Weights favor the identity fields; a +10 corroboration bonus applies when
// at least two of the three weights were resolved together.
func ConfidenceScore(f Fields) int {
	score := 0
	if f.Product != Unresolved {
		score += 25
	}
	if f.Supplier != Unresolved {
		score += 20
	}
	if f.Batch != Unresolved {
		score += 15
	}
	if f.ManufacturingDate != Unresolved {
		score += 15
	}
	if f.ExpirationDate != Unresolved {
		score += 15
	}
	if f.TareKg != nil {
		score += 10
	}
	if f.GrossWeightKg != nil {
		score += 5
	}
	if f.NetWeightKg != nil {
		score += 5
	}

	weights := 0
	for _, w := range []*float64{f.TareKg, f.GrossWeightKg, f.NetWeightKg} {
		if w != nil {
			weights++
		}
	}
	if weights >= 2 {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

func splitRawLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
