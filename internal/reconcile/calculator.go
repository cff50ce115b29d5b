// Package reconcile computes the weighing arithmetic: summed gross entries,
// tare totals, net weight, and the verdict against the invoice.
package reconcile

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/conferente/labelscan/constants"
	"github.com/conferente/labelscan/internal/entity"
)

// Result is one reconciliation outcome. Difference is net minus invoice, so
// positive means the scale read more than the invoice claims.
type Result struct {
	GrossTotal   float64                `json:"gross_total"`
	GrossEntries []float64              `json:"gross_entries"`
	TareTotal    float64                `json:"tare_total"`
	NetWeight    float64                `json:"net_weight"`
	Invoice      float64                `json:"invoice"`
	Difference   float64                `json:"difference"`
	Status       constants.RecordStatus `json:"status"`
}

// ParseGrossInput parses the operator's gross-weight entry: one value or a
// list separated by commas, plus signs, semicolons, or whitespace. Decimals
// use a dot. Every entry must be a positive number.
func ParseGrossInput(input string) ([]float64, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '+' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("reconcile: empty gross weight input")
	}
	entries := make([]float64, 0, len(fields))
	for _, fld := range fields {
		v, err := strconv.ParseFloat(fld, 64)
		if err != nil {
			return nil, fmt.Errorf("reconcile: bad gross entry %q: %w", fld, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("reconcile: gross entry must be positive, got %v", v)
		}
		entries = append(entries, v)
	}
	return entries, nil
}

// TotalTare sums the tare lines: quantity times unit weight per line.
func TotalTare(lines ...entity.TareLine) float64 {
	total := 0.0
	for _, l := range lines {
		if l.Qty <= 0 || l.UnitTareKg <= 0 {
			continue
		}
		total += float64(l.Qty) * l.UnitTareKg
	}
	return total
}

// WithinTolerance reports whether the difference stays inside the accepted
// weighing tolerance.
func WithinTolerance(difference float64) bool {
	return math.Abs(difference) <= constants.ToleranceKg
}

// Reconcile sums the gross entries, subtracts the tare, and classifies the
// result against the invoice weight.
func Reconcile(grossEntries []float64, tareTotal, invoice float64) Result {
	gross := 0.0
	for _, v := range grossEntries {
		gross += v
	}
	net := gross - tareTotal
	diff := net - invoice

	status := constants.StatusError
	if WithinTolerance(diff) {
		status = constants.StatusVerified
	}
	return Result{
		GrossTotal:   gross,
		GrossEntries: grossEntries,
		TareTotal:    tareTotal,
		NetWeight:    net,
		Invoice:      invoice,
		Difference:   diff,
		Status:       status,
	}
}

// Summary renders the result the way the weighing report prints it.
func (r Result) Summary() string {
	return fmt.Sprintf("bruto %.3f kg, tara %.3f kg, liquido %.3f kg, nota %.3f kg, diferenca %+.3f kg (%s)",
		r.GrossTotal, r.TareTotal, r.NetWeight, r.Invoice, r.Difference, r.Status)
}
