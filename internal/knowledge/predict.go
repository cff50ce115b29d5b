package knowledge

import (
	"math"
	"time"

	"github.com/conferente/labelscan/constants"
)

// Prediction is the prefill offered to the operator before the label is even
// scanned. Nil fields mean the pattern has no signal for them yet.
type Prediction struct {
	Supplier           string
	Product            string
	NetWeightKg        *float64
	GrossWeightKg      *float64
	TareKg             *float64
	Temperature        *int
	ExpectedExpiration string // DD/MM/YYYY
	BasedOn            int    // readings behind the prediction
}

// Engine derives predictions from the learned patterns.
type Engine struct {
	store *Store
	now   func() time.Time
}

func NewEngine(store *Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// PredictProduct guesses which product a supplier is delivering: the product
// from their most recent reading. Empty when the supplier is unknown.
func (e *Engine) PredictProduct(supplier string) string {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()

	readings := e.store.kb.ImageReadings
	for i := len(readings) - 1; i >= 0; i-- {
		if readings[i].Supplier == supplier {
			return readings[i].Product
		}
	}
	return ""
}

// Predict returns the prefill for a pair. A single reading is noise, not a
// pattern, so prediction starts at two.
func (e *Engine) Predict(supplier, product string) (Prediction, bool) {
	p, ok := e.store.Pattern(supplier, product)
	if !ok || p.TotalReadings < 2 {
		return Prediction{}, false
	}

	pred := Prediction{
		Supplier:      supplier,
		Product:       product,
		NetWeightKg:   round2Ptr(p.AverageNetWeight),
		GrossWeightKg: round2Ptr(p.AverageGrossWeight),
		TareKg:        round2Ptr(p.AverageTareWeight),
		BasedOn:       p.TotalReadings,
	}
	if p.AverageTemperature != 0 {
		t := int(math.Round(p.AverageTemperature))
		pred.Temperature = &t
	}

	shelfDays := int(math.Round(p.CommonExpirationDays))
	if shelfDays <= 0 {
		shelfDays = constants.DefaultShelfLifeDays
	}
	pred.ExpectedExpiration = e.now().AddDate(0, 0, shelfDays).Format("02/01/2006")

	return pred, true
}

func round2Ptr(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	r := math.Round(v*100) / 100
	return &r
}
