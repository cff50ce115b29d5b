package llm

import "context"

// LabelFields is the normalized shape we want from the model. Pointers mean
// the field may be absent: the model is told to omit anything not printed on
// the label.
type LabelFields struct {
	Product          string   `json:"product,omitempty"`
	Type             string   `json:"type,omitempty"` // frozen|refrigerated|fresh|unknown
	Supplier         string   `json:"supplier,omitempty"`
	SIF              string   `json:"sif,omitempty"`
	NetWeightKg      *float64 `json:"net_weight_kg,omitempty"`
	GrossWeightKg    *float64 `json:"gross_weight_kg,omitempty"`
	TareKg           *float64 `json:"tare_kg,omitempty"`
	ProductionDate   string   `json:"production_date,omitempty"` // DD/MM/YYYY
	ExpirationDate   string   `json:"expiration_date,omitempty"` // DD/MM/YYYY
	Batch            string   `json:"batch,omitempty"`
	LabelTemperature *float64 `json:"label_temperature,omitempty"` // storage temp printed on the label
	Notes            string   `json:"notes,omitempty"`
	Confidence       string   `json:"confidence"` // high|medium|low
}

type ExtractRequest struct {
	ImageJPEG []byte // raw image bytes, sent inline
	OCRText   string // optional pre-read text, attached as a hint
	Supplier  string // operator-selected supplier, if already known
}

// LabelExtractor is the interface the cascade depends on for the model tier.
type LabelExtractor interface {
	ExtractLabel(ctx context.Context, req ExtractRequest) (LabelFields, []byte /*rawJSON*/, error)
}
