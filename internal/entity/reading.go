package entity

import (
	"time"

	"github.com/conferente/labelscan/constants"
)

// ExtractedLabel is the structured data pulled out of one label photo.
// Optional numeric fields are pointers; absent means "not on the label",
// never zero.
type ExtractedLabel struct {
	Product        string                `json:"product,omitempty"`
	Supplier       string                `json:"supplier,omitempty"`
	Batch          string                `json:"batch,omitempty"`
	ProductionDate string                `json:"production_date,omitempty"` // DD/MM/YYYY
	ExpirationDate string                `json:"expiration_date,omitempty"` // DD/MM/YYYY
	NetWeightKg    *float64              `json:"net_weight_kg,omitempty"`
	GrossWeightKg  *float64              `json:"gross_weight_kg,omitempty"`
	TareKg         *float64              `json:"tare_kg,omitempty"`
	Temperature    *float64              `json:"temperature,omitempty"` // °C from the label
	Type           constants.ProductType `json:"type,omitempty"`
	SIF            string                `json:"sif,omitempty"`
	Barcode        string                `json:"barcode,omitempty"`
	Confidence     int                   `json:"confidence"` // 0..100
}

// LabelReading is one capture event: immutable once created, appended to the
// bounded history inside the knowledge base.
type LabelReading struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Supplier  string         `json:"supplier"`
	Product   string         `json:"product"`
	Extracted ExtractedLabel `json:"extracted"`
}
