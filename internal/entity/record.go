package entity

import (
	"time"

	"github.com/conferente/labelscan/constants"
)

// TareLine is one tare component: N identical containers of a unit weight.
type TareLine struct {
	Qty        int     `json:"qty"`
	UnitTareKg float64 `json:"unit_tare_kg"`
}

// WeighingRecord is the final saved transaction for data transfer between
// layers: the sink of the extraction/reconciliation pipeline.
type WeighingRecord struct {
	ID                 string                 `json:"id"`
	Timestamp          time.Time              `json:"timestamp"`
	Supplier           string                 `json:"supplier"`
	Product            string                 `json:"product"`
	GrossWeight        float64                `json:"gross_weight"`
	NoteWeight         float64                `json:"note_weight"` // invoice weight
	NetWeight          float64                `json:"net_weight"`
	TareTotal          float64                `json:"tare_total"`
	Boxes              TareLine               `json:"boxes"`
	Packaging          TareLine               `json:"packaging,omitempty"`
	GrossWeightDetails []float64              `json:"gross_weight_details,omitempty"`
	Temperature        *float64               `json:"temperature,omitempty"`
	Batch              string                 `json:"batch,omitempty"`
	ProductionDate     string                 `json:"production_date,omitempty"`
	ExpirationDate     string                 `json:"expiration_date,omitempty"`
	Status             constants.RecordStatus `json:"status"`
	AIAnalysis         string                 `json:"ai_analysis,omitempty"`
	LabelSummary       string                 `json:"label_summary,omitempty"`
	PhotoRef           string                 `json:"photo_ref,omitempty"`
}
