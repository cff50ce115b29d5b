package entity

import "time"

// LearningPattern holds the aggregate statistics for one supplier+product
// pair. Averages are recomputed from the most recent readings of the pair
// (window capped at constants.PatternWindow) and only include readings with a
// positive, present value for that field.
type LearningPattern struct {
	Supplier             string    `json:"supplier"`
	Product              string    `json:"product"`
	TotalReadings        int       `json:"total_readings"`
	AverageNetWeight     float64   `json:"average_net_weight,omitempty"`
	AverageGrossWeight   float64   `json:"average_gross_weight,omitempty"`
	AverageTareWeight    float64   `json:"average_tare_weight,omitempty"`
	AverageTemperature   float64   `json:"average_temperature,omitempty"`
	CommonExpirationDays float64   `json:"common_expiration_days,omitempty"`
	LastReading          time.Time `json:"last_reading"`
}
