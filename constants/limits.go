package constants

// ToleranceKg is the fixed band within which a net-vs-invoice difference is
// considered acceptable.
const ToleranceKg = 0.2

// MaxImageReadings caps the bounded reading log; the oldest entry is evicted
// first once the cap is hit.
const MaxImageReadings = 500

// PatternWindow is how many of the most recent readings per supplier+product
// pair feed the recomputed averages.
const PatternWindow = 50

// DefaultShelfLifeDays is suggested when a pattern has no date-derived average.
const DefaultShelfLifeDays = 30

// Confidence score thresholds for the textual labels attached to offline
// extractions.
const (
	ConfidenceReliable = 75
	ConfidenceReview   = 50
)
