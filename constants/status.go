package constants

// RecordStatus is the canonical outcome of a weighing transaction.
type RecordStatus string

// Stable values (stored as these exact strings).
const (
	StatusPending  RecordStatus = "pending"  // saved before both weights were known
	StatusVerified RecordStatus = "verified" // difference within tolerance
	StatusError    RecordStatus = "error"    // difference outside tolerance
)
