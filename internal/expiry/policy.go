// Package expiry decides whether a scanned label needs an expiration alert.
package expiry

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/conferente/labelscan/constants"
)

// Alert thresholds in days, by storage type. Expired product alerts
// regardless of type; frozen product alerts only once expired.
const (
	refrigeratedWindow = 2
	freshWindow        = 1
	unknownWindow      = 7
)

// ParseDate parses a label date in DD/MM/YYYY or DD/MM/YY form. Two-digit
// years map into 2000-2099.
func ParseDate(s string) (time.Time, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '.' || r == '-'
	})
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("expiry: malformed date %q", s)
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, fmt.Errorf("expiry: malformed date %q", s)
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("expiry: impossible date %q", s)
	}
	if len(parts[2]) == 2 {
		year += 2000
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// Evaluate returns the alert message for an expiration date, or "" when the
// product is safe. Unparseable dates never alert; the extractor already
// flagged them for review.
func Evaluate(expiration string, ptype constants.ProductType, now time.Time) string {
	exp, err := ParseDate(expiration)
	if err != nil {
		return ""
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(exp.Sub(today).Hours() / 24)

	if days < 0 {
		return fmt.Sprintf("PRODUTO VENCIDO ha %d dia(s)", -days)
	}

	window := -1
	switch ptype {
	case constants.Frozen:
		// Frozen stock is stable until the printed date.
	case constants.Refrigerated:
		window = refrigeratedWindow
	case constants.Fresh:
		window = freshWindow
	default:
		window = unknownWindow
	}
	if window >= 0 && days <= window {
		return fmt.Sprintf("VENCE em %d dia(s)", days)
	}
	return ""
}
