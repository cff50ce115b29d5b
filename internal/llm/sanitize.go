package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/conferente/labelscan/constants"
)

// SanitizeLabelJSON repairs the common model mistakes before validation:
//   - renames known synonyms (lot -> batch, validity -> expiration_date)
//   - drops null and empty optionals
//   - coerces numeric strings to numbers for the weight fields
//   - canonicalizes 'type' (CONGELADO -> frozen) and 'confidence'
//   - removes unknown keys (the schema sets additionalProperties=false)
//
// Returns the cleaned document plus the list of adjustments for the log.
func SanitizeLabelJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	renamed("lot", "batch")
	renamed("lote", "batch")
	renamed("validity", "expiration_date")
	renamed("expiry_date", "expiration_date")
	renamed("manufacturing_date", "production_date")
	renamed("net_weight", "net_weight_kg")
	renamed("gross_weight", "gross_weight_kg")
	renamed("tare", "tare_kg")
	renamed("temperature", "label_temperature")

	numberFields := []string{"net_weight_kg", "gross_weight_kg", "tare_kg", "label_temperature"}
	for _, k := range numberFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			// already a number
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
			s = strings.TrimSuffix(strings.ToLower(s), "kg")
			s = strings.TrimSpace(s)
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				m[k] = f
				dropped = append(dropped, k+"(coerced)")
			} else {
				delete(m, k)
				dropped = append(dropped, k+"(unparseable)")
			}
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}

	if v, ok := m["type"].(string); ok {
		if t, matched := constants.CanonicalizeType(v); matched {
			m["type"] = string(t)
		} else {
			delete(m, "type")
			dropped = append(dropped, "type(unrecognized)")
		}
	}

	if v, ok := m["confidence"].(string); ok {
		c := strings.ToLower(strings.TrimSpace(v))
		switch c {
		case "high", "medium", "low":
			m["confidence"] = c
		default:
			m["confidence"] = "low"
			dropped = append(dropped, "confidence(defaulted)")
		}
	}
	if _, ok := m["confidence"]; !ok {
		m["confidence"] = "low"
		dropped = append(dropped, "confidence(missing)")
	}

	allowed := map[string]struct{}{
		"product": {}, "type": {}, "supplier": {}, "sif": {},
		"net_weight_kg": {}, "gross_weight_kg": {}, "tare_kg": {},
		"production_date": {}, "expiration_date": {}, "batch": {},
		"label_temperature": {}, "notes": {}, "confidence": {},
	}
	for k, v := range m {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" || strings.EqualFold(s, "null") {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		}
		if v == nil {
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.label.sanitize", "adjusted", dropped)
	}
	return out, dropped, nil
}
