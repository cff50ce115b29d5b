package constants

import "strings"

// ProductType is the storage classification of a product, used to pick the
// right expiration-risk threshold.
type ProductType string

const (
	Frozen       ProductType = "frozen"
	Refrigerated ProductType = "refrigerated"
	Fresh        ProductType = "fresh"
	UnknownType  ProductType = "unknown"
)

var allProductTypes = []ProductType{Frozen, Refrigerated, Fresh, UnknownType}

// ProductTypes returns the canonical storage types in display order.
func ProductTypes() []ProductType {
	result := make([]ProductType, len(allProductTypes))
	copy(result, allProductTypes)
	return result
}

// ProductTypeStrings returns the canonical type values, e.g. for prompt enums.
func ProductTypeStrings() []string {
	result := make([]string, len(allProductTypes))
	for i, t := range allProductTypes {
		result[i] = string(t)
	}
	return result
}

// CanonicalizeType maps free-form storage labels (including the Portuguese and
// Spanish spellings that show up on labels) onto a canonical ProductType.
func CanonicalizeType(input string) (ProductType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return UnknownType, false
	}

	synonyms := map[string]ProductType{
		"congelado":   Frozen,
		"congelada":   Frozen,
		"freezer":     Frozen,
		"refrigerado": Refrigerated,
		"refrigerada": Refrigerated,
		"resfriado":   Refrigerated,
		"resfriada":   Refrigerated,
		"chilled":     Refrigerated,
		"fresco":      Fresh,
		"fresca":      Fresh,
	}
	if t, ok := synonyms[normalized]; ok {
		return t, true
	}

	for _, t := range allProductTypes {
		if normalized == string(t) {
			return t, true
		}
	}
	return UnknownType, false
}
