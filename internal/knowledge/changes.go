package knowledge

import (
	"fmt"
	"math"

	"github.com/conferente/labelscan/constants"
	"github.com/conferente/labelscan/internal/entity"
	"github.com/conferente/labelscan/internal/labelextract"
)

// tare drift beyond this fraction of the previous value is worth flagging
const tareVarianceLimit = 0.10

// CriticalChanges compares a new reading against the pair's previous one and
// reports the differences an operator should double-check before accepting
// the prefill: a new batch is routine, a new supplier name or a tare jump
// usually means a packaging change or a mislabeled pallet.
func CriticalChanges(prev, cur entity.ExtractedLabel) []string {
	var out []string

	if known(prev.Supplier) && known(cur.Supplier) && prev.Supplier != cur.Supplier {
		out = append(out, fmt.Sprintf("supplier changed: %q -> %q", prev.Supplier, cur.Supplier))
	}
	if known(prev.Batch) && known(cur.Batch) && prev.Batch != cur.Batch {
		out = append(out, fmt.Sprintf("batch changed: %q -> %q", prev.Batch, cur.Batch))
	}
	if knownType(prev.Type) && knownType(cur.Type) && prev.Type != cur.Type {
		out = append(out, fmt.Sprintf("storage type changed: %s -> %s", prev.Type, cur.Type))
	}
	if prev.TareKg != nil && cur.TareKg != nil && *prev.TareKg > 0 {
		drift := math.Abs(*cur.TareKg-*prev.TareKg) / *prev.TareKg
		if drift > tareVarianceLimit {
			out = append(out, fmt.Sprintf("tare drifted %.0f%%: %.3f kg -> %.3f kg",
				drift*100, *prev.TareKg, *cur.TareKg))
		}
	}
	return out
}

func known(s string) bool {
	return s != "" && s != labelextract.Unresolved
}

func knownType(t constants.ProductType) bool {
	return t != "" && t != constants.UnknownType
}
