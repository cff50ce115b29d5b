package labelextract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/conferente/labelscan/constants"
)

// Normalization strips colons, so keyword patterns match on spaces, dots and
// dashes only.
var (
	reMfgDate = regexp.MustCompile(`(?:data de fab\w*|fabricacao|fabr?\w*|man(?:uf)?\w*|prod\w*)[\s.\-]*([\d/.\-]{6,10})`)
	reExpDate = regexp.MustCompile(`(?:validade|vencimento|venc\w*|val\w*|exp\w*)[\s.\-]*([\d/.\-]{6,10})`)
	reAnyDate = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})\b`)

	reBatchKeyword = regexp.MustCompile(`\b(?:lote|lot|batch|l)[\s.\-]+([a-z0-9][a-z0-9\-/]{1,19})\b`)
	reBatchToken   = regexp.MustCompile(`^[A-Z0-9\-]{3,15}$`)

	reTareKeyword = regexp.MustCompile(`\b(?:tara|emb\w*|packaging|peso vazio|vazio|t)[\s.\-]+(\d+(?:[.,]\d+)?)\s*(kg|g)?\b`)
	reWeightUnit  = regexp.MustCompile(`\b(\d+(?:[.,]\d+)?)\s*(kg|g)\b`)

	reGross = regexp.MustCompile(`\b(?:peso bruto|bruto|gross)[\s.\-]*(\d+(?:[.,]\d+)?)\s*(kg|g)?\b`)
	reNet   = regexp.MustCompile(`\b(?:peso liq\w*|liq\w*|net)[\s.\-]*(\d+(?:[.,]\d+)?)\s*(kg|g)?\b`)

	reSupplierPrefix = regexp.MustCompile(`^(?:marca|fornecedor|supplier|brand|fabricante)\b[\s.\-]*`)
	reCorporate      = regexp.MustCompile(`\b(?:ltda|s\.?a\.?|cia|inc)\b`)

	reDigit = regexp.MustCompile(`\d`)
	reWord  = regexp.MustCompile(`[a-z]{2,}`)
)

// fieldKeywords marks lines that carry a labeled field rather than a name.
var fieldKeywords = []string{
	"peso", "bruto", "liquido", "liq", "tara", "vazio", "emb",
	"lote", "lot", "batch",
	"val", "venc", "fab", "man", "prod", "data",
	"kg", "sif", "temp", "cnpj", "reg", "cod",
	"marca", "fornecedor", "supplier", "brand", "fabricante",
}

func isFieldLine(line string) bool {
	for _, kw := range fieldKeywords {
		if containsWord(line, kw) {
			return true
		}
	}
	return false
}

func containsWord(line, w string) bool {
	idx := 0
	for {
		i := strings.Index(line[idx:], w)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isAlnum(line[i-1])
		afterIdx := i + len(w)
		after := afterIdx >= len(line) || !isAlnum(line[afterIdx])
		if before && after {
			return true
		}
		idx = i + 1
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 'A' && b <= 'Z'
}

// --- dates ---

// extractDates tries the keyword-anchored forms first, then falls back to the
// positional heuristic: first valid date on the label is manufacturing, last
// is expiration. A lone keyword-less date fills manufacturing only; calling
// it an expiration too would raise false risk alerts. Two-digit years map
// into 2000-2099 as printed.
func extractDates(in input, f *Fields) {
	if m := reMfgDate.FindStringSubmatch(in.text); m != nil {
		if d, ok := parseLabelDate(m[1]); ok {
			f.ManufacturingDate = d
		}
	}
	if m := reExpDate.FindStringSubmatch(in.text); m != nil {
		if d, ok := parseLabelDate(m[1]); ok {
			f.ExpirationDate = d
		}
	}
	if f.ManufacturingDate != Unresolved && f.ExpirationDate != Unresolved {
		return
	}

	var dates []string
	for _, m := range reAnyDate.FindAllStringSubmatch(in.text, -1) {
		if d, ok := parseLabelDate(m[0]); ok {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return
	}
	if f.ManufacturingDate == Unresolved {
		f.ManufacturingDate = dates[0]
	}
	if f.ExpirationDate == Unresolved {
		last := dates[len(dates)-1]
		if last != f.ManufacturingDate {
			f.ExpirationDate = last
		}
	}
}

// parseLabelDate validates a raw date token and renders it as DD/MM/YYYY.
func parseLabelDate(raw string) (string, bool) {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '.' || r == '-'
	})
	if len(parts) != 3 {
		return "", false
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}
	switch len(parts[2]) {
	case 2:
		year += 2000
	case 4:
	default:
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%04d", day, month, year), true
}

// --- batch ---

func extractBatch(in input, f *Fields) {
	for _, line := range in.lines {
		if m := reBatchKeyword.FindStringSubmatch(line); m != nil {
			f.Batch = strings.ToUpper(m[1])
			return
		}
	}
	// Fallback: the first uppercase code-looking token mixing letters and
	// digits. Scanned on the case-preserved lines so real words don't qualify.
	for _, line := range in.rawLines {
		for _, tok := range strings.Fields(line) {
			tok = strings.Trim(tok, ".,;:")
			if !reBatchToken.MatchString(tok) {
				continue
			}
			if !strings.ContainsAny(tok, "0123456789") {
				continue
			}
			if !strings.ContainsAny(tok, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
				continue
			}
			if _, isDate := parseLabelDate(tok); isDate {
				continue
			}
			f.Batch = tok
			return
		}
	}
}

// --- weights ---

func parseWeight(num, unit string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	// Grams, or an unlabeled value too big to be kilograms on a pallet label.
	if unit == "g" || (unit == "" && v > 100) {
		v /= 1000
	}
	return v, true
}

func extractTare(in input, f *Fields) {
	for _, line := range in.lines {
		m := reTareKeyword.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if v, ok := parseWeight(m[1], m[2]); ok && v > 0 && v < 100 {
			f.TareKg = &v
			return
		}
	}
	// Fallback: with several weights on the label the smallest plausible one
	// is almost always the container.
	var candidates []float64
	for _, m := range reWeightUnit.FindAllStringSubmatch(in.text, -1) {
		if v, ok := parseWeight(m[1], m[2]); ok && v > 0.01 && v < 100 {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) < 2 {
		return
	}
	smallest := candidates[0]
	for _, v := range candidates[1:] {
		if v < smallest {
			smallest = v
		}
	}
	if smallest > 0.1 && smallest < 20 {
		f.TareKg = &smallest
	}
}

func extractGrossNet(in input, f *Fields) {
	if m := reGross.FindStringSubmatch(in.text); m != nil {
		if v, ok := parseWeight(m[1], m[2]); ok && v > 0 && v < 500 {
			f.GrossWeightKg = &v
		}
	}
	if m := reNet.FindStringSubmatch(in.text); m != nil {
		if v, ok := parseWeight(m[1], m[2]); ok && v > 0 && v < 500 {
			f.NetWeightKg = &v
		}
	}
}

// --- supplier and product ---

func extractSupplier(in input, f *Fields) {
	for _, line := range in.lines {
		hasPrefix := reSupplierPrefix.MatchString(line)
		if !hasPrefix && !reCorporate.MatchString(line) {
			continue
		}
		name := reSupplierPrefix.ReplaceAllString(line, "")
		name = strings.TrimSpace(name)
		if len(name) >= 2 {
			f.Supplier = name
			return
		}
	}
	// Fallback: the first name-like line. Labels usually print the producer
	// before the product description.
	for _, line := range in.lines {
		if isFieldLine(line) {
			continue
		}
		if len(line) < 4 || len(line) > 59 {
			continue
		}
		if line[0] >= '0' && line[0] <= '9' {
			continue
		}
		f.Supplier = line
		return
	}
}

// extractProduct picks the highest-scoring candidate line. The score favors
// multi-word prose-like lines and penalizes digit density, so weight and date
// lines lose to the product description.
func extractProduct(in input, f *Fields) {
	best := ""
	bestScore := 0.0
	for _, line := range in.lines {
		if isFieldLine(line) {
			continue
		}
		if line == f.Supplier {
			continue
		}
		s := lineScore(line)
		if s > bestScore {
			best = line
			bestScore = s
		}
	}
	if best != "" {
		f.Product = best
	}
}

// extractType scans for the storage keywords labels actually print.
func extractType(in input, f *Fields) {
	for _, w := range strings.Fields(in.text) {
		if t, ok := constants.CanonicalizeType(w); ok {
			f.Type = t
			return
		}
	}
}

func lineScore(line string) float64 {
	words := float64(len(reWord.FindAllString(line, -1)))
	digits := float64(len(reDigit.FindAllString(line, -1)))
	length := float64(len(line)) / 2.5
	if length > 25 {
		length = 25
	}
	return 3.5*words + length - 1.2*digits
}
