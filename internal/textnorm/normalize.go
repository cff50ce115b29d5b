package textnorm

import (
	"regexp"
	"strings"
)

var (
	reSymbolRuns = regexp.MustCompile(`[|/\\=\-+*]{3,}`)
	reCharset    = regexp.MustCompile(`[^\w\s/.\-,%;]`)
	reSpaces     = regexp.MustCompile(`\s+`)
	reDigitAlpha = regexp.MustCompile(`(\d) +([a-z])`)
	reDigitGroup = regexp.MustCompile(`(\d) +(\d{3})\b`)
	reAllDigits  = regexp.MustCompile(`^\d+$`)
	rePunctRun   = regexp.MustCompile(`^[!@#$%^&*()]{2,}`)
)

// Normalize cleans raw OCR output into a lowercase single-spaced string:
// noise runs of symbols removed, the character set reduced to what label
// fields actually use, and digit splits from OCR spacing rejoined
// ("18 000" -> "18000"). Applying it twice yields the same result as once.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reSymbolRuns.ReplaceAllString(s, " ")
	s = reCharset.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	s = reDigitGroup.ReplaceAllString(s, "$1$2")
	s = strings.ToLower(s)
	s = reDigitAlpha.ReplaceAllString(s, "$1$2")
	return strings.TrimSpace(s)
}

// CandidateLines splits raw OCR text into normalized lines and drops the
// garbage: too short, all digits, leading punctuation runs, or any character
// repeated 4+ times in a row (a classic OCR smear).
func CandidateLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = Normalize(l)
		if len(l) < 2 {
			continue
		}
		if reAllDigits.MatchString(l) {
			continue
		}
		if rePunctRun.MatchString(l) {
			continue
		}
		if hasCharRun(l, 4) {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// hasCharRun reports whether any byte repeats n or more times consecutively.
func hasCharRun(s string, n int) bool {
	run := 1
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}
