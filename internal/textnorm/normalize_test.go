package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLowercasesAndCollapsesSpaces(t *testing.T) {
	assert.Equal(t, "peso bruto 15,5kg", Normalize("PESO   BRUTO \t 15,5 KG"))
}

func TestNormalizeStripsSymbolRuns(t *testing.T) {
	assert.Equal(t, "lote ab12", Normalize("----- LOTE AB12 ====="))
}

func TestNormalizeReducesCharset(t *testing.T) {
	assert.Equal(t, "val 10/02/2027", Normalize("VAL: 10/02/2027 ★"))
}

func TestNormalizeJoinsSplitDigitGroups(t *testing.T) {
	assert.Equal(t, "peso 18000", Normalize("PESO 18 000"))
}

func TestNormalizeJoinsDigitUnit(t *testing.T) {
	assert.Equal(t, "tara 500g", Normalize("TARA 500 G"))
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"PESO   BRUTO \t 15,5 KG",
		"----- LOTE AB12 =====",
		"PESO 18 000",
		"FAB 10/08/2026 VAL 10/02/2027",
		"  FILE DE PEITO DE FRANGO  ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestCandidateLinesFiltersGarbage(t *testing.T) {
	raw := "FILE DE FRANGO\n12345\n!!!!\nx\naaaaaa\nLOTE AB12"
	lines := CandidateLines(raw)
	assert.Equal(t, []string{"file de frango", "lote ab12"}, lines)
}

func TestCandidateLinesKeepsMixedDigitLines(t *testing.T) {
	lines := CandidateLines("TARA 500 G\n99999")
	assert.Equal(t, []string{"tara 500g"}, lines)
}

func TestHasCharRun(t *testing.T) {
	assert.True(t, hasCharRun("xaaaax", 4))
	assert.False(t, hasCharRun("aaabaaa", 4))
	assert.False(t, hasCharRun("", 4))
}
