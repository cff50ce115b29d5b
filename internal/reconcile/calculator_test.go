package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conferente/labelscan/constants"
	"github.com/conferente/labelscan/internal/entity"
)

func TestParseGrossInputList(t *testing.T) {
	entries, err := ParseGrossInput("50,52,49")
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 52, 49}, entries)
}

func TestParseGrossInputSingleValue(t *testing.T) {
	entries, err := ParseGrossInput("15.5")
	require.NoError(t, err)
	assert.Equal(t, []float64{15.5}, entries)
}

func TestParseGrossInputMixedSeparators(t *testing.T) {
	entries, err := ParseGrossInput("50 + 52; 49.5")
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 52, 49.5}, entries)
}

func TestParseGrossInputRejectsGarbage(t *testing.T) {
	_, err := ParseGrossInput("")
	assert.Error(t, err)

	_, err = ParseGrossInput("50,abc")
	assert.Error(t, err)

	_, err = ParseGrossInput("50,-3")
	assert.Error(t, err)
}

func TestTotalTare(t *testing.T) {
	total := TotalTare(
		entity.TareLine{Qty: 2, UnitTareKg: 0.015},
		entity.TareLine{Qty: 0, UnitTareKg: 1.0},
	)
	assert.InDelta(t, 0.03, total, 1e-9)
}

func TestReconcileMismatch(t *testing.T) {
	entries, err := ParseGrossInput("50,52,49")
	require.NoError(t, err)

	tare := TotalTare(entity.TareLine{Qty: 2, UnitTareKg: 0.015})
	r := Reconcile(entries, tare, 148)

	assert.InDelta(t, 151.0, r.GrossTotal, 1e-9)
	assert.InDelta(t, 0.03, r.TareTotal, 1e-9)
	assert.InDelta(t, 150.97, r.NetWeight, 1e-9)
	assert.InDelta(t, 2.97, r.Difference, 1e-9)
	assert.Equal(t, constants.StatusError, r.Status)
}

func TestReconcileWithinTolerance(t *testing.T) {
	r := Reconcile([]float64{148.15}, 0, 148)
	assert.Equal(t, constants.StatusVerified, r.Status)

	r = Reconcile([]float64{147.85}, 0, 148)
	assert.Equal(t, constants.StatusVerified, r.Status)

	r = Reconcile([]float64{148.5}, 0, 148)
	assert.Equal(t, constants.StatusError, r.Status)
}

func TestWithinToleranceBoundary(t *testing.T) {
	assert.True(t, WithinTolerance(0.2))
	assert.True(t, WithinTolerance(-0.2))
	assert.False(t, WithinTolerance(0.21))
}

func TestSummaryFormat(t *testing.T) {
	r := Reconcile([]float64{10}, 0.5, 9.4)
	assert.Contains(t, r.Summary(), "diferenca +0.100 kg")
	assert.Contains(t, r.Summary(), string(constants.StatusVerified))
}
