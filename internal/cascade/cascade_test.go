package cascade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conferente/labelscan/internal/llm"
)

const goodLabelText = `FRIGORIFICO BOA CARNE LTDA
FILE DE PEITO DE FRANGO CONGELADO
LOTE AB1234
FAB 10/08/2026 VAL 10/02/2027
PESO BRUTO 15,5 KG
PESO LIQ 15 KG
TARA 500 G`

type fakeDetector struct {
	text  string
	err   error
	calls int
}

func (f *fakeDetector) DetectText(_ context.Context, _ []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeModel struct {
	fields llm.LabelFields
	err    error
	calls  int
}

func (f *fakeModel) ExtractLabel(_ context.Context, _ llm.ExtractRequest) (llm.LabelFields, []byte, error) {
	f.calls++
	return f.fields, nil, f.err
}

func TestAnalyzeShortCircuitsOnFirstTier(t *testing.T) {
	vision := &fakeDetector{text: goodLabelText}
	model := &fakeModel{}
	ocr := &fakeDetector{text: goodLabelText}

	res, err := New(vision, model, ocr, nil).Analyze(context.Background(), Request{Image: []byte("img")})
	require.NoError(t, err)

	assert.Equal(t, TierVision, res.Tier)
	assert.Equal(t, 1, vision.calls)
	assert.Equal(t, 0, model.calls)
	assert.Equal(t, 0, ocr.calls)

	assert.Equal(t, "file de peito de frango congelado", res.Label.Product)
	assert.Equal(t, "reliable", res.ConfidenceLabel)
	assert.NotEmpty(t, res.RequestID)
}

func TestAnalyzeFallsThroughToModel(t *testing.T) {
	vision := &fakeDetector{err: errors.New("quota exceeded")}
	model := &fakeModel{fields: llm.LabelFields{
		Product:    "queijo mussarela",
		Supplier:   "laticinios serra",
		Type:       "refrigerated",
		Confidence: "high",
	}}
	ocr := &fakeDetector{text: goodLabelText}

	res, err := New(vision, model, ocr, nil).Analyze(context.Background(), Request{Image: []byte("img")})
	require.NoError(t, err)

	assert.Equal(t, TierModel, res.Tier)
	assert.Equal(t, 1, vision.calls)
	assert.Equal(t, 1, model.calls)
	assert.Equal(t, 0, ocr.calls)

	assert.Equal(t, "queijo mussarela", res.Label.Product)
	assert.Equal(t, 90, res.Label.Confidence)
	assert.Equal(t, "reliable", res.ConfidenceLabel)
}

func TestAnalyzeReachesOCRTier(t *testing.T) {
	vision := &fakeDetector{err: errors.New("offline")}
	model := &fakeModel{err: errors.New("offline")}
	ocr := &fakeDetector{text: goodLabelText}

	res, err := New(vision, model, ocr, nil).Analyze(context.Background(), Request{Image: []byte("img")})
	require.NoError(t, err)

	assert.Equal(t, TierOCR, res.Tier)
	assert.Equal(t, 1, ocr.calls)
}

func TestAnalyzeManualEntryWhenExhausted(t *testing.T) {
	vision := &fakeDetector{err: errors.New("offline")}
	model := &fakeModel{err: errors.New("offline")}
	ocr := &fakeDetector{err: errors.New("no tesseract")}

	_, err := New(vision, model, ocr, nil).Analyze(context.Background(), Request{Image: []byte("img")})
	require.ErrorIs(t, err, ErrManualEntry)
	assert.Equal(t, 1, vision.calls)
	assert.Equal(t, 1, model.calls)
	assert.Equal(t, 1, ocr.calls)
}

func TestAnalyzeLowConfidenceStillShortCircuits(t *testing.T) {
	// Text with barely anything extractable scores low, but a success is a
	// success: the operator corrects the fields, later tiers stay idle.
	vision := &fakeDetector{text: "xyzw"}
	model := &fakeModel{fields: llm.LabelFields{Product: "queijo", Confidence: "high"}}
	ocr := &fakeDetector{text: goodLabelText}

	res, err := New(vision, model, ocr, nil).Analyze(context.Background(), Request{Image: []byte("img")})
	require.NoError(t, err)

	assert.Equal(t, TierVision, res.Tier)
	assert.Equal(t, "low", res.ConfidenceLabel)
	assert.Equal(t, 0, model.calls)
	assert.Equal(t, 0, ocr.calls)
}

func TestAnalyzeSkipsNilTiers(t *testing.T) {
	ocr := &fakeDetector{text: goodLabelText}

	res, err := New(nil, nil, ocr, nil).Analyze(context.Background(), Request{Image: []byte("img")})
	require.NoError(t, err)
	assert.Equal(t, TierOCR, res.Tier)
}

func TestAnalyzeRiskAlertFromModelReading(t *testing.T) {
	soon := time.Now().AddDate(0, 0, 1).Format("02/01/2006")
	model := &fakeModel{fields: llm.LabelFields{
		Product:        "queijo mussarela",
		Type:           "refrigerated",
		ExpirationDate: soon,
		Confidence:     "high",
	}}

	res, err := New(nil, model, nil, nil).Analyze(context.Background(), Request{Image: []byte("img")})
	require.NoError(t, err)
	assert.Equal(t, "VENCE em 1 dia(s)", res.RiskAlert)
}

func TestAnalyzeConsistencyNotesNeverBlock(t *testing.T) {
	gross, net := 10.0, 12.0
	model := &fakeModel{fields: llm.LabelFields{
		Product:        "costela suina",
		GrossWeightKg:  &gross,
		NetWeightKg:    &net,
		ProductionDate: "10/03/2026",
		ExpirationDate: "10/01/2026",
		Confidence:     "high",
	}}

	res, err := New(nil, model, nil, nil).Analyze(context.Background(), Request{Image: []byte("img")})
	require.NoError(t, err)

	assert.Len(t, res.Notes, 2)
	assert.Contains(t, res.Notes[0], "below net weight")
	assert.Contains(t, res.Notes[1], "not before expiration")
	assert.Equal(t, "reliable", res.ConfidenceLabel)
}

func TestConfidenceLabelBuckets(t *testing.T) {
	assert.Equal(t, "reliable", ConfidenceLabel(75))
	assert.Equal(t, "review", ConfidenceLabel(74))
	assert.Equal(t, "review", ConfidenceLabel(50))
	assert.Equal(t, "low", ConfidenceLabel(49))
}
