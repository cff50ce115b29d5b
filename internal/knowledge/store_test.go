package knowledge

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conferente/labelscan/constants"
	"github.com/conferente/labelscan/internal/entity"
)

type memRepo struct {
	kb      *entity.KnowledgeBase
	saves   int
	loadErr error
	saveErr error
}

func (r *memRepo) Load(_ context.Context) (*entity.KnowledgeBase, error) {
	return r.kb, r.loadErr
}

func (r *memRepo) Save(_ context.Context, kb *entity.KnowledgeBase) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.kb = kb
	r.saves++
	return nil
}

var baseTime = time.Date(2026, time.August, 10, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	s, err := NewStore(context.Background(), repo, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return baseTime }
	return s, repo
}

func label(net, tare float64, exp string) entity.ExtractedLabel {
	l := entity.ExtractedLabel{ExpirationDate: exp, Confidence: 80}
	if net > 0 {
		l.NetWeightKg = &net
	}
	if tare > 0 {
		l.TareKg = &tare
	}
	return l
}

func TestNewStoreStartsEmptyOnLoadFailure(t *testing.T) {
	repo := &memRepo{loadErr: errors.New("corrupt document")}
	s, err := NewStore(context.Background(), repo, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Suppliers())
	assert.Empty(t, s.Products())
}

func TestStoreReadingBuildsPattern(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	_, err := s.StoreReading(ctx, "seara", "file de frango", label(15.0, 0.5, ""))
	require.NoError(t, err)
	_, err = s.StoreReading(ctx, "seara", "file de frango", label(14.0, 0.5, ""))
	require.NoError(t, err)

	p, ok := s.Pattern("seara", "file de frango")
	require.True(t, ok)
	assert.Equal(t, 2, p.TotalReadings)
	assert.InDelta(t, 14.5, p.AverageNetWeight, 1e-9)
	assert.InDelta(t, 0.5, p.AverageTareWeight, 1e-9)
	assert.Equal(t, baseTime, p.LastReading)

	assert.Equal(t, []string{"seara"}, s.Suppliers())
	assert.Equal(t, []string{"file de frango"}, s.Products())
	assert.Equal(t, 2, repo.saves)
}

func TestStoreReadingRequiresPairNames(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.StoreReading(context.Background(), "", "file de frango", label(15, 0, ""))
	assert.Error(t, err)
	_, err = s.StoreReading(context.Background(), "seara", "", label(15, 0, ""))
	assert.Error(t, err)
}

func TestStoreReadingKeysAreCaseSensitive(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.StoreReading(ctx, "Seara", "file", label(15, 0, ""))
	require.NoError(t, err)
	_, err = s.StoreReading(ctx, "seara", "file", label(10, 0, ""))
	require.NoError(t, err)

	p, ok := s.Pattern("Seara", "file")
	require.True(t, ok)
	assert.Equal(t, 1, p.TotalReadings)
	assert.Len(t, s.Suppliers(), 2)
}

func TestReadingLogEvictsOldest(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.StoreReading(ctx, "first", "first product", label(1, 0, ""))
	require.NoError(t, err)
	for i := 0; i < constants.MaxImageReadings; i++ {
		_, err := s.StoreReading(ctx, "bulk", "bulk product", label(float64(i+1), 0, ""))
		require.NoError(t, err)
	}

	readings := s.RecentReadings("bulk", "bulk product", constants.MaxImageReadings+1)
	assert.Len(t, readings, constants.MaxImageReadings)
	assert.Empty(t, s.RecentReadings("first", "first product", 10))

	// the pattern counter survives eviction even though the readings left
	p, ok := s.Pattern("first", "first product")
	require.True(t, ok)
	assert.Equal(t, 1, p.TotalReadings)
}

func TestPatternWindowUsesMostRecentReadings(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// PatternWindow old readings at 10 kg, then one at 10+window kg: the
	// oldest falls out of the window, so the average moves.
	for i := 0; i < constants.PatternWindow; i++ {
		_, err := s.StoreReading(ctx, "seara", "file", label(10, 0, ""))
		require.NoError(t, err)
	}
	_, err := s.StoreReading(ctx, "seara", "file", label(10+float64(constants.PatternWindow), 0, ""))
	require.NoError(t, err)

	p, ok := s.Pattern("seara", "file")
	require.True(t, ok)
	assert.Equal(t, constants.PatternWindow+1, p.TotalReadings)
	assert.InDelta(t, 11.0, p.AverageNetWeight, 1e-9)
}

func TestPatternSkipsMissingWeights(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.StoreReading(ctx, "seara", "file", label(15, 0.5, ""))
	require.NoError(t, err)
	_, err = s.StoreReading(ctx, "seara", "file", label(13, 0, ""))
	require.NoError(t, err)

	p, _ := s.Pattern("seara", "file")
	assert.InDelta(t, 14.0, p.AverageNetWeight, 1e-9)
	assert.InDelta(t, 0.5, p.AverageTareWeight, 1e-9)
}

func TestPatternLearnsExpirationDays(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// Scanned mid-shelf-life: printed 20 days ago with 10 days left. The
	// learned span is the label's 30 days, not the days remaining at scan
	// time.
	l := label(15, 0, baseTime.AddDate(0, 0, 10).Format("02/01/2006"))
	l.ProductionDate = baseTime.AddDate(0, 0, -20).Format("02/01/2006")
	_, err := s.StoreReading(ctx, "seara", "file", l)
	require.NoError(t, err)

	p, _ := s.Pattern("seara", "file")
	assert.InDelta(t, 30.0, p.CommonExpirationDays, 1e-9)
}

func TestPatternNeedsBothDatesForExpirationDays(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.StoreReading(ctx, "seara", "file",
		label(15, 0, baseTime.AddDate(0, 0, 10).Format("02/01/2006")))
	require.NoError(t, err)

	p, _ := s.Pattern("seara", "file")
	assert.Zero(t, p.CommonExpirationDays)
}

func TestResetDropsEverything(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	_, err := s.StoreReading(ctx, "seara", "file", label(15, 0, ""))
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx))

	assert.Empty(t, s.Suppliers())
	_, ok := s.Pattern("seara", "file")
	assert.False(t, ok)
	assert.NotNil(t, repo.kb)
}

func TestStoreReadingSaveFailureSurfaces(t *testing.T) {
	s, repo := newTestStore(t)
	repo.saveErr = errors.New("disk full")

	_, err := s.StoreReading(context.Background(), "seara", "file", label(15, 0, ""))
	assert.Error(t, err)
}

func TestPatternsForSupplierSortedByRecency(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	tick := baseTime
	s.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}

	for i, product := range []string{"file", "coxa", "asa"} {
		_, err := s.StoreReading(ctx, "seara", product, label(float64(10+i), 0, ""))
		require.NoError(t, err)
	}
	_, err := s.StoreReading(ctx, "aurora", "linguica", label(5, 0, ""))
	require.NoError(t, err)

	patterns := s.PatternsForSupplier("seara")
	require.Len(t, patterns, 3)
	assert.Equal(t, "asa", patterns[0].Product)
	assert.Equal(t, "file", patterns[2].Product)
}

func TestPatternsForProductCrossesSuppliers(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	tick := baseTime
	s.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}

	_, err := s.StoreReading(ctx, "seara", "file", label(15, 0, ""))
	require.NoError(t, err)
	_, err = s.StoreReading(ctx, "aurora", "file", label(14, 0, ""))
	require.NoError(t, err)
	_, err = s.StoreReading(ctx, "seara", "coxa", label(9, 0, ""))
	require.NoError(t, err)

	patterns := s.PatternsForProduct("file")
	require.Len(t, patterns, 2)
	assert.Equal(t, "aurora", patterns[0].Supplier)
	assert.Equal(t, "seara", patterns[1].Supplier)
	assert.Empty(t, s.PatternsForProduct("asa"))
}

func TestRecentReadingsOrderAndBound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := s.StoreReading(ctx, "seara", "file", label(float64(i), 0, ""))
		require.NoError(t, err)
	}

	recent := s.RecentReadings("seara", "file", 2)
	require.Len(t, recent, 2)
	require.NotNil(t, recent[1].Extracted.NetWeightKg)
	assert.InDelta(t, 5.0, *recent[1].Extracted.NetWeightKg, 1e-9)
}

func BenchmarkStoreReading(b *testing.B) {
	repo := &memRepo{}
	s, err := NewStore(context.Background(), repo, nil)
	if err != nil {
		b.Fatal(err)
	}
	l := label(15, 0.5, "")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.StoreReading(context.Background(), "seara", fmt.Sprintf("p%d", i%10), l); err != nil {
			b.Fatal(err)
		}
	}
}
