// Package knowledge is the learning layer: every confirmed reading feeds the
// per-pair statistics that prefill the next weighing of the same product.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conferente/labelscan/constants"
	"github.com/conferente/labelscan/internal/entity"
	"github.com/conferente/labelscan/internal/expiry"
)

type Store struct {
	mu   sync.Mutex
	repo Repository
	kb   *entity.KnowledgeBase
	log  *slog.Logger
	now  func() time.Time
}

// NewStore loads the persisted knowledge base. A corrupt or missing document
// degrades to an empty base: losing learned averages is acceptable, refusing
// to start is not.
func NewStore(ctx context.Context, repo Repository, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{repo: repo, log: logger, now: time.Now}

	kb, err := repo.Load(ctx)
	if err != nil {
		logger.Warn("knowledge.load_failed_starting_empty", "error", err)
		kb = nil
	}
	if kb == nil {
		kb = entity.NewKnowledgeBase()
	}
	if kb.Patterns == nil {
		kb.Patterns = map[string]*entity.LearningPattern{}
	}
	s.kb = kb

	logger.Info("knowledge.loaded",
		"suppliers", len(kb.Suppliers),
		"products", len(kb.Products),
		"readings", len(kb.ImageReadings),
		"patterns", len(kb.Patterns),
	)
	return s, nil
}

// StoreReading records one confirmed label reading: appends to the bounded
// history, registers the names, and recomputes the pair's pattern from its
// most recent readings.
func (s *Store) StoreReading(ctx context.Context, supplier, product string, label entity.ExtractedLabel) (entity.LabelReading, error) {
	if supplier == "" || product == "" {
		return entity.LabelReading{}, fmt.Errorf("knowledge: supplier and product are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	reading := entity.LabelReading{
		ID:        uuid.New().String(),
		Timestamp: now,
		Supplier:  supplier,
		Product:   product,
		Extracted: label,
	}

	s.kb.ImageReadings = append(s.kb.ImageReadings, reading)
	if overflow := len(s.kb.ImageReadings) - constants.MaxImageReadings; overflow > 0 {
		s.kb.ImageReadings = append([]entity.LabelReading(nil), s.kb.ImageReadings[overflow:]...)
	}

	s.kb.Suppliers = appendUnique(s.kb.Suppliers, supplier)
	s.kb.Products = appendUnique(s.kb.Products, product)

	key := entity.PatternKey(supplier, product)
	p, ok := s.kb.Patterns[key]
	if !ok {
		p = &entity.LearningPattern{Supplier: supplier, Product: product}
		s.kb.Patterns[key] = p
	}
	p.TotalReadings++
	p.LastReading = now
	s.recompute(p, supplier, product)

	if err := s.repo.Save(ctx, s.kb); err != nil {
		return entity.LabelReading{}, fmt.Errorf("knowledge: save: %w", err)
	}

	s.log.Info("knowledge.reading_stored",
		"reading_id", reading.ID,
		"supplier", supplier,
		"product", product,
		"total_readings", p.TotalReadings,
	)
	return reading, nil
}

// recompute rebuilds the pattern averages from the pair's most recent
// readings still in the history window. Weight averages only count positive
// present values; a reading with no tare does not drag the tare average down.
func (s *Store) recompute(p *entity.LearningPattern, supplier, product string) {
	recent := s.recentLocked(supplier, product, constants.PatternWindow)

	var netSum, netN, grossSum, grossN, tareSum, tareN, tempSum, tempN, expSum, expN float64
	for _, r := range recent {
		e := r.Extracted
		if e.NetWeightKg != nil && *e.NetWeightKg > 0 {
			netSum += *e.NetWeightKg
			netN++
		}
		if e.GrossWeightKg != nil && *e.GrossWeightKg > 0 {
			grossSum += *e.GrossWeightKg
			grossN++
		}
		if e.TareKg != nil && *e.TareKg > 0 {
			tareSum += *e.TareKg
			tareN++
		}
		if e.Temperature != nil {
			tempSum += *e.Temperature
			tempN++
		}
		if prod, err := expiry.ParseDate(e.ProductionDate); err == nil {
			if exp, err := expiry.ParseDate(e.ExpirationDate); err == nil {
				if days := exp.Sub(prod).Hours() / 24; days > 0 {
					expSum += days
					expN++
				}
			}
		}
	}

	p.AverageNetWeight = avg(netSum, netN)
	p.AverageGrossWeight = avg(grossSum, grossN)
	p.AverageTareWeight = avg(tareSum, tareN)
	p.AverageTemperature = avg(tempSum, tempN)
	p.CommonExpirationDays = avg(expSum, expN)
}

func avg(sum, n float64) float64 {
	if n == 0 {
		return 0
	}
	return sum / n
}

// Pattern returns the learned pattern for an exact supplier+product pair.
func (s *Store) Pattern(supplier, product string) (entity.LearningPattern, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.kb.Patterns[entity.PatternKey(supplier, product)]
	if !ok {
		return entity.LearningPattern{}, false
	}
	return *p, true
}

// PatternsForSupplier returns every pattern learned for a supplier, most
// recently fed first.
func (s *Store) PatternsForSupplier(supplier string) []entity.LearningPattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.LearningPattern
	for _, p := range s.kb.Patterns {
		if p.Supplier == supplier {
			out = append(out, *p)
		}
	}
	sortByRecency(out)
	return out
}

func sortByRecency(out []entity.LearningPattern) {
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].LastReading.After(out[j-1].LastReading); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
}

// PatternsForProduct returns every pattern learned for a product across
// suppliers, most recently fed first.
func (s *Store) PatternsForProduct(product string) []entity.LearningPattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.LearningPattern
	for _, p := range s.kb.Patterns {
		if p.Product == product {
			out = append(out, *p)
		}
	}
	sortByRecency(out)
	return out
}

// RecentReadings returns up to n of the pair's readings, newest last.
func (s *Store) RecentReadings(supplier, product string, n int) []entity.LabelReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recentLocked(supplier, product, n)
}

func (s *Store) recentLocked(supplier, product string, n int) []entity.LabelReading {
	var out []entity.LabelReading
	for _, r := range s.kb.ImageReadings {
		if r.Supplier == supplier && r.Product == product {
			out = append(out, r)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// Suppliers returns the known supplier names in first-seen order.
func (s *Store) Suppliers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.kb.Suppliers...)
}

// Products returns the known product names in first-seen order.
func (s *Store) Products() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.kb.Products...)
}

// Reset drops everything learned and persists the empty base.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.kb = entity.NewKnowledgeBase()
	if err := s.repo.Save(ctx, s.kb); err != nil {
		return fmt.Errorf("knowledge: reset: %w", err)
	}
	s.log.Warn("knowledge.reset")
	return nil
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
