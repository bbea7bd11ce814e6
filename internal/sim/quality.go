package sim

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
)

// QualitySimulator synthesizes inspection results against the configured
// test catalog. Failures land strictly outside the specification band and
// carry a defect type.
type QualitySimulator struct {
	equipment  []domain.Equipment
	products   []domain.Product
	inspectors []domain.Inspector
	tests      []domain.QualityTest
	defects    []string
	rng        *rand.Rand
	now        Clock
}

func NewQualitySimulator(
	equipment []domain.Equipment,
	products []domain.Product,
	inspectors []domain.Inspector,
	tests []domain.QualityTest,
	defects []string,
	rng *rand.Rand,
	now Clock,
) *QualitySimulator {
	if now == nil {
		now = time.Now
	}
	return &QualitySimulator{
		equipment:  equipment,
		products:   products,
		inspectors: inspectors,
		tests:      tests,
		defects:    defects,
		rng:        rng,
		now:        now,
	}
}

// GenerateBatch produces n results for uniformly chosen product, machine,
// inspector and test type.
func (s *QualitySimulator) GenerateBatch(n int) []domain.QualityTestResult {
	batch := make([]domain.QualityTestResult, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, s.result())
	}
	return batch
}

func (s *QualitySimulator) result() domain.QualityTestResult {
	product := s.products[s.rng.Intn(len(s.products))]
	eq := s.equipment[s.rng.Intn(len(s.equipment))]
	inspector := s.inspectors[s.rng.Intn(len(s.inspectors))]
	test := s.tests[s.rng.Intn(len(s.tests))]

	passes := s.rng.Float64() > test.FailureProbability

	var measurement float64
	var defect *string
	if passes {
		measurement = uniform(s.rng, test.SpecMin, test.SpecMax)
	} else {
		if s.rng.Float64() < 0.5 {
			measurement = test.SpecMin - uniform(s.rng, 0.1, 2.0)
		} else {
			measurement = test.SpecMax + uniform(s.rng, 0.1, 2.0)
		}
		d := s.defects[s.rng.Intn(len(s.defects))]
		defect = &d
	}
	measurement = roundTo(measurement, precisionDecimals(test.Precision))

	now := s.now()
	return domain.QualityTestResult{
		Timestamp:        now,
		EquipmentID:      eq.ID,
		ProductID:        product.ID,
		TestType:         test.Type,
		MeasurementValue: measurement,
		SpecificationMin: test.SpecMin,
		SpecificationMax: test.SpecMax,
		IsWithinSpec:     passes,
		DefectType:       defect,
		InspectorID:      inspector.ID,
		BatchID:          batchID(s.rng, now),
		SampleSize:       randBetween(s.rng, 1, 5),
	}
}

// precisionDecimals derives the rounding width from the decimal places of
// the configured precision: 0.01 rounds to two places, 0.1 to one, whole
// numbers to none.
func precisionDecimals(precision float64) int {
	s := strconv.FormatFloat(precision, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}
