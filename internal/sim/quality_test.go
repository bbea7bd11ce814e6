package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
)

func qualityFixture() ([]domain.Equipment, []domain.Product, []domain.Inspector, []string) {
	equipment := []domain.Equipment{
		{ID: "EQ_001", Type: "PRESS", LineID: "LINE_A", MaxTemperature: 85, MaxPressure: 150, MaxSpeed: 1200},
	}
	products := []domain.Product{{ID: "PROD_100", Name: "Widget"}}
	inspectors := []domain.Inspector{{ID: "INSP_001", Name: "Lee Wong"}}
	defects := []string{"SCRATCH", "DENT", "MISALIGNMENT"}
	return equipment, products, inspectors, defects
}

func newQualitySim(tests []domain.QualityTest, seed int64) *QualitySimulator {
	equipment, products, inspectors, defects := qualityFixture()
	return NewQualitySimulator(equipment, products, inspectors, tests, defects,
		rand.New(rand.NewSource(seed)), nil)
}

func TestQualityPassAndFailSemantics(t *testing.T) {
	tests := []domain.QualityTest{
		{Type: "DIMENSIONAL", SpecMin: 9.5, SpecMax: 10.5, Precision: 0.01, FailureProbability: 0.5},
	}
	s := newQualitySim(tests, 53)

	defectSet := map[string]bool{"SCRATCH": true, "DENT": true, "MISALIGNMENT": true}
	var passes, fails int
	for _, r := range s.GenerateBatch(1000) {
		if r.SampleSize < 1 || r.SampleSize > 5 {
			t.Fatalf("sample size out of band: %d", r.SampleSize)
		}
		if r.SpecificationMin != 9.5 || r.SpecificationMax != 10.5 {
			t.Fatalf("specification bounds not carried through: %+v", r)
		}
		if r.IsWithinSpec {
			passes++
			if r.MeasurementValue < 9.5 || r.MeasurementValue > 10.5 {
				t.Fatalf("passing measurement outside specification: %v", r.MeasurementValue)
			}
			if r.DefectType != nil {
				t.Fatalf("passing test carries defect %q", *r.DefectType)
			}
		} else {
			fails++
			if r.MeasurementValue >= 9.5 && r.MeasurementValue <= 10.5 {
				t.Fatalf("failing measurement inside specification: %v", r.MeasurementValue)
			}
			if r.DefectType == nil {
				t.Fatalf("failing test carries no defect")
			}
			if !defectSet[*r.DefectType] {
				t.Fatalf("defect %q not in catalog", *r.DefectType)
			}
		}
	}
	if passes == 0 || fails == 0 {
		t.Fatalf("expected both outcomes at 50%% failure probability, got %d/%d", passes, fails)
	}
}

func TestQualityFailedMeasurementStaysOutside(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("failed tests land strictly outside the band", prop.ForAll(
		func(seed int64, specMin, width float64, precision float64) bool {
			test := domain.QualityTest{
				Type:               "GAUGE",
				SpecMin:            specMin,
				SpecMax:            specMin + width,
				Precision:          precision,
				FailureProbability: 1.0,
			}
			s := newQualitySim([]domain.QualityTest{test}, seed)

			for _, r := range s.GenerateBatch(20) {
				if r.IsWithinSpec {
					return false
				}
				if r.MeasurementValue >= test.SpecMin && r.MeasurementValue <= test.SpecMax {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.Float64Range(-50, 50),
		gen.Float64Range(1, 20),
		gen.OneConstOf(0.1, 0.01, 0.001),
	))

	properties.TestingRun(t)
}

func TestQualityMeasurementRounding(t *testing.T) {
	tests := []domain.QualityTest{
		{Type: "WEIGHT", SpecMin: 95, SpecMax: 105, Precision: 0.1, FailureProbability: 0.2},
	}
	s := newQualitySim(tests, 59)

	for _, r := range s.GenerateBatch(200) {
		scaled := r.MeasurementValue * 10
		if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
			t.Fatalf("expected one-decimal measurement, got %v", r.MeasurementValue)
		}
	}
}

func TestQualityZeroFailureProbability(t *testing.T) {
	tests := []domain.QualityTest{
		{Type: "TORQUE", SpecMin: 40, SpecMax: 60, Precision: 0.01, FailureProbability: 0},
	}
	s := newQualitySim(tests, 61)

	for _, r := range s.GenerateBatch(500) {
		if !r.IsWithinSpec {
			t.Fatalf("expected every test to pass at zero failure probability")
		}
	}
}

func TestPrecisionDecimals(t *testing.T) {
	cases := []struct {
		precision float64
		want      int
	}{
		{0.01, 2},
		{0.1, 1},
		{0.001, 3},
		{1, 0},
		{2.5, 1},
	}
	for _, tc := range cases {
		if got := precisionDecimals(tc.precision); got != tc.want {
			t.Fatalf("precisionDecimals(%v) = %d, want %d", tc.precision, got, tc.want)
		}
	}
}
