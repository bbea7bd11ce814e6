package sim

import (
	"encoding/json"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
)

func defaultSensorParams() SensorParams {
	var p SensorParams
	p.ApplyDefaults()
	return p
}

func pressEquipment() domain.Equipment {
	return domain.Equipment{
		ID:             "EQ_001",
		Name:           "Hydraulic Press 1",
		Type:           "PRESS",
		LineID:         "LINE_A",
		MaxTemperature: 85,
		MaxPressure:    150,
		MaxSpeed:       1200,
	}
}

func newSensorSim(equipment []domain.Equipment, params SensorParams, seed int64, now Clock) *SensorSimulator {
	rng := rand.New(rand.NewSource(seed))
	return NewSensorSimulator(equipment, params, NewStateStore(rng, now), rng, now)
}

func TestSensorBatchShape(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	s := newSensorSim([]domain.Equipment{pressEquipment()}, defaultSensorParams(), 7, func() time.Time { return fixed })

	batch := s.GenerateBatch(50)
	if len(batch) != 50 {
		t.Fatalf("expected 50 readings, got %d", len(batch))
	}
	for _, r := range batch {
		if r.EquipmentID != "EQ_001" {
			t.Fatalf("unexpected equipment id %s", r.EquipmentID)
		}
		if r.SensorType != "PRESS_SENSOR" {
			t.Fatalf("expected sensor type PRESS_SENSOR, got %s", r.SensorType)
		}
		if !r.Timestamp.Equal(fixed) {
			t.Fatalf("expected injected clock timestamp, got %s", r.Timestamp)
		}
	}
}

func TestSensorReadingBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("readings stay inside physical bounds", prop.ForAll(
		func(seed int64, maxTemp, maxPressure, maxSpeed float64) bool {
			eq := domain.Equipment{
				ID:             "EQ_X",
				Type:           "WELDER",
				MaxTemperature: maxTemp,
				MaxPressure:    maxPressure,
				MaxSpeed:       maxSpeed,
			}
			s := newSensorSim([]domain.Equipment{eq}, defaultSensorParams(), seed, nil)

			for _, r := range s.GenerateBatch(25) {
				// Rounding happens after clamping, so allow half a step
				// of the per-field rounding width at each bound.
				if r.Temperature < 15-0.005 || r.Temperature > maxTemp*1.2+0.005 {
					return false
				}
				if r.Pressure < -0.005 || r.Pressure > maxPressure*1.1+0.005 {
					return false
				}
				if r.Vibration < 0 {
					return false
				}
				if r.SpeedRPM < -0.05 || r.SpeedRPM > maxSpeed+0.05 {
					return false
				}
				if r.EfficiencyPercent < 30-0.05 || r.EfficiencyPercent > 100+0.05 {
					return false
				}
				if r.PowerConsumption < 1-0.005 {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.Float64Range(40, 200),
		gen.Float64Range(20, 300),
		gen.Float64Range(100, 3000),
	))

	properties.TestingRun(t)
}

func TestSensorDeterministicUnderSeed(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	clock := func() time.Time { return fixed }
	fleet := []domain.Equipment{pressEquipment(), {
		ID: "EQ_002", Type: "ROBOT", LineID: "LINE_A",
		MaxTemperature: 70, MaxPressure: 90, MaxSpeed: 2500,
	}}

	a := newSensorSim(fleet, defaultSensorParams(), 42, clock)
	b := newSensorSim(fleet, defaultSensorParams(), 42, clock)

	batchA, err := json.Marshal(a.GenerateBatch(100))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	batchB, err := json.Marshal(b.GenerateBatch(100))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(batchA) != string(batchB) {
		t.Fatalf("same seed produced different batches")
	}

	c := newSensorSim(fleet, defaultSensorParams(), 43, clock)
	batchC, _ := json.Marshal(c.GenerateBatch(100))
	if string(batchA) == string(batchC) {
		t.Fatalf("different seeds produced identical batches")
	}
}

func TestSensorStatusCriticalOvershoot(t *testing.T) {
	// Tiny limits force every reading into the critical band.
	eq := domain.Equipment{ID: "EQ_HOT", Type: "WELDER", MaxTemperature: 20, MaxPressure: 5, MaxSpeed: 100}
	params := defaultSensorParams()
	s := newSensorSim([]domain.Equipment{eq}, params, 11, nil)

	for _, r := range s.GenerateBatch(40) {
		if r.Status != domain.StatusError && r.Status != domain.StatusMaintenance {
			t.Fatalf("expected ERROR or MAINTENANCE under critical overshoot, got %s", r.Status)
		}
	}
}

func TestSensorStatusMostlyRunning(t *testing.T) {
	// Generous limits and a calm vibration band keep readings out of the
	// warning checks, leaving only the 0.5% random-stop draw.
	eq := domain.Equipment{ID: "EQ_OK", Type: "CONVEYOR", MaxTemperature: 500, MaxPressure: 500, MaxSpeed: 5000}
	params := defaultSensorParams()
	params.Vibration.BaseRange = []float64{0.1, 0.2}
	params.Vibration.SpikeProbability = 0
	params.Temperature.SpikeProbability = 0
	params.Pressure.SpikeProbability = 0

	s := newSensorSim([]domain.Equipment{eq}, params, 13, nil)

	running := 0
	batch := s.GenerateBatch(1000)
	for _, r := range batch {
		if r.Status == domain.StatusRunning {
			running++
		}
	}
	if running < 980 {
		t.Fatalf("expected mostly RUNNING statuses, got %d of %d", running, len(batch))
	}
}

func TestSensorRoundingWidths(t *testing.T) {
	s := newSensorSim([]domain.Equipment{pressEquipment()}, defaultSensorParams(), 17, nil)

	hasWidth := func(v float64, places int) bool {
		scale := math.Pow(10, float64(places))
		return math.Abs(v*scale-math.Round(v*scale)) < 1e-9
	}
	for _, r := range s.GenerateBatch(100) {
		if !hasWidth(r.Temperature, 2) || !hasWidth(r.Pressure, 2) || !hasWidth(r.PowerConsumption, 2) {
			t.Fatalf("expected two-decimal rounding, got %+v", r)
		}
		if !hasWidth(r.Vibration, 3) {
			t.Fatalf("expected three-decimal vibration, got %v", r.Vibration)
		}
		if !hasWidth(r.SpeedRPM, 1) || !hasWidth(r.EfficiencyPercent, 1) {
			t.Fatalf("expected one-decimal speed and efficiency, got %+v", r)
		}
	}
}

func TestSensorUnknownTypeUsesDefaults(t *testing.T) {
	eq := domain.Equipment{ID: "EQ_NEW", Type: "LATHE", MaxTemperature: 300, MaxPressure: 300, MaxSpeed: 3000}
	params := defaultSensorParams()
	params.Temperature.Variance = 0
	params.Temperature.SpikeProbability = 0
	params.Pressure.Variance = 0
	params.Pressure.SpikeProbability = 0

	s := newSensorSim([]domain.Equipment{eq}, params, 19, nil)

	r := s.GenerateBatch(1)[0]
	if r.Temperature != 30 {
		t.Fatalf("expected default base temperature 30, got %v", r.Temperature)
	}
	if r.Pressure != 20 {
		t.Fatalf("expected default base pressure 20, got %v", r.Pressure)
	}
	if !strings.HasPrefix(r.SensorType, "LATHE") {
		t.Fatalf("expected sensor type derived from equipment type, got %s", r.SensorType)
	}
}
