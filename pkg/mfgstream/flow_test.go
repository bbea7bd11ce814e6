package mfgstream

import (
	"context"
	"testing"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

type stubObs struct{}

func (stubObs) LogInfo(string, ...ports.Field)         {}
func (stubObs) LogWarn(string, ...ports.Field)         {}
func (stubObs) LogError(string, error, ...ports.Field) {}
func (stubObs) IncCounter(string, string, float64)     {}
func (stubObs) ObserveLatency(string, string, float64) {}
func (stubObs) SetGauge(string, string, float64)       {}

func testConfig() *Config {
	continuous := false
	seed := int64(42)
	cfg := &Config{
		Generation: GenerationConfig{
			IntervalSeconds: 1,
			BatchSize:       6,
			Continuous:      &continuous,
			RandomSeed:      &seed,
		},
		Manufacturing: ManufacturingConfig{
			Equipment: []EquipmentConfig{
				{ID: "EQ001", Name: "Hydraulic Press 1", Type: "PRESS", LineID: "LINE1", MaxTemperature: 85, MaxPressure: 150, MaxSpeed: 1200},
				{ID: "EQ002", Name: "Spot Welder 1", Type: "WELDER", LineID: "LINE1", MaxTemperature: 95, MaxPressure: 130, MaxSpeed: 900},
			},
			ProductionLines: []LineConfig{
				{ID: "LINE1", Name: "Assembly 1", Facility: "Plant A", TargetCapacityHour: 120},
			},
			Products: []ProductConfig{
				{ID: "PROD1", Name: "Bracket", Category: "STAMPED", StandardCost: 3.5, TargetQualityScore: 97},
			},
		},
		Operators: []OperatorConfig{
			{ID: "OP1", Name: "Dana", Shift: "DAY_SHIFT"},
			{ID: "OP2", Name: "Riley", Shift: "AFTERNOON_SHIFT"},
			{ID: "OP3", Name: "Sam", Shift: "NIGHT_SHIFT"},
		},
		Inspectors: []InspectorConfig{{ID: "QC1", Name: "Lee"}},
		Quality: QualityParams{
			Tests: []QualityTestConfig{
				{TestType: "DIMENSIONAL", SpecificationRange: []float64{9.5, 10.5}, Precision: 0.01, FailureProbability: 0.05},
			},
			DefectTypes: []string{"SCRATCH", "DENT"},
		},
		Metrics: MetricsConfig{Addr: "127.0.0.1:0"},
	}
	cfg.SensorData.ApplyDefaults()
	cfg.Production.ApplyDefaults()
	return cfg
}

func TestConfFromConfigKeepsConfig(t *testing.T) {
	cfg := testConfig()
	flow, err := ConfFromConfig(cfg)
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}
	if flow.Config() != cfg {
		t.Fatalf("expected Config to be returned verbatim")
	}

	if _, err := ConfFromConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestGeneratorsAreSeedDeterministic(t *testing.T) {
	flowA, err := ConfFromConfig(testConfig())
	if err != nil {
		t.Fatalf("ConfFromConfig: %v", err)
	}
	flowB, err := ConfFromConfig(testConfig())
	if err != nil {
		t.Fatalf("ConfFromConfig: %v", err)
	}

	gensA, err := flowA.Generators()
	if err != nil {
		t.Fatalf("Generators: %v", err)
	}
	gensB, err := flowB.Generators()
	if err != nil {
		t.Fatalf("Generators: %v", err)
	}

	a := gensA.SensorReadings(10)
	b := gensB.SensorReadings(10)
	if len(a) != 10 || len(b) != 10 {
		t.Fatalf("expected 10 readings each, got %d/%d", len(a), len(b))
	}
	for i := range a {
		if a[i].EquipmentID != b[i].EquipmentID || a[i].Temperature != b[i].Temperature || a[i].Vibration != b[i].Vibration {
			t.Fatalf("reading %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRuntimeOneShotWithCollector(t *testing.T) {
	writer, col := NewCollectorWriter("test")
	fixed := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)

	flow, err := ConfFromConfig(testConfig(), WithFlowOptions(WithObservability(stubObs{})))
	if err != nil {
		t.Fatalf("ConfFromConfig: %v", err)
	}

	rt, err := flow.Runtime(
		WithRecordWriter(writer),
		WithClock(func() time.Time { return fixed }),
		WithSeed(7),
	)
	if err != nil {
		t.Fatalf("Runtime: %v", err)
	}
	if rt.Warehouse() != nil {
		t.Fatalf("expected no warehouse when the writer stack is replaced")
	}

	if err := rt.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	readings := col.SensorReadings()
	if len(readings) != 6 {
		t.Fatalf("expected one sensor batch of 6, got %d", len(readings))
	}
	if got := len(col.ProductionEvents()); got != 3 {
		t.Fatalf("expected one production batch of 3, got %d", got)
	}
	if got := len(col.QualityResults()); got != 2 {
		t.Fatalf("expected one quality batch of 2, got %d", got)
	}
	for _, r := range readings {
		if !r.Timestamp.Equal(fixed) {
			t.Fatalf("expected fixed clock timestamp %s, got %s", fixed, r.Timestamp)
		}
	}
}

func TestFlowRunShortcut(t *testing.T) {
	writer, col := NewCollectorWriter("run")
	flow, err := ConfFromConfig(testConfig())
	if err != nil {
		t.Fatalf("ConfFromConfig: %v", err)
	}

	err = flow.Run(context.Background(),
		WithRecordWriter(writer),
		WithObservability(stubObs{}),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(col.SensorReadings()) == 0 {
		t.Fatalf("expected records after one-shot run")
	}
}

func TestBackfillStepsSimulationClock(t *testing.T) {
	writer, col := NewCollectorWriter("backfill")
	flow, err := ConfFromConfig(testConfig())
	if err != nil {
		t.Fatalf("ConfFromConfig: %v", err)
	}

	rt, err := flow.Runtime(WithRecordWriter(writer), WithObservability(stubObs{}))
	if err != nil {
		t.Fatalf("Runtime: %v", err)
	}

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Second)
	steps, err := rt.Backfill(context.Background(), start, end)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if steps != 3 {
		t.Fatalf("expected 3 backfill steps, got %d", steps)
	}

	readings := col.SensorReadings()
	if len(readings) != 18 {
		t.Fatalf("expected 18 backfilled readings, got %d", len(readings))
	}
	for _, r := range readings {
		if r.Timestamp.Before(start) || !r.Timestamp.Before(end) {
			t.Fatalf("backfilled timestamp %s outside [%s, %s)", r.Timestamp, start, end)
		}
	}
	if got := len(col.ProductionEvents()); got != 6 {
		t.Fatalf("expected production batches at steps 0 and 2 (6 events), got %d", got)
	}
	if got := len(col.QualityResults()); got != 2 {
		t.Fatalf("expected one quality batch of 2 at step 0, got %d", got)
	}

	// The live clock is restored once the window is replayed.
	live := rt.Generators().SensorReadings(1)
	if !live[0].Timestamp.After(end) {
		t.Fatalf("expected live timestamp after %s, got %s", end, live[0].Timestamp)
	}

	if _, err := rt.Backfill(context.Background(), end, start); err == nil {
		t.Fatalf("expected error when start is not before end")
	}
}

func TestRuntimeRejectsNilConfig(t *testing.T) {
	if _, err := NewRuntime(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
