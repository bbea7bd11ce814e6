package generator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

type stubSources struct{}

func (stubSources) sources() Sources {
	return Sources{
		Sensor:     sensorStub{},
		Production: productionStub{},
		Quality:    qualityStub{},
	}
}

type sensorStub struct{}

func (sensorStub) GenerateBatch(n int) []domain.SensorReading {
	return make([]domain.SensorReading, n)
}

type productionStub struct{}

func (productionStub) GenerateBatch(n int) []domain.ProductionEvent {
	return make([]domain.ProductionEvent, n)
}

type qualityStub struct{}

func (qualityStub) GenerateBatch(n int) []domain.QualityTestResult {
	return make([]domain.QualityTestResult, n)
}

// captureWriter records batch sizes per category and optionally fails one.
type captureWriter struct {
	mu         sync.Mutex
	sensor     []int
	production []int
	quality    []int
	sensorErr  error
	wrote      chan struct{}
}

func (w *captureWriter) signal() {
	if w.wrote != nil {
		select {
		case w.wrote <- struct{}{}:
		default:
		}
	}
}

func (w *captureWriter) WriteSensorReadings(ctx context.Context, batch []domain.SensorReading) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sensorErr != nil {
		return w.sensorErr
	}
	w.sensor = append(w.sensor, len(batch))
	w.signal()
	return nil
}

func (w *captureWriter) WriteProductionEvents(ctx context.Context, batch []domain.ProductionEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.production = append(w.production, len(batch))
	return nil
}

func (w *captureWriter) WriteQualityResults(ctx context.Context, batch []domain.QualityTestResult) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.quality = append(w.quality, len(batch))
	return nil
}

func (w *captureWriter) Name() string                    { return "capture" }
func (w *captureWriter) Close(ctx context.Context) error { return nil }

type mockObs struct {
	mu       sync.Mutex
	errors   []error
	counters map[string]float64
}

func newMockObs() *mockObs {
	return &mockObs{counters: make(map[string]float64)}
}

func (m *mockObs) LogInfo(string, ...ports.Field) {}
func (m *mockObs) LogWarn(string, ...ports.Field) {}

func (m *mockObs) LogError(_ string, err error, _ ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
}

func (m *mockObs) IncCounter(name, category string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name+"|"+category] += v
}

func (m *mockObs) ObserveLatency(string, string, float64) {}
func (m *mockObs) SetGauge(string, string, float64)       {}

func (m *mockObs) counter(name, category string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name+"|"+category]
}

func TestOneShotEmitsAllCategories(t *testing.T) {
	writer := &captureWriter{}
	obs := newMockObs()
	r, err := New(stubSources{}.sources(), writer, obs, Options{
		Interval:   time.Hour,
		BatchSize:  50,
		Continuous: false,
	})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(writer.sensor) != 1 || writer.sensor[0] != 50 {
		t.Fatalf("expected one sensor batch of 50, got %v", writer.sensor)
	}
	if len(writer.production) != 1 || writer.production[0] != 25 {
		t.Fatalf("expected one production batch of 25, got %v", writer.production)
	}
	if len(writer.quality) != 1 || writer.quality[0] != 16 {
		t.Fatalf("expected one quality batch of 16, got %v", writer.quality)
	}
	if got := obs.counter("mfg_records_written_total", ports.CategorySensor); got != 50 {
		t.Fatalf("expected 50 sensor records counted, got %f", got)
	}
}

func TestWriteFailureDropsBatch(t *testing.T) {
	writer := &captureWriter{sensorErr: errors.New("connection refused")}
	obs := newMockObs()
	r, err := New(stubSources{}.sources(), writer, obs, Options{
		Interval:   time.Hour,
		BatchSize:  30,
		Continuous: false,
	})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(writer.sensor) != 0 {
		t.Fatalf("failed sensor batch must not be recorded, got %v", writer.sensor)
	}
	if len(writer.production) != 1 || len(writer.quality) != 1 {
		t.Fatalf("other loops must still emit, got production=%v quality=%v", writer.production, writer.quality)
	}
	if got := obs.counter("mfg_write_failures_total", ports.CategorySensor); got != 1 {
		t.Fatalf("expected one sensor write failure, got %f", got)
	}
	if len(obs.errors) != 1 {
		t.Fatalf("expected one dropped-batch log, got %d", len(obs.errors))
	}
	if !strings.Contains(obs.errors[0].Error(), "sensor") {
		t.Fatalf("dropped-batch error should name the category: %v", obs.errors[0])
	}
}

func TestContinuousStopsOnCancel(t *testing.T) {
	writer := &captureWriter{wrote: make(chan struct{}, 8)}
	obs := newMockObs()
	r, err := New(stubSources{}.sources(), writer, obs, Options{
		Interval:   time.Millisecond,
		BatchSize:  5,
		Continuous: true,
	})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- r.Run(ctx) }()

	// Wait for at least two sensor batches before cancelling.
	for i := 0; i < 2; i++ {
		select {
		case <-writer.wrote:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for sensor batches")
		}
	}
	cancel()

	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("run after cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not drain after cancel")
	}

	writer.mu.Lock()
	batches := len(writer.sensor)
	writer.mu.Unlock()
	if batches < 2 {
		t.Fatalf("expected at least two sensor batches, got %d", batches)
	}
}

func TestRunRejectsSecondStart(t *testing.T) {
	writer := &captureWriter{}
	r, err := New(stubSources{}.sources(), writer, newMockObs(), Options{
		Interval:   time.Hour,
		BatchSize:  10,
		Continuous: false,
	})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := r.Run(context.Background()); err == nil {
		t.Fatal("expected second run to fail")
	}
}

func TestNewValidation(t *testing.T) {
	src := stubSources{}.sources()
	writer := &captureWriter{}
	obs := newMockObs()

	cases := []struct {
		name string
		src  Sources
		w    ports.RecordWriter
		opts Options
	}{
		{"missing source", Sources{Sensor: src.Sensor}, writer, Options{Interval: time.Second, BatchSize: 1}},
		{"nil writer", src, nil, Options{Interval: time.Second, BatchSize: 1}},
		{"zero interval", src, writer, Options{BatchSize: 1}},
		{"zero batch", src, writer, Options{Interval: time.Second}},
	}
	for _, tc := range cases {
		if _, err := New(tc.src, tc.w, obs, tc.opts); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestDerivedBatchFloorsAtOne(t *testing.T) {
	cases := []struct {
		base, divisor, want int
	}{
		{50, 2, 25},
		{50, 3, 16},
		{1, 2, 1},
		{1, 3, 1},
		{2, 3, 1},
	}
	for _, tc := range cases {
		if got := derivedBatch(tc.base, tc.divisor); got != tc.want {
			t.Fatalf("derivedBatch(%d, %d) = %d, want %d", tc.base, tc.divisor, got, tc.want)
		}
	}
}

func TestBackfillSchedule(t *testing.T) {
	writer := &captureWriter{}
	obs := newMockObs()
	r, err := New(stubSources{}.sources(), writer, obs, Options{
		Interval:   10 * time.Second,
		BatchSize:  12,
		Continuous: false,
	})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	start := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)

	var stamps []time.Time
	steps, err := r.Backfill(context.Background(), start, end, func(ts time.Time) {
		stamps = append(stamps, ts)
	})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}

	if steps != 6 {
		t.Fatalf("expected 6 steps over one minute at 10s, got %d", steps)
	}
	if len(writer.sensor) != 6 {
		t.Fatalf("expected a sensor batch every step, got %d", len(writer.sensor))
	}
	if len(writer.production) != 3 {
		t.Fatalf("expected production on every second step, got %d", len(writer.production))
	}
	if len(writer.quality) != 2 {
		t.Fatalf("expected quality on every third step, got %d", len(writer.quality))
	}
	if stamps[0] != start {
		t.Fatalf("first stamp = %s, want %s", stamps[0], start)
	}
	if last := stamps[len(stamps)-1]; last != start.Add(50*time.Second) {
		t.Fatalf("last stamp = %s, want %s", last, start.Add(50*time.Second))
	}
}

func TestBackfillRejectsEmptyWindow(t *testing.T) {
	r, err := New(stubSources{}.sources(), &captureWriter{}, newMockObs(), Options{
		Interval:   time.Second,
		BatchSize:  1,
		Continuous: false,
	})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	now := time.Now()
	if _, err := r.Backfill(context.Background(), now, now, func(time.Time) {}); err == nil {
		t.Fatal("expected error for empty window")
	}
}
