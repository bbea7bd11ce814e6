package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

func newTestObs(t *testing.T) (*PromObs, *bytes.Buffer) {
	t.Helper()

	origReg := prometheus.DefaultRegisterer
	origGatherer := prometheus.DefaultGatherer
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGatherer
	})

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return NewPromObs(logger), &buf
}

func TestPromObsCountsPerCategory(t *testing.T) {
	obs, _ := newTestObs(t)

	obs.IncCounter("mfg_records_generated_total", ports.CategorySensor, 10)
	obs.IncCounter("mfg_records_generated_total", ports.CategorySensor, 5)
	obs.IncCounter("mfg_records_generated_total", ports.CategoryQuality, 3)

	sensor := obs.counters["mfg_records_generated_total"].WithLabelValues(ports.CategorySensor)
	if got := testutil.ToFloat64(sensor); got != 15 {
		t.Fatalf("expected sensor counter 15, got %f", got)
	}
	quality := obs.counters["mfg_records_generated_total"].WithLabelValues(ports.CategoryQuality)
	if got := testutil.ToFloat64(quality); got != 3 {
		t.Fatalf("expected quality counter 3, got %f", got)
	}
}

func TestPromObsGaugeAndHistogram(t *testing.T) {
	obs, _ := newTestObs(t)

	obs.SetGauge("mfg_equipment_tracked", ports.CategoryDimension, 6)
	g := obs.gauges["mfg_equipment_tracked"].WithLabelValues(ports.CategoryDimension)
	if got := testutil.ToFloat64(g); got != 6 {
		t.Fatalf("expected gauge 6, got %f", got)
	}

	obs.ObserveLatency("mfg_write_seconds", ports.CategorySensor, 0.25)
	h := obs.histos["mfg_write_seconds"]
	if samples := testutil.CollectAndCount(h); samples != 1 {
		t.Fatalf("expected write histogram to record 1 sample, got %d", samples)
	}
}

func TestPromObsIgnoresUnknownSeries(t *testing.T) {
	obs, _ := newTestObs(t)

	obs.IncCounter("mfg_no_such_counter", ports.CategorySensor, 1)
	obs.SetGauge("mfg_no_such_gauge", ports.CategorySensor, 1)
	obs.ObserveLatency("mfg_no_such_histogram", ports.CategorySensor, 1)
}

func TestPromObsLogsJSON(t *testing.T) {
	obs, buf := newTestObs(t)

	obs.LogInfo("batch written", ports.Field{Key: "category", Value: "sensor"}, ports.Field{Key: "rows", Value: 25})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "batch written" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["category"] != "sensor" {
		t.Fatalf("unexpected category: %v", entry["category"])
	}
	if entry["rows"] != float64(25) {
		t.Fatalf("unexpected rows: %v", entry["rows"])
	}
}

func TestPromObsLogErrorAppendsError(t *testing.T) {
	obs, buf := newTestObs(t)

	obs.LogError("write failed", errTest, ports.Field{Key: "writer", Value: "postgres"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["level"] != "ERROR" {
		t.Fatalf("unexpected level: %v", entry["level"])
	}
	if entry["error"] != "connection reset" {
		t.Fatalf("unexpected error field: %v", entry["error"])
	}
	if entry["writer"] != "postgres" {
		t.Fatalf("unexpected writer field: %v", entry["writer"])
	}
}

type testErr string

func (e testErr) Error() string { return string(e) }

const errTest = testErr("connection reset")
