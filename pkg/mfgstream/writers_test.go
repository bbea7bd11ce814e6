package mfgstream

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCallbackWriterRoutesCategories(t *testing.T) {
	var sensors, events int
	w := NewCallbackWriter("cb", Callbacks{
		SensorReadings: func(batch []SensorReading) error {
			sensors += len(batch)
			return nil
		},
		ProductionEvents: func(batch []ProductionEvent) error {
			events += len(batch)
			return nil
		},
	})

	ctx := context.Background()
	if err := w.WriteSensorReadings(ctx, make([]SensorReading, 3)); err != nil {
		t.Fatalf("WriteSensorReadings returned error: %v", err)
	}
	if err := w.WriteProductionEvents(ctx, make([]ProductionEvent, 2)); err != nil {
		t.Fatalf("WriteProductionEvents returned error: %v", err)
	}
	// No quality handler configured; the batch must be ignored, not fail.
	if err := w.WriteQualityResults(ctx, make([]QualityTestResult, 5)); err != nil {
		t.Fatalf("WriteQualityResults returned error: %v", err)
	}

	if sensors != 3 || events != 2 {
		t.Fatalf("expected 3 sensor and 2 production records, got %d/%d", sensors, events)
	}
	if w.Name() != "cb" {
		t.Fatalf("unexpected writer name %q", w.Name())
	}
}

func TestCallbackWriterSkipsEmptyBatches(t *testing.T) {
	calls := 0
	w := NewCallbackWriter("", Callbacks{
		SensorReadings: func([]SensorReading) error {
			calls++
			return nil
		},
	})

	if err := w.WriteSensorReadings(context.Background(), nil); err != nil {
		t.Fatalf("empty batch returned error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("handler should not run for empty batches, ran %d times", calls)
	}
	if w.Name() != "callback" {
		t.Fatalf("expected default name, got %q", w.Name())
	}
}

func TestCallbackWriterPropagatesError(t *testing.T) {
	boom := errors.New("downstream full")
	w := NewCallbackWriter("cb", Callbacks{
		QualityResults: func([]QualityTestResult) error { return boom },
	})

	err := w.WriteQualityResults(context.Background(), make([]QualityTestResult, 1))
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error to propagate, got %v", err)
	}
}

func TestCollectorWriterAccumulates(t *testing.T) {
	w, col := NewCollectorWriter("col")
	ctx := context.Background()

	first := []SensorReading{{EquipmentID: "EQ001", Timestamp: time.Unix(10, 0)}}
	second := []SensorReading{{EquipmentID: "EQ002"}, {EquipmentID: "EQ003"}}
	if err := w.WriteSensorReadings(ctx, first); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WriteSensorReadings(ctx, second); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WriteQualityResults(ctx, []QualityTestResult{{TestType: "DIMENSIONAL"}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	got := col.SensorReadings()
	if len(got) != 3 {
		t.Fatalf("expected 3 accumulated readings, got %d", len(got))
	}
	if got[0].EquipmentID != "EQ001" || got[2].EquipmentID != "EQ003" {
		t.Fatalf("readings out of order: %+v", got)
	}
	if len(col.QualityResults()) != 1 {
		t.Fatalf("expected 1 quality result")
	}
	if len(col.ProductionEvents()) != 0 {
		t.Fatalf("expected no production events")
	}

	// Getter hands out a copy; mutating it must not touch the collector.
	got[0].EquipmentID = "MUTATED"
	if col.SensorReadings()[0].EquipmentID != "EQ001" {
		t.Fatalf("collector contents were mutated through the getter copy")
	}
}
