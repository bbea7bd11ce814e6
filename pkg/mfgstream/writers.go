package mfgstream

import (
	"context"
	"sync"
)

// Callbacks holds the per-category handlers invoked by a callback writer.
// A nil handler ignores its category.
type Callbacks struct {
	SensorReadings   func([]SensorReading) error
	ProductionEvents func([]ProductionEvent) error
	QualityResults   func([]QualityTestResult) error
}

// NewCallbackWriter adapts plain functions into a RecordWriter so callers
// can consume batches without defining structs.
func NewCallbackWriter(name string, cb Callbacks) RecordWriter {
	if name == "" {
		name = "callback"
	}
	return &callbackWriter{name: name, cb: cb}
}

type callbackWriter struct {
	name string
	cb   Callbacks
}

func (w *callbackWriter) WriteSensorReadings(_ context.Context, batch []SensorReading) error {
	if w.cb.SensorReadings == nil || len(batch) == 0 {
		return nil
	}
	return w.cb.SensorReadings(batch)
}

func (w *callbackWriter) WriteProductionEvents(_ context.Context, batch []ProductionEvent) error {
	if w.cb.ProductionEvents == nil || len(batch) == 0 {
		return nil
	}
	return w.cb.ProductionEvents(batch)
}

func (w *callbackWriter) WriteQualityResults(_ context.Context, batch []QualityTestResult) error {
	if w.cb.QualityResults == nil || len(batch) == 0 {
		return nil
	}
	return w.cb.QualityResults(batch)
}

func (w *callbackWriter) Name() string                { return w.name }
func (w *callbackWriter) Close(context.Context) error { return nil }

// NewCollectorWriter returns a writer that accumulates every batch in memory
// plus the Collector to read them back. Meant for fixtures and tests, not
// long-running processes.
func NewCollectorWriter(name string) (RecordWriter, *Collector) {
	if name == "" {
		name = "collector"
	}
	c := &Collector{}
	return &collectorWriter{name: name, c: c}, c
}

// Collector is the read side of NewCollectorWriter. Getters return copies,
// so callers can inspect while a generator is still writing.
type Collector struct {
	mu      sync.Mutex
	sensor  []SensorReading
	events  []ProductionEvent
	quality []QualityTestResult
}

func (c *Collector) SensorReadings() []SensorReading {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SensorReading, len(c.sensor))
	copy(out, c.sensor)
	return out
}

func (c *Collector) ProductionEvents() []ProductionEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ProductionEvent, len(c.events))
	copy(out, c.events)
	return out
}

func (c *Collector) QualityResults() []QualityTestResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]QualityTestResult, len(c.quality))
	copy(out, c.quality)
	return out
}

type collectorWriter struct {
	name string
	c    *Collector
}

func (w *collectorWriter) WriteSensorReadings(_ context.Context, batch []SensorReading) error {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	w.c.sensor = append(w.c.sensor, batch...)
	return nil
}

func (w *collectorWriter) WriteProductionEvents(_ context.Context, batch []ProductionEvent) error {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	w.c.events = append(w.c.events, batch...)
	return nil
}

func (w *collectorWriter) WriteQualityResults(_ context.Context, batch []QualityTestResult) error {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	w.c.quality = append(w.c.quality, batch...)
	return nil
}

func (w *collectorWriter) Name() string                { return w.name }
func (w *collectorWriter) Close(context.Context) error { return nil }
