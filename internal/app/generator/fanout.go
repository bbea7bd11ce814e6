package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

// Fanout delivers every batch to each delegate writer. All writers are
// attempted even when an earlier one fails; the errors come back joined so
// a broken stream never blocks the warehouse write.
type Fanout struct {
	writers []ports.RecordWriter
}

func NewFanout(writers ...ports.RecordWriter) *Fanout {
	return &Fanout{writers: writers}
}

func (f *Fanout) WriteSensorReadings(ctx context.Context, batch []domain.SensorReading) error {
	var errs []error
	for _, w := range f.writers {
		if err := w.WriteSensorReadings(ctx, batch); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", w.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) WriteProductionEvents(ctx context.Context, batch []domain.ProductionEvent) error {
	var errs []error
	for _, w := range f.writers {
		if err := w.WriteProductionEvents(ctx, batch); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", w.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) WriteQualityResults(ctx context.Context, batch []domain.QualityTestResult) error {
	var errs []error
	for _, w := range f.writers {
		if err := w.WriteQualityResults(ctx, batch); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", w.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) Name() string { return "fanout" }

func (f *Fanout) Close(ctx context.Context) error {
	var errs []error
	for _, w := range f.writers {
		if err := w.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", w.Name(), err))
		}
	}
	return errors.Join(errs...)
}

var _ ports.RecordWriter = (*Fanout)(nil)
