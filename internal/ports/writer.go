package ports

import (
	"context"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
)

// RecordWriter receives generated fact batches. Implementations must treat
// an empty batch as a no-op success.
type RecordWriter interface {
	WriteSensorReadings(ctx context.Context, batch []domain.SensorReading) error
	WriteProductionEvents(ctx context.Context, batch []domain.ProductionEvent) error
	WriteQualityResults(ctx context.Context, batch []domain.QualityTestResult) error
	Name() string
	Close(ctx context.Context) error
}
