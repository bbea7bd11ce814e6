package ports

import (
	"context"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
)

// Warehouse is the full analytics store surface: fact ingestion plus
// dimension seeding and raw script execution.
type Warehouse interface {
	RecordWriter

	Ping(ctx context.Context) error
	LoadEquipment(ctx context.Context, equipment []domain.Equipment) error
	LoadProductionLines(ctx context.Context, lines []domain.ProductionLine) error
	LoadProducts(ctx context.Context, products []domain.Product) error
	LoadTimeDimension(ctx context.Context, start, end time.Time) (int64, error)
	ExecScript(ctx context.Context, script string) (int, error)
}

// DashboardStore is the read side served by the dashboard API. All queries
// hit pre-aggregated tables, never raw facts.
type DashboardStore interface {
	RealtimeSnapshot(ctx context.Context) (*domain.RealtimeSnapshot, error)
	EquipmentHealth(ctx context.Context) ([]domain.EquipmentHealth, error)
	EquipmentPerformance(ctx context.Context, equipmentID string, window time.Duration) ([]domain.EquipmentPerformanceWindow, error)
	ProductionMetrics(ctx context.Context, lineID string, window time.Duration) ([]domain.ProductionMetricsWindow, error)
	QualitySummary(ctx context.Context, productID string, window time.Duration) ([]domain.QualitySummaryWindow, error)
	MaintenanceOutlook(ctx context.Context) ([]domain.MaintenanceOutlook, error)
	ProductionLines(ctx context.Context) ([]domain.ProductionLine, error)
	Products(ctx context.Context) ([]domain.Product, error)
}

// Aggregator recomputes the pre-aggregated tables the dashboard reads.
type Aggregator interface {
	RefreshSnapshot(ctx context.Context) error
	RefreshWindows(ctx context.Context, window time.Duration) error
}
