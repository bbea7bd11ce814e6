package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

// RealtimeSnapshot returns the newest KPI row, or (nil, nil) before the first
// refresh has run.
func (p *Postgres) RealtimeSnapshot(ctx context.Context) (*domain.RealtimeSnapshot, error) {
	q := fmt.Sprintf("SELECT snapshot_time, active_equipment, running_count, stopped_count, alert_count, production_rate_per_hour, units_produced_today, planned_units_today, production_efficiency_percent, tests_conducted_today, quality_pass_rate_percent, critical_alerts, high_priority_alerts, medium_priority_alerts FROM %s.agg_realtime_dashboard ORDER BY snapshot_time DESC LIMIT 1", p.aggregation)

	var s domain.RealtimeSnapshot
	err := p.db.QueryRowContext(ctx, q).Scan(
		&s.SnapshotTime,
		&s.ActiveEquipment,
		&s.RunningCount,
		&s.StoppedCount,
		&s.AlertCount,
		&s.ProductionRateHour,
		&s.UnitsProducedToday,
		&s.PlannedUnitsToday,
		&s.ProductionEfficiency,
		&s.TestsConductedToday,
		&s.QualityPassRate,
		&s.CriticalAlerts,
		&s.HighPriorityAlerts,
		&s.MediumPriorityAlerts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("realtime snapshot: %w", err)
	}
	return &s, nil
}

const equipmentHealthSQL = `SELECT e.equipment_id, e.equipment_name, e.equipment_type, e.production_line_id,
    COALESCE(s.status, 'STOPPED'),
    COALESCE(s.temperature, 0),
    COALESCE(s.pressure, 0),
    COALESCE(s.vibration, 0),
    COALESCE(s.efficiency_percent, 0),
    COALESCE(m.health_score, 100),
    COALESCE(m.maintenance_priority, 'LOW'),
    COALESCE(s.timestamp, 'epoch'::timestamptz)
FROM %s.dim_equipment e
LEFT JOIN LATERAL (
    SELECT status, temperature, pressure, vibration, efficiency_percent, timestamp
    FROM %s.fact_sensor_data f
    WHERE f.equipment_id = e.equipment_id
    ORDER BY timestamp DESC
    LIMIT 1
) s ON TRUE
LEFT JOIN LATERAL (
    SELECT health_score, maintenance_priority
    FROM %s.agg_predictive_maintenance a
    WHERE a.equipment_id = e.equipment_id
    ORDER BY snapshot_time DESC
    LIMIT 1
) m ON TRUE
WHERE e.is_active
ORDER BY e.equipment_id`

func (p *Postgres) EquipmentHealth(ctx context.Context) ([]domain.EquipmentHealth, error) {
	q := fmt.Sprintf(equipmentHealthSQL, p.analytics, p.analytics, p.aggregation)

	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("equipment health: %w", err)
	}
	defer rows.Close()

	var out []domain.EquipmentHealth
	for rows.Next() {
		var h domain.EquipmentHealth
		if err := rows.Scan(
			&h.EquipmentID,
			&h.Name,
			&h.Type,
			&h.LineID,
			&h.Status,
			&h.Temperature,
			&h.Pressure,
			&h.Vibration,
			&h.EfficiencyPercent,
			&h.HealthScore,
			&h.Priority,
			&h.LastReading,
		); err != nil {
			return nil, fmt.Errorf("equipment health: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (p *Postgres) EquipmentPerformance(ctx context.Context, equipmentID string, window time.Duration) ([]domain.EquipmentPerformanceWindow, error) {
	q := fmt.Sprintf("SELECT equipment_id, window_start, window_end, avg_temperature, avg_pressure, avg_vibration, avg_speed_rpm, avg_power_consumption, avg_efficiency_percent, availability_percent, downtime_minutes, reading_count FROM %s.agg_equipment_performance WHERE equipment_id = $1 AND window_start >= now() - make_interval(secs => $2) ORDER BY window_start DESC", p.aggregation)

	rows, err := p.db.QueryContext(ctx, q, equipmentID, window.Seconds())
	if err != nil {
		return nil, fmt.Errorf("equipment performance: %w", err)
	}
	defer rows.Close()

	var out []domain.EquipmentPerformanceWindow
	for rows.Next() {
		var w domain.EquipmentPerformanceWindow
		if err := rows.Scan(
			&w.EquipmentID,
			&w.WindowStart,
			&w.WindowEnd,
			&w.AvgTemperature,
			&w.AvgPressure,
			&w.AvgVibration,
			&w.AvgSpeedRPM,
			&w.AvgPower,
			&w.AvgEfficiency,
			&w.AvailabilityPct,
			&w.DowntimeMinutes,
			&w.ReadingCount,
		); err != nil {
			return nil, fmt.Errorf("equipment performance: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ProductionMetrics returns hourly line buckets inside the window. An empty
// lineID means all lines.
func (p *Postgres) ProductionMetrics(ctx context.Context, lineID string, window time.Duration) ([]domain.ProductionMetricsWindow, error) {
	q := fmt.Sprintf("SELECT window_start, line_id, units_produced, planned_units, production_efficiency_percent, reject_count, reject_rate_percent, avg_cycle_time_seconds, downtime_minutes, event_count FROM %s.agg_production_metrics WHERE ($1 = '' OR line_id = $1) AND window_start >= now() - make_interval(secs => $2) ORDER BY window_start DESC, line_id", p.aggregation)

	rows, err := p.db.QueryContext(ctx, q, lineID, window.Seconds())
	if err != nil {
		return nil, fmt.Errorf("production metrics: %w", err)
	}
	defer rows.Close()

	var out []domain.ProductionMetricsWindow
	for rows.Next() {
		var w domain.ProductionMetricsWindow
		if err := rows.Scan(
			&w.WindowStart,
			&w.LineID,
			&w.UnitsProduced,
			&w.PlannedUnits,
			&w.EfficiencyPct,
			&w.RejectCount,
			&w.RejectRatePct,
			&w.AvgCycleSeconds,
			&w.DowntimeMinutes,
			&w.EventCount,
		); err != nil {
			return nil, fmt.Errorf("production metrics: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// QualitySummary returns hourly product buckets inside the window. An empty
// productID means all products.
func (p *Postgres) QualitySummary(ctx context.Context, productID string, window time.Duration) ([]domain.QualitySummaryWindow, error) {
	q := fmt.Sprintf("SELECT window_start, product_id, tests_conducted, tests_passed, tests_failed, pass_rate_percent, defect_count, top_defect FROM %s.agg_quality_summary WHERE ($1 = '' OR product_id = $1) AND window_start >= now() - make_interval(secs => $2) ORDER BY window_start DESC, product_id", p.aggregation)

	rows, err := p.db.QueryContext(ctx, q, productID, window.Seconds())
	if err != nil {
		return nil, fmt.Errorf("quality summary: %w", err)
	}
	defer rows.Close()

	var out []domain.QualitySummaryWindow
	for rows.Next() {
		var w domain.QualitySummaryWindow
		if err := rows.Scan(
			&w.WindowStart,
			&w.ProductID,
			&w.TestsConducted,
			&w.TestsPassed,
			&w.TestsFailed,
			&w.PassRatePct,
			&w.DefectCount,
			&w.TopDefect,
		); err != nil {
			return nil, fmt.Errorf("quality summary: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (p *Postgres) MaintenanceOutlook(ctx context.Context) ([]domain.MaintenanceOutlook, error) {
	q := fmt.Sprintf("SELECT DISTINCT ON (equipment_id) equipment_id, equipment_name, equipment_type, snapshot_time, health_score, temperature_alert, pressure_alert, vibration_alert, efficiency_alert, maintenance_priority, avg_temperature, avg_vibration, avg_efficiency_percent FROM %s.agg_predictive_maintenance ORDER BY equipment_id, snapshot_time DESC", p.aggregation)

	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("maintenance outlook: %w", err)
	}
	defer rows.Close()

	var out []domain.MaintenanceOutlook
	for rows.Next() {
		var m domain.MaintenanceOutlook
		if err := rows.Scan(
			&m.EquipmentID,
			&m.Name,
			&m.Type,
			&m.SnapshotTime,
			&m.HealthScore,
			&m.TemperatureAlert,
			&m.PressureAlert,
			&m.VibrationAlert,
			&m.EfficiencyAlert,
			&m.Priority,
			&m.AvgTemperature,
			&m.AvgVibration,
			&m.AvgEfficiency,
		); err != nil {
			return nil, fmt.Errorf("maintenance outlook: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *Postgres) ProductionLines(ctx context.Context) ([]domain.ProductionLine, error) {
	q := fmt.Sprintf("SELECT line_id, line_name, facility_name, product_type, target_capacity_per_hour, shift_pattern FROM %s.dim_production_line WHERE is_active ORDER BY line_id", p.analytics)

	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("production lines: %w", err)
	}
	defer rows.Close()

	var out []domain.ProductionLine
	for rows.Next() {
		var l domain.ProductionLine
		if err := rows.Scan(&l.ID, &l.Name, &l.Facility, &l.ProductType, &l.TargetCapacityHour, &l.ShiftPattern); err != nil {
			return nil, fmt.Errorf("production lines: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (p *Postgres) Products(ctx context.Context) ([]domain.Product, error) {
	q := fmt.Sprintf("SELECT product_id, product_name, product_category, unit_of_measure, standard_cost, target_quality_score FROM %s.dim_product WHERE is_active ORDER BY product_id", p.analytics)

	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var pr domain.Product
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.Category, &pr.UnitOfMeasure, &pr.StandardCost, &pr.TargetQualityScore); err != nil {
			return nil, fmt.Errorf("products: %w", err)
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

var _ ports.DashboardStore = (*Postgres)(nil)
