package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

// maintenanceSnapshotSQL scores every active machine from its last hour of
// readings. Alert thresholds mirror the simulator's warning bands; the score
// starts at 100 and loses a fixed amount per alert plus up to 20 points for
// time spent in ERROR.
const maintenanceSnapshotSQL = `INSERT INTO %s.agg_predictive_maintenance (equipment_id, equipment_name, equipment_type, snapshot_time, health_score, temperature_alert, pressure_alert, vibration_alert, efficiency_alert, maintenance_priority, avg_temperature, avg_vibration, avg_efficiency_percent)
SELECT
    equipment_id,
    equipment_name,
    equipment_type,
    now(),
    health_score,
    temperature_alert,
    pressure_alert,
    vibration_alert,
    efficiency_alert,
    CASE
        WHEN health_score < 40 THEN 'CRITICAL'
        WHEN health_score < 60 THEN 'HIGH'
        WHEN health_score < 80 THEN 'MEDIUM'
        ELSE 'LOW'
    END,
    avg_temperature,
    avg_vibration,
    avg_efficiency_percent
FROM (
    SELECT
        e.equipment_id,
        e.equipment_name,
        e.equipment_type,
        w.avg_temperature > e.max_temperature * 0.85 AS temperature_alert,
        w.avg_pressure > e.max_pressure * 0.85 AS pressure_alert,
        w.avg_vibration > 0.7 AS vibration_alert,
        w.avg_efficiency_percent < 60 AS efficiency_alert,
        GREATEST(0, 100
            - CASE WHEN w.avg_temperature > e.max_temperature * 0.85 THEN 20 ELSE 0 END
            - CASE WHEN w.avg_pressure > e.max_pressure * 0.85 THEN 20 ELSE 0 END
            - CASE WHEN w.avg_vibration > 0.7 THEN 25 ELSE 0 END
            - CASE WHEN w.avg_efficiency_percent < 60 THEN 15 ELSE 0 END
            - LEAST(20, ROUND(w.error_share * 100))) AS health_score,
        w.avg_temperature,
        w.avg_vibration,
        w.avg_efficiency_percent
    FROM %s.dim_equipment e
    JOIN (
        SELECT
            equipment_id,
            ROUND(AVG(temperature)::numeric, 2) AS avg_temperature,
            ROUND(AVG(pressure)::numeric, 2) AS avg_pressure,
            ROUND(AVG(vibration)::numeric, 3) AS avg_vibration,
            ROUND(AVG(efficiency_percent)::numeric, 1) AS avg_efficiency_percent,
            AVG(CASE WHEN status = 'ERROR' THEN 1.0 ELSE 0.0 END) AS error_share
        FROM %s.fact_sensor_data
        WHERE timestamp >= now() - interval '1 hour'
        GROUP BY equipment_id
    ) w ON w.equipment_id = e.equipment_id
    WHERE e.is_active
) scored`

const realtimeSnapshotSQL = `INSERT INTO %s.agg_realtime_dashboard (snapshot_time, active_equipment, running_count, stopped_count, alert_count, production_rate_per_hour, units_produced_today, planned_units_today, production_efficiency_percent, tests_conducted_today, quality_pass_rate_percent, critical_alerts, high_priority_alerts, medium_priority_alerts)
WITH latest AS (
    SELECT DISTINCT ON (equipment_id) equipment_id, status
    FROM %s.fact_sensor_data
    WHERE timestamp >= now() - interval '15 minutes'
    ORDER BY equipment_id, timestamp DESC
), production AS (
    SELECT
        COALESCE(SUM(units_produced), 0) AS units,
        COALESCE(SUM(planned_units), 0) AS planned,
        COALESCE(SUM(units_produced) FILTER (WHERE timestamp >= now() - interval '1 hour'), 0) AS last_hour_units
    FROM %s.fact_production_events
    WHERE timestamp >= date_trunc('day', now())
), quality AS (
    SELECT COUNT(*) AS tests, COUNT(*) FILTER (WHERE is_within_spec) AS passed
    FROM %s.fact_quality_tests
    WHERE timestamp >= date_trunc('day', now())
), alerts AS (
    SELECT
        COUNT(*) FILTER (WHERE maintenance_priority = 'CRITICAL') AS critical,
        COUNT(*) FILTER (WHERE maintenance_priority = 'HIGH') AS high,
        COUNT(*) FILTER (WHERE maintenance_priority = 'MEDIUM') AS medium
    FROM %s.agg_predictive_maintenance
    WHERE snapshot_time = (SELECT MAX(snapshot_time) FROM %s.agg_predictive_maintenance)
)
SELECT
    now(),
    (SELECT COUNT(*) FROM latest),
    (SELECT COUNT(*) FILTER (WHERE status = 'RUNNING') FROM latest),
    (SELECT COUNT(*) FILTER (WHERE status = 'STOPPED') FROM latest),
    (SELECT COUNT(*) FILTER (WHERE status IN ('ERROR', 'MAINTENANCE')) FROM latest),
    (SELECT last_hour_units FROM production),
    (SELECT units FROM production),
    (SELECT planned FROM production),
    (SELECT CASE WHEN planned > 0 THEN ROUND(100.0 * units / planned, 2) ELSE 0 END FROM production),
    (SELECT tests FROM quality),
    (SELECT CASE WHEN tests > 0 THEN ROUND(100.0 * passed / tests, 2) ELSE 0 END FROM quality),
    (SELECT critical FROM alerts),
    (SELECT high FROM alerts),
    (SELECT medium FROM alerts)`

const deleteEquipmentWindowsSQL = `DELETE FROM %s.agg_equipment_performance WHERE window_start >= date_trunc('hour', now() - make_interval(secs => $1))`

const equipmentWindowsSQL = `INSERT INTO %s.agg_equipment_performance (equipment_id, window_start, window_end, avg_temperature, avg_pressure, avg_vibration, avg_speed_rpm, avg_power_consumption, avg_efficiency_percent, availability_percent, downtime_minutes, reading_count)
SELECT
    s.equipment_id,
    s.window_start,
    s.window_start + interval '1 hour',
    s.avg_temperature,
    s.avg_pressure,
    s.avg_vibration,
    s.avg_speed_rpm,
    s.avg_power_consumption,
    s.avg_efficiency_percent,
    s.availability_percent,
    COALESCE(d.downtime_minutes, 0),
    s.reading_count
FROM (
    SELECT
        equipment_id,
        date_trunc('hour', timestamp) AS window_start,
        ROUND(AVG(temperature)::numeric, 2) AS avg_temperature,
        ROUND(AVG(pressure)::numeric, 2) AS avg_pressure,
        ROUND(AVG(vibration)::numeric, 3) AS avg_vibration,
        ROUND(AVG(speed_rpm)::numeric, 1) AS avg_speed_rpm,
        ROUND(AVG(power_consumption)::numeric, 2) AS avg_power_consumption,
        ROUND(AVG(efficiency_percent)::numeric, 1) AS avg_efficiency_percent,
        ROUND(100.0 * COUNT(*) FILTER (WHERE status = 'RUNNING') / COUNT(*), 2) AS availability_percent,
        COUNT(*) AS reading_count
    FROM %s.fact_sensor_data
    WHERE timestamp >= date_trunc('hour', now() - make_interval(secs => $1))
    GROUP BY equipment_id, date_trunc('hour', timestamp)
) s
LEFT JOIN (
    SELECT
        equipment_id,
        date_trunc('hour', timestamp) AS window_start,
        ROUND(SUM(downtime_minutes)::numeric, 1) AS downtime_minutes
    FROM %s.fact_production_events
    WHERE timestamp >= date_trunc('hour', now() - make_interval(secs => $1))
    GROUP BY equipment_id, date_trunc('hour', timestamp)
) d ON d.equipment_id = s.equipment_id AND d.window_start = s.window_start`

const deleteProductionWindowsSQL = `DELETE FROM %s.agg_production_metrics WHERE window_start >= date_trunc('hour', now() - make_interval(secs => $1))`

const productionWindowsSQL = `INSERT INTO %s.agg_production_metrics (window_start, line_id, units_produced, planned_units, production_efficiency_percent, reject_count, reject_rate_percent, avg_cycle_time_seconds, downtime_minutes, event_count)
SELECT
    date_trunc('hour', timestamp),
    line_id,
    SUM(units_produced),
    SUM(planned_units),
    CASE WHEN SUM(planned_units) > 0 THEN ROUND(100.0 * SUM(units_produced) / SUM(planned_units), 2) ELSE 0 END,
    SUM(reject_count),
    CASE WHEN SUM(units_produced) > 0 THEN ROUND(100.0 * SUM(reject_count) / SUM(units_produced), 2) ELSE 0 END,
    ROUND(AVG(cycle_time_seconds)::numeric, 1),
    ROUND(SUM(downtime_minutes)::numeric, 1),
    COUNT(*)
FROM %s.fact_production_events
WHERE timestamp >= date_trunc('hour', now() - make_interval(secs => $1))
GROUP BY date_trunc('hour', timestamp), line_id`

const deleteQualityWindowsSQL = `DELETE FROM %s.agg_quality_summary WHERE window_start >= date_trunc('hour', now() - make_interval(secs => $1))`

const qualityWindowsSQL = `INSERT INTO %s.agg_quality_summary (window_start, product_id, tests_conducted, tests_passed, tests_failed, pass_rate_percent, defect_count, top_defect)
SELECT
    date_trunc('hour', timestamp),
    product_id,
    COUNT(*),
    COUNT(*) FILTER (WHERE is_within_spec),
    COUNT(*) FILTER (WHERE NOT is_within_spec),
    ROUND(100.0 * COUNT(*) FILTER (WHERE is_within_spec) / COUNT(*), 2),
    COUNT(defect_type),
    mode() WITHIN GROUP (ORDER BY defect_type)
FROM %s.fact_quality_tests
WHERE timestamp >= date_trunc('hour', now() - make_interval(secs => $1))
GROUP BY date_trunc('hour', timestamp), product_id`

// RefreshSnapshot appends one health row per machine and then one plant-wide
// KPI row. The maintenance insert runs first so the KPI alert counts see the
// fresh snapshot.
func (p *Postgres) RefreshSnapshot(ctx context.Context) error {
	maintenance := fmt.Sprintf(maintenanceSnapshotSQL, p.aggregation, p.analytics, p.analytics)
	if _, err := p.db.ExecContext(ctx, maintenance); err != nil {
		return fmt.Errorf("refresh predictive maintenance: %w", err)
	}

	realtime := fmt.Sprintf(realtimeSnapshotSQL, p.aggregation, p.analytics, p.analytics, p.analytics, p.aggregation, p.aggregation)
	if _, err := p.db.ExecContext(ctx, realtime); err != nil {
		return fmt.Errorf("refresh realtime dashboard: %w", err)
	}
	return nil
}

// RefreshWindows recomputes the hourly aggregates covering the trailing
// window. Delete and insert run in one transaction per refresh so dashboard
// readers never observe a half-rebuilt table.
func (p *Postgres) RefreshWindows(ctx context.Context, window time.Duration) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("refresh windows: %w", err)
	}
	defer tx.Rollback()

	secs := window.Seconds()
	steps := []struct {
		name string
		sql  string
	}{
		{"equipment performance", fmt.Sprintf(deleteEquipmentWindowsSQL, p.aggregation)},
		{"equipment performance", fmt.Sprintf(equipmentWindowsSQL, p.aggregation, p.analytics, p.analytics)},
		{"production metrics", fmt.Sprintf(deleteProductionWindowsSQL, p.aggregation)},
		{"production metrics", fmt.Sprintf(productionWindowsSQL, p.aggregation, p.analytics)},
		{"quality summary", fmt.Sprintf(deleteQualityWindowsSQL, p.aggregation)},
		{"quality summary", fmt.Sprintf(qualityWindowsSQL, p.aggregation, p.analytics)},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.sql, secs); err != nil {
			return fmt.Errorf("refresh %s: %w", step.name, err)
		}
	}
	return tx.Commit()
}

var _ ports.Aggregator = (*Postgres)(nil)
