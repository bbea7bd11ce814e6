// Package warehouse is the Postgres adapter behind the Warehouse,
// DashboardStore and Aggregator ports. Facts are appended with multi-row
// INSERTs, dimensions are upserted so seeding is re-runnable.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

type Postgres struct {
	db          *sql.DB
	analytics   string
	aggregation string
}

func NewPostgres(db *sql.DB, analyticsSchema, aggregationSchema string) *Postgres {
	return &Postgres{db: db, analytics: analyticsSchema, aggregation: aggregationSchema}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) Close(ctx context.Context) error { return p.db.Close() }

func (p *Postgres) WriteSensorReadings(ctx context.Context, batch []domain.SensorReading) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s.fact_sensor_data (timestamp, equipment_id, sensor_type, temperature, pressure, vibration, speed_rpm, power_consumption, efficiency_percent, status) VALUES ", p.analytics)

	args := make([]any, 0, len(batch)*10)
	for i, r := range batch {
		if i > 0 {
			b.WriteString(",")
		}
		writeRowPlaceholders(&b, len(args)+1, 10)
		args = append(args,
			r.Timestamp,
			r.EquipmentID,
			r.SensorType,
			r.Temperature,
			r.Pressure,
			r.Vibration,
			r.SpeedRPM,
			r.PowerConsumption,
			r.EfficiencyPercent,
			string(r.Status),
		)
	}

	if _, err := p.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert sensor batch: %w", err)
	}
	return nil
}

func (p *Postgres) WriteProductionEvents(ctx context.Context, batch []domain.ProductionEvent) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s.fact_production_events (timestamp, equipment_id, line_id, product_id, event_type, units_produced, planned_units, cycle_time_seconds, downtime_minutes, reject_count, operator_id, batch_id) VALUES ", p.analytics)

	args := make([]any, 0, len(batch)*12)
	for i, e := range batch {
		if i > 0 {
			b.WriteString(",")
		}
		writeRowPlaceholders(&b, len(args)+1, 12)
		args = append(args,
			e.Timestamp,
			e.EquipmentID,
			e.LineID,
			e.ProductID,
			string(e.EventType),
			e.UnitsProduced,
			e.PlannedUnits,
			e.CycleTimeSeconds,
			e.DowntimeMinutes,
			e.RejectCount,
			e.OperatorID,
			e.BatchID,
		)
	}

	if _, err := p.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert production batch: %w", err)
	}
	return nil
}

func (p *Postgres) WriteQualityResults(ctx context.Context, batch []domain.QualityTestResult) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s.fact_quality_tests (timestamp, equipment_id, product_id, test_type, measurement_value, specification_min, specification_max, is_within_spec, defect_type, inspector_id, batch_id, sample_size) VALUES ", p.analytics)

	args := make([]any, 0, len(batch)*12)
	for i, r := range batch {
		if i > 0 {
			b.WriteString(",")
		}
		writeRowPlaceholders(&b, len(args)+1, 12)
		args = append(args,
			r.Timestamp,
			r.EquipmentID,
			r.ProductID,
			r.TestType,
			r.MeasurementValue,
			r.SpecificationMin,
			r.SpecificationMax,
			r.IsWithinSpec,
			r.DefectType,
			r.InspectorID,
			r.BatchID,
			r.SampleSize,
		)
	}

	if _, err := p.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert quality batch: %w", err)
	}
	return nil
}

func (p *Postgres) LoadEquipment(ctx context.Context, equipment []domain.Equipment) error {
	if len(equipment) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s.dim_equipment (equipment_id, equipment_name, equipment_type, manufacturer, model, installation_date, production_line_id, location, max_temperature, max_pressure, max_speed, maintenance_schedule, is_active) VALUES ", p.analytics)

	args := make([]any, 0, len(equipment)*10)
	for i, e := range equipment {
		if i > 0 {
			b.WriteString(",")
		}
		n := len(args)
		fmt.Fprintf(&b, "($%d,$%d,$%d,$%d,$%d,CURRENT_DATE,$%d,$%d,$%d,$%d,$%d,'MONTHLY',TRUE)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8, n+9, n+10)
		args = append(args,
			e.ID,
			e.Name,
			e.Type,
			e.Manufacturer,
			e.Model,
			e.LineID,
			e.Location,
			e.MaxTemperature,
			e.MaxPressure,
			e.MaxSpeed,
		)
	}

	b.WriteString(" ON CONFLICT (equipment_id) DO UPDATE SET equipment_name = EXCLUDED.equipment_name, equipment_type = EXCLUDED.equipment_type, manufacturer = EXCLUDED.manufacturer, model = EXCLUDED.model, production_line_id = EXCLUDED.production_line_id, location = EXCLUDED.location, max_temperature = EXCLUDED.max_temperature, max_pressure = EXCLUDED.max_pressure, max_speed = EXCLUDED.max_speed, is_active = TRUE")

	if _, err := p.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("upsert dim_equipment: %w", err)
	}
	return nil
}

func (p *Postgres) LoadProductionLines(ctx context.Context, lines []domain.ProductionLine) error {
	if len(lines) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s.dim_production_line (line_id, line_name, facility_name, shift_pattern, target_capacity_per_hour, product_type, is_active) VALUES ", p.analytics)

	args := make([]any, 0, len(lines)*6)
	for i, l := range lines {
		if i > 0 {
			b.WriteString(",")
		}
		n := len(args)
		fmt.Fprintf(&b, "($%d,$%d,$%d,$%d,$%d,$%d,TRUE)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args,
			l.ID,
			l.Name,
			l.Facility,
			l.ShiftPattern,
			l.TargetCapacityHour,
			l.ProductType,
		)
	}

	b.WriteString(" ON CONFLICT (line_id) DO UPDATE SET line_name = EXCLUDED.line_name, facility_name = EXCLUDED.facility_name, shift_pattern = EXCLUDED.shift_pattern, target_capacity_per_hour = EXCLUDED.target_capacity_per_hour, product_type = EXCLUDED.product_type, is_active = TRUE")

	if _, err := p.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("upsert dim_production_line: %w", err)
	}
	return nil
}

func (p *Postgres) LoadProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s.dim_product (product_id, product_name, product_category, unit_of_measure, standard_cost, target_quality_score, is_active) VALUES ", p.analytics)

	args := make([]any, 0, len(products)*6)
	for i, pr := range products {
		if i > 0 {
			b.WriteString(",")
		}
		n := len(args)
		fmt.Fprintf(&b, "($%d,$%d,$%d,$%d,$%d,$%d,TRUE)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args,
			pr.ID,
			pr.Name,
			pr.Category,
			pr.UnitOfMeasure,
			pr.StandardCost,
			pr.TargetQualityScore,
		)
	}

	b.WriteString(" ON CONFLICT (product_id) DO UPDATE SET product_name = EXCLUDED.product_name, product_category = EXCLUDED.product_category, unit_of_measure = EXCLUDED.unit_of_measure, standard_cost = EXCLUDED.standard_cost, target_quality_score = EXCLUDED.target_quality_score, is_active = TRUE")

	if _, err := p.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("upsert dim_product: %w", err)
	}
	return nil
}

// timeDimensionSQL fills dim_time with one row per minute. The key packs the
// civil timestamp as YYYYMMDDHHMM so re-running a range is a no-op.
const timeDimensionSQL = `INSERT INTO %s.dim_time (time_key, full_date, year_number, quarter_number, month_number, month_name, week_number, day_of_year, day_of_month, day_of_week, day_name, hour_number, minute_number, is_weekend, is_holiday, shift_name)
SELECT
    EXTRACT(YEAR FROM ts)::bigint * 100000000 + EXTRACT(MONTH FROM ts)::bigint * 1000000 + EXTRACT(DAY FROM ts)::bigint * 10000 + EXTRACT(HOUR FROM ts)::bigint * 100 + EXTRACT(MINUTE FROM ts)::bigint,
    ts::date,
    EXTRACT(YEAR FROM ts)::int,
    EXTRACT(QUARTER FROM ts)::int,
    EXTRACT(MONTH FROM ts)::int,
    TRIM(TO_CHAR(ts, 'Month')),
    EXTRACT(WEEK FROM ts)::int,
    EXTRACT(DOY FROM ts)::int,
    EXTRACT(DAY FROM ts)::int,
    EXTRACT(ISODOW FROM ts)::int,
    TRIM(TO_CHAR(ts, 'Day')),
    EXTRACT(HOUR FROM ts)::int,
    EXTRACT(MINUTE FROM ts)::int,
    EXTRACT(ISODOW FROM ts) >= 6,
    FALSE,
    CASE
        WHEN EXTRACT(HOUR FROM ts) >= 6 AND EXTRACT(HOUR FROM ts) < 14 THEN 'DAY_SHIFT'
        WHEN EXTRACT(HOUR FROM ts) >= 14 AND EXTRACT(HOUR FROM ts) < 22 THEN 'AFTERNOON_SHIFT'
        ELSE 'NIGHT_SHIFT'
    END
FROM generate_series($1::timestamptz, $2::timestamptz, interval '1 minute') AS g(ts)
ON CONFLICT (time_key) DO NOTHING`

func (p *Postgres) LoadTimeDimension(ctx context.Context, start, end time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx, fmt.Sprintf(timeDimensionSQL, p.analytics), start, end)
	if err != nil {
		return 0, fmt.Errorf("populate dim_time: %w", err)
	}
	return res.RowsAffected()
}

// ExecScript runs a SQL script statement by statement, split on semicolons.
// All statements share one connection so session settings carry across them;
// the first failure aborts and reports its position in the script.
func (p *Postgres) ExecScript(ctx context.Context, script string) (int, error) {
	stmts := splitStatements(script)
	if len(stmts) == 0 {
		return 0, nil
	}

	conn, err := p.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("exec script: %w", err)
	}
	defer conn.Close()

	for i, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return i, fmt.Errorf("statement %d/%d: %w", i+1, len(stmts), err)
		}
	}
	return len(stmts), nil
}

func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	stmts := make([]string, 0, len(parts))
	for _, part := range parts {
		if isAllComments(part) {
			continue
		}
		stmts = append(stmts, strings.TrimSpace(part))
	}
	return stmts
}

// isAllComments reports whether a fragment holds no executable SQL, only
// whitespace and -- line comments.
func isAllComments(fragment string) bool {
	for _, line := range strings.Split(fragment, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		return false
	}
	return true
}

// writeRowPlaceholders appends "($n,$n+1,...)" for one VALUES tuple starting
// at placeholder n.
func writeRowPlaceholders(b *strings.Builder, start, width int) {
	b.WriteByte('(')
	for i := 0; i < width; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "$%d", start+i)
	}
	b.WriteByte(')')
}

var _ ports.Warehouse = (*Postgres)(nil)
