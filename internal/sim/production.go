package sim

import (
	"math"
	"math/rand"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
)

// eventTypeWeights drives the event mix; production dominates. Sampling
// walks the cumulative weights.
var eventTypeWeights = []struct {
	event  domain.EventType
	weight int
}{
	{domain.EventProduction, 85},
	{domain.EventChangeover, 5},
	{domain.EventMaintenance, 3},
	{domain.EventPlannedMaintenance, 2},
	{domain.EventQualityCheck, 3},
	{domain.EventSetup, 2},
}

// ProductionSimulator synthesizes production events: mostly production
// cycles with volumes and rejects, occasionally maintenance and setup
// events with downtime.
type ProductionSimulator struct {
	equipment []domain.Equipment
	lines     []domain.ProductionLine
	products  []domain.Product
	operators []domain.Operator
	params    ProductionParams
	rng       *rand.Rand
	now       Clock
}

func NewProductionSimulator(
	equipment []domain.Equipment,
	lines []domain.ProductionLine,
	products []domain.Product,
	operators []domain.Operator,
	params ProductionParams,
	rng *rand.Rand,
	now Clock,
) *ProductionSimulator {
	if now == nil {
		now = time.Now
	}
	return &ProductionSimulator{
		equipment: equipment,
		lines:     lines,
		products:  products,
		operators: operators,
		params:    params,
		rng:       rng,
		now:       now,
	}
}

// GenerateBatch produces n events for uniformly chosen machines and
// products, stamped with an operator from the current shift.
func (s *ProductionSimulator) GenerateBatch(n int) []domain.ProductionEvent {
	batch := make([]domain.ProductionEvent, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, s.event())
	}
	return batch
}

func (s *ProductionSimulator) event() domain.ProductionEvent {
	eq := s.equipment[s.rng.Intn(len(s.equipment))]
	line := s.lineFor(eq)
	product := s.products[s.rng.Intn(len(s.products))]
	operator := s.operatorOnDuty()

	eventType := s.pickEventType()
	cycle := s.cycleTime(eq.Type)

	var unitsProduced, plannedUnits, rejectCount int
	var downtime float64
	if eventType == domain.EventProduction {
		low, high := s.params.Volume.UnitsPerCycle[0], s.params.Volume.UnitsPerCycle[1]
		unitsProduced = randBetween(s.rng, low, high)
		plannedUnits = unitsProduced + randBetween(s.rng, 0, 2)
		rejectCount = s.rejectCount(unitsProduced)
	} else {
		plannedUnits = randBetween(s.rng, 1, 10)
		downtime = s.downtime()
	}

	now := s.now()
	return domain.ProductionEvent{
		Timestamp:        now,
		EquipmentID:      eq.ID,
		LineID:           line.ID,
		ProductID:        product.ID,
		EventType:        eventType,
		UnitsProduced:    unitsProduced,
		PlannedUnits:     plannedUnits,
		CycleTimeSeconds: roundTo(cycle, 1),
		DowntimeMinutes:  roundTo(downtime, 1),
		RejectCount:      rejectCount,
		OperatorID:       operator.ID,
		BatchID:          batchID(s.rng, now),
	}
}

// lineFor resolves the machine's line. A dangling reference falls back to
// the first configured line; config validation warns about those at
// startup.
func (s *ProductionSimulator) lineFor(eq domain.Equipment) domain.ProductionLine {
	for _, ln := range s.lines {
		if ln.ID == eq.LineID {
			return ln
		}
	}
	return s.lines[0]
}

// operatorOnDuty picks uniformly among operators on the current shift. An
// unstaffed shift falls back to the first configured operator.
func (s *ProductionSimulator) operatorOnDuty() domain.Operator {
	shift := domain.ShiftAt(s.now())
	onDuty := make([]domain.Operator, 0, len(s.operators))
	for _, op := range s.operators {
		if op.Shift == shift {
			onDuty = append(onDuty, op)
		}
	}
	if len(onDuty) == 0 {
		return s.operators[0]
	}
	return onDuty[s.rng.Intn(len(onDuty))]
}

func (s *ProductionSimulator) pickEventType() domain.EventType {
	total := 0
	for _, w := range eventTypeWeights {
		total += w.weight
	}
	draw := s.rng.Intn(total)
	for _, w := range eventTypeWeights {
		draw -= w.weight
		if draw < 0 {
			return w.event
		}
	}
	return domain.EventProduction
}

func (s *ProductionSimulator) cycleTime(equipmentType string) float64 {
	ct := s.params.CycleTime
	factor := 1.0
	if f, ok := ct.EquipmentFactors[equipmentType]; ok {
		factor = f
	}
	cycle := addNoise(s.rng, ct.BaseSeconds*factor, ct.Variance)
	return math.Max(5, cycle)
}

// rejectCount runs one Bernoulli trial per produced unit, so rejects can
// never exceed production.
func (s *ProductionSimulator) rejectCount(unitsProduced int) int {
	rejects := 0
	for i := 0; i < unitsProduced; i++ {
		if s.rng.Float64() < s.params.Volume.RejectProbability {
			rejects++
		}
	}
	return rejects
}

func (s *ProductionSimulator) downtime() float64 {
	d := s.rng.ExpFloat64() * s.params.Downtime.AverageMinutes
	return math.Min(d, s.params.Downtime.MaxMinutes)
}
