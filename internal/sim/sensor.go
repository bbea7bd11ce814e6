package sim

import (
	"math/rand"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
)

// Typical operating baselines per equipment type. Unknown types get the
// conservative defaults at the bottom.
var (
	baseTemperatures = map[string]float64{
		"PRESS":    45,
		"ROBOT":    35,
		"CONVEYOR": 25,
		"WELDER":   55,
		"DRILL":    40,
		"SCANNER":  22,
	}
	basePressures = map[string]float64{
		"PRESS":    80,
		"ROBOT":    45,
		"CONVEYOR": 15,
		"WELDER":   25,
		"DRILL":    60,
		"SCANNER":  5,
	}
	baseSpeeds = map[string]float64{
		"PRESS":    800,
		"ROBOT":    1500,
		"CONVEYOR": 300,
		"WELDER":   600,
		"DRILL":    2000,
		"SCANNER":  50,
	}
)

const (
	defaultBaseTemperature = 30
	defaultBasePressure    = 20
	defaultBaseSpeed       = 500
)

// SensorSimulator synthesizes multi-metric readings for a fleet of
// machines, drifting each machine's baseline through the shared state
// store.
type SensorSimulator struct {
	equipment []domain.Equipment
	params    SensorParams
	state     *StateStore
	rng       *rand.Rand
	now       Clock
}

func NewSensorSimulator(equipment []domain.Equipment, params SensorParams, state *StateStore, rng *rand.Rand, now Clock) *SensorSimulator {
	if now == nil {
		now = time.Now
	}
	return &SensorSimulator{
		equipment: equipment,
		params:    params,
		state:     state,
		rng:       rng,
		now:       now,
	}
}

// GenerateBatch produces n readings, each for a uniformly chosen machine.
func (s *SensorSimulator) GenerateBatch(n int) []domain.SensorReading {
	batch := make([]domain.SensorReading, 0, n)
	for i := 0; i < n; i++ {
		eq := s.equipment[s.rng.Intn(len(s.equipment))]
		batch = append(batch, s.reading(eq))
	}
	return batch
}

func (s *SensorSimulator) reading(eq domain.Equipment) domain.SensorReading {
	st := s.state.Get(eq.ID)

	temperature := s.simTemperature(eq, st)
	pressure := s.simPressure(eq, st)
	vibration := s.simVibration(st)
	speed := s.simSpeed(eq)
	efficiency := s.simEfficiency(st)
	power := s.simPower(temperature, speed, efficiency)

	status := s.deriveStatus(temperature, pressure, vibration, eq.MaxTemperature, eq.MaxPressure)
	s.state.Update(eq.ID)

	return domain.SensorReading{
		Timestamp:         s.now(),
		EquipmentID:       eq.ID,
		SensorType:        eq.Type + "_SENSOR",
		Temperature:       roundTo(temperature, 2),
		Pressure:          roundTo(pressure, 2),
		Vibration:         roundTo(vibration, 3),
		SpeedRPM:          roundTo(speed, 1),
		PowerConsumption:  roundTo(power, 2),
		EfficiencyPercent: roundTo(efficiency, 1),
		Status:            status,
	}
}

func (s *SensorSimulator) simTemperature(eq domain.Equipment, st EquipmentState) float64 {
	p := s.params.Temperature
	base := float64(defaultBaseTemperature)
	if v, ok := baseTemperatures[eq.Type]; ok {
		base = v
	}
	t := base + st.TemperatureTrend
	t = addNoise(s.rng, t, p.Variance)
	t = maybeSpike(s.rng, t, p.SpikeProbability, p.SpikeMagnitude)
	return clamp(t, 15, eq.MaxTemperature*1.2)
}

func (s *SensorSimulator) simPressure(eq domain.Equipment, st EquipmentState) float64 {
	p := s.params.Pressure
	base := float64(defaultBasePressure)
	if v, ok := basePressures[eq.Type]; ok {
		base = v
	}
	v := base + st.PressureTrend
	v = addNoise(s.rng, v, p.Variance)
	v = maybeSpike(s.rng, v, p.SpikeProbability, p.SpikeMagnitude)
	return clamp(v, 0, eq.MaxPressure*1.1)
}

func (s *SensorSimulator) simVibration(st EquipmentState) float64 {
	p := s.params.Vibration
	v := uniformRange(s.rng, p.BaseRange)
	v += st.VibrationTrend
	v = addNoise(s.rng, v, p.Variance)
	v = maybeSpike(s.rng, v, p.SpikeProbability, p.SpikeMagnitude)
	if v < 0 {
		return 0
	}
	return v
}

func (s *SensorSimulator) simSpeed(eq domain.Equipment) float64 {
	p := s.params.SpeedRPM
	base := float64(defaultBaseSpeed)
	if v, ok := baseSpeeds[eq.Type]; ok {
		base = v
	}
	v := base * uniform(s.rng, 0.8, 1.2)
	v = addNoise(s.rng, v, p.Variance)
	v = maybeSpike(s.rng, v, p.SpikeProbability, p.SpikeMagnitude)
	return clamp(v, 0, eq.MaxSpeed)
}

func (s *SensorSimulator) simEfficiency(st EquipmentState) float64 {
	p := s.params.Efficiency
	v := uniformRange(s.rng, p.BaseRange)
	v -= st.EfficiencyDegradation
	v = addNoise(s.rng, v, p.Variance)
	return clamp(v, 30, 100)
}

// simPower correlates draw with the other signals: hot, fast or inefficient
// machines burn more.
func (s *SensorSimulator) simPower(temperature, speed, efficiency float64) float64 {
	p := s.params.PowerConsumption
	base := uniformRange(s.rng, p.BaseRange)

	tempFactor := 1 + (temperature-30)/100
	speedFactor := 1 + (speed-500)/2000
	efficiencyFactor := 2 - efficiency/100

	v := base * tempFactor * speedFactor * efficiencyFactor
	v = addNoise(s.rng, v, p.Variance)
	if v < 1 {
		return 1
	}
	return v
}

// deriveStatus maps instantaneous readings onto an operational state.
// Critical overshoot beats the warning band; a machine can also stop at
// random with small probability.
func (s *SensorSimulator) deriveStatus(temperature, pressure, vibration, maxTemp, maxPressure float64) domain.EquipmentStatus {
	if temperature > maxTemp*0.95 || pressure > maxPressure*0.95 {
		if s.rng.Intn(2) == 0 {
			return domain.StatusError
		}
		return domain.StatusMaintenance
	}
	if temperature > maxTemp*0.85 || pressure > maxPressure*0.85 || vibration > 0.7 {
		if s.rng.Float64() < 0.1 {
			return domain.StatusMaintenance
		}
	}
	if s.rng.Float64() < 0.005 {
		if s.rng.Intn(2) == 0 {
			return domain.StatusStopped
		}
		return domain.StatusMaintenance
	}
	return domain.StatusRunning
}
