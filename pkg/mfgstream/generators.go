package mfgstream

import (
	"math/rand"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/app/config"
	"github.com/sfc-gh-aneel/streaming-demo/internal/app/generator"
	"github.com/sfc-gh-aneel/streaming-demo/internal/sim"
)

// Generators exposes the three simulators for direct batch generation,
// bypassing the loops and writers. Fixture builders use this.
type Generators struct {
	sensor     *sim.SensorSimulator
	production *sim.ProductionSimulator
	quality    *sim.QualitySimulator
}

// newGenerators wires the simulators the same way the runtime does: one base
// seed fans out into three offset streams, and the drift state store shares
// the sensor stream's source so a seed reproduces identical records.
func newGenerators(cfg *config.Config, seed int64, now sim.Clock) *Generators {
	equipment := cfg.EquipmentList()

	sensorRng := rand.New(rand.NewSource(seed))
	state := sim.NewStateStore(sensorRng, now)

	return &Generators{
		sensor: sim.NewSensorSimulator(equipment, cfg.SensorData, state, sensorRng, now),
		production: sim.NewProductionSimulator(
			equipment,
			cfg.ProductionLineList(),
			cfg.ProductList(),
			cfg.OperatorList(),
			cfg.Production,
			rand.New(rand.NewSource(seed+1)),
			now,
		),
		quality: sim.NewQualitySimulator(
			equipment,
			cfg.ProductList(),
			cfg.InspectorList(),
			cfg.QualityTestList(),
			cfg.Quality.DefectTypes,
			rand.New(rand.NewSource(seed+2)),
			now,
		),
	}
}

func resolveSeed(cfg *config.Config, override *int64) int64 {
	if override != nil {
		return *override
	}
	if cfg.Generation.RandomSeed != nil {
		return *cfg.Generation.RandomSeed
	}
	return time.Now().UnixNano()
}

// SensorReadings generates n readings, advancing the shared drift state.
func (g *Generators) SensorReadings(n int) []SensorReading {
	return g.sensor.GenerateBatch(n)
}

// ProductionEvents generates n production events.
func (g *Generators) ProductionEvents(n int) []ProductionEvent {
	return g.production.GenerateBatch(n)
}

// QualityResults generates n quality test results.
func (g *Generators) QualityResults(n int) []QualityTestResult {
	return g.quality.GenerateBatch(n)
}

func (g *Generators) sources() generator.Sources {
	return generator.Sources{
		Sensor:     g.sensor,
		Production: g.production,
		Quality:    g.quality,
	}
}
