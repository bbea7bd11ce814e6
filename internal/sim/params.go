package sim

import "fmt"

// SignalParams tunes one simulated signal. Variance is used directly as the
// standard deviation of the Gaussian noise term.
type SignalParams struct {
	Variance         float64   `yaml:"variance"`
	SpikeProbability float64   `yaml:"spike_probability"`
	SpikeMagnitude   float64   `yaml:"spike_magnitude"`
	BaseRange        []float64 `yaml:"base_range"`
}

// SensorParams tunes the six signals of a sensor reading.
type SensorParams struct {
	Temperature      SignalParams `yaml:"temperature"`
	Pressure         SignalParams `yaml:"pressure"`
	Vibration        SignalParams `yaml:"vibration"`
	SpeedRPM         SignalParams `yaml:"speed_rpm"`
	Efficiency       SignalParams `yaml:"efficiency"`
	PowerConsumption SignalParams `yaml:"power_consumption"`
}

func (p *SensorParams) ApplyDefaults() {
	applySignalDefaults(&p.Temperature, 2.0, 0.02, 15.0, nil)
	applySignalDefaults(&p.Pressure, 3.0, 0.01, 20.0, nil)
	applySignalDefaults(&p.Vibration, 0.05, 0.05, 2.0, []float64{0.1, 0.8})
	applySignalDefaults(&p.SpeedRPM, 50.0, 0.01, 200.0, nil)
	applySignalDefaults(&p.Efficiency, 2.0, 0, 0, []float64{75, 95})
	applySignalDefaults(&p.PowerConsumption, 5.0, 0, 0, []float64{10, 100})
}

func applySignalDefaults(s *SignalParams, variance, spikeProb, spikeMag float64, baseRange []float64) {
	if s.Variance == 0 {
		s.Variance = variance
	}
	if s.SpikeProbability == 0 {
		s.SpikeProbability = spikeProb
	}
	if s.SpikeMagnitude == 0 {
		s.SpikeMagnitude = spikeMag
	}
	if len(s.BaseRange) == 0 && baseRange != nil {
		s.BaseRange = baseRange
	}
}

func (p *SensorParams) Validate() error {
	signals := map[string]SignalParams{
		"temperature":       p.Temperature,
		"pressure":          p.Pressure,
		"vibration":         p.Vibration,
		"speed_rpm":         p.SpeedRPM,
		"efficiency":        p.Efficiency,
		"power_consumption": p.PowerConsumption,
	}
	for name, s := range signals {
		if s.Variance < 0 {
			return fmt.Errorf("%s: variance must not be negative", name)
		}
		if s.SpikeProbability < 0 || s.SpikeProbability > 1 {
			return fmt.Errorf("%s: spike_probability must be within [0,1]", name)
		}
		if len(s.BaseRange) != 0 {
			if len(s.BaseRange) != 2 || s.BaseRange[0] > s.BaseRange[1] {
				return fmt.Errorf("%s: base_range must be [low, high]", name)
			}
		}
	}
	return nil
}

// ProductionParams tunes cycle times, volumes and downtime durations.
type ProductionParams struct {
	CycleTime CycleTimeParams `yaml:"cycle_time"`
	Volume    VolumeParams    `yaml:"production_volume"`
	Downtime  DowntimeParams  `yaml:"downtime"`
}

type CycleTimeParams struct {
	BaseSeconds      float64            `yaml:"base_seconds"`
	Variance         float64            `yaml:"variance"`
	EquipmentFactors map[string]float64 `yaml:"equipment_factors"`
}

type VolumeParams struct {
	UnitsPerCycle     []int   `yaml:"units_per_cycle"`
	RejectProbability float64 `yaml:"reject_probability"`
}

type DowntimeParams struct {
	AverageMinutes float64 `yaml:"average_duration_minutes"`
	MaxMinutes     float64 `yaml:"max_duration_minutes"`
}

func (p *ProductionParams) ApplyDefaults() {
	if p.CycleTime.BaseSeconds == 0 {
		p.CycleTime.BaseSeconds = 60
	}
	if p.CycleTime.Variance == 0 {
		p.CycleTime.Variance = 10
	}
	if len(p.Volume.UnitsPerCycle) == 0 {
		p.Volume.UnitsPerCycle = []int{10, 50}
	}
	if p.Volume.RejectProbability == 0 {
		p.Volume.RejectProbability = 0.02
	}
	if p.Downtime.AverageMinutes == 0 {
		p.Downtime.AverageMinutes = 15
	}
	if p.Downtime.MaxMinutes == 0 {
		p.Downtime.MaxMinutes = 120
	}
}

func (p *ProductionParams) Validate() error {
	if v := p.Volume.UnitsPerCycle; len(v) != 2 || v[0] < 0 || v[0] > v[1] {
		return fmt.Errorf("production_volume.units_per_cycle must be [low, high]")
	}
	if prob := p.Volume.RejectProbability; prob < 0 || prob > 1 {
		return fmt.Errorf("production_volume.reject_probability must be within [0,1]")
	}
	if p.CycleTime.BaseSeconds <= 0 {
		return fmt.Errorf("cycle_time.base_seconds must be positive")
	}
	if p.Downtime.MaxMinutes < p.Downtime.AverageMinutes {
		return fmt.Errorf("downtime.max_duration_minutes must not be below average_duration_minutes")
	}
	return nil
}

// QualityParams lists the configured test types and the defect catalog.
type QualityParams struct {
	Tests       []QualityTestConfig `yaml:"tests"`
	DefectTypes []string            `yaml:"defect_types"`
}

type QualityTestConfig struct {
	TestType           string    `yaml:"test_type"`
	SpecificationRange []float64 `yaml:"specification_range"`
	Precision          float64   `yaml:"measurement_precision"`
	FailureProbability float64   `yaml:"failure_probability"`
}

func (p *QualityParams) Validate() error {
	if len(p.Tests) == 0 {
		return fmt.Errorf("tests is required")
	}
	for _, t := range p.Tests {
		if t.TestType == "" {
			return fmt.Errorf("tests: test_type is required")
		}
		if len(t.SpecificationRange) != 2 || t.SpecificationRange[0] >= t.SpecificationRange[1] {
			return fmt.Errorf("test %s: specification_range must be [min, max]", t.TestType)
		}
		if t.Precision <= 0 {
			return fmt.Errorf("test %s: measurement_precision must be positive", t.TestType)
		}
		if t.FailureProbability < 0 || t.FailureProbability > 1 {
			return fmt.Errorf("test %s: failure_probability must be within [0,1]", t.TestType)
		}
	}
	if len(p.DefectTypes) == 0 {
		return fmt.Errorf("defect_types is required")
	}
	return nil
}
