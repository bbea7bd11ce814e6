// Package sim synthesizes plausible manufacturing telemetry: multi-metric
// sensor readings, production events and quality test results. Every
// simulator draws from an injected random source and clock, so a fixed seed
// reproduces the exact same records and a stepped clock replays history.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Clock supplies the wall time stamped onto generated records.
type Clock func() time.Time

func addNoise(rng *rand.Rand, value, variance float64) float64 {
	return value + rng.NormFloat64()*variance
}

func maybeSpike(rng *rand.Rand, value, prob, magnitude float64) float64 {
	if rng.Float64() < prob {
		if rng.Intn(2) == 0 {
			return value - magnitude
		}
		return value + magnitude
	}
	return value
}

func uniform(rng *rand.Rand, low, high float64) float64 {
	return low + rng.Float64()*(high-low)
}

func uniformRange(rng *rand.Rand, r []float64) float64 {
	if len(r) != 2 {
		return 0
	}
	return uniform(rng, r[0], r[1])
}

// randBetween draws an integer from [low, high] inclusive.
func randBetween(rng *rand.Rand, low, high int) int {
	if high <= low {
		return low
	}
	return low + rng.Intn(high-low+1)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func clamp(v, low, high float64) float64 {
	return math.Max(low, math.Min(high, v))
}

func batchID(rng *rand.Rand, now time.Time) string {
	return fmt.Sprintf("BATCH_%s_%d", now.Format("20060102"), randBetween(rng, 1000, 9999))
}
