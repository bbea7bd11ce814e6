package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
)

// EquipmentState carries the slow-moving drift terms for one machine.
// Trends push the simulated signals away from their baselines across ticks
// until an occasional maintenance reset pulls them back.
type EquipmentState struct {
	TemperatureTrend      float64
	PressureTrend         float64
	VibrationTrend        float64
	EfficiencyDegradation float64
	LastMaintenance       time.Time
	Status                domain.EquipmentStatus
}

// StateStore owns the per-equipment drift state shared across generation
// ticks. Entries are created on first access.
type StateStore struct {
	mu     sync.Mutex
	states map[string]*EquipmentState
	rng    *rand.Rand
	now    Clock
}

func NewStateStore(rng *rand.Rand, now Clock) *StateStore {
	if now == nil {
		now = time.Now
	}
	return &StateStore{
		states: make(map[string]*EquipmentState),
		rng:    rng,
		now:    now,
	}
}

// Get returns a copy of the machine's state, creating it on first use with
// zero trends and a maintenance date 1 to 30 days in the past.
func (s *StateStore) Get(equipmentID string) EquipmentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.locked(equipmentID)
}

// Update drifts every trend term by a small symmetric step (degradation
// only grows), then with probability 0.001 models a maintenance visit:
// all terms reset to zero and the maintenance date moves to now.
func (s *StateStore) Update(equipmentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.locked(equipmentID)
	st.TemperatureTrend += uniform(s.rng, -0.1, 0.1)
	st.PressureTrend += uniform(s.rng, -0.1, 0.1)
	st.VibrationTrend += uniform(s.rng, -0.01, 0.01)
	st.EfficiencyDegradation += uniform(s.rng, 0, 0.001)

	if s.rng.Float64() < 0.001 {
		st.TemperatureTrend = 0
		st.PressureTrend = 0
		st.VibrationTrend = 0
		st.EfficiencyDegradation = 0
		st.LastMaintenance = s.now()
	}
}

func (s *StateStore) locked(equipmentID string) *EquipmentState {
	st, ok := s.states[equipmentID]
	if !ok {
		st = &EquipmentState{
			LastMaintenance: s.now().AddDate(0, 0, -randBetween(s.rng, 1, 30)),
			Status:          domain.StatusRunning,
		}
		s.states[equipmentID] = st
	}
	return st
}
