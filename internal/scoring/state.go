package scoring

import (
	"math"

	"github.com/vovakirdan/termania/internal/judge"
)

// State is the mutable score aggregate of one session.
// Only Apply mutates it; nothing reads it back into judging.
type State struct {
	rules Rules

	score    int64
	combo    int
	maxCombo int
	counts   [judge.NumTiers]int
	judged   int
	weights  float64
	health   float64

	errors HitErrors
}

// NewState starts at full health.
func NewState(r Rules) *State {
	return &State{rules: r, health: r.MaxHealth}
}

// Apply folds one judgment into the aggregate. There is no deduplication:
// each judgment must be delivered exactly once.
func (s *State) Apply(j judge.Judgment) {
	t := j.Tier
	s.counts[t]++
	s.judged++

	if s.rules.KeepsCombo(t) {
		s.combo++
		s.maxCombo = max(s.maxCombo, s.combo)
	} else {
		s.combo = 0
	}

	s.score += s.rules.ScoreValues[t] * s.rules.Multiplier(s.combo)
	s.weights += s.rules.AccuracyWeights[t]
	s.health = clamp(s.health+s.rules.HealthDelta[t], 0, s.rules.MaxHealth)

	if t != judge.Miss && !j.Tail && !j.Ghost {
		s.errors.Add(float64(j.DeltaMs))
	}
}

// Failed reports whether health is at or below the fail threshold.
func (s *State) Failed() bool {
	return s.rules.FailEnabled && s.health <= s.rules.FailThreshold
}

// Accuracy is the weighted hit percentage in [0, 100]. It reads 100 before
// anything is judged.
func (s *State) Accuracy() float64 {
	if s.judged == 0 {
		return 100
	}
	best := s.rules.AccuracyWeights[judge.Marv]
	return 100 * s.weights / (float64(s.judged) * best)
}

func (s *State) Score() int64           { return s.score }
func (s *State) Combo() int             { return s.combo }
func (s *State) MaxCombo() int          { return s.maxCombo }
func (s *State) Health() float64        { return s.health }
func (s *State) Judged() int            { return s.judged }
func (s *State) Count(t judge.Tier) int { return s.counts[t] }
func (s *State) Rules() Rules           { return s.rules }

// Multiplier is the multiplier the next extending hit would use.
func (s *State) Multiplier() int64 {
	return s.rules.Multiplier(s.combo)
}

// Summary is an immutable copy of the aggregate.
type Summary struct {
	Score      int64
	Combo      int
	MaxCombo   int
	Multiplier int64
	Accuracy   float64
	Health     float64
	MaxHealth  float64
	Counts     [judge.NumTiers]int
	Judged     int
	Grade      Grade
	MeanError  float64
	StdDev     float64
	Failed     bool
}

// HealthRatio returns health as a fraction of max health.
func (s Summary) HealthRatio() float64 {
	if s.MaxHealth <= 0 {
		return 0
	}
	return s.Health / s.MaxHealth
}

// FullCombo reports no combo-breaking judgment was recorded.
func (s Summary) FullCombo() bool {
	return s.Judged > 0 && s.MaxCombo == s.Judged
}

// Summary snapshots the current state.
func (s *State) Summary() Summary {
	acc := s.Accuracy()
	return Summary{
		Score:      s.score,
		Combo:      s.combo,
		MaxCombo:   s.maxCombo,
		Multiplier: s.Multiplier(),
		Accuracy:   acc,
		Health:     s.health,
		MaxHealth:  s.rules.MaxHealth,
		Counts:     s.counts,
		Judged:     s.judged,
		Grade:      GradeFor(acc, s.Failed()),
		MeanError:  s.errors.Mean(),
		StdDev:     s.errors.StdDev(),
		Failed:     s.Failed(),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
