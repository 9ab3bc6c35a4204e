// Package scoring accumulates judgments into score, combo, accuracy and health.
package scoring

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/termania/internal/judge"
)

var ErrRules = errors.New("scoring: invalid rules")

// Rules are the per-session scoring constants, indexed by judge.Tier.
type Rules struct {
	ScoreValues     [judge.NumTiers]int64
	AccuracyWeights [judge.NumTiers]float64
	HealthDelta     [judge.NumTiers]float64

	// ComboFloor is the worst tier that still extends the combo.
	ComboFloor judge.Tier

	// Multiplier is min(1 + combo/ComboStep, MultiplierCap).
	ComboStep     int
	MultiplierCap int

	MaxHealth     float64
	FailThreshold float64
	FailEnabled   bool
}

// DefaultRules returns the stock scoring table.
func DefaultRules() Rules {
	return Rules{
		ScoreValues:     [judge.NumTiers]int64{320, 300, 200, 100, 50, 0},
		AccuracyWeights: [judge.NumTiers]float64{1.0, 0.99, 0.88, 0.77, 0.5, 0},
		HealthDelta:     [judge.NumTiers]float64{0.5, 0.4, 0.2, 0.1, -1.0, -4.0},
		ComboFloor:      judge.OK,
		ComboStep:       10,
		MultiplierCap:   4,
		MaxHealth:       100,
		FailThreshold:   0,
		FailEnabled:     true,
	}
}

// Multiplier returns the score multiplier for a combo count.
// It is non-decreasing in combo.
func (r Rules) Multiplier(combo int) int64 {
	if r.ComboStep <= 0 {
		return 1
	}
	m := 1 + combo/r.ComboStep
	if r.MultiplierCap > 0 && m > r.MultiplierCap {
		m = r.MultiplierCap
	}
	return int64(m)
}

// KeepsCombo reports whether a tier extends the combo.
func (r Rules) KeepsCombo(t judge.Tier) bool {
	return t != judge.Miss && t <= r.ComboFloor
}

// Validate rejects tables that would break the state invariants.
func (r Rules) Validate() error {
	if r.MaxHealth <= 0 {
		return fmt.Errorf("%w: max health must be positive", ErrRules)
	}
	if r.FailThreshold < 0 || r.FailThreshold >= r.MaxHealth {
		return fmt.Errorf("%w: fail threshold %.1f outside [0, %.1f)", ErrRules, r.FailThreshold, r.MaxHealth)
	}
	if r.AccuracyWeights[judge.Marv] <= 0 {
		return fmt.Errorf("%w: MARV accuracy weight must be positive", ErrRules)
	}
	for _, t := range judge.Tiers() {
		if r.ScoreValues[t] < 0 {
			return fmt.Errorf("%w: negative score value for %s", ErrRules, t)
		}
		if w := r.AccuracyWeights[t]; w < 0 || w > r.AccuracyWeights[judge.Marv] {
			return fmt.Errorf("%w: %s accuracy weight %.2f outside [0, MARV]", ErrRules, t, w)
		}
	}
	if r.ComboFloor == judge.Miss {
		return fmt.Errorf("%w: MISS cannot keep the combo", ErrRules)
	}
	if r.MultiplierCap < 0 || r.ComboStep < 0 {
		return fmt.Errorf("%w: combo step and multiplier cap must be non-negative", ErrRules)
	}
	return nil
}
