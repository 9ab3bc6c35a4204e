// Package judge resolves key events and elapsed time into note judgments.
package judge

import (
	"errors"
	"fmt"
	"strings"
)

// Tier is a timing accuracy class, ordered best to worst.
type Tier uint8

const (
	Marv Tier = iota
	Perf
	Great
	Good
	OK
	Miss
)

// NumTiers is the number of tiers including Miss.
const NumTiers = int(Miss) + 1

var tierNames = [NumTiers]string{"MARV", "PERF", "GREAT", "GOOD", "OK", "MISS"}

func (t Tier) String() string {
	if int(t) < NumTiers {
		return tierNames[t]
	}
	return fmt.Sprintf("Tier(%d)", uint8(t))
}

// Tiers lists all tiers best first.
func Tiers() []Tier {
	return []Tier{Marv, Perf, Great, Good, OK, Miss}
}

// ParseTier accepts tier names case-insensitively.
func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if strings.EqualFold(s, name) {
			return Tier(i), nil
		}
	}
	return Miss, fmt.Errorf("judge: unknown tier %q", s)
}

// Better reports whether t is strictly more accurate than other.
func (t Tier) Better(other Tier) bool {
	return t < other
}

var ErrWindows = errors.New("judge: invalid timing windows")

// Windows are symmetric half-widths in milliseconds. Miss is the widest
// window: it bounds which notes a press may select and is the sweep timeout.
type Windows struct {
	Marv  int64
	Perf  int64
	Great int64
	Good  int64
	OK    int64
	Miss  int64
}

// DefaultWindows mirror common osu!mania OD8-like values.
func DefaultWindows() Windows {
	return Windows{Marv: 16, Perf: 34, Great: 67, Good: 100, OK: 150, Miss: 200}
}

// Hit returns the window for a non-miss tier.
func (w Windows) Hit(t Tier) int64 {
	switch t {
	case Marv:
		return w.Marv
	case Perf:
		return w.Perf
	case Great:
		return w.Great
	case Good:
		return w.Good
	case OK:
		return w.OK
	default:
		return w.Miss
	}
}

// Classify returns the narrowest tier whose window contains delta.
// Bounds are inclusive, so a delta exactly on a boundary gets the stricter tier.
func (w Windows) Classify(delta int64) Tier {
	if delta < 0 {
		delta = -delta
	}
	for _, t := range []Tier{Marv, Perf, Great, Good, OK} {
		if delta <= w.Hit(t) {
			return t
		}
	}
	return Miss
}

// Contains reports whether delta lies inside the miss window.
func (w Windows) Contains(delta int64) bool {
	if delta < 0 {
		delta = -delta
	}
	return delta <= w.Miss
}

// Widen adds ms to every window.
func (w Windows) Widen(ms int64) Windows {
	return Windows{
		Marv:  w.Marv + ms,
		Perf:  w.Perf + ms,
		Great: w.Great + ms,
		Good:  w.Good + ms,
		OK:    w.OK + ms,
		Miss:  w.Miss + ms,
	}
}

// Validate checks windows are positive and non-decreasing.
func (w Windows) Validate() error {
	prev := int64(0)
	for _, t := range Tiers() {
		v := w.Hit(t)
		if v <= 0 {
			return fmt.Errorf("%w: %s window must be positive, got %d", ErrWindows, t, v)
		}
		if v < prev {
			return fmt.Errorf("%w: %s window %d narrower than previous %d", ErrWindows, t, v, prev)
		}
		prev = v
	}
	return nil
}
