package scoring

import "math"

// Grade is the letter awarded from final accuracy.
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// GradeFor maps accuracy to a letter. A failed run is always F.
func GradeFor(accuracy float64, failed bool) Grade {
	switch {
	case failed:
		return GradeF
	case accuracy >= 98:
		return GradeS
	case accuracy >= 95:
		return GradeA
	case accuracy >= 90:
		return GradeB
	case accuracy >= 80:
		return GradeC
	default:
		return GradeD
	}
}

// HitErrors tracks the running mean and deviation of hit offsets
// using Welford's update.
type HitErrors struct {
	n    int
	mean float64
	m2   float64
}

func (h *HitErrors) Add(v float64) {
	h.n++
	d := v - h.mean
	h.mean += d / float64(h.n)
	h.m2 += d * (v - h.mean)
}

func (h *HitErrors) Count() int { return h.n }

// Mean is positive when the player hits late.
func (h *HitErrors) Mean() float64 { return h.mean }

// StdDev is the sample standard deviation, 0 below two hits.
func (h *HitErrors) StdDev() float64 {
	if h.n < 2 {
		return 0
	}
	return math.Sqrt(h.m2 / float64(h.n-1))
}
