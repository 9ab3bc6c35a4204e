package judge

import "fmt"

// Status of one judgeable note end.
type Status uint8

const (
	Pending Status = iota
	Judged
	Missed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Judged:
		return "judged"
	case Missed:
		return "missed"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// NoteState is Pending, Judged(Tier) or Missed. Judged and Missed are terminal.
type NoteState struct {
	Status Status
	Tier   Tier // meaningful when Judged
}

// Terminal reports whether the end has been resolved.
func (s NoteState) Terminal() bool {
	return s.Status != Pending
}

func (s NoteState) String() string {
	if s.Status == Judged {
		return "judged(" + s.Tier.String() + ")"
	}
	return s.Status.String()
}

// EmptyPress selects what a press with no candidate note does.
type EmptyPress uint8

const (
	EmptyPressIgnore EmptyPress = iota
	EmptyPressMiss
)

// ParseEmptyPress accepts "ignore" and "miss".
func ParseEmptyPress(s string) (EmptyPress, error) {
	switch s {
	case "", "ignore":
		return EmptyPressIgnore, nil
	case "miss":
		return EmptyPressMiss, nil
	default:
		return EmptyPressIgnore, fmt.Errorf("judge: unknown empty press policy %q", s)
	}
}

func (p EmptyPress) String() string {
	if p == EmptyPressMiss {
		return "miss"
	}
	return "ignore"
}

// Judgment is emitted exactly once per resolved note end.
type Judgment struct {
	Tier       Tier
	Column     int
	NoteIndex  int   // -1 for an empty press judged as a miss
	NoteTimeMs int64 // head time, or hold end time for tails
	Tail       bool
	DeltaMs    int64 // event time minus note time; 0 on timeout
	AtMs       int64 // song time of the resolving event or sweep
	Timeout    bool  // resolved by the sweep
	Ghost      bool  // empty press
}

// Hit reports whether the judgment is a non-miss press or release.
func (j Judgment) Hit() bool {
	return j.Tier != Miss
}
