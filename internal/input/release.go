package input

import "time"

// DefaultReleaseTimeout outlasts the usual terminal auto-repeat delay.
const DefaultReleaseTimeout = 600 * time.Millisecond

// ReleaseTracker turns a stream of key-down and auto-repeat events into
// press and release edges. Terminals report no key-up, so a lane in a hold
// counts as released once it stops repeating for the timeout.
// It is not safe for concurrent use.
type ReleaseTracker struct {
	timeout time.Duration
	held    []heldKey
}

type heldKey struct {
	down     bool
	pressed  time.Time
	last     time.Time
	repeated bool
}

// NewReleaseTracker tracks lanes columns.
func NewReleaseTracker(lanes int, timeout time.Duration) *ReleaseTracker {
	if timeout <= 0 {
		timeout = DefaultReleaseTimeout
	}
	return &ReleaseTracker{timeout: timeout, held: make([]heldKey, lanes)}
}

// Key records a key-down or repeat for column at and returns the edges it
// produces. Terminals send a repeat and a fresh press the same way, so a
// key on a held lane only counts as a repeat while holding reports that a
// hold note is active there. Otherwise the lane is released and pressed
// again at at, which keeps same-column notes playable.
func (r *ReleaseTracker) Key(column int, at time.Time, holding bool) []Event {
	if column < 0 || column >= len(r.held) {
		return nil
	}
	h := &r.held[column]
	if h.down && holding {
		h.last = at
		h.repeated = true
		return nil
	}

	var out []Event
	if h.down {
		out = append(out, Event{Column: column, Pressed: false, At: at})
	}
	*h = heldKey{down: true, pressed: at, last: at}
	return append(out, Event{Column: column, Pressed: true, At: at})
}

// Expire returns release edges for lanes idle longer than the timeout at
// now, ordered by column. A lane that auto-repeated is released at its
// last repeat; one that never repeated is released at now.
func (r *ReleaseTracker) Expire(now time.Time) []Event {
	var out []Event
	for c := range r.held {
		h := &r.held[c]
		if !h.down || now.Sub(h.last) <= r.timeout {
			continue
		}
		at := now
		if h.repeated {
			at = h.last
		}
		out = append(out, Event{Column: c, Pressed: false, At: at})
		*h = heldKey{}
	}
	return out
}

// ReleaseAll releases every held lane at now, for example when play ends.
func (r *ReleaseTracker) ReleaseAll(now time.Time) []Event {
	var out []Event
	for c := range r.held {
		if r.held[c].down {
			out = append(out, Event{Column: c, Pressed: false, At: now})
			r.held[c] = heldKey{}
		}
	}
	return out
}

// Held reports whether column is currently considered down.
func (r *ReleaseTracker) Held(column int) bool {
	return column >= 0 && column < len(r.held) && r.held[column].down
}

func (r *ReleaseTracker) Timeout() time.Duration { return r.timeout }
