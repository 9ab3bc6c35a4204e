package session

import (
	"github.com/vovakirdan/termania/internal/beatmap"
)

// TraceEvent is one processed key edge in song time.
type TraceEvent struct {
	Column  int   `yaml:"column"`
	Pressed bool  `yaml:"pressed"`
	SongMs  int64 `yaml:"song_ms"`
}

// TraceTick records the inputs of one loop pass.
type TraceTick struct {
	SongMs int64        `yaml:"song_ms"`
	Events []TraceEvent `yaml:"events,omitempty"`
}

// Replay runs a recorded trace through a fresh clockless session and
// returns it in whatever state the trace leaves it.
func Replay(bm *beatmap.Beatmap, trace []TraceTick, opts Options) (*Session, error) {
	opts.RecordTrace = false
	s, err := New(bm, nil, nil, opts)
	if err != nil {
		return nil, err
	}
	for _, t := range trace {
		if s.state.Terminal() {
			break
		}
		s.Advance(t.SongMs, t.Events)
	}
	return s, nil
}
