package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	clickFreq     = 1760.0
	accentFreq    = 2637.0
	clickDuration = 30 * time.Millisecond
)

// ClickTrack streams a short decaying tone on every beat, accenting the
// first beat of each bar.
type ClickTrack struct {
	sr       beep.SampleRate
	interval int // samples per beat
	click    int // samples per click
	meter    int
	total    int
	pos      int
}

// NewClickTrack creates beats clicks at bpm, starting at position zero.
func NewClickTrack(sr beep.SampleRate, bpm float64, beats, meter int) *ClickTrack {
	if meter <= 0 {
		meter = 4
	}
	interval := sr.N(time.Duration(float64(time.Minute) / bpm))
	return &ClickTrack{
		sr:       sr,
		interval: interval,
		click:    sr.N(clickDuration),
		meter:    meter,
		total:    interval * beats,
	}
}

func (c *ClickTrack) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if c.pos >= c.total {
			return i, i > 0
		}
		var v float64
		beat, offset := c.pos/c.interval, c.pos%c.interval
		if offset < c.click {
			freq := clickFreq
			if beat%c.meter == 0 {
				freq = accentFreq
			}
			t := float64(offset) / float64(c.sr)
			decay := 1 - float64(offset)/float64(c.click)
			v = 0.6 * decay * math.Sin(2*math.Pi*freq*t)
		}
		samples[i][0] = v
		samples[i][1] = v
		c.pos++
	}
	return len(samples), true
}

func (c *ClickTrack) Err() error { return nil }

// Position returns the sample position.
func (c *ClickTrack) Position() int { return c.pos }

// Len returns the total samples.
func (c *ClickTrack) Len() int { return c.total }

// BeatTimes returns the song time in milliseconds of every click.
func (c *ClickTrack) BeatTimes() []int64 {
	var out []int64
	for p := 0; p < c.total; p += c.interval {
		out = append(out, c.sr.D(p).Milliseconds())
	}
	return out
}

// Metronome plays a ClickTrack through the speaker and serves as its clock.
type Metronome struct {
	track *ClickTrack
	gain  float64

	mu      sync.Mutex
	ctrl    *beep.Ctrl
	started bool
	ended   atomic.Bool
}

// NewMetronome prepares beats clicks at bpm.
func NewMetronome(bpm float64, beats int, gain float64) *Metronome {
	return &Metronome{track: NewClickTrack(SampleRate, bpm, beats, 4), gain: gain}
}

func (m *Metronome) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return nil
	}
	if err := initSpeaker(); err != nil {
		return err
	}
	m.started = true
	m.ctrl = &beep.Ctrl{Streamer: withVolume(m.track, m.gain)}
	speaker.Play(beep.Seq(m.ctrl, beep.Callback(func() {
		m.ended.Store(true)
	})))
	return nil
}

func (m *Metronome) Position() time.Duration {
	speaker.Lock()
	pos := m.track.Position()
	speaker.Unlock()
	return SampleRate.D(pos)
}

func (m *Metronome) Ended() bool { return m.ended.Load() }

func (m *Metronome) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctrl != nil {
		speaker.Lock()
		m.ctrl.Streamer = nil
		speaker.Unlock()
	}
	m.ended.Store(true)
}

// Track exposes the click schedule.
func (m *Metronome) Track() *ClickTrack { return m.track }
