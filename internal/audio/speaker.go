// Package audio provides the clocks that drive song time: a beep-backed
// music player, a silent wall-clock stand-in and a metronome click track.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// SampleRate is the device rate. Tracks at other rates are resampled.
const SampleRate = beep.SampleRate(44100)

// BufferDuration is the speaker buffer. Position leads audible output by
// about this much, which the latency offset absorbs.
const BufferDuration = 50 * time.Millisecond

var (
	speakerMu   sync.Mutex
	speakerOpen bool
)

// initSpeaker opens the output device once per process.
func initSpeaker() error {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerOpen {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(BufferDuration)); err != nil {
		return err
	}
	speakerOpen = true
	return nil
}

// Shutdown stops playback and releases the device.
func Shutdown() {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerOpen {
		speaker.Close()
		speakerOpen = false
	}
}

// withVolume scales s by a linear gain. Zero or less is silence.
func withVolume(s beep.Streamer, gain float64) *effects.Volume {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// resample converts s to the device rate when needed.
func resample(s beep.Streamer, from beep.SampleRate) beep.Streamer {
	if from == SampleRate {
		return s
	}
	return beep.Resample(4, from, SampleRate, s)
}
