package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupportedFormat is returned for audio files beep cannot decode.
var ErrUnsupportedFormat = errors.New("audio: unsupported format")

// Player plays one music track and reports its position as a song clock.
type Player struct {
	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	gain     float64

	mu      sync.Mutex
	ctrl    *beep.Ctrl
	started bool
	ended   atomic.Bool
}

// Open decodes the header of an mp3, ogg or wav file. Nothing plays until
// Start.
func Open(path string, gain float64) (*Player, error) {
	decode, err := decoderFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("audio: decode %s: %w", filepath.Base(path), err)
	}
	return &Player{path: path, streamer: streamer, format: format, gain: gain}, nil
}

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

func decoderFor(path string) (decodeFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }, nil
	case ".ogg":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) }, nil
	case ".wav":
		return func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Supported reports whether Open can decode path by its extension.
func Supported(path string) bool {
	_, err := decoderFor(path)
	return err == nil
}

// Start begins playback from the beginning of the track.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := initSpeaker(); err != nil {
		return fmt.Errorf("audio: speaker: %w", err)
	}
	p.started = true
	p.ctrl = &beep.Ctrl{Streamer: withVolume(resample(p.streamer, p.format.SampleRate), p.gain)}
	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		p.ended.Store(true)
	})))
	return nil
}

// Position is how much of the track the device has consumed.
func (p *Player) Position() time.Duration {
	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(pos)
}

// Ended reports the track has played out or was stopped.
func (p *Player) Ended() bool {
	return p.ended.Load()
}

// Stop silences the track for good.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Streamer = nil
		speaker.Unlock()
	}
	p.ended.Store(true)
}

// Length is the decoded track duration.
func (p *Player) Length() time.Duration {
	return p.format.SampleRate.D(p.streamer.Len())
}

// Format returns the source format of the track.
func (p *Player) Format() beep.Format { return p.format }

// Close releases the decoder and file.
func (p *Player) Close() error {
	p.Stop()
	return p.streamer.Close()
}
