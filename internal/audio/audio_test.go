package audio

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/vovakirdan/termania/internal/timing"
)

func TestClickTrack(t *testing.T) {
	sr := beep.SampleRate(1000)
	c := NewClickTrack(sr, 120, 4, 4) // 500 samples per beat

	if c.Len() != 2000 {
		t.Fatalf("Len() = %d, expected 2000", c.Len())
	}
	want := []int64{0, 500, 1000, 1500}
	got := c.BeatTimes()
	if len(got) != len(want) {
		t.Fatalf("BeatTimes() = %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("BeatTimes()[%d] = %d, expected %d", i, got[i], want[i])
		}
	}

	buf := make([][2]float64, 600)
	n, ok := c.Stream(buf)
	if n != 600 || !ok {
		t.Fatalf("Stream() = %d, %v", n, ok)
	}
	loud := func(from, to int) bool {
		for i := from; i < to; i++ {
			if buf[i][0] != 0 {
				return true
			}
		}
		return false
	}
	if !loud(1, 30) {
		t.Error("no click at the first beat")
	}
	if loud(40, 500) {
		t.Error("sound between clicks")
	}
	if !loud(501, 530) {
		t.Error("no click at the second beat")
	}

	rest := make([][2]float64, 2000)
	n, ok = c.Stream(rest)
	if n != 1400 || !ok {
		t.Errorf("Stream() at the end = %d, %v, expected 1400, true", n, ok)
	}
	if n, ok = c.Stream(rest); n != 0 || ok {
		t.Errorf("Stream() after the end = %d, %v, expected 0, false", n, ok)
	}
	if c.Position() != c.Len() {
		t.Errorf("Position() = %d, expected %d", c.Position(), c.Len())
	}
}

func TestSilentClock(t *testing.T) {
	wall := timing.NewManualClock()
	s := NewSilent(time.Second, wall)

	if s.Position() != 0 || s.Ended() {
		t.Fatal("silent clock running before Start")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	wall.Advance(400 * time.Millisecond)
	if got := s.Position(); got != 400*time.Millisecond {
		t.Errorf("Position() = %v, expected 400ms", got)
	}

	wall.Advance(time.Second)
	if got := s.Position(); got != time.Second {
		t.Errorf("Position() = %v, expected capped at 1s", got)
	}
	if !s.Ended() {
		t.Error("Ended() = false past the length")
	}
}

func TestSilentStop(t *testing.T) {
	s := NewSilent(time.Minute, timing.NewManualClock())
	s.Start()
	s.Stop()
	if !s.Ended() {
		t.Error("Ended() = false after Stop")
	}
}

func TestOpenUnsupported(t *testing.T) {
	if _, err := Open("song.flac", 1); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open(flac) error = %v, expected ErrUnsupportedFormat", err)
	}
	if Supported("song.flac") || !Supported("Song.MP3") || !Supported("a.ogg") {
		t.Error("Supported() disagrees with the decoder table")
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.ogg"), 1)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, expected ErrNotExist", err)
	}
}

// writeWAV writes mono 16-bit PCM silence.
func writeWAV(t *testing.T, path string, rate, samples int) {
	t.Helper()
	data := samples * 2
	le := binary.LittleEndian
	buf := make([]byte, 44+data)
	copy(buf[0:], "RIFF")
	le.PutUint32(buf[4:], uint32(36+data))
	copy(buf[8:], "WAVE")
	copy(buf[12:], "fmt ")
	le.PutUint32(buf[16:], 16)
	le.PutUint16(buf[20:], 1) // PCM
	le.PutUint16(buf[22:], 1) // mono
	le.PutUint32(buf[24:], uint32(rate))
	le.PutUint32(buf[28:], uint32(rate*2))
	le.PutUint16(buf[32:], 2)
	le.PutUint16(buf[34:], 16)
	copy(buf[36:], "data")
	le.PutUint32(buf[40:], uint32(data))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.wav")
	writeWAV(t, path, 8000, 8000)

	p, err := Open(path, 0.5)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer p.Close()

	if p.Format().SampleRate != 8000 {
		t.Errorf("SampleRate = %d, expected 8000", p.Format().SampleRate)
	}
	if p.Length() != time.Second {
		t.Errorf("Length() = %v, expected 1s", p.Length())
	}
	if p.Position() != 0 || p.Ended() {
		t.Error("player running before Start")
	}
}

func TestWithVolume(t *testing.T) {
	if v := withVolume(nil, 0); !v.Silent {
		t.Error("withVolume(0) is not silent")
	}
	if v := withVolume(nil, 1); v.Silent || v.Volume != 0 {
		t.Errorf("withVolume(1) = %+v, expected unity gain", v)
	}
	if v := withVolume(nil, 0.5); v.Volume != -1 {
		t.Errorf("withVolume(0.5).Volume = %v, expected -1", v.Volume)
	}
}
