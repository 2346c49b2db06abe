// Package track plays a FLAC file in a loop as the background track of the
// site timer.
package track

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/mewkiz/flac"

	"hum/audio"
)

var ErrEmpty = errors.New("track has no audio")

// ContextFactory opens the audio output context used for playback.
type ContextFactory func() (audio.Context, error)

// Track loops decoded stereo samples. Position survives Pause; Rewind moves
// it back to the start.
type Track struct {
	path       string
	sampleRate uint32
	samples    []int16
	volume     atomic.Uint64

	newContext ContextFactory
	device     *audio.DeviceInfo

	mu      sync.Mutex
	pos     int
	ctx     audio.Context
	dev     audio.PlaybackDevice
	playing bool
}

// Load decodes the whole file up front.
func Load(path string, newContext ContextFactory, device *audio.DeviceInfo) (*Track, error) {
	samples, rate, err := Decode(path)
	if err != nil {
		return nil, err
	}
	if newContext == nil {
		newContext = audio.NewContext
	}
	t := &Track{
		path:       path,
		sampleRate: rate,
		samples:    samples,
		newContext: newContext,
		device:     device,
	}
	t.SetVolume(1)
	return t, nil
}

// Decode reads a FLAC file into interleaved stereo int16 samples. Mono files
// are duplicated into both channels; channels past the second are dropped.
func Decode(path string) ([]int16, uint32, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer stream.Close()

	info := stream.Info
	shift := int(info.BitsPerSample) - 16
	var out []int16
	if info.NSamples > 0 {
		out = make([]int16, 0, info.NSamples*2)
	}
	for {
		fr, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("decoding %s: %w", path, err)
		}
		left := fr.Subframes[0].Samples
		right := left
		if len(fr.Subframes) > 1 {
			right = fr.Subframes[1].Samples
		}
		for i := 0; i < fr.Subframes[0].NSamples; i++ {
			out = append(out, scale(left[i], shift), scale(right[i], shift))
		}
	}
	if len(out) == 0 {
		return nil, 0, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return out, info.SampleRate, nil
}

func scale(s int32, shift int) int16 {
	switch {
	case shift > 0:
		s >>= shift
	case shift < 0:
		s <<= -shift
	}
	return int16(s)
}

func (t *Track) Path() string {
	return t.path
}

// Frames returns the track length in stereo frames.
func (t *Track) Frames() int {
	return len(t.samples) / 2
}

func (t *Track) Position() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

func (t *Track) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

func (t *Track) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.playing {
		return nil
	}
	if t.ctx == nil {
		ctx, err := t.newContext()
		if err != nil {
			return fmt.Errorf("acquiring audio context: %w", err)
		}
		t.ctx = ctx
	}
	cfg := audio.PlaybackConfig{SampleRate: t.sampleRate, Channels: 2}
	dev, err := t.ctx.NewPlayback(t.device, cfg, t.fill)
	if err != nil {
		return fmt.Errorf("opening playback: %w", err)
	}
	t.playing = true
	if err := dev.Start(); err != nil {
		t.playing = false
		dev.Close()
		return fmt.Errorf("starting playback: %w", err)
	}
	t.dev = dev
	return nil
}

// Pause stops output and keeps the position.
func (t *Track) Pause() {
	t.mu.Lock()
	dev := t.dev
	t.dev = nil
	t.playing = false
	t.mu.Unlock()
	// fill takes t.mu, so the device is stopped without holding it.
	if dev != nil {
		dev.Stop()
		dev.Close()
	}
}

func (t *Track) Rewind() {
	t.mu.Lock()
	t.pos = 0
	t.mu.Unlock()
}

// SetVolume sets the gain in [0, 1].
func (t *Track) SetVolume(v float64) {
	t.volume.Store(math.Float64bits(math.Max(0, math.Min(1, v))))
}

func (t *Track) Volume() float64 {
	return math.Float64frombits(t.volume.Load())
}

func (t *Track) fill(buf []int16) {
	vol := t.Volume()
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.playing {
		clear(buf)
		return
	}
	frames := t.Frames()
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i] = int16(float64(t.samples[t.pos*2]) * vol)
		buf[i+1] = int16(float64(t.samples[t.pos*2+1]) * vol)
		t.pos = (t.pos + 1) % frames
	}
}

// Close stops playback and releases the audio context.
func (t *Track) Close() {
	t.Pause()
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ctx != nil {
		t.ctx.Close()
		t.ctx = nil
	}
}
