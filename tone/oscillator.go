package tone

import (
	"errors"
	"math"
	"sync/atomic"
)

var ErrOscillatorUsed = errors.New("tone: oscillator already started or stopped")

const (
	oscIdle int32 = iota
	oscRunning
	oscStopped
)

const twoPi = 2 * math.Pi

// Oscillator is a single-use sine generator. Once stopped it cannot be
// started again; a session creates a fresh pair every time.
//
// Frequency may be changed from any goroutine. The phase is only advanced by
// the goroutine rendering audio, so a retune continues from the current phase
// instead of jumping.
type Oscillator struct {
	freq  atomic.Uint64
	state atomic.Int32
	phase float64
}

func NewOscillator(hz float64) *Oscillator {
	o := &Oscillator{}
	o.SetFrequency(hz)
	return o
}

func (o *Oscillator) Start() error {
	if !o.state.CompareAndSwap(oscIdle, oscRunning) {
		return ErrOscillatorUsed
	}
	return nil
}

func (o *Oscillator) Stop() {
	o.state.Store(oscStopped)
}

func (o *Oscillator) Running() bool {
	return o.state.Load() == oscRunning
}

func (o *Oscillator) Stopped() bool {
	return o.state.Load() == oscStopped
}

func (o *Oscillator) SetFrequency(hz float64) {
	o.freq.Store(math.Float64bits(hz))
}

func (o *Oscillator) Frequency() float64 {
	return math.Float64frombits(o.freq.Load())
}

// Next returns the current sample in [-1, 1] and advances one sample period.
// It returns 0 unless the oscillator is running.
func (o *Oscillator) Next(sampleRate float64) float64 {
	if o.state.Load() != oscRunning {
		return 0
	}
	v := math.Sin(o.phase)
	o.phase += twoPi * o.Frequency() / sampleRate
	if o.phase >= twoPi || o.phase < 0 {
		o.phase = math.Mod(o.phase, twoPi)
		if o.phase < 0 {
			o.phase += twoPi
		}
	}
	return v
}
