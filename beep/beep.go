// Package beep plays short chimes for tone and timer events.
package beep

import (
	"math"
	"sync"
	"sync/atomic"
)

var disabled atomic.Bool

func Disable() { disabled.Store(true) }

const (
	sampleRate = 44100
	volume     = 0.4
	decay      = 18
)

type note struct {
	freq float64
	dur  float64
	gap  float64
}

var (
	// Rising pair when a tone session starts.
	startChime = []note{{freq: 660, dur: 0.08, gap: 0.03}, {freq: 880, dur: 0.12}}
	// Falling pair when it stops.
	stopChime = []note{{freq: 880, dur: 0.08, gap: 0.03}, {freq: 660, dur: 0.12}}
	// Three ascending notes when a countdown finishes.
	finishedChime = []note{
		{freq: 523.25, dur: 0.18, gap: 0.06},
		{freq: 659.25, dur: 0.18, gap: 0.06},
		{freq: 783.99, dur: 0.45},
	}
)

var (
	startSamples    []int16
	stopSamples     []int16
	finishedSamples []int16
	soundOnce       sync.Once
)

func initSound() {
	startSamples = synth(startChime)
	stopSamples = synth(stopChime)
	finishedSamples = synth(finishedChime)
}

// synth renders notes as interleaved stereo with an exponential decay per
// note and silence between them.
func synth(notes []note) []int16 {
	var out []int16
	for _, n := range notes {
		frames := int(sampleRate * n.dur)
		for i := 0; i < frames; i++ {
			t := float64(i) / sampleRate
			s := int16(math.Sin(2*math.Pi*n.freq*t) * 32767 * volume * math.Exp(-t*decay))
			out = append(out, s, s)
		}
		out = append(out, make([]int16, int(sampleRate*n.gap)*2)...)
	}
	return out
}

func Init() {
	soundOnce.Do(initSound)
}

func PlayStart() {
	playChime(&startSamples)
}

func PlayStop() {
	playChime(&stopSamples)
}

func PlayFinished() {
	playChime(&finishedSamples)
}

func playChime(samples *[]int16) {
	if disabled.Load() {
		return
	}
	soundOnce.Do(initSound)
	play(*samples)
}
