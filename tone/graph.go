package tone

import "math"

type voice struct {
	osc *Oscillator
	pan Panner
}

// Graph is the node chain of one session:
// oscillators → panners → gain → analyser → output.
type Graph struct {
	sampleRate float64
	voices     []voice
	gain       *Gain
	analyser   *Analyser
	mono       []float64
}

func NewGraph(sampleRate float64, gain *Gain, analyser *Analyser) *Graph {
	return &Graph{sampleRate: sampleRate, gain: gain, analyser: analyser}
}

func (g *Graph) Connect(osc *Oscillator, pan Panner) {
	g.voices = append(g.voices, voice{osc: osc, pan: pan})
}

// Render fills buf with interleaved stereo frames. It must only be called from
// one goroutine at a time, normally the audio device callback.
func (g *Graph) Render(buf []int16) {
	frames := len(buf) / 2
	if cap(g.mono) < frames {
		g.mono = make([]float64, frames)
	}
	mono := g.mono[:frames]
	vol := g.gain.Value()

	for i := 0; i < frames; i++ {
		var l, r float64
		for _, v := range g.voices {
			pl, pr := v.pan.Process(v.osc.Next(g.sampleRate))
			l += pl
			r += pr
		}
		l *= vol
		r *= vol
		mono[i] = (l + r) / 2
		buf[i*2] = toInt16(l)
		buf[i*2+1] = toInt16(r)
	}
	for i := frames * 2; i < len(buf); i++ {
		buf[i] = 0
	}

	if g.analyser != nil && frames > 0 {
		g.analyser.WriteBlock(mono)
	}
}

func toInt16(v float64) int16 {
	return int16(math.Max(-32768, math.Min(32767, math.Round(v*32767))))
}
