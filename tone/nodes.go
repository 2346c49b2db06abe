package tone

import (
	"math"
	"sync"
	"sync/atomic"
)

// AnalyserSize is the number of samples in one visualization frame.
const AnalyserSize = 2048

// Panner places a mono signal in the stereo field using equal-power gains:
// -1 is hard left, 0 center, +1 hard right.
type Panner struct {
	pan float64
}

func NewPanner(pan float64) Panner {
	return Panner{pan: math.Max(-1, math.Min(1, pan))}
}

func (p Panner) Process(s float64) (l, r float64) {
	switch p.pan {
	case -1:
		return s, 0
	case 1:
		return 0, s
	}
	x := (p.pan + 1) / 2 * math.Pi / 2
	return s * math.Cos(x), s * math.Sin(x)
}

// Gain is a volume node whose value can be changed while audio is rendering.
type Gain struct {
	v atomic.Uint64
}

func NewGain(v float64) *Gain {
	g := &Gain{}
	g.Set(v)
	return g
}

func (g *Gain) Set(v float64) {
	g.v.Store(math.Float64bits(v))
}

func (g *Gain) Value() float64 {
	return math.Float64frombits(g.v.Load())
}

// Analyser keeps the most recent samples of the mixed output.
type Analyser struct {
	mu  sync.Mutex
	buf []float64
	pos int
}

func NewAnalyser(size int) *Analyser {
	return &Analyser{buf: make([]float64, size)}
}

func (a *Analyser) Size() int {
	return len(a.buf)
}

func (a *Analyser) WriteBlock(samples []float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.buf)
	if len(samples) >= n {
		copy(a.buf, samples[len(samples)-n:])
		a.pos = 0
		return
	}
	for _, s := range samples {
		a.buf[a.pos] = s
		a.pos = (a.pos + 1) % n
	}
}

func (a *Analyser) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.buf)
	a.pos = 0
}

// TimeDomain copies the buffered samples, oldest first, into dst as unsigned
// bytes where 128 is silence. dst shorter than Size receives the newest
// samples.
func (a *Analyser) TimeDomain(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.buf)
	skip := 0
	if len(dst) < n {
		skip = n - len(dst)
	}
	for i := 0; i < len(dst) && i < n; i++ {
		s := a.buf[(a.pos+skip+i)%n]
		dst[i] = byte(math.Max(0, math.Min(255, math.Floor(128*(1+s)))))
	}
}
