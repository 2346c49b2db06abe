package tone

import (
	"sync"
	"time"
)

// FrameInterval is the default redraw period, about 30 frames per second.
const FrameInterval = 33 * time.Millisecond

// Surface receives visualization frames. Draw replaces whatever was drawn
// before; Clear blanks the surface.
type Surface interface {
	Draw(frame []byte)
	Clear()
}

type nopSurface struct{}

func (nopSurface) Draw([]byte) {}
func (nopSurface) Clear()      {}

// Visualizer reads one frame from an analyser per interval and hands it to a
// surface. It only runs while a session is playing.
type Visualizer struct {
	surface  Surface
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewVisualizer(surface Surface, interval time.Duration) *Visualizer {
	if surface == nil {
		surface = nopSurface{}
	}
	if interval <= 0 {
		interval = FrameInterval
	}
	return &Visualizer{surface: surface, interval: interval}
}

func (v *Visualizer) Start(a *Analyser) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stop != nil {
		return
	}
	v.stop = make(chan struct{})
	v.done = make(chan struct{})
	go v.loop(a, v.stop, v.done)
}

func (v *Visualizer) loop(a *Analyser, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	frame := make([]byte, a.Size())
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()
	for {
		a.TimeDomain(frame)
		v.surface.Draw(frame)
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop cancels the loop, waits for the frame in flight and clears the surface.
func (v *Visualizer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stop == nil {
		return
	}
	close(v.stop)
	<-v.done
	v.stop, v.done = nil, nil
	v.surface.Clear()
}

func (v *Visualizer) Running() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stop != nil
}
