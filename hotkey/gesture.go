package hotkey

import (
	"sync"
	"time"
)

// DefaultHold is how long the combo must be held to count as a hold.
const DefaultHold = 600 * time.Millisecond

// Gestures turns raw key events into taps and holds. A press released before
// the threshold is a tap; a press still held at the threshold is a hold,
// reported immediately without waiting for the release.
type Gestures struct {
	tapCh  chan struct{}
	holdCh chan struct{}
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func NewGestures(hk Hotkey, hold time.Duration) *Gestures {
	if hold <= 0 {
		hold = DefaultHold
	}
	g := &Gestures{
		tapCh:  make(chan struct{}, 1),
		holdCh: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go g.run(hk, hold)
	return g
}

func (g *Gestures) Tap() <-chan struct{}  { return g.tapCh }
func (g *Gestures) Hold() <-chan struct{} { return g.holdCh }

// Close stops reading key events and waits for the reader to exit.
func (g *Gestures) Close() {
	g.once.Do(func() { close(g.stop) })
	<-g.done
}

func (g *Gestures) run(hk Hotkey, hold time.Duration) {
	defer close(g.done)
	for {
		select {
		case <-g.stop:
			return
		case <-hk.Keydown():
		}

		timer := time.NewTimer(hold)
		select {
		case <-g.stop:
			timer.Stop()
			return
		case <-hk.Keyup():
			timer.Stop()
			emit(g.tapCh)
		case <-timer.C:
			emit(g.holdCh)
			select {
			case <-g.stop:
				return
			case <-hk.Keyup():
			}
		}
	}
}

func emit(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
