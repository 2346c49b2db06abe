package pomodoro

import (
	"sync"
	"time"
)

// Clock schedules a repeating callback. The returned cancel func stops
// further calls; a call already in flight may still complete.
type Clock interface {
	Every(d time.Duration, fn func()) (cancel func())
}

type RealClock struct{}

func (RealClock) Every(d time.Duration, fn func()) func() {
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return func() { once.Do(func() { close(stop) }) }
}

// FakeClock fires callbacks only when Advance is called.
type FakeClock struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

func NewFakeClock() *FakeClock {
	return &FakeClock{subs: make(map[int]func())}
}

func (c *FakeClock) Every(_ time.Duration, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Advance fires every active callback n times, one period at a time.
func (c *FakeClock) Advance(n int) {
	for i := 0; i < n; i++ {
		c.mu.Lock()
		fns := make([]func(), 0, len(c.subs))
		for _, fn := range c.subs {
			fns = append(fns, fn)
		}
		c.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
	}
}

// Active returns the number of uncancelled callbacks.
func (c *FakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}
