package tone

import (
	"sync"
	"time"
)

type recordingSurface struct {
	mu      sync.Mutex
	draws   int
	clears  int
	visible bool
}

func (s *recordingSurface) Draw(frame []byte) {
	s.mu.Lock()
	s.draws++
	s.visible = true
	s.mu.Unlock()
}

func (s *recordingSurface) Clear() {
	s.mu.Lock()
	s.clears++
	s.visible = false
	s.mu.Unlock()
}

func (s *recordingSurface) counts() (draws, clears int, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws, s.clears, s.visible
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
