package audio

import (
	"sync"
	"time"
)

const fakeFrameSize = 1024

// FakeContext stands in for a sound server. In realtime mode each started
// playback pulls fakeFrameSize frames per period from its source; otherwise
// frames are only pulled through FakePlayback.Pull.
type FakeContext struct {
	realtime bool
	devices  []DeviceInfo

	mu        sync.Mutex
	suspended bool
	closed    bool
	resumes   int
	playbacks []*FakePlayback
}

func NewFakeContext(realtime bool, devices ...DeviceInfo) *FakeContext {
	return &FakeContext{realtime: realtime, devices: devices}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	if len(f.devices) == 0 {
		return nil, ErrNoDevices
	}
	return f.devices, nil
}

func (f *FakeContext) NewPlayback(device *DeviceInfo, config PlaybackConfig, src Source) (PlaybackDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.suspended {
		return nil, ErrSuspended
	}
	p := &FakePlayback{config: config, src: src, realtime: f.realtime}
	f.playbacks = append(f.playbacks, p)
	return p, nil
}

func (f *FakeContext) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.suspended {
		return StateSuspended
	}
	return StateRunning
}

func (f *FakeContext) Suspend() error {
	f.mu.Lock()
	f.suspended = true
	f.mu.Unlock()
	return nil
}

func (f *FakeContext) Resume() error {
	f.mu.Lock()
	if f.suspended {
		f.resumes++
	}
	f.suspended = false
	f.mu.Unlock()
	return nil
}

func (f *FakeContext) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *FakeContext) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Resumes counts how often a suspended context was resumed.
func (f *FakeContext) Resumes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resumes
}

// Active returns the number of playbacks that are started and not closed.
func (f *FakeContext) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.playbacks {
		if p.Running() {
			n++
		}
	}
	return n
}

// Last returns the most recently created playback, or nil.
func (f *FakeContext) Last() *FakePlayback {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.playbacks) == 0 {
		return nil
	}
	return f.playbacks[len(f.playbacks)-1]
}

type FakePlayback struct {
	config   PlaybackConfig
	src      Source
	realtime bool

	mu      sync.Mutex
	running bool
	closed  bool
	pulled  uint64
	stopCh  chan struct{}
	feedEnd chan struct{}
}

func (p *FakePlayback) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running || p.closed {
		return nil
	}
	p.running = true
	if !p.realtime {
		return nil
	}

	p.stopCh = make(chan struct{})
	p.feedEnd = make(chan struct{})
	interval := time.Duration(fakeFrameSize) * time.Second / time.Duration(p.config.SampleRate)
	go func(stop <-chan struct{}, end chan<- struct{}) {
		defer close(end)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				p.Pull(fakeFrameSize)
			}
		}
	}(p.stopCh, p.feedEnd)
	return nil
}

// Pull asks the source for frames as a device callback would and returns them.
func (p *FakePlayback) Pull(frames int) []int16 {
	buf := make([]int16, frames*int(p.config.Channels))
	p.src(buf)
	p.mu.Lock()
	p.pulled += uint64(frames)
	p.mu.Unlock()
	return buf
}

// Pulled returns the total number of frames requested from the source.
func (p *FakePlayback) Pulled() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pulled
}

func (p *FakePlayback) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running && !p.closed
}

func (p *FakePlayback) Stop() {
	p.mu.Lock()
	stop, end := p.stopCh, p.feedEnd
	p.running = false
	p.stopCh, p.feedEnd = nil, nil
	p.mu.Unlock()
	if stop != nil {
		close(stop)
		<-end
	}
}

func (p *FakePlayback) Close() {
	p.Stop()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
