package hotkey

import "sync/atomic"

// FakeHotkey stands in for the OS binding in tests. Press and Release feed
// the same channels a registered combo would.
type FakeHotkey struct {
	down       chan struct{}
	up         chan struct{}
	registered atomic.Bool
}

func NewFake() *FakeHotkey {
	return &FakeHotkey{
		down: make(chan struct{}, 1),
		up:   make(chan struct{}, 1),
	}
}

func (f *FakeHotkey) Register() error {
	f.registered.Store(true)
	return nil
}

func (f *FakeHotkey) Unregister()              { f.registered.Store(false) }
func (f *FakeHotkey) Registered() bool         { return f.registered.Load() }
func (f *FakeHotkey) Keydown() <-chan struct{} { return f.down }
func (f *FakeHotkey) Keyup() <-chan struct{}   { return f.up }

func (f *FakeHotkey) SimKeydown() { f.down <- struct{}{} }
func (f *FakeHotkey) SimKeyup()   { f.up <- struct{}{} }

// SimTap presses and releases the combo at once.
func (f *FakeHotkey) SimTap() {
	f.SimKeydown()
	f.SimKeyup()
}
