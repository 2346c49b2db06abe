package audio

import (
	"errors"
	"fmt"
	"strings"
)

const (
	SampleRate = 44100
	Channels   = 2
)

var (
	ErrNoDevices = errors.New("no output devices found")
	ErrSuspended = errors.New("audio context is suspended")
)

var headphoneKeywords = []string{
	"headphone", "headset", "earphone", "earbud",
	"airpods", "buds", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-", "bose qc", "momentum",
	"jabra", "powerbeats", "beats",
}

// LooksLikeHeadphones guesses from a device name whether each ear gets its own
// channel. Binaural beats need that; speakers mix both channels in the room.
func LooksLikeHeadphones(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range headphoneKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Source fills buf with interleaved int16 frames. It runs on the device's
// audio thread and must not block.
type Source func(buf []int16)

type PlaybackConfig struct {
	SampleRate uint32
	Channels   uint32
}

func DefaultPlaybackConfig() PlaybackConfig {
	return PlaybackConfig{SampleRate: SampleRate, Channels: Channels}
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type State int

const (
	StateRunning State = iota
	StateSuspended
)

func (s State) String() string {
	if s == StateSuspended {
		return "suspended"
	}
	return "running"
}

// Context is the process-wide output connection. It is created once and
// suspended between playback sessions instead of being torn down.
type Context interface {
	Devices() ([]DeviceInfo, error)
	NewPlayback(device *DeviceInfo, config PlaybackConfig, src Source) (PlaybackDevice, error)
	State() State
	Suspend() error
	Resume() error
	Close()
}

type PlaybackDevice interface {
	Start() error
	Stop()
	Close()
}

// FindDevice returns the device with the given name, or nil when name is empty.
func FindDevice(ctx Context, name string) (*DeviceInfo, error) {
	if name == "" {
		return nil, nil
	}
	devices, err := ctx.Devices()
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if devices[i].Name == name || devices[i].ID == name {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("output device not found: %s", name)
}
