//go:build linux

package audio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

type pulseContext struct {
	client    *pulse.Client
	suspended atomic.Bool
}

func NewContext() (Context, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

func (p *pulseContext) Devices() ([]DeviceInfo, error) {
	sinks, err := p.client.ListSinks()
	if err != nil {
		return nil, fmt.Errorf("pulse list sinks: %w", err)
	}
	var devices []DeviceInfo
	for _, s := range sinks {
		devices = append(devices, DeviceInfo{
			ID:   s.ID(),
			Name: s.Name(),
		})
	}
	return devices, nil
}

func (p *pulseContext) NewPlayback(device *DeviceInfo, config PlaybackConfig, src Source) (PlaybackDevice, error) {
	if p.suspended.Load() {
		return nil, ErrSuspended
	}
	return &pulsePlayback{
		client: p.client,
		device: device,
		config: config,
		src:    src,
	}, nil
}

func (p *pulseContext) State() State {
	if p.suspended.Load() {
		return StateSuspended
	}
	return StateRunning
}

func (p *pulseContext) Suspend() error {
	p.suspended.Store(true)
	return nil
}

func (p *pulseContext) Resume() error {
	p.suspended.Store(false)
	return nil
}

func (p *pulseContext) Close() {
	p.client.Close()
}

type pulsePlayback struct {
	client *pulse.Client
	device *DeviceInfo
	config PlaybackConfig
	src    Source

	stream *pulse.PlaybackStream
	mu     sync.Mutex
	stop   chan struct{}
	done   chan struct{}
}

func (c *pulsePlayback) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		return nil
	}

	channels := int(c.config.Channels)
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		n := len(buf) - len(buf)%channels
		if n == 0 {
			return 0, nil
		}
		c.src(buf[:n])
		return n, nil
	})

	opts := []pulse.PlaybackOption{
		pulse.PlaybackSampleRate(int(c.config.SampleRate)),
		pulse.PlaybackLatency(0.05),
		pulse.PlaybackRawOption(func(r *proto.CreatePlaybackStream) {
			vols := make(proto.ChannelVolumes, channels)
			for i := range vols {
				vols[i] = uint32(proto.VolumeNorm)
			}
			r.ChannelVolumes = vols
		}),
	}
	if channels == 1 {
		opts = append(opts, pulse.PlaybackMono)
	} else {
		opts = append(opts, pulse.PlaybackStereo)
	}
	if c.device != nil {
		sink, err := c.client.SinkByID(c.device.ID)
		if err == nil && sink != nil {
			opts = append(opts, pulse.PlaybackSink(sink))
		}
	}

	stream, err := c.client.NewPlayback(reader, opts...)
	if err != nil {
		return fmt.Errorf("pulse playback: %w", err)
	}

	c.stream = stream
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		stream.Start()
		<-c.stop
		stream.Stop()
		stream.Close()
	}()

	return nil
}

func (c *pulsePlayback) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		select {
		case <-c.stop:
		default:
			close(c.stop)
		}
		<-c.done
	}
	c.stream = nil
}

func (c *pulsePlayback) Close() {
	c.Stop()
}
