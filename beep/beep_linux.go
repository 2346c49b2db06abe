//go:build linux

package beep

import (
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

var (
	client     *pulse.Client
	clientErr  error
	clientOnce sync.Once

	// Chimes queue behind each other instead of mixing.
	playMu sync.Mutex
)

// connect dials the sound server once. Chimes keep their own connection so a
// chime never waits on the tone engine's context.
func connect() (*pulse.Client, error) {
	clientOnce.Do(func() {
		client, clientErr = pulse.NewClient(pulse.ClientApplicationName("hum"))
	})
	return client, clientErr
}

func play(samples []int16) {
	if len(samples) == 0 {
		return
	}
	go func() {
		playMu.Lock()
		defer playMu.Unlock()
		c, err := connect()
		if err != nil {
			return
		}
		drain(c, samples)
	}()
}

func drain(c *pulse.Client, samples []int16) {
	rest := samples
	src := pulse.Int16Reader(func(buf []int16) (int, error) {
		if len(rest) == 0 {
			return 0, pulse.EndOfData
		}
		n := copy(buf, rest)
		rest = rest[n:]
		return n, nil
	})
	stream, err := c.NewPlayback(src,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.05),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			// Full scale; the chime is already attenuated when synthesized.
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		return
	}
	defer stream.Close()
	stream.Start()
	stream.Drain()
}
