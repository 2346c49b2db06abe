//go:build darwin

package beep

import (
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

var (
	malgoCtx  *malgo.AllocatedContext
	device    *malgo.Device
	deviceErr error
	devOnce   sync.Once

	// Playback state, read by the device callback.
	current atomic.Pointer[[]int16]
	playPos atomic.Uint32
	playMu  sync.Mutex
)

func initDevice() error {
	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 2
	config.SampleRate = sampleRate

	var err error
	device, err = malgo.InitDevice(malgoCtx.Context, config, malgo.DeviceCallbacks{Data: dataCallback})
	return err
}

func openDevice() {
	malgoCtx, deviceErr = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if deviceErr != nil {
		return
	}
	if deviceErr = initDevice(); deviceErr != nil {
		malgoCtx.Uninit()
		malgoCtx = nil
	}
}

func dataCallback(pOutput, _ []byte, frameCount uint32) {
	clear(pOutput)
	samples := current.Load()
	if samples == nil {
		return
	}
	pos := playPos.Load()
	total := uint32(len(*samples))
	if pos >= total {
		current.Store(nil)
		return
	}
	n := min(frameCount*2, total-pos)
	for i := uint32(0); i < n; i++ {
		s := (*samples)[pos+i]
		pOutput[i*2] = byte(s)
		pOutput[i*2+1] = byte(s >> 8)
	}
	playPos.Store(pos + n)
}

func play(samples []int16) {
	devOnce.Do(openDevice)
	if malgoCtx == nil || len(samples) == 0 {
		return
	}

	playMu.Lock()
	defer playMu.Unlock()

	device.Stop()
	playPos.Store(0)
	current.Store(&samples)

	if err := device.Start(); err != nil {
		// Recreate after sleep/wake invalidated the device.
		device.Uninit()
		if err := initDevice(); err != nil {
			current.Store(nil)
			return
		}
		if err := device.Start(); err != nil {
			current.Store(nil)
		}
	}
}
