//go:build !linux

package audio

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx       *malgo.AllocatedContext
	suspended atomic.Bool
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID.Pointer()[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

func (m *malgoContext) NewPlayback(device *DeviceInfo, config PlaybackConfig, src Source) (PlaybackDevice, error) {
	if m.suspended.Load() {
		return nil, ErrSuspended
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		deviceConfig.Playback.DeviceID = devID.Pointer()
	}

	var scratch []int16
	channels := int(config.Channels)
	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			n := int(frameCount) * channels
			if cap(scratch) < n {
				scratch = make([]int16, n)
			}
			samples := scratch[:n]
			src(samples)
			for i, s := range samples {
				binary.LittleEndian.PutUint16(pOutput[i*2:], uint16(s))
			}
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, err
	}

	return &malgoPlayback{device: dev}, nil
}

func (m *malgoContext) State() State {
	if m.suspended.Load() {
		return StateSuspended
	}
	return StateRunning
}

func (m *malgoContext) Suspend() error {
	m.suspended.Store(true)
	return nil
}

func (m *malgoContext) Resume() error {
	m.suspended.Store(false)
	return nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoPlayback struct {
	device *malgo.Device
}

func (c *malgoPlayback) Start() error {
	return c.device.Start()
}

func (c *malgoPlayback) Stop() {
	c.device.Stop()
}

func (c *malgoPlayback) Close() {
	c.device.Uninit()
}
