// SPDX-License-Identifier: MIT
package miniaudio

import (
	"fmt"

	"github.com/gen2brain/malgo"

	"nativeaudio/internal/audio"
)

type stream struct {
	device *malgo.Device
	// info backs the device id pointer handed to miniaudio.
	info *malgo.DeviceInfo
}

func (d *Driver) OpenStream(cfg audio.StreamConfig, onData audio.DataFunc) (audio.Stream, error) {
	kind := deviceType(cfg.Type)
	dc := malgo.DefaultDeviceConfig(kind)
	dc.SampleRate = uint32(cfg.SampleRate)
	dc.PeriodSizeInFrames = uint32(cfg.PeriodFrames)
	dc.Alsa.NoMMap = 1

	s := &stream{}
	if cfg.Device != nil {
		info, ok := cfg.Device.Native.(malgo.DeviceInfo)
		if !ok {
			return nil, fmt.Errorf("device %q was not enumerated by miniaudio", cfg.Device.Name)
		}
		s.info = &info
	}

	switch cfg.Type {
	case audio.Capture:
		dc.Capture.Format = malgo.FormatS16
		dc.Capture.Channels = uint32(cfg.Channels)
		if s.info != nil {
			dc.Capture.DeviceID = s.info.ID.Pointer()
		}
	default:
		dc.Playback.Format = malgo.FormatS16
		dc.Playback.Channels = uint32(cfg.Channels)
		dc.Playback.ShareMode = malgo.Shared
		if s.info != nil {
			dc.Playback.DeviceID = s.info.ID.Pointer()
		}
	}

	device, err := malgo.InitDevice(d.ctx.Context, dc, malgo.DeviceCallbacks{
		Data: malgo.DataProc(onData),
	})
	if err != nil {
		return nil, err
	}
	s.device = device
	return s, nil
}

func (s *stream) Start() error {
	return s.device.Start()
}

func (s *stream) Stop() error {
	return s.device.Stop()
}

func (s *stream) Uninit() error {
	s.device.Uninit()
	return nil
}
