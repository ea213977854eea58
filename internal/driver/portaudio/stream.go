// SPDX-License-Identifier: MIT
package portaudio

import (
	"encoding/binary"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"nativeaudio/internal/audio"
)

type stream struct {
	*portaudio.Stream
}

func (s stream) Uninit() error {
	return s.Close()
}

func (d *Driver) OpenStream(cfg audio.StreamConfig, onData audio.DataFunc) (audio.Stream, error) {
	info, err := d.device(cfg)
	if err != nil {
		return nil, err
	}

	dev := portaudio.StreamDeviceParameters{
		Device:   info,
		Channels: cfg.Channels,
		Latency:  d.latency(info, cfg.Type),
	}
	params := portaudio.StreamParameters{
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: cfg.PeriodFrames,
	}

	channels := max(cfg.Channels, 1)
	scratch := make([]byte, max(cfg.PeriodFrames, 1)*channels*audio.BytesPerSample)

	var s *portaudio.Stream
	if cfg.Type == audio.Capture {
		params.Input = dev
		s, err = portaudio.OpenStream(params, func(in []int16) {
			scratch = grow(scratch, len(in)*audio.BytesPerSample)
			encodeSamples(scratch, in)
			onData(nil, scratch, uint32(len(in)/channels))
		})
	} else {
		params.Output = dev
		s, err = portaudio.OpenStream(params, func(out []int16) {
			scratch = grow(scratch, len(out)*audio.BytesPerSample)
			onData(scratch, nil, uint32(len(out)/channels))
			decodeSamples(out, scratch)
		})
	}
	if err != nil {
		return nil, err
	}
	return stream{s}, nil
}

func (d *Driver) device(cfg audio.StreamConfig) (*portaudio.DeviceInfo, error) {
	if cfg.Device != nil {
		info, ok := cfg.Device.Native.(*portaudio.DeviceInfo)
		if !ok {
			return nil, fmt.Errorf("device %q was not enumerated by PortAudio", cfg.Device.Name)
		}
		return info, nil
	}

	var (
		info *portaudio.DeviceInfo
		err  error
	)
	if cfg.Type == audio.Capture {
		info, err = portaudio.DefaultInputDevice()
	} else {
		info, err = portaudio.DefaultOutputDevice()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDefaultDevice, err)
	}
	return info, nil
}

// grow returns buf resized to n bytes, reallocating only when it is short.
func grow(buf []byte, n int) []byte {
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}

func encodeSamples(dst []byte, src []int16) {
	for i, v := range src {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(v))
	}
}

func decodeSamples(dst []int16, src []byte) {
	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2:]))
	}
}
