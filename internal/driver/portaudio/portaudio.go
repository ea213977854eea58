// SPDX-License-Identifier: MIT
/*
Package portaudio implements audio.Driver on PortAudio.

PortAudio reference counts Initialize/Terminate, so every Driver holds one
reference and several drivers may be open at once. Devices are those of
the default host API, which is reported as the active backend.
*/
package portaudio

import (
	"errors"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"

	"nativeaudio/internal/audio"
)

var ErrNoDefaultDevice = errors.New("no default device")

type Config struct {
	// LowLatency opens streams at the device's default low latency
	// instead of the default high latency.
	LowLatency bool
}

type Driver struct {
	cfg    Config
	closed bool
}

// Opener returns an audio.Opener that initializes PortAudio per call.
func Opener(cfg Config) audio.Opener {
	return func() (audio.Driver, error) {
		return Open(cfg)
	}
}

func Open(cfg Config) (*Driver, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &Driver{cfg: cfg}, nil
}

func (d *Driver) Backend() audio.Backend {
	api, err := portaudio.DefaultHostApi()
	if err != nil {
		return audio.BackendNull
	}
	return hostBackend(api.Type)
}

func (d *Driver) Backends() ([]audio.BackendInfo, error) {
	apis, err := portaudio.HostApis()
	if err != nil {
		return nil, err
	}
	out := make([]audio.BackendInfo, 0, len(apis))
	for _, api := range apis {
		out = append(out, audio.BackendInfo{ID: hostBackend(api.Type), Name: api.Name})
	}
	return out, nil
}

func (d *Driver) Devices(kind audio.DeviceType) ([]audio.Device, error) {
	api, err := portaudio.DefaultHostApi()
	if err != nil {
		return nil, err
	}

	def := api.DefaultOutputDevice
	if kind == audio.Capture {
		def = api.DefaultInputDevice
	}

	var devices []audio.Device
	for i, info := range api.Devices {
		if !supports(info, kind) {
			continue
		}
		devices = append(devices, audio.Device{
			Index:     len(devices),
			ID:        audio.IntID(i),
			Name:      info.Name,
			IsDefault: def != nil && info.Name == def.Name,
			Native:    info,
		})
	}
	return devices, nil
}

func (d *Driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

func supports(info *portaudio.DeviceInfo, kind audio.DeviceType) bool {
	if kind == audio.Capture {
		return info.MaxInputChannels > 0
	}
	return info.MaxOutputChannels > 0
}

// hostBackend maps a PortAudio host API onto the miniaudio backend family
// with the same device identifier conventions.
func hostBackend(t portaudio.HostApiType) audio.Backend {
	switch t {
	case portaudio.WASAPI:
		return audio.BackendWASAPI
	case portaudio.DirectSound:
		return audio.BackendDirectSound
	case portaudio.MME:
		return audio.BackendWinMM
	case portaudio.CoreAudio:
		return audio.BackendCoreAudio
	case portaudio.OSS:
		return audio.BackendOSS
	case portaudio.ALSA:
		return audio.BackendALSA
	case portaudio.JACK:
		return audio.BackendJACK
	default:
		return audio.BackendCustom
	}
}

func (d *Driver) latency(info *portaudio.DeviceInfo, kind audio.DeviceType) time.Duration {
	switch {
	case kind == audio.Capture && d.cfg.LowLatency:
		return info.DefaultLowInputLatency
	case kind == audio.Capture:
		return info.DefaultHighInputLatency
	case d.cfg.LowLatency:
		return info.DefaultLowOutputLatency
	default:
		return info.DefaultHighOutputLatency
	}
}
