// SPDX-License-Identifier: MIT
/*
Package miniaudio implements audio.Driver on top of miniaudio through malgo.

A Driver owns one miniaudio context bound to a single backend. With no
backend configured the platform backends are probed in miniaudio's own
priority order and the first that initializes wins.
*/
package miniaudio

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gen2brain/malgo"

	"nativeaudio/internal/audio"
	"nativeaudio/internal/log"
)

var ErrNoBackend = errors.New("no miniaudio backend could be initialized")

// Config selects the backend. A nil Backend means probe the platform
// defaults.
type Config struct {
	Backend *audio.Backend
	// Trace forwards miniaudio's own log messages at debug level.
	Trace bool
}

type Driver struct {
	ctx     *malgo.AllocatedContext
	backend audio.Backend
}

// Opener returns an audio.Opener creating a fresh context per call.
func Opener(cfg Config) audio.Opener {
	return func() (audio.Driver, error) {
		return Open(cfg)
	}
}

func Open(cfg Config) (*Driver, error) {
	candidates := platformBackends(runtime.GOOS)
	if cfg.Backend != nil {
		if !cfg.Backend.Valid() {
			return nil, fmt.Errorf("invalid backend id %d", uint32(*cfg.Backend))
		}
		candidates = []audio.Backend{*cfg.Backend}
	}

	var onLog malgo.LogProc
	if cfg.Trace {
		onLog = func(message string) {
			log.Debug("miniaudio", "msg", message)
		}
	}

	var errs []error
	for _, b := range candidates {
		ctx, err := initContext(b, onLog)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b, err))
			continue
		}
		log.Debug("miniaudio context ready", "backend", b)
		return &Driver{ctx: ctx, backend: b}, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(errs...))
}

func initContext(b audio.Backend, onLog malgo.LogProc) (*malgo.AllocatedContext, error) {
	return malgo.InitContext([]malgo.Backend{malgo.Backend(b)}, malgo.ContextConfig{}, onLog)
}

func freeContext(ctx *malgo.AllocatedContext) error {
	err := ctx.Uninit()
	ctx.Free()
	return err
}

// platformBackends lists the backends miniaudio compiles in for goos, in
// its default priority order. Null is always last.
func platformBackends(goos string) []audio.Backend {
	switch goos {
	case "windows":
		return []audio.Backend{audio.BackendWASAPI, audio.BackendDirectSound, audio.BackendWinMM, audio.BackendNull}
	case "darwin", "ios":
		return []audio.Backend{audio.BackendCoreAudio, audio.BackendNull}
	case "linux":
		return []audio.Backend{audio.BackendPulseAudio, audio.BackendALSA, audio.BackendJACK, audio.BackendNull}
	case "android":
		return []audio.Backend{audio.BackendAAudio, audio.BackendOpenSL, audio.BackendNull}
	case "freebsd", "dragonfly":
		return []audio.Backend{audio.BackendOSS, audio.BackendPulseAudio, audio.BackendJACK, audio.BackendNull}
	case "openbsd":
		return []audio.Backend{audio.BackendSndio, audio.BackendNull}
	case "netbsd":
		return []audio.Backend{audio.BackendAudio4, audio.BackendNull}
	case "js":
		return []audio.Backend{audio.BackendWebAudio, audio.BackendNull}
	default:
		return []audio.Backend{audio.BackendNull}
	}
}

func (d *Driver) Backend() audio.Backend {
	return d.backend
}

// Backends reports every platform backend that currently initializes.
// Each is probed with a short-lived context, nothing is cached.
func (d *Driver) Backends() ([]audio.BackendInfo, error) {
	var out []audio.BackendInfo
	for _, b := range platformBackends(runtime.GOOS) {
		if b == d.backend {
			out = append(out, audio.BackendInfo{ID: b, Name: b.String()})
			continue
		}
		ctx, err := initContext(b, nil)
		if err != nil {
			continue
		}
		if err := freeContext(ctx); err != nil {
			log.Debug("probe context uninit failed", "backend", b, "err", err)
		}
		out = append(out, audio.BackendInfo{ID: b, Name: b.String()})
	}
	return out, nil
}

func (d *Driver) Devices(kind audio.DeviceType) ([]audio.Device, error) {
	infos, err := d.ctx.Devices(deviceType(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate %s devices: %w", kind, err)
	}

	devices := make([]audio.Device, len(infos))
	for i, info := range infos {
		devices[i] = audio.Device{
			Index:     i,
			ID:        decodeDeviceID(info.ID[:], d.backend),
			Name:      info.Name(),
			IsDefault: info.IsDefault != 0,
			Native:    info,
		}
	}
	return devices, nil
}

func (d *Driver) Close() error {
	if d.ctx == nil {
		return nil
	}
	err := freeContext(d.ctx)
	d.ctx = nil
	return err
}

func deviceType(kind audio.DeviceType) malgo.DeviceType {
	if kind == audio.Capture {
		return malgo.Capture
	}
	return malgo.Playback
}
