// SPDX-License-Identifier: MIT
/*
Package audio implements a small real-time audio I/O engine with:
- Backend and device enumeration through a pluggable native Driver
- Device identity resolution across backend identifier formats
- Microphone capture into an in-memory buffer
- Looping playback of an in-memory buffer, on the default or a named device
- Fire-and-forget notification sounds

Thread Safety:
- Control calls (start, stop, setters) may come from any goroutine
- Audio callbacks run on driver threads and only take short mutexes
- Playback callbacks copy audio outside any lock from immutable views
*/
package audio

import (
	"errors"
	"fmt"
	"sync"

	"nativeaudio/internal/log"
)

var (
	ErrDeviceNotFound = errors.New("audio device not found")
	ErrStreamOpen     = errors.New("failed to open audio stream")
	ErrStreamStart    = errors.New("failed to start audio stream")
	ErrClosed         = errors.New("audio engine closed")
)

// Stream names used for events and metrics.
const (
	streamCapture        = "capture"
	streamBufferPlayback = "buffer_playback"
	streamDevicePlayback = "device_playback"
)

// slot holds one stream handle. The mutex is held across driver calls and
// is never taken by audio callbacks.
type slot struct {
	name        string
	mu          sync.Mutex
	stream      Stream
	initialized bool
	metrics     StreamMetrics
}

// teardownLocked uninitializes the stream. s.mu must be held.
func (s *slot) teardownLocked() {
	if !s.initialized {
		return
	}
	s.initialized = false
	if err := s.stream.Uninit(); err != nil {
		log.Warn("stream uninit failed", "stream", s.name, "err", err)
	}
	s.stream = nil
}

type settings struct {
	backend        Backend
	captureDevice  string
	playbackDevice string
}

type Engine struct {
	open   Opener
	driver Driver

	cfgMu sync.Mutex
	cfg   settings

	capture        slot
	bufferPlayback slot
	devicePlayback slot

	buffer       clip
	bufferHead   playhead
	deviceHead   playhead
	bufferRender DataFunc
	deviceRender DataFunc

	notifier Notifier
	metrics  Metrics
	sounds   map[SoundKind][]byte

	closeMu sync.Mutex
	closed  bool
}

// New opens a driver context with open and returns an engine bound to it.
// The same Opener is used for the throwaway contexts of notification sounds.
func New(open Opener, opts ...Option) (*Engine, error) {
	drv, err := open()
	if err != nil {
		return nil, fmt.Errorf("failed to open audio context: %w", err)
	}

	e := &Engine{
		open:           open,
		driver:         drv,
		capture:        slot{name: streamCapture},
		bufferPlayback: slot{name: streamBufferPlayback},
		devicePlayback: slot{name: streamDevicePlayback},
		sounds:         embeddedSounds(),
	}
	e.cfg.backend = drv.Backend()
	for _, opt := range opts {
		opt(e)
	}

	for _, s := range []*slot{&e.capture, &e.bufferPlayback, &e.devicePlayback} {
		s.metrics = noopStreamMetrics{}
		if e.metrics != nil {
			s.metrics = e.metrics.Stream(s.name)
		}
	}
	e.bufferRender = e.render(&e.bufferHead, e.bufferPlayback.metrics)
	e.deviceRender = e.render(&e.deviceHead, e.devicePlayback.metrics)

	log.Debug("audio engine ready", "backend", drv.Backend())
	return e, nil
}

// SetBackend records the backend id. It is not validated until used.
func (e *Engine) SetBackend(b Backend) {
	e.cfgMu.Lock()
	e.cfg.backend = b
	e.cfgMu.Unlock()
}

// SetCaptureDevice records the device used when StartRecording gets no name.
func (e *Engine) SetCaptureDevice(name string) {
	e.cfgMu.Lock()
	e.cfg.captureDevice = name
	e.cfgMu.Unlock()
}

// SetPlaybackDevice records the device used when StartPlayback gets no name.
func (e *Engine) SetPlaybackDevice(name string) {
	e.cfgMu.Lock()
	e.cfg.playbackDevice = name
	e.cfgMu.Unlock()
}

func (e *Engine) Backend() Backend {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	return e.cfg.backend
}

func (e *Engine) CaptureDevice() string {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	return e.cfg.captureDevice
}

func (e *Engine) PlaybackDevice() string {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	return e.cfg.playbackDevice
}

// ActiveBackend is the backend the driver context is actually bound to.
func (e *Engine) ActiveBackend() Backend {
	return e.driver.Backend()
}

// DestroyDevices uninitializes every open stream but keeps the context.
// Callers must not race it against start calls on the same streams.
func (e *Engine) DestroyDevices() {
	for _, s := range []*slot{&e.capture, &e.devicePlayback, &e.bufferPlayback} {
		s.mu.Lock()
		s.teardownLocked()
		s.mu.Unlock()
	}
	e.bufferHead.reset()
	e.deviceHead.reset()
	e.publish(Event{Type: EventDevicesDestroyed})
}

// Close uninitializes every open stream and the driver context.
// It is safe to call more than once.
func (e *Engine) Close() error {
	e.closeMu.Lock()
	defer e.closeMu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	e.DestroyDevices()
	if err := e.driver.Close(); err != nil {
		return fmt.Errorf("failed to close audio context: %w", err)
	}
	e.publish(Event{Type: EventEngineClosed})
	return nil
}

func (e *Engine) isClosed() bool {
	e.closeMu.Lock()
	defer e.closeMu.Unlock()
	return e.closed
}

// streamConfig returns the fixed stream format for kind on device.
func streamConfig(kind DeviceType, device *Device) StreamConfig {
	return StreamConfig{
		Type:         kind,
		Device:       device,
		SampleRate:   SampleRate,
		Channels:     Channels,
		PeriodFrames: PeriodFrames,
	}
}

// initLocked opens the stream of s unless it is already open.
// s.mu must be held.
func (e *Engine) initLocked(s *slot, cfg StreamConfig, onData DataFunc) error {
	if s.initialized {
		return nil
	}
	stream, err := e.driver.OpenStream(cfg, onData)
	if err != nil {
		s.metrics.Started(false)
		return fmt.Errorf("%w: %s: %v", ErrStreamOpen, s.name, err)
	}
	s.stream = stream
	s.initialized = true
	return nil
}

// startLocked starts the open stream of s. A failed start uninitializes
// the stream so no native handle is left behind. s.mu must be held.
func (e *Engine) startLocked(s *slot) error {
	if err := s.stream.Start(); err != nil {
		s.teardownLocked()
		s.metrics.Started(false)
		return fmt.Errorf("%w: %s: %v", ErrStreamStart, s.name, err)
	}
	s.metrics.Started(true)
	return nil
}

// stopLocked stops s if it is open. s.mu must be held.
func (s *slot) stopLocked() error {
	if !s.initialized {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop %s stream: %w", s.name, err)
	}
	return nil
}
