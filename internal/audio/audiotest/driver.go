// Package audiotest provides an in-memory audio.Driver for tests. Streams
// never touch hardware; callbacks run only when a test calls Capture or
// Render, or from a pump goroutine when AutoPump is set.
package audiotest

import (
	"errors"
	"sync"

	"nativeaudio/internal/audio"
)

var ErrClosed = errors.New("audiotest: driver closed")

// Driver is a fake audio context. Exported fields configure it and must be
// set before the driver is handed to an engine.
type Driver struct {
	BackendID   audio.Backend
	BackendList []audio.BackendInfo
	Captures    []audio.Device
	Playbacks   []audio.Device

	BackendsErr error
	DevicesErr  error
	OpenErr     error
	StartErr    error
	CloseErr    error

	// AutoPump drives started streams from a goroutine. Playback streams
	// are rendered; capture streams are fed CapturePeriod, or silence.
	AutoPump      bool
	CapturePeriod []byte

	mu      sync.Mutex
	streams []*Stream
	closed  bool
}

// NewDriver returns a Null-backend driver with one default device of each
// kind plus a named USB headset.
func NewDriver() *Driver {
	return &Driver{
		BackendID: audio.BackendNull,
		BackendList: []audio.BackendInfo{
			{ID: audio.BackendPulseAudio, Name: audio.BackendPulseAudio.String()},
			{ID: audio.BackendALSA, Name: audio.BackendALSA.String()},
			{ID: audio.BackendNull, Name: audio.BackendNull.String()},
		},
		Captures: []audio.Device{
			{ID: audio.IntID(0), Name: "Default Capture Device", IsDefault: true},
			{ID: audio.IntID(1), Name: "USB Headset Microphone"},
		},
		Playbacks: []audio.Device{
			{ID: audio.IntID(0), Name: "Default Playback Device", IsDefault: true},
			{ID: audio.IntID(1), Name: "USB Headset Speakers"},
		},
	}
}

func (d *Driver) Backend() audio.Backend {
	return d.BackendID
}

func (d *Driver) Backends() ([]audio.BackendInfo, error) {
	if d.BackendsErr != nil {
		return nil, d.BackendsErr
	}
	return append([]audio.BackendInfo(nil), d.BackendList...), nil
}

func (d *Driver) Devices(kind audio.DeviceType) ([]audio.Device, error) {
	if d.DevicesErr != nil {
		return nil, d.DevicesErr
	}
	if kind == audio.Capture {
		return append([]audio.Device(nil), d.Captures...), nil
	}
	return append([]audio.Device(nil), d.Playbacks...), nil
}

func (d *Driver) OpenStream(cfg audio.StreamConfig, onData audio.DataFunc) (audio.Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}

	s := &Stream{
		Config:   cfg,
		onData:   onData,
		startErr: d.StartErr,
		autoPump: d.AutoPump,
		input:    d.CapturePeriod,
	}
	d.streams = append(d.streams, s)
	return s, nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return d.CloseErr
}

// Streams returns every stream opened so far, in order.
func (d *Driver) Streams() []*Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Stream(nil), d.streams...)
}

// LastStream returns the most recently opened stream, or nil.
func (d *Driver) LastStream() *Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.streams) == 0 {
		return nil
	}
	return d.streams[len(d.streams)-1]
}

func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Factory hands out drivers and remembers them, standing in for the
// audio.Opener of a real driver package.
type Factory struct {
	// New builds each driver. Defaults to NewDriver.
	New     func() *Driver
	OpenErr error

	mu     sync.Mutex
	opened []*Driver
}

func (f *Factory) Open() (audio.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}

	newDriver := f.New
	if newDriver == nil {
		newDriver = NewDriver
	}
	d := newDriver()
	f.opened = append(f.opened, d)
	return d, nil
}

// Drivers returns every driver opened so far. The first one belongs to the
// engine itself.
func (f *Factory) Drivers() []*Driver {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Driver(nil), f.opened...)
}
