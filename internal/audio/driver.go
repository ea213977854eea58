// SPDX-License-Identifier: MIT
package audio

// Fixed stream parameters shared by every pipeline of the engine.
const (
	SampleRate     = 48000
	Channels       = 1
	BytesPerSample = 2  // signed 16-bit little endian
	PeriodMillis   = 20 // one callback period
	PeriodFrames   = SampleRate * PeriodMillis / 1000

	// TrailingSilenceSeconds of silence follow every buffer handed to
	// StartBufferPlayback, so a loop restart is preceded by an audible gap.
	TrailingSilenceSeconds = 3
)

// DeviceType selects the direction of a device or stream.
type DeviceType int

const (
	Playback DeviceType = iota + 1
	Capture
)

func (t DeviceType) String() string {
	switch t {
	case Playback:
		return "playback"
	case Capture:
		return "capture"
	default:
		return "unknown"
	}
}

// BackendInfo describes one native audio subsystem enabled on this platform.
type BackendInfo struct {
	ID   Backend
	Name string
}

// Device is a capture or playback endpoint reported by a driver.
// Index is a positional key in the enumeration that produced the device,
// not a stable identity; Name is what later lookups match against.
type Device struct {
	Index     int
	ID        DeviceID
	Name      string
	IsDefault bool

	// Native is the driver's own handle for the device. The engine never
	// inspects it and passes it back through StreamConfig.Device.
	Native any
}

// DataFunc transfers one period of audio. For playback streams output must
// be filled completely; for capture streams input holds the recorded bytes.
// It runs on the driver's real-time thread and must not block.
type DataFunc func(output, input []byte, frames uint32)

// StreamConfig describes a stream to open. Samples are always S16LE.
type StreamConfig struct {
	Type         DeviceType
	Device       *Device // nil selects the backend's default device
	SampleRate   int
	Channels     int
	PeriodFrames int // 0 lets the driver choose
}

// Stream is an open audio session bound to one device.
// Stop and Uninit return only after in-flight callbacks have drained.
type Stream interface {
	Start() error
	Stop() error
	Uninit() error
}

// Driver is one opened context of a native audio subsystem.
type Driver interface {
	// Backend reports the backend this context is bound to.
	Backend() Backend
	// Backends lists the backends enabled on this platform.
	Backends() ([]BackendInfo, error)
	// Devices lists the current devices of the active backend.
	Devices(kind DeviceType) ([]Device, error)
	OpenStream(cfg StreamConfig, onData DataFunc) (Stream, error)
	Close() error
}

// Opener opens a new, independent driver context.
type Opener func() (Driver, error)
