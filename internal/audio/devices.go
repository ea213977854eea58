package audio

import (
	"nativeaudio/internal/log"
)

// ListBackends returns the backends enabled on this platform. A driver
// failure yields an empty list; callers treat that as nothing available.
func (e *Engine) ListBackends() []BackendInfo {
	backends, err := e.driver.Backends()
	if err != nil {
		log.Warn("failed to list audio backends", "err", err)
		return []BackendInfo{}
	}
	return backends
}

// CaptureDevices returns the current capture devices of the active backend.
// backend only matters to callers that resolve display identifiers.
func (e *Engine) CaptureDevices(backend Backend) []Device {
	return e.devices(Capture, backend)
}

// PlaybackDevices returns the current playback devices of the active backend.
func (e *Engine) PlaybackDevices(backend Backend) []Device {
	return e.devices(Playback, backend)
}

func (e *Engine) devices(kind DeviceType, backend Backend) []Device {
	devices, err := e.driver.Devices(kind)
	if err != nil {
		log.Warn("failed to list audio devices", "kind", kind, "backend", backend, "err", err)
		return []Device{}
	}
	for i := range devices {
		devices[i].Index = i
	}
	return devices
}

// VisitBackends calls fn once per enabled backend, in enumeration order.
func (e *Engine) VisitBackends(fn func(id Backend, name string)) {
	for _, b := range e.ListBackends() {
		fn(b.ID, b.Name)
	}
}

// VisitCaptureDevices calls fn once per capture device with its identifier
// resolved for backend.
func (e *Engine) VisitCaptureDevices(backend Backend, fn func(id, name string, isDefault bool)) {
	for _, d := range e.CaptureDevices(backend) {
		fn(d.DisplayID(backend), d.Name, d.IsDefault)
	}
}

// VisitPlaybackDevices calls fn once per playback device with its
// identifier resolved for backend.
func (e *Engine) VisitPlaybackDevices(backend Backend, fn func(id, name string, isDefault bool)) {
	for _, d := range e.PlaybackDevices(backend) {
		fn(d.DisplayID(backend), d.Name, d.IsDefault)
	}
}

// FindDevice re-enumerates kind devices and returns the first whose name
// matches exactly. Identifiers are only as stable as the device set between
// this call and the stream open that uses them.
func (e *Engine) FindDevice(name string, kind DeviceType) (Device, bool) {
	devices, err := e.driver.Devices(kind)
	if err != nil {
		log.Debug("device lookup failed", "name", name, "kind", kind, "err", err)
		return Device{}, false
	}
	for i, d := range devices {
		if d.Name == name {
			d.Index = i
			return d, true
		}
	}
	return Device{}, false
}
