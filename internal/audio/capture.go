package audio

import (
	"fmt"

	"nativeaudio/internal/log"
)

// StartRecording clears the shared buffer and starts capturing from the
// named device. An empty name uses the configured capture device. If the
// capture stream is already open it is only restarted.
func (e *Engine) StartRecording(deviceName string) error {
	if e.isClosed() {
		return ErrClosed
	}
	if deviceName == "" {
		deviceName = e.CaptureDevice()
	}

	e.capture.mu.Lock()
	defer e.capture.mu.Unlock()

	var device *Device
	if !e.capture.initialized {
		d, ok := e.FindDevice(deviceName, Capture)
		if !ok {
			return fmt.Errorf("%w: capture device %q", ErrDeviceNotFound, deviceName)
		}
		device = &d
	}

	e.buffer.reset()
	if err := e.initLocked(&e.capture, streamConfig(Capture, device), e.onCapture); err != nil {
		return err
	}
	if err := e.startLocked(&e.capture); err != nil {
		return err
	}

	log.Info("recording started", "device", deviceName)
	e.publish(Event{Type: EventRecordingStarted, Stream: streamCapture, Device: deviceName})
	return nil
}

// StopRecording stops the capture stream and returns a copy of everything
// captured since the last StartRecording. The engine keeps its own buffer
// until the next StartRecording clears it.
func (e *Engine) StopRecording() ([]byte, error) {
	e.capture.mu.Lock()
	defer e.capture.mu.Unlock()

	err := e.capture.stopLocked()
	pcm := e.buffer.snapshot()

	log.Info("recording stopped", "bytes", len(pcm))
	e.publish(Event{Type: EventRecordingStopped, Stream: streamCapture, Bytes: len(pcm)})
	return pcm, err
}

// onCapture appends one period of input to the shared buffer.
func (e *Engine) onCapture(_, input []byte, frames uint32) {
	n := int(frames) * Channels * BytesPerSample
	if n > len(input) {
		n = len(input)
	}
	e.buffer.append(input[:n])
	e.capture.metrics.Period(n)
}
