package audio

import (
	"fmt"

	"nativeaudio/internal/log"
)

// render returns the playback callback for the pipeline driven by head.
func (e *Engine) render(head *playhead, m StreamMetrics) DataFunc {
	return func(output, _ []byte, frames uint32) {
		n := int(frames) * Channels * BytesPerSample
		if n > len(output) {
			n = len(output)
		}
		clear(output[n:])

		pos, gen := head.load()
		next, underrun := fillPeriod(output[:n], e.buffer.view(), pos)
		head.commit(next, gen)

		m.Period(n)
		if underrun {
			m.Underrun()
		}
	}
}

// StartBufferPlayback loops pcm followed by a few seconds of silence on the
// default playback device. The engine keeps its own copy of pcm.
func (e *Engine) StartBufferPlayback(pcm []byte) error {
	if e.isClosed() {
		return ErrClosed
	}

	data := make([]byte, len(pcm), len(pcm)+SampleRate*TrailingSilenceSeconds*BytesPerSample*Channels)
	copy(data, pcm)
	data = AddSilence(data, SampleRate, TrailingSilenceSeconds)

	e.bufferPlayback.mu.Lock()
	defer e.bufferPlayback.mu.Unlock()

	e.buffer.replace(data)
	e.bufferHead.reset()

	if err := e.initLocked(&e.bufferPlayback, streamConfig(Playback, nil), e.bufferRender); err != nil {
		return err
	}
	if err := e.startLocked(&e.bufferPlayback); err != nil {
		return err
	}

	log.Info("buffer playback started", "bytes", len(data))
	e.publish(Event{Type: EventPlaybackStarted, Stream: streamBufferPlayback, Bytes: len(data)})
	return nil
}

// StopBufferPlayback stops the default-device playback stream and rewinds it.
func (e *Engine) StopBufferPlayback() error {
	e.bufferPlayback.mu.Lock()
	defer e.bufferPlayback.mu.Unlock()

	err := e.bufferPlayback.stopLocked()
	e.bufferHead.reset()

	e.publish(Event{Type: EventPlaybackStopped, Stream: streamBufferPlayback})
	return err
}

// StartPlayback loops whatever the shared buffer currently holds on the named
// playback device. An empty name uses the configured playback device.
func (e *Engine) StartPlayback(deviceName string) error {
	if e.isClosed() {
		return ErrClosed
	}
	if deviceName == "" {
		deviceName = e.PlaybackDevice()
	}

	e.devicePlayback.mu.Lock()
	defer e.devicePlayback.mu.Unlock()

	var device *Device
	if !e.devicePlayback.initialized {
		d, ok := e.FindDevice(deviceName, Playback)
		if !ok {
			return fmt.Errorf("%w: playback device %q", ErrDeviceNotFound, deviceName)
		}
		device = &d
	}

	e.deviceHead.reset()
	if err := e.initLocked(&e.devicePlayback, streamConfig(Playback, device), e.deviceRender); err != nil {
		return err
	}
	if err := e.startLocked(&e.devicePlayback); err != nil {
		return err
	}

	log.Info("device playback started", "device", deviceName, "bytes", e.buffer.len())
	e.publish(Event{Type: EventPlaybackStarted, Stream: streamDevicePlayback, Device: deviceName})
	return nil
}

// StopPlayback stops the named-device playback stream and rewinds it.
func (e *Engine) StopPlayback() error {
	e.devicePlayback.mu.Lock()
	defer e.devicePlayback.mu.Unlock()

	err := e.devicePlayback.stopLocked()
	e.deviceHead.reset()

	e.publish(Event{Type: EventPlaybackStopped, Stream: streamDevicePlayback})
	return err
}
