package audio

import (
	"time"

	"nativeaudio/internal/log"
)

// Event types published on the control path.
const (
	EventRecordingStarted = "recording_started"
	EventRecordingStopped = "recording_stopped"
	EventPlaybackStarted  = "playback_started"
	EventPlaybackStopped  = "playback_stopped"
	EventSoundEmitted     = "sound_emitted"
	EventDevicesDestroyed = "devices_destroyed"
	EventEngineClosed     = "engine_closed"
)

// Event describes a control operation that changed engine state.
type Event struct {
	Type   string    `json:"type"`
	Stream string    `json:"stream,omitempty"`
	Device string    `json:"device,omitempty"`
	Bytes  int       `json:"bytes,omitempty"`
	Time   time.Time `json:"time"`
}

// Notifier receives engine events. Send is only ever called from the
// control goroutine, never from audio callbacks.
type Notifier interface {
	Send(data any) error
}

// StreamMetrics is updated from audio callbacks, so implementations must be
// lock-free.
type StreamMetrics interface {
	Period(bytes int)
	Underrun()
	Started(ok bool)
}

// Metrics hands out the per-stream instruments once, at engine construction.
type Metrics interface {
	Stream(name string) StreamMetrics
}

type noopStreamMetrics struct{}

func (noopStreamMetrics) Period(int)   {}
func (noopStreamMetrics) Underrun()    {}
func (noopStreamMetrics) Started(bool) {}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier publishes engine events to n.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithMetrics instruments the three streams.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithSounds replaces the embedded notification payloads. Kinds missing
// from sounds become no-ops.
func WithSounds(sounds map[SoundKind][]byte) Option {
	return func(e *Engine) { e.sounds = sounds }
}

func (e *Engine) publish(ev Event) {
	if e.notifier == nil {
		return
	}
	ev.Time = time.Now()
	if err := e.notifier.Send(ev); err != nil {
		log.Debug("event not delivered", "type", ev.Type, "err", err)
	}
}
