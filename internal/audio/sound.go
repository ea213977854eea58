package audio

import (
	"embed"
	"sync/atomic"
	"time"

	"nativeaudio/internal/log"
)

type SoundKind int

const (
	SoundError SoundKind = iota
	SoundNotification
)

func (k SoundKind) String() string {
	switch k {
	case SoundError:
		return "error"
	case SoundNotification:
		return "notification"
	}
	return "unknown"
}

// ParseSoundKind maps "error" and "notification" to their kinds.
func ParseSoundKind(s string) (SoundKind, bool) {
	switch s {
	case "error":
		return SoundError, true
	case "notification":
		return SoundNotification, true
	}
	return 0, false
}

//go:embed sounds/*.wav
var soundFS embed.FS

// soundPollInterval is both the completion poll period and the grace
// period after completion.
var soundPollInterval = 100 * time.Millisecond

// soundTimeout bounds how long past its own duration a sound may take to
// drain before it is abandoned.
const soundTimeout = 2 * time.Second

func embeddedSounds() map[SoundKind][]byte {
	sounds := make(map[SoundKind][]byte, 2)
	for kind, name := range map[SoundKind]string{
		SoundError:        "sounds/error.wav",
		SoundNotification: "sounds/notification.wav",
	} {
		data, err := soundFS.ReadFile(name)
		if err != nil {
			log.Warn("missing embedded sound", "kind", kind, "err", err)
			continue
		}
		sounds[kind] = data
	}
	return sounds
}

// EmitSound plays a notification sound on the default playback device in
// the background. It returns immediately and never reports failures; an
// unknown kind does nothing.
func (e *Engine) EmitSound(kind SoundKind) {
	payload, ok := e.sounds[kind]
	if !ok || len(payload) == 0 {
		log.Debug("no sound for kind", "kind", kind)
		return
	}

	e.publish(Event{Type: EventSoundEmitted, Stream: kind.String()})
	go e.playSound(kind, payload)
}

// playSound runs on its own driver context so it never contends with the
// engine's streams. Everything acquired is released on return.
func (e *Engine) playSound(kind SoundKind, payload []byte) {
	clip, err := DecodeWAV(payload)
	if err != nil {
		log.Warn("failed to decode sound", "kind", kind, "err", err)
		return
	}

	drv, err := e.open()
	if err != nil {
		log.Warn("failed to open sound context", "kind", kind, "err", err)
		return
	}
	defer func() {
		if err := drv.Close(); err != nil {
			log.Debug("sound context close failed", "kind", kind, "err", err)
		}
	}()

	var (
		pos  int
		done atomic.Bool
	)
	frameBytes := clip.Channels * BytesPerSample
	stream, err := drv.OpenStream(StreamConfig{
		Type:         Playback,
		SampleRate:   clip.SampleRate,
		Channels:     clip.Channels,
		PeriodFrames: clip.SampleRate * PeriodMillis / 1000,
	}, func(output, _ []byte, frames uint32) {
		n := min(int(frames)*frameBytes, len(output))
		copied := copy(output[:n], clip.PCM[pos:])
		clear(output[copied:])
		pos += copied
		if pos >= len(clip.PCM) {
			done.Store(true)
		}
	})
	if err != nil {
		log.Warn("failed to open sound stream", "kind", kind, "err", err)
		return
	}
	defer func() {
		if err := stream.Uninit(); err != nil {
			log.Debug("sound stream uninit failed", "kind", kind, "err", err)
		}
	}()

	if err := stream.Start(); err != nil {
		log.Warn("failed to start sound stream", "kind", kind, "err", err)
		return
	}
	defer stream.Stop()

	ticker := time.NewTicker(soundPollInterval)
	defer ticker.Stop()
	deadline := time.Now().Add(clip.Duration() + soundTimeout)
	for !done.Load() {
		if time.Now().After(deadline) {
			log.Warn("sound did not finish", "kind", kind)
			return
		}
		<-ticker.C
	}
	time.Sleep(soundPollInterval)
	log.Debug("sound finished", "kind", kind)
}
