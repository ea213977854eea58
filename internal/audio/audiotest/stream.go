package audiotest

import (
	"sync"
	"time"

	"nativeaudio/internal/audio"
)

// PumpInterval is the pause between periods rendered by AutoPump streams.
var PumpInterval = time.Millisecond

type Stream struct {
	Config audio.StreamConfig

	onData   audio.DataFunc
	startErr error
	autoPump bool
	input    []byte

	// cb serialises callbacks the way a native device thread would.
	cb sync.Mutex

	mu       sync.Mutex
	starts   int
	stops    int
	running  bool
	uninit   bool
	rendered []byte
	quit     chan struct{}
	done     chan struct{}
}

func (s *Stream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.starts++
	if s.running {
		return nil
	}
	s.running = true
	if s.autoPump {
		s.quit = make(chan struct{})
		s.done = make(chan struct{})
		go s.pump(s.quit, s.done)
	}
	return nil
}

func (s *Stream) Stop() error {
	s.mu.Lock()
	s.stops++
	s.running = false
	quit, done := s.quit, s.done
	s.quit, s.done = nil, nil
	s.mu.Unlock()

	if quit != nil {
		close(quit)
		<-done
	}
	return nil
}

func (s *Stream) Uninit() error {
	if s.Running() {
		s.Stop()
	}
	s.mu.Lock()
	s.uninit = true
	s.mu.Unlock()
	return nil
}

func (s *Stream) pump(quit, done chan struct{}) {
	defer close(done)
	frames := s.Config.PeriodFrames
	if frames <= 0 {
		frames = audio.PeriodFrames
	}
	for {
		select {
		case <-quit:
			return
		default:
		}
		if s.Config.Type == audio.Capture {
			in := s.input
			if len(in) == 0 {
				in = make([]byte, frames*max(s.Config.Channels, 1)*audio.BytesPerSample)
			}
			s.Capture(in)
		} else {
			out := s.Render(frames)
			s.mu.Lock()
			s.rendered = append(s.rendered, out...)
			s.mu.Unlock()
		}
		time.Sleep(PumpInterval)
	}
}

// Capture delivers pcm to the stream callback as one period of input.
func (s *Stream) Capture(pcm []byte) {
	channels := max(s.Config.Channels, 1)
	frames := len(pcm) / (audio.BytesPerSample * channels)
	s.cb.Lock()
	s.onData(nil, pcm, uint32(frames))
	s.cb.Unlock()
}

// Render asks the stream callback for one period of output.
func (s *Stream) Render(frames int) []byte {
	channels := max(s.Config.Channels, 1)
	out := make([]byte, frames*channels*audio.BytesPerSample)
	s.cb.Lock()
	s.onData(out, nil, uint32(frames))
	s.cb.Unlock()
	return out
}

// Rendered returns everything AutoPump has rendered so far.
func (s *Stream) Rendered() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.rendered...)
}

func (s *Stream) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Stream) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

func (s *Stream) Stops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

func (s *Stream) Uninitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uninit
}
