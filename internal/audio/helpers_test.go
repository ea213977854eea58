package audio_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"nativeaudio/internal/audio"
	"nativeaudio/internal/audio/audiotest"
)

const periodBytes = audio.PeriodFrames * audio.BytesPerSample * audio.Channels

// newTestEngine returns an engine on a fake driver, closed at test end.
func newTestEngine(t *testing.T, opts ...audio.Option) (*audio.Engine, *audiotest.Driver, *audiotest.Factory) {
	t.Helper()
	f := &audiotest.Factory{}
	e, err := audio.New(f.Open, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e, f.Drivers()[0], f
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []audio.Event
}

func (n *recordingNotifier) Send(data any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, data.(audio.Event))
	return nil
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, ev := range n.events {
		out = append(out, ev.Type)
	}
	return out
}

type countingMetrics struct {
	mu      sync.Mutex
	streams map[string]*streamCounts
}

type streamCounts struct {
	mu        sync.Mutex
	bytes     int
	underruns int
	starts    map[bool]int
}

func (m *countingMetrics) Stream(name string) audio.StreamMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.streams == nil {
		m.streams = map[string]*streamCounts{}
	}
	c := &streamCounts{starts: map[bool]int{}}
	m.streams[name] = c
	return c
}

func (m *countingMetrics) get(name string) *streamCounts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streams[name]
}

func (c *streamCounts) Period(n int) {
	c.mu.Lock()
	c.bytes += n
	c.mu.Unlock()
}

func (c *streamCounts) Underrun() {
	c.mu.Lock()
	c.underruns++
	c.mu.Unlock()
}

func (c *streamCounts) Started(ok bool) {
	c.mu.Lock()
	c.starts[ok]++
	c.mu.Unlock()
}
