// Package metrics exposes Prometheus instrumentation of the audio streams.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nativeaudio/internal/audio"
)

// StreamMetrics holds the per-stream counters of an audio engine. It
// implements audio.Metrics.
type StreamMetrics struct {
	Callbacks *prometheus.CounterVec
	Bytes     *prometheus.CounterVec
	Underruns *prometheus.CounterVec
	Starts    *prometheus.CounterVec
}

var _ audio.Metrics = (*StreamMetrics)(nil)

// NewStreamMetrics creates the stream counters and registers them with
// registry.
func NewStreamMetrics(registry prometheus.Registerer) (*StreamMetrics, error) {
	m := &StreamMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register stream metrics: %w", err)
	}
	return m, nil
}

func (m *StreamMetrics) initMetrics() {
	m.Callbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nativeaudio_callbacks_total",
		Help: "Total number of audio callback periods handled",
	}, []string{"stream"})

	m.Bytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nativeaudio_bytes_total",
		Help: "Total number of PCM bytes captured or rendered",
	}, []string{"stream"})

	m.Underruns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nativeaudio_underruns_total",
		Help: "Total number of playback periods padded with silence because the buffer ran out",
	}, []string{"stream"})

	m.Starts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nativeaudio_stream_starts_total",
		Help: "Total number of stream start attempts by result",
	}, []string{"stream", "result"})
}

// Describe implements prometheus.Collector.
func (m *StreamMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Callbacks.Describe(ch)
	m.Bytes.Describe(ch)
	m.Underruns.Describe(ch)
	m.Starts.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *StreamMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Callbacks.Collect(ch)
	m.Bytes.Collect(ch)
	m.Underruns.Collect(ch)
	m.Starts.Collect(ch)
}

// Stream resolves the label values once so callbacks only touch atomics.
func (m *StreamMetrics) Stream(name string) audio.StreamMetrics {
	return &stream{
		callbacks: m.Callbacks.WithLabelValues(name),
		bytes:     m.Bytes.WithLabelValues(name),
		underruns: m.Underruns.WithLabelValues(name),
		startOK:   m.Starts.WithLabelValues(name, "ok"),
		startErr:  m.Starts.WithLabelValues(name, "error"),
	}
}

type stream struct {
	callbacks prometheus.Counter
	bytes     prometheus.Counter
	underruns prometheus.Counter
	startOK   prometheus.Counter
	startErr  prometheus.Counter
}

func (s *stream) Period(n int) {
	s.callbacks.Inc()
	s.bytes.Add(float64(n))
}

func (s *stream) Underrun() {
	s.underruns.Inc()
}

func (s *stream) Started(ok bool) {
	if ok {
		s.startOK.Inc()
		return
	}
	s.startErr.Inc()
}

// Handler serves the metrics gathered by registry.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}
