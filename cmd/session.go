package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"nativeaudio/internal/audio"
	"nativeaudio/internal/config"
	"nativeaudio/internal/driver/miniaudio"
	"nativeaudio/internal/driver/portaudio"
	"nativeaudio/internal/log"
	"nativeaudio/internal/metrics"
	"nativeaudio/internal/transport"
	"nativeaudio/internal/transport/udp"
)

// openerFor picks the native driver named by the configuration.
var openerFor = func(cfg *config.Config) (audio.Opener, error) {
	backend, err := cfg.BackendID()
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case config.DriverMiniaudio:
		return miniaudio.Opener(miniaudio.Config{Backend: backend, Trace: cfg.Audio.Trace}), nil
	case config.DriverPortaudio:
		if backend != nil {
			log.Warn("portaudio uses its default host API, ignoring backend", "backend", *backend)
		}
		return portaudio.Opener(portaudio.Config{LowLatency: cfg.Audio.LowLatency}), nil
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}

// session owns the engine and everything hanging off it for the lifetime of
// one command.
type session struct {
	engine     *audio.Engine
	transports transport.Multi
	metrics    *http.Server
}

func newSession(cfg *config.Config) (*session, error) {
	open, err := openerFor(cfg)
	if err != nil {
		return nil, err
	}

	r := &session{}
	if err := r.startTransports(cfg); err != nil {
		r.transports.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	streamMetrics, err := metrics.NewStreamMetrics(registry)
	if err != nil {
		r.transports.Close()
		return nil, err
	}
	if cfg.Metrics.Addr != "" {
		r.serveMetrics(cfg.Metrics.Addr, registry)
	}

	r.engine, err = audio.New(open,
		audio.WithNotifier(r.transports),
		audio.WithMetrics(streamMetrics),
	)
	if err != nil {
		r.shutdownMetrics()
		r.transports.Close()
		return nil, err
	}

	if backend, _ := cfg.BackendID(); backend != nil {
		r.engine.SetBackend(*backend)
	}
	r.engine.SetCaptureDevice(cfg.Audio.CaptureDevice)
	r.engine.SetPlaybackDevice(cfg.Audio.PlaybackDevice)

	log.Debug("session ready", "driver", cfg.Driver, "backend", r.engine.ActiveBackend())
	return r, nil
}

func (r *session) startTransports(cfg *config.Config) error {
	r.transports = transport.Multi{transport.NewLoggingTransport()}
	if addr := cfg.Transport.WebSocketAddr; addr != "" {
		r.transports = append(r.transports, transport.NewWebSocketTransport(addr))
	}
	if target := cfg.Transport.UDPTarget; target != "" {
		p, err := udp.NewPublisher(target)
		if err != nil {
			return err
		}
		r.transports = append(r.transports, p)
	}
	return nil
}

func (r *session) serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	r.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("metrics listening", "addr", addr)
		if err := r.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "err", err)
		}
	}()
}

func (r *session) shutdownMetrics() error {
	if r.metrics == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return r.metrics.Shutdown(ctx)
}

// Close releases the engine first so its final events still reach the
// transports.
func (r *session) Close() error {
	return errors.Join(
		r.engine.Close(),
		r.transports.Close(),
		r.shutdownMetrics(),
	)
}

// wait blocks for d, or until ctx is done when d is not positive.
func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		<-ctx.Done()
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
