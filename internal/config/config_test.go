// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"nativeaudio/internal/audio"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nativeaudio.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoad_EmptyPath(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Driver != DefaultDriver || cfg.LogLevel != DefaultLogLevel || cfg.Audio.Backend != DefaultBackend {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	path := writeTempConfig(t, "driver: portaudio\n")
	t.Chdir(filepath.Dir(path))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Driver != DriverPortaudio {
		t.Errorf("expected driver from %s, got %q", DefaultConfigFile, cfg.Driver)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("expected read error, got %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoad_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, "audio: [unclosed\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: debug
audio:
  backend: pulse
  capture_device: USB Headset Microphone
  playback_device: USB Headset Speakers
transport:
  websocket_addr: 127.0.0.1:8080
  udp_target: 127.0.0.1:9090
metrics:
  addr: :2112
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Audio.CaptureDevice != "USB Headset Microphone" || cfg.Audio.PlaybackDevice != "USB Headset Speakers" {
		t.Errorf("devices not loaded: %+v", cfg.Audio)
	}
	if cfg.Transport.UDPTarget != "127.0.0.1:9090" || cfg.Metrics.Addr != ":2112" {
		t.Errorf("addresses not loaded: %+v %+v", cfg.Transport, cfg.Metrics)
	}
	b, err := cfg.BackendID()
	if err != nil || b == nil || *b != audio.BackendPulseAudio {
		t.Errorf("BackendID() = %v, %v; want PulseAudio", b, err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NATIVEAUDIO_AUDIO_BACKEND", "alsa")
	t.Setenv("NATIVEAUDIO_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Audio.Backend != "alsa" || cfg.LogLevel != "warn" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{LogLevel: "info", Driver: DriverMiniaudio, Audio: AudioConfig{Backend: "auto"}}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty backend is auto", func(c *Config) { c.Audio.Backend = "" }, ""},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad driver", func(c *Config) { c.Driver = "openal" }, "unknown driver"},
		{"bad backend", func(c *Config) { c.Audio.Backend = "asio" }, "audio.backend"},
		{"bad udp target", func(c *Config) { c.Transport.UDPTarget = "localhost" }, "transport.udp_target"},
		{"bad metrics addr", func(c *Config) { c.Metrics.Addr = "2112" }, "metrics.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestYAML(t *testing.T) {
	cfg := Config{LogLevel: "info", Driver: DriverMiniaudio, Audio: AudioConfig{Backend: "null", CaptureDevice: "mic"}}
	out, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML() returned %v", err)
	}

	var back Config
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("rendered YAML does not parse: %v", err)
	}
	if back.Audio.CaptureDevice != "mic" || !strings.Contains(string(out), "capture_device: mic") {
		t.Errorf("unexpected YAML:\n%s", out)
	}
}
