// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"nativeaudio/internal/audio"
	"nativeaudio/internal/log"
)

// Defaults and fixed names of the configuration layer.
const (
	DefaultConfigFile = "nativeaudio.yaml"
	DefaultDriver     = DriverMiniaudio
	DefaultLogLevel   = "info"
	DefaultBackend    = "auto" // probe the platform backends in priority order
	EnvPrefix         = "NATIVEAUDIO"

	DriverMiniaudio = "miniaudio"
	DriverPortaudio = "portaudio"
)

// Config holds all runtime configuration, loaded from defaults, an optional
// YAML file and NATIVEAUDIO_* environment variables, in that order.
type Config struct {
	LogLevel  string          `mapstructure:"log_level" yaml:"log_level"`
	Driver    string          `mapstructure:"driver" yaml:"driver"` // miniaudio or portaudio
	Audio     AudioConfig     `mapstructure:"audio" yaml:"audio"`
	Transport TransportConfig `mapstructure:"transport" yaml:"transport"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

type AudioConfig struct {
	Backend        string `mapstructure:"backend" yaml:"backend"`
	CaptureDevice  string `mapstructure:"capture_device" yaml:"capture_device"`
	PlaybackDevice string `mapstructure:"playback_device" yaml:"playback_device"`
	LowLatency     bool   `mapstructure:"low_latency" yaml:"low_latency"` // portaudio only
	Trace          bool   `mapstructure:"trace" yaml:"trace"`             // forward miniaudio's own log
}

// TransportConfig enables event fan-out. Empty addresses disable a transport.
type TransportConfig struct {
	WebSocketAddr string `mapstructure:"websocket_addr" yaml:"websocket_addr"`
	UDPTarget     string `mapstructure:"udp_target" yaml:"udp_target"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("driver", DefaultDriver)
	v.SetDefault("audio.backend", DefaultBackend)
	v.SetDefault("audio.capture_device", "")
	v.SetDefault("audio.playback_device", "")
	v.SetDefault("audio.low_latency", false)
	v.SetDefault("audio.trace", false)
	v.SetDefault("transport.websocket_addr", "")
	v.SetDefault("transport.udp_target", "")
	v.SetDefault("metrics.addr", "")
}

// Load reads the configuration. An empty path uses DefaultConfigFile from
// the working directory when it exists and built-in defaults otherwise.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		log.Debug("configuration loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch c.Driver {
	case DriverMiniaudio, DriverPortaudio:
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", c.Driver, DriverMiniaudio, DriverPortaudio)
	}
	if _, err := c.BackendID(); err != nil {
		return fmt.Errorf("audio.backend: %w", err)
	}

	for key, addr := range map[string]string{
		"transport.websocket_addr": c.Transport.WebSocketAddr,
		"transport.udp_target":     c.Transport.UDPTarget,
		"metrics.addr":             c.Metrics.Addr,
	} {
		if addr == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("%s %q appears invalid: %w", key, addr, err)
		}
	}
	return nil
}

// BackendID returns the configured backend, or nil to probe the platform
// defaults.
func (c *Config) BackendID() (*audio.Backend, error) {
	if c.Audio.Backend == "" || strings.EqualFold(c.Audio.Backend, DefaultBackend) {
		return nil, nil
	}
	b, err := audio.ParseBackend(c.Audio.Backend)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
