package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"nativeaudio/internal/audio"
	"nativeaudio/internal/config"
	"nativeaudio/internal/tui"
)

// withSession runs fn against a fresh engine and always closes it.
func withSession(cfg *config.Config, fn func(*session) error) (err error) {
	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

func newBackendsCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the audio backends enabled on this platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cfg, func(s *session) error {
				out := cmd.OutOrStdout()
				active := s.engine.ActiveBackend()
				s.engine.VisitBackends(func(id audio.Backend, name string) {
					marker := " "
					if id == active {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %2d  %s\n", marker, uint32(id), name)
				})
				return nil
			})
		},
	}
}

func newDevicesCommand(cfg *config.Config) *cobra.Command {
	var playback, browse bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List capture (or playback) devices of the active backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := audio.Capture
			if playback {
				kind = audio.Playback
			}

			return withSession(cfg, func(s *session) error {
				out := cmd.OutOrStdout()
				if browse {
					d, k, ok, err := tui.StartDeviceListUI(s.engine, kind)
					if err != nil {
						return err
					}
					if ok {
						fmt.Fprintf(out, "%s device: %s\n", k, d.Name)
					}
					return nil
				}

				visit := s.engine.VisitCaptureDevices
				if kind == audio.Playback {
					visit = s.engine.VisitPlaybackDevices
				}
				visit(s.engine.ActiveBackend(), func(id, name string, isDefault bool) {
					marker := " "
					if isDefault {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %-24s  %s\n", marker, id, name)
				})
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&playback, "playback", "p", false, "List playback devices")
	cmd.Flags().BoolVar(&browse, "tui", false, "Browse devices interactively")
	return cmd
}

func newRecordCommand(cfg *config.Config) *cobra.Command {
	var (
		device   string
		duration time.Duration
		output   string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record from a capture device into a WAV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = "recording-" + time.Now().UTC().Format("02-01-2006-150405") + ".wav"
			}

			return withSession(cfg, func(s *session) error {
				if err := s.engine.StartRecording(device); err != nil {
					return suggestDevice(err, s.engine, device, audio.Capture)
				}
				wait(cmd.Context(), duration)

				pcm, err := s.engine.StopRecording()
				if err != nil {
					return err
				}
				if err := audio.WriteWAV(output, pcm, audio.SampleRate, audio.Channels); err != nil {
					return err
				}

				level := audio.MeasureLevel(pcm)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recording saved to: %s (%s)\n", output, humanize.Bytes(uint64(len(pcm))))
				fmt.Fprintf(out, "Peak %.1f dBFS, RMS %.1f dBFS, dominant %.0f Hz\n",
					level.PeakDBFS, level.RMSDBFS, audio.DominantFrequency(pcm, audio.SampleRate))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&device, "device", "d", "", "Capture device name. Defaults to audio.capture_device")
	cmd.Flags().DurationVarP(&duration, "duration", "t", 5*time.Second, "Recording length; 0 records until interrupted")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file name. Default is recording-DD-MM-YYYY-HHMMSS.wav")
	return cmd
}

func newLoopCommand(cfg *config.Config) *cobra.Command {
	var (
		input    string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "loop",
		Short: "Loop a WAV file on the default playback device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clip, err := readClip(input)
			if err != nil {
				return err
			}
			if clip.SampleRate != audio.SampleRate || clip.Channels != audio.Channels {
				return fmt.Errorf("%s: need %d Hz mono, got %d Hz with %d channels",
					input, audio.SampleRate, clip.SampleRate, clip.Channels)
			}

			return withSession(cfg, func(s *session) error {
				if err := s.engine.StartBufferPlayback(clip.PCM); err != nil {
					return err
				}
				wait(cmd.Context(), duration)
				return s.engine.StopBufferPlayback()
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "WAV file, 16-bit mono 48 kHz")
	cmd.Flags().DurationVarP(&duration, "duration", "t", 0, "Playing time; 0 plays until interrupted")
	cmd.MarkFlagRequired("input")
	return cmd
}

func newEchoCommand(cfg *config.Config) *cobra.Command {
	var (
		capture  string
		playback string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "echo",
		Short: "Record from one device, then loop the recording on another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if duration <= 0 {
				return fmt.Errorf("duration must be positive")
			}

			return withSession(cfg, func(s *session) error {
				if err := s.engine.StartRecording(capture); err != nil {
					return suggestDevice(err, s.engine, capture, audio.Capture)
				}
				wait(cmd.Context(), duration)
				pcm, err := s.engine.StopRecording()
				if err != nil {
					return err
				}
				if cmd.Context().Err() != nil {
					return nil
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Captured %s, playing back\n", humanize.Bytes(uint64(len(pcm))))
				if err := s.engine.StartPlayback(playback); err != nil {
					return suggestDevice(err, s.engine, playback, audio.Playback)
				}
				wait(cmd.Context(), duration)
				return s.engine.StopPlayback()
			})
		},
	}

	cmd.Flags().StringVar(&capture, "capture", "", "Capture device name. Defaults to audio.capture_device")
	cmd.Flags().StringVar(&playback, "playback", "", "Playback device name. Defaults to audio.playback_device")
	cmd.Flags().DurationVarP(&duration, "duration", "t", 3*time.Second, "Recording and playback length")
	return cmd
}

func newBeepCommand(cfg *config.Config) *cobra.Command {
	var linger time.Duration

	cmd := &cobra.Command{
		Use:       "beep [error|notification]",
		Short:     "Play a notification sound",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{audio.SoundError.String(), audio.SoundNotification.String()},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := audio.SoundNotification
			if len(args) == 1 {
				k, ok := audio.ParseSoundKind(args[0])
				if !ok {
					return fmt.Errorf("unknown sound %q", args[0])
				}
				kind = k
			}

			return withSession(cfg, func(s *session) error {
				s.engine.EmitSound(kind)
				// EmitSound returns at once; give it time before the process exits.
				wait(cmd.Context(), linger)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&linger, "wait", time.Second, "How long to keep the process alive for the sound")
	return cmd
}

func newConfigCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func readClip(path string) (audio.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Clip{}, err
	}
	defer f.Close()
	return audio.ReadWAV(f)
}

// suggestDevice names the closest existing device when a lookup by name
// failed.
func suggestDevice(err error, e *audio.Engine, name string, kind audio.DeviceType) error {
	if name == "" || !errors.Is(err, audio.ErrDeviceNotFound) {
		return err
	}

	devices := e.CaptureDevices(e.ActiveBackend())
	if kind == audio.Playback {
		devices = e.PlaybackDevices(e.ActiveBackend())
	}
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}

	matches := fuzzy.Find(name, names)
	if len(matches) == 0 {
		return err
	}
	return fmt.Errorf("%w (did you mean %q?)", err, matches[0].Str)
}
