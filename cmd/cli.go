package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nativeaudio/internal/config"
	"nativeaudio/internal/log"
	"nativeaudio/pkg/build"
)

// options are the persistent flags. Flags that were set override the
// loaded configuration.
type options struct {
	configFile  string
	driver      string
	backend     string
	logLevel    string
	wsAddr      string
	udpTarget   string
	metricsAddr string
}

// Execute runs the CLI until it finishes or receives SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	rootCmd.SetArgs(os.Args[1:])
	return rootCmd.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	buildInfo := build.GetBuildFlags()
	opts := &options{}
	var cfg config.Config

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Capture, loop and play back audio through native backends",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			opts.apply(cmd, loaded)
			if err := loaded.Validate(); err != nil {
				return err
			}

			level, _ := log.ParseLevel(loaded.LogLevel)
			log.SetLevel(level)
			cfg = *loaded
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "",
		"Configuration file. Defaults to ./"+config.DefaultConfigFile+" when present")
	flags.StringVar(&opts.driver, "driver", config.DefaultDriver,
		"Native audio layer (miniaudio or portaudio)")
	flags.StringVarP(&opts.backend, "backend", "b", config.DefaultBackend,
		"Backend name, alias or numeric id. 'auto' probes the platform defaults")
	flags.StringVarP(&opts.logLevel, "log-level", "l", config.DefaultLogLevel,
		"Log level (debug, info, warn, error)")
	flags.StringVar(&opts.wsAddr, "ws-addr", "",
		"Serve engine events over WebSocket on this address")
	flags.StringVar(&opts.udpTarget, "udp-target", "",
		"Send engine events as UDP datagrams to this address")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address")

	rootCmd.AddCommand(
		newBackendsCommand(&cfg),
		newDevicesCommand(&cfg),
		newRecordCommand(&cfg),
		newLoopCommand(&cfg),
		newEchoCommand(&cfg),
		newBeepCommand(&cfg),
		newConfigCommand(&cfg),
	)
	return rootCmd
}

func (o *options) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Driver = o.driver
	}
	if flags.Changed("backend") {
		cfg.Audio.Backend = o.backend
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("ws-addr") {
		cfg.Transport.WebSocketAddr = o.wsAddr
	}
	if flags.Changed("udp-target") {
		cfg.Transport.UDPTarget = o.udpTarget
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = o.metricsAddr
	}
}
