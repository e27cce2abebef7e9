package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"chicago-openelex/internal/components/chrono"
	"chicago-openelex/internal/components/configutil"
	"chicago-openelex/internal/components/telemetry"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath    *string
	envPath       *string
	telemetryPath *string
	verbose       *bool
)

var rootCmd = &cobra.Command{
	Use:   "chicago-elex",
	Short: "chicago-elex scrapes election results from chicagoelections.com and loads them into a results store.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(os.Stderr, *verbose)

		err := godotenv.Load(*envPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", *envPath, err)
		}

		cfg, err := readConfig(*configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		clock, err := chrono.NewStandardImpl()
		if err != nil {
			return fmt.Errorf("load timezone: %w", err)
		}

		globals := &Globals{
			Config: cfg,
			Tel:    telemetry.SlogAPI{},
			Clock:  clock,
		}

		otelConfig, err := configutil.ReadConfig[telemetry.Config](*telemetryPath)
		switch {
		case err == nil:
			otel, err := telemetry.SetupOtel(cmd.Context(), "chicago-elex", otelConfig)
			if err != nil {
				return fmt.Errorf("setup telemetry: %w", err)
			}
			globals.otel = &otel
		case !os.IsNotExist(err):
			return fmt.Errorf("read %s: %w", *telemetryPath, err)
		}

		cmd.SetContext(setGlobals(cmd.Context(), globals))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		globals := getGlobals(cmd.Context())
		if globals.otel == nil {
			return
		}
		err := globals.otel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
	SilenceUsage: true,
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "chicago-elex.json5", "The config file, a .local.json5 next to it overrides it.")
	envPath = rootCmd.PersistentFlags().String("env", ".env", "A dotenv file to load before reading the config.")
	telemetryPath = rootCmd.PersistentFlags().String("telemetry", "telemetry.json5", "OTLP exporter config, telemetry is only exported when it exists.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output.")
}

// signalContext returns a context that lives until Ctrl+C is pressed.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	return ctx
}

func Execute() {
	if err := rootCmd.ExecuteContext(signalContext()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fatal logs and exits, it is only used where a command cannot go on.
func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}
