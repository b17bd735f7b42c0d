package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ppe-monitor-go/internal/api"
	"ppe-monitor-go/internal/app"
	"ppe-monitor-go/internal/logging"
	"ppe-monitor-go/internal/metrics"
	"ppe-monitor-go/internal/services"
	"ppe-monitor-go/internal/services/display"
)

var noPrompt bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the monitor (default)",
	Long:  `Prompt for credentials, then run detection on the camera until stopped.`,
	RunE:  runMonitor,
}

func init() {
	runCmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Do not prompt on the terminal; log in through the web console")
	rootCmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Do not prompt on the terminal; log in through the web console")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	if cfg.LogdyEnabled {
		writer, _, err := logging.StartLogdy(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to start Logdy, continuing with console logging")
		} else {
			logging.Setup(cfg.LogLevel, writer)
		}
	}

	log.Info().
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Str("detector", cfg.DetectorBackend).
		Int("camera_index", cfg.CameraIndex).
		Bool("console", cfg.ConsoleEnabled).
		Bool("window", cfg.WindowEnabled).
		Msg("Starting PPE monitor")

	prompt := !noPrompt && term.IsTerminal(int(os.Stdin.Fd()))
	if !prompt && !cfg.ConsoleEnabled {
		return errors.New("no login surface: stdin is not a terminal and the web console is disabled")
	}

	metrics.Init()

	container, err := services.NewServiceContainer(cfg)
	if err != nil {
		return err
	}

	deps := app.Deps{
		Source:   container.Source,
		Detector: container.Detector,
		Notifier: container.Notifier,
		Auth:     container.Credentials,
	}
	if cfg.WindowEnabled {
		deps.Renderer = display.NewWindow()
	}
	if container.Stream != nil {
		deps.Publisher = container.Stream
	}

	monitor := app.New(cfg, deps)

	var server *api.Server
	if cfg.ConsoleEnabled {
		if cfg.EphemeralJWTSecret {
			log.Info().Msg("CONSOLE_JWT_SECRET not set, console sessions end when the monitor exits")
		}
		server = api.NewServer(cfg, monitor, container.Credentials, container.Stream, container.HealthChecks())
		server.OnShutdown(container.Stream.Close)
		go func() {
			if err := server.Start(); err != nil {
				log.Error().Err(err).Msg("Web console failed")
			}
		}()
		log.Info().Msgf("Web console at http://localhost:%d/login", cfg.ConsolePort)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if prompt {
		go promptLogin(monitor)
	} else {
		log.Info().Msg("Waiting for login through the web console")
	}

	runErr := monitor.Run(ctx)
	if ctx.Err() != nil {
		log.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Web console forced to shutdown")
		}
	}
	if err := container.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to release services")
	}

	log.Info().Msg("Shutdown complete")
	return runErr
}
