package main

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"ppe-monitor-go/internal/config"
	"ppe-monitor-go/internal/logging"
)

// @title PPE Monitor API
// @version 1.0.0
// @description Web console for the PPE monitor: login, live annotated stream, status and stop control.
// @BasePath /

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "ppe-monitor",
	Short: "ppe-monitor watches a webcam for people without hardhats",
	Long: `Webcam PPE monitor. Detects hardhats, vests and people on a live camera,
annotates the feed and sends an email with a snapshot plus an audible alert
when a person is seen without a hardhat.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	// run is the default command
	RunE: runMonitor,
}

func init() {
	// OpenCV windows must be driven from the main OS thread.
	runtime.LockOSThread()

	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(mailCmd)
	rootCmd.AddCommand(envCmd)
}

// loadConfig loads the environment configuration and applies command line overrides.
func loadConfig() *config.Config {
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logging.Setup(cfg.LogLevel)
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
