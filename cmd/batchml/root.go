package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rendis/batchml/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "batchml",
	Short: "Compile recipe workspaces into B2MML/BatchML documents",
	Long: `batchml turns a recipe workspace graph into an ISA-88 general recipe or a
master recipe (BatchInformation) XML document, submits it to the
validation service and saves the artifact the answer calls for.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default from settings)")
}

// settingsFor loads the layered settings and applies the persistent flags.
func settingsFor(cmd *cobra.Command) Settings {
	s := loadSettings(settingsPath(), os.Getenv)
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		s.LogLevel = v
	}
	return s
}

func newLogger(s Settings) *slog.Logger {
	return logging.New(logging.ParseLevel(s.LogLevel), os.Stderr)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
