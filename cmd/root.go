// Package cmd implements the krishna command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gayu2216/krishna-knowledge/internal/app"
	"github.com/gayu2216/krishna-knowledge/internal/config"
	"github.com/gayu2216/krishna-knowledge/internal/log"
)

var (
	flagDebug   bool
	flagJSONLog bool
)

var rootCmd = &cobra.Command{
	Use:   "krishna",
	Short: "Krishna Knowledge - learn about Lord Krishna and Hindu philosophy",
	Long: `Krishna Knowledge is a retrieval-augmented chatbot and adaptive quiz
about Lord Krishna, the Bhagavad Gita, and Hindu philosophy.

Running krishna without a subcommand starts an interactive chat.`,
	SilenceUsage: true,
	RunE:         runChat,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLog, "json-log", false, "emit logs as JSON")
}

// newLogger builds the process logger from the persistent flags.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level, JSON: flagJSONLog})
}

// setupApp loads configuration and wires the application container.
// The caller owns the returned App and must Close it.
func setupApp(ctx context.Context) (*app.App, log.Logger, error) {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing application: %w", err)
	}
	return a, logger, nil
}
