package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/leave-analyzer/internal/config"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "leavectl",
	Short: "Analyze attendance spreadsheets for working hours and leave",
	Long: `leavectl normalizes attendance spreadsheets (xlsx, xls or csv) and computes
monthly expected hours, worked hours, leave usage and productivity per employee.
It can analyze a file locally or import it into the attendance database.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}

// loadConfig loads the environment configuration shared with the API server
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
