package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/shift/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "shift",
	Short: "Shift drives elements through named states from declarative trigger configuration",
	Long: `Shift reads a page definition (elements with trigger attributes) and runs the
trigger engine against it: validating configuration, simulating scripted
timelines, or serving live state over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("page", "page.yaml", "Page definition file")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}

// newLogger builds the CLI logger: text on a TTY, JSON otherwise.
func newLogger(cmd *cobra.Command) *slog.Logger {
	levelName, _ := cmd.Flags().GetString("log-level")
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		level = slog.LevelWarn
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return logging.New(level)
	}
	return logging.NewJSON(level)
}
