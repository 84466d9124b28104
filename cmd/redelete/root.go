package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/qepting91/redelete/internal/config"
)

var (
	// Global flags
	debug      bool
	configFile string

	logger = slog.Default()
)

// errRunFailed signals a run that was reported already but must exit non-zero.
var errRunFailed = errors.New("run did not complete cleanly")

var rootCmd = &cobra.Command{
	Use:   "redelete",
	Short: "Deletes your reddit comments and submissions",
	Long: `redelete walks your reddit history and deletes comments and submissions,
keeping anything in excluded subreddits, anything newer than a minimum age,
and anything scoring at or above a minimum score.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Show detailed operation logs")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Account settings file (default: <user config dir>/redelete/redelete.conf)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(forgetCmd)
}

// loadEnv reads process settings and opens the account settings file.
func loadEnv() (config.Config, *config.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	path := configFile
	if path == "" {
		path = cfg.ConfigFile
	}
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			return cfg, nil, err
		}
	}
	return cfg, config.NewStore(path), nil
}
