// Package cli provides the command-line interface for cischat.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yonatanwolf/cischat/internal/api"
	"github.com/yonatanwolf/cischat/internal/config"
	"github.com/yonatanwolf/cischat/internal/tui"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	verbose   bool

	// Global config and API client
	cfg       config.Config
	apiClient *api.Client
	logger    *slog.Logger

	logCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cischat",
	Short: "Terminal client for the CIS chat server",
	Long: `Cischat is a terminal client for the CIS retrieval-augmented chat server.

Run it without arguments to open the interactive chat UI, or use the
subcommands for one-shot operations (login, sending a question, listing
chats, exporting transcripts).`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Version and help need no server connection.
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)

		endpoint := cfg.ServerURL
		if serverURL != "" {
			endpoint = serverURL
		}

		var err error
		apiClient, err = api.New(api.Options{
			Endpoint:    endpoint,
			Timeout:     cfg.Timeout,
			SessionFile: cfg.SessionFile,
			Logger:      logger,
		})
		if err != nil {
			return fmt.Errorf("create API client: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if apiClient != nil {
			for _, s := range apiClient.Stats().Snapshot() {
				logger.Debug("request stats",
					"op", s.Operation,
					"count", s.Count,
					"errors", s.Errors,
					"avg_ms", s.AvgTimeMs,
				)
			}
		}
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(apiClient)
	},
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the interactive chat UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(apiClient)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "chat server URL (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(exportCmd)
}
