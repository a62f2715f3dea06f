// Package commands provides the CLI commands for pairprog.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pairprog-ai/pairprog/internal/config"
	"github.com/pairprog-ai/pairprog/internal/logging"
	"github.com/pairprog-ai/pairprog/pkg/types"
)

// Version information set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	logLevel string
	workDir  string
)

var rootCmd = &cobra.Command{
	Use:   "pairprog",
	Short: "pairprog - an LLM pair programmer",
	Long: `pairprog is an LLM-backed pair programmer. It holds a conversation,
runs tools (shell, files, document search, web fetch) on your behalf, and
persists every session for later replay.

Run 'pairprog chat' to start a conversation.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().StringVarP(&workDir, "directory", "C", "", "Working directory")

	rootCmd.SetVersionTemplate(fmt.Sprintf("pairprog %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(replayCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the working directory, loads configuration, and sets
// up logging. A .env next to the working directory is honored.
func loadConfig() (*types.Config, error) {
	dir := workDir
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}

	// Missing .env is fine.
	godotenv.Load()

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logging.Init(logging.Config{
		Level:  logging.ParseLevel(level),
		Pretty: cfg.Log.Pretty,
	})

	return cfg, nil
}
