// Package cmd wires the CLI commands: executing flows, running datasets,
// and serving the editor API.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weft-dev/weft/internal/config"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "weft",
	Short: "Prompt flow runner for the weft editor",
	Long: `weft executes prompt flows authored in the browser editor: graphs of
entry, generate, and exit nodes threaded together by named variables.
It runs single flows, replays datasets against a flow, and serves the
HTTP API the editor talks to.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// version never needs configuration
		if cmd.Name() == "version" {
			return nil
		}
		return initConfig()
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .weft.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
}

func initConfig() error {
	v := viper.New()

	// Bind flags to viper (errors are nil when flag exists)
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	loader := config.NewLoaderWithViper(v)
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}

	loaded, err := loader.Load()
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	return nil
}
