// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the curator CLI: a daily batch
// curation run plus the commands that feed it (feedback, priorities,
// interests, domain enrichment) and inspect its state.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/curator/internal/errs"
	"github.com/pdiddy/curator/internal/logging"
	"github.com/pdiddy/curator/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Store

	// logger is built once from the log flags in PersistentPreRunE.
	logger = zerolog.Nop()
)

// rootCmd is the base command for the curator CLI.
var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Personal news curation with learned preferences",
	Long: `curator fetches the configured feeds, scores every article mechanically
or with a model, and picks a diverse daily briefing. Feedback on what you
read (like, dislike, save) is folded into a learned profile that shapes the
next run; priorities and flagged interests add short-lived boosts.

Run "curator run" from a scheduler; use the other subcommands to give
feedback and inspect state.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(logging.Config{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		})

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, func(name string, err error) {
			logger.Warn().Err(err).Str("file", name).Msg("skipping unreadable secret")
		})
		if err != nil {
			return err
		}
		loadedSecrets = s
		if names := s.Names(); len(names) > 0 {
			logger.Debug().Strs("secrets", names).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./curator.yaml or $XDG_CONFIG_HOME/curator/curator.yaml)")
	pf.String("data-dir", "", "directory for preferences, history and the event log (default: $XDG_DATA_HOME/curator)")
	pf.String("secrets-dir", ".secrets/", "directory of API key files")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error, disabled")
	pf.String("log-format", "console", "log format: console or json")

	_ = viper.BindPFlag("paths.data_dir", pf.Lookup("data-dir"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("curator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "curator"))
	}

	viper.SetEnvPrefix("CURATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if fix := errs.Remediation(err); fix != "" {
			fmt.Fprintln(os.Stderr, "To fix:", fix)
		}
		os.Exit(1)
	}
}
