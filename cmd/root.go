// Package cmd provides the command-line interface for practicals with
// configuration loaded from several sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --port, --pages, etc.) - highest priority
//	2. PRACTICALS_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (PRACTICALS_SERVER_PORT, etc.)
//	4. Configuration files (.practicals.yml) - lowest priority
//
// Environment Variables:
//
//	PRACTICALS_CONFIG_FILE: Path to custom configuration file
//	PRACTICALS_SERVER_PORT: Override server port
//	PRACTICALS_PAGES_DIR: Serve pages from this directory instead of the embedded ones
//	PRACTICALS_DEVELOPMENT_LIVE_RELOAD: Enable/disable live reload
//	And the rest following the PRACTICALS_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/conneroisu/practicals/internal/config"
	"github.com/conneroisu/practicals/internal/logging"
	"github.com/conneroisu/practicals/internal/registry"
	"github.com/conneroisu/practicals/internal/site"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "practicals",
	Short: "Serve the object-oriented programming practical exercises",
	Long: `practicals serves a directory of exercise pages. Every page is wrapped in the
same shell: a head, a navigation sidebar listing every page in the directory,
the page body and a footer.

Quick Start:
  practicals serve                       Serve the embedded exercises
  practicals serve --pages ./site        Serve pages from a directory
  practicals list                        List the navigable pages
  practicals render practical_exe_02.html Render one page to stdout

Documentation: https://github.com/conneroisu/practicals`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .practicals.yml, can also use PRACTICALS_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("pages", "", "page directory (default: the embedded pages)")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("pages.dir", rootCmd.PersistentFlags().Lookup("pages"))
}

// initConfig points viper at the config file and the environment.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. PRACTICALS_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .practicals.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("PRACTICALS_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".practicals")
	}

	// PRACTICALS_SERVER_PORT, PRACTICALS_PAGES_DIR, ...
	viper.SetEnvPrefix("PRACTICALS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable file leaves the defaults in place.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads the configuration, pointing the user at the config file
// when it is invalid.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		file := viper.ConfigFileUsed()
		if file == "" {
			file = ".practicals.yml"
		}
		return nil, fmt.Errorf("failed to load configuration (check %s and PRACTICALS_* variables): %w", file, err)
	}
	return cfg, nil
}

// newLogger builds the logger described by cfg.Log, writing to w.
func newLogger(cfg *config.Config, w io.Writer) logging.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: w,
	})
}

// openPages returns the page directory and a registry over it.
func openPages(cfg *config.Config) (afero.Fs, *registry.Registry) {
	pages := site.PageFs(cfg.Pages.Dir)
	lister := registry.NewFSLister(pages, ".")
	return pages, registry.New(lister, registry.PolicyFromConfig(cfg.Pages))
}
