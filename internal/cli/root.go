// Package cli wires the cobra command tree and the configuration hierarchy:
// flags > environment (CLAIMCHECK_*) > config file > defaults.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dotsetgreg/claimcheck/internal/logging"
	"github.com/dotsetgreg/claimcheck/internal/model"
)

// ErrUnverified signals that verification completed but found discrepancies.
// The entry point maps it to exit code 1.
var ErrUnverified = errors.New("discrepancies found")

var (
	cfgFile string
	verbose bool
	debug   bool
	workDir string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimcheck",
	Short: "Claimcheck - verify natural-language claims about code changes",
	Long: `Claimcheck checks whether a stated code change actually happened.

Given a claim like "I renamed UserService to AuthService", it searches the
codebase for leftover references to the old name (including snake_case,
camelCase, and other spellings), classifies each match by context, and can
cross-reference the files a git diff actually touched.

Claimcheck reports what it finds; it never modifies files.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimcheck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging to stderr")
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "d", ".", "directory to verify against")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if debug {
		logging.Init(true)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.claimcheck")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("CLAIMCHECK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges the config file and environment over the defaults.
// The config struct uses yaml tags for both file and viper decoding.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	return cfg, nil
}
