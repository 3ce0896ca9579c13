// Package cli implements the keytree command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/keytree/internal/config"
	"github.com/mrz1836/keytree/internal/metrics"
	"github.com/mrz1836/keytree/internal/output"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Command group IDs for the root help output.
const (
	groupKeys   = "keys"
	groupDerive = "derive"
	groupConfig = "config"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool
	coinFlag     string
	networkFlag  string

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
	buildInfo BuildInfo
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "keytree",
	Short: "Hierarchical deterministic key derivation",
	Long: `keytree turns a BIP39 mnemonic into a tree of keys and addresses.

It generates and validates mnemonics, derives BIP32 and SLIP-10 keys along
BIP44, BIP49, BIP84 and BIP86 paths, serializes extended keys and formats
Bitcoin, Ethereum and Solana addresses. Nothing is stored and nothing is
sent over the network.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute(info BuildInfo) error {
	buildInfo = info

	err := rootCmd.Execute()
	if err != nil {
		if logger != nil {
			// Error text can carry mnemonic words; only the code is logged.
			logger.Error("command failed: %s", errorCode(err))
			cleanup()
		}
		format := output.FormatText
		if formatter != nil {
			format = formatter.Format()
		}
		_ = output.FormatError(rootCmd.ErrOrStderr(), err, format)
		return err
	}
	return nil
}

// errorCode returns the machine-readable code of err.
func errorCode(err error) string {
	var ke *kterr.KeytreeError
	if kterr.As(err, &ke) {
		return ke.Code
	}
	return kterr.ErrGeneral.Code
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return kterr.ExitCode(err)
}

// initGlobals initializes global configuration, logger, and formatter.
func initGlobals(cmd *cobra.Command) error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}
	home = config.ExpandHome(home)

	var err error
	cfg, err = config.Load(config.Path(home))
	switch {
	case errors.Is(err, kterr.ErrConfigNotFound):
		cfg = config.Defaults()
		cfg.Home = home
		cfg.Logging.File = filepath.Join(home, "keytree.log")
	case err != nil:
		return err
	}

	config.ApplyEnvironment(cfg)

	// Command-line flags win over file and environment.
	if homeDir != "" {
		cfg.Home = homeDir
	}
	if v := config.SanitizeSymbol(coinFlag); v != "" {
		cfg.Derivation.Coin = v
	}
	if v := config.SanitizeNetwork(networkFlag); v != "" {
		cfg.Derivation.Network = v
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = config.LogLevelDebug.String()
	}
	if outputFormat != "" && outputFormat != string(output.FormatAuto) {
		cfg.Output.DefaultFormat = outputFormat
	}

	if err = cfg.Validate(); err != nil {
		return err
	}

	logger, err = config.NewLogger(config.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File)
	if err != nil {
		// Use null logger if we can't create the file
		logger = config.NullLogger()
	}
	logger.Debug("keytree %s: command %q", formatVersion(buildInfo), cmd.CommandPath())

	formatter = output.NewFormatter(output.ParseFormat(cfg.Output.DefaultFormat), cmd.OutOrStdout())
	SetCmdContext(cmd, NewCommandContext(cfg, logger, formatter))

	return nil
}

// cleanup releases resources.
func cleanup() {
	if logger != nil {
		if snap := metrics.Global.Snapshot(); snap.DerivationsTotal > 0 {
			logger.Debug("derivations=%d errors=%d addresses=%d avg=%.3fms",
				snap.DerivationsTotal, snap.DerivationErrors, snap.AddressesTotal, metrics.Global.DerivationLatencyAvgMs())
		}
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupKeys, Title: "Mnemonics & Keys:"},
		&cobra.Group{ID: groupDerive, Title: "Derivation:"},
		&cobra.Group{ID: groupConfig, Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID(groupConfig)

	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "keytree data directory (default: ~/.keytree)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&coinFlag, "coin", "", "coin symbol, e.g. BTC, ETH, SOL (default from config)")
	rootCmd.PersistentFlags().StringVar(&networkFlag, "network", "", "network: mainnet or testnet (default from config)")
}
