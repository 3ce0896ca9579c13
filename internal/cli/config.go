package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/keytree/internal/config"
	"github.com/mrz1836/keytree/internal/output"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage configuration",
	Long:    `View and modify keytree configuration settings.`,
	GroupID: groupConfig,
}

// configInitCmd initializes the configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.keytree/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.`,
	Example: `  keytree config init
  keytree config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// configShowCmd shows the current configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after environment and flag overrides.`,
	Example: `  keytree config show
  keytree config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// configGetCmd gets a specific configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value by its key.

The key uses dot notation to navigate the configuration tree.`,
	Example: `  keytree config get derivation.coin
  keytree config get networks.testnet.bech32_hrp
  keytree config get logging.level`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd sets a configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value by its key.

The key uses dot notation to navigate the configuration tree. The change is
checked before the configuration file is written.`,
	Example: `  keytree config set derivation.coin ETH
  keytree config set derivation.purpose 86
  keytree config set networks.testnet.bech32_hrp bcrt`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")

	enrichParentLong(configCmd)
}

// configKey reads and writes one scalar configuration value.
type configKey struct {
	get func(c *config.Config) string
	set func(c *config.Config, value string) error
}

//nolint:gochecknoglobals // read-only key table
var configKeys = map[string]configKey{
	"home": {
		get: func(c *config.Config) string { return c.Home },
		set: func(c *config.Config, v string) error { c.Home = v; return nil },
	},
	"derivation.coin": {
		get: func(c *config.Config) string { return c.Derivation.Coin },
		set: func(c *config.Config, v string) error { c.Derivation.Coin = config.SanitizeSymbol(v); return nil },
	},
	"derivation.network": {
		get: func(c *config.Config) string { return c.Derivation.Network },
		set: func(c *config.Config, v string) error { c.Derivation.Network = config.SanitizeNetwork(v); return nil },
	},
	"derivation.purpose": {
		get: func(c *config.Config) string { return strconv.FormatUint(uint64(c.Derivation.Purpose), 10) },
		set: func(c *config.Config, v string) error { return setUint32(&c.Derivation.Purpose, v) },
	},
	"derivation.account": {
		get: func(c *config.Config) string { return strconv.FormatUint(uint64(c.Derivation.Account), 10) },
		set: func(c *config.Config, v string) error { return setUint32(&c.Derivation.Account, v) },
	},
	"derivation.passphrase_prompt": {
		get: func(c *config.Config) string { return strconv.FormatBool(c.Derivation.PassphrasePrompt) },
		set: func(c *config.Config, v string) error { return setBool(&c.Derivation.PassphrasePrompt, v) },
	},
	"networks.mainnet.bech32_hrp": {
		get: func(c *config.Config) string { return c.Networks.Mainnet.Bech32HRP },
		set: func(c *config.Config, v string) error { c.Networks.Mainnet.Bech32HRP = v; return nil },
	},
	"networks.mainnet.private_version": {
		get: func(c *config.Config) string { return c.Networks.Mainnet.PrivateVersion },
		set: func(c *config.Config, v string) error { c.Networks.Mainnet.PrivateVersion = v; return nil },
	},
	"networks.mainnet.public_version": {
		get: func(c *config.Config) string { return c.Networks.Mainnet.PublicVersion },
		set: func(c *config.Config, v string) error { c.Networks.Mainnet.PublicVersion = v; return nil },
	},
	"networks.testnet.bech32_hrp": {
		get: func(c *config.Config) string { return c.Networks.Testnet.Bech32HRP },
		set: func(c *config.Config, v string) error { c.Networks.Testnet.Bech32HRP = v; return nil },
	},
	"networks.testnet.private_version": {
		get: func(c *config.Config) string { return c.Networks.Testnet.PrivateVersion },
		set: func(c *config.Config, v string) error { c.Networks.Testnet.PrivateVersion = v; return nil },
	},
	"networks.testnet.public_version": {
		get: func(c *config.Config) string { return c.Networks.Testnet.PublicVersion },
		set: func(c *config.Config, v string) error { c.Networks.Testnet.PublicVersion = v; return nil },
	},
	"output.default_format": {
		get: func(c *config.Config) string { return c.Output.DefaultFormat },
		set: func(c *config.Config, v string) error { c.Output.DefaultFormat = v; return nil },
	},
	"output.color": {
		get: func(c *config.Config) string { return c.Output.Color },
		set: func(c *config.Config, v string) error { c.Output.Color = v; return nil },
	},
	"output.verbose": {
		get: func(c *config.Config) string { return strconv.FormatBool(c.Output.Verbose) },
		set: func(c *config.Config, v string) error { return setBool(&c.Output.Verbose, v) },
	},
	"logging.level": {
		get: func(c *config.Config) string { return c.Logging.Level },
		set: func(c *config.Config, v string) error { c.Logging.Level = v; return nil },
	},
	"logging.file": {
		get: func(c *config.Config) string { return c.Logging.File },
		set: func(c *config.Config, v string) error { c.Logging.File = v; return nil },
	},
}

func setUint32(dst *uint32, v string) error {
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return kterr.Newf(kterr.ErrInvalidInput, "%q is not a non-negative integer", v)
	}
	*dst = uint32(n)
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return kterr.Newf(kterr.ErrInvalidInput, "%q is not true or false", v)
	}
	*dst = b
	return nil
}

func lookupConfigKey(key string) (configKey, error) {
	k, ok := configKeys[key]
	if !ok {
		return configKey{}, kterr.WithSuggestion(
			kterr.WithDetails(kterr.ErrUnknownConfigKey, map[string]string{"key": key}),
			"valid keys: "+strings.Join(configKeyNames(), ", "),
		)
	}
	return k, nil
}

func configKeyNames() []string {
	names := make([]string, 0, len(configKeys))
	for name := range configKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	home := GetCmdContext(cmd).Cfg.GetHome()
	configPath := config.Path(home)

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return kterr.WithSuggestion(
			kterr.ErrGeneral,
			fmt.Sprintf("configuration already exists at %s. Use --force to overwrite.", configPath),
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = home
	defaultCfg.Logging.File = filepath.Join(home, "keytree.log")

	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - derivation.coin / network / purpose: defaults for derive, address and xpub")
	outln(w, "  - coins: extra coin policies or overrides of the built-in ones")
	outln(w, "  - networks: Bech32 HRP and extended key version overrides")
	outln(w, "  - logging.level: Log level (off/error/debug)")

	return nil
}

// configView is the output of config show.
type configView struct {
	*config.Config

	ConfigFile string `json:"config_file"`
}

// TextFields implements output.TextFields.
func (v configView) TextFields() [][2]string {
	fields := [][2]string{{"config_file", v.ConfigFile}}
	for _, name := range configKeyNames() {
		value := configKeys[name].get(v.Config)
		if value == "" {
			value = "(not set)"
		}
		fields = append(fields, [2]string{name, value})
	}
	for _, c := range v.Coins {
		fields = append(fields, [2]string{"coins." + c.Symbol, fmt.Sprintf("%s coin_type=%d test_coin_type=%d", c.Curve, c.CoinType, c.TestCoinType)})
	}
	return fields
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	return GetCmdContext(cmd).Fmt.Print(configView{Config: cfg, ConfigFile: config.Path(cfg.Home)})
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	k, err := lookupConfigKey(args[0])
	if err != nil {
		return err
	}

	value := k.get(cfg)
	if f := GetCmdContext(cmd).Fmt; f.Format() == output.FormatJSON {
		return f.Print(map[string]string{args[0]: value})
	}
	outln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	k, err := lookupConfigKey(key)
	if err != nil {
		return err
	}

	cc := GetCmdContext(cmd)
	home := cc.Cfg.GetHome()
	configPath := config.Path(home)
	current, err := config.Load(configPath)
	if err != nil {
		if !kterr.Is(err, kterr.ErrConfigNotFound) {
			return err
		}
		current = config.Defaults()
		current.Home = home
		current.Logging.File = filepath.Join(home, "keytree.log")
	}

	if err = k.set(current, value); err != nil {
		return err
	}
	if err = current.Validate(); err != nil {
		return err
	}

	if err = config.Save(current, configPath); err != nil {
		cc.Log.Error("saving %s: %v", configPath, err)
		return fmt.Errorf("saving config: %w", err)
	}
	cc.Log.Debug("config %s set", key)

	output.Infof(cmd.OutOrStdout(), "Set %s = %s", key, k.get(current))
	return nil
}
