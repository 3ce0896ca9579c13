// Package config provides configuration management for keytree.
package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/keytree/internal/coin"
	"github.com/mrz1836/keytree/internal/fileutil"
	"github.com/mrz1836/keytree/internal/path"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Home       string           `yaml:"home" json:"home"`
	Derivation DerivationConfig `yaml:"derivation" json:"derivation"`
	Coins      []CoinConfig     `yaml:"coins,omitempty" json:"coins,omitempty"`
	Networks   NetworksConfig   `yaml:"networks" json:"networks"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// DerivationConfig holds the defaults used when a command does not name
// them explicitly.
type DerivationConfig struct {
	Coin             string `yaml:"coin" json:"coin"`
	Network          string `yaml:"network" json:"network"`
	Purpose          uint32 `yaml:"purpose" json:"purpose"`
	Account          uint32 `yaml:"account" json:"account"`
	PassphrasePrompt bool   `yaml:"passphrase_prompt" json:"passphrase_prompt"`
}

// CoinConfig adds a coin policy or overrides a built-in one by symbol.
type CoinConfig struct {
	Symbol         string `yaml:"symbol" json:"symbol"`
	Name           string `yaml:"name" json:"name"`
	Curve          string `yaml:"curve" json:"curve"`
	CoinType       uint32 `yaml:"coin_type" json:"coin_type"`
	TestCoinType   uint32 `yaml:"test_coin_type" json:"test_coin_type"`
	AlwaysHardened bool   `yaml:"always_hardened" json:"always_hardened"`
	Address        string `yaml:"address,omitempty" json:"address,omitempty"`
}

// NetworksConfig holds per-network overrides.
type NetworksConfig struct {
	Mainnet NetworkConfig `yaml:"mainnet" json:"mainnet"`
	Testnet NetworkConfig `yaml:"testnet" json:"testnet"`
}

// NetworkConfig overrides the parameters of a built-in network. Empty
// fields keep the built-in value. Versions are 8 hex characters.
type NetworkConfig struct {
	Bech32HRP      string `yaml:"bech32_hrp,omitempty" json:"bech32_hrp,omitempty"`
	PrivateVersion string `yaml:"private_version,omitempty" json:"private_version,omitempty"`
	PublicVersion  string `yaml:"public_version,omitempty" json:"public_version,omitempty"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"`
	Color         string `yaml:"color" json:"color"`
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Load reads configuration from the specified file, on top of Defaults.
func Load(file string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, kterr.WithDetails(kterr.ErrConfigNotFound, map[string]string{"path": file})
		}
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, invalid("parsing %s: %v", file, err)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, file string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(file, data, 0o600)
}

// Path returns the config file path inside home.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// DefaultHome returns the default keytree home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".keytree"
	}
	return filepath.Join(home, ".keytree")
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// GetHome returns the keytree home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetCoin returns the default coin symbol.
func (c *Config) GetCoin() string {
	return c.Derivation.Coin
}

// GetAccount returns the default account index.
func (c *Config) GetAccount() uint32 {
	return c.Derivation.Account
}

// IsPassphrasePrompt reports whether seed commands always ask for a
// BIP39 passphrase.
func (c *Config) IsPassphrasePrompt() bool {
	return c.Derivation.PassphrasePrompt
}

// Validate checks every section and returns the first problem found,
// as ErrConfigInvalid.
func (c *Config) Validate() error {
	switch c.Output.DefaultFormat {
	case "text", "json", "auto":
	default:
		return invalid("output.default_format must be text, json or auto, got %q", c.Output.DefaultFormat)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return invalid("output.color must be auto, always or never, got %q", c.Output.Color)
	}
	if !ValidLogLevel(c.Logging.Level) {
		return invalid("logging.level must be off, error or debug, got %q", c.Logging.Level)
	}
	if !path.Purpose(c.Derivation.Purpose).IsValid() {
		return invalid("derivation.purpose %d is not 44, 49, 84 or 86", c.Derivation.Purpose)
	}
	if c.Derivation.Account >= path.HardenedOffset {
		return invalid("derivation.account %d must be below 2^31", c.Derivation.Account)
	}

	reg, err := c.Registry()
	if err != nil {
		return err
	}
	if _, err := reg.BySymbol(c.Derivation.Coin); err != nil {
		return invalid("derivation.coin %q is not a known coin", c.Derivation.Coin)
	}
	if _, err := c.Network(); err != nil {
		return err
	}
	return nil
}

// Registry returns the built-in coin policies with the configured coins
// registered on top.
func (c *Config) Registry() (*coin.Registry, error) {
	reg := coin.Default().Clone()
	for i, cc := range c.Coins {
		p, err := cc.Policy()
		if err != nil {
			return nil, invalid("coins[%d]: %v", i, err)
		}
		if err := reg.Register(p); err != nil {
			return nil, invalid("coins[%d]: %v", i, err)
		}
	}
	return reg, nil
}

// Policy returns the policy of the configured default coin.
func (c *Config) Policy() (coin.Policy, error) {
	reg, err := c.Registry()
	if err != nil {
		return coin.Policy{}, err
	}
	return reg.BySymbol(c.Derivation.Coin)
}

// Network returns the configured network with its overrides applied.
func (c *Config) Network() (coin.Network, error) {
	name := strings.ToLower(strings.TrimSpace(c.Derivation.Network))
	net, err := coin.ParseNetwork(name)
	if err != nil {
		return coin.Network{}, invalid("derivation.network: %v", err)
	}

	override := c.Networks.Mainnet
	if net.IsTest {
		override = c.Networks.Testnet
	}
	return override.apply(net)
}

// Purpose returns the configured default path purpose.
func (c *Config) Purpose() path.Purpose {
	return path.Purpose(c.Derivation.Purpose)
}

// Policy converts the entry to a coin policy.
func (cc CoinConfig) Policy() (coin.Policy, error) {
	curve, err := coin.ParseCurve(cc.Curve)
	if err != nil {
		return coin.Policy{}, err
	}
	kind, err := coin.ParseAddressKind(cc.Address)
	if err != nil {
		return coin.Policy{}, err
	}
	p := coin.Policy{
		Name:           cc.Name,
		Symbol:         cc.Symbol,
		Curve:          curve,
		CoinType:       cc.CoinType,
		TestCoinType:   cc.TestCoinType,
		AlwaysHardened: cc.AlwaysHardened,
		Address:        kind,
	}
	return p, p.Validate()
}

func (nc NetworkConfig) apply(net coin.Network) (coin.Network, error) {
	var err error
	if nc.Bech32HRP != "" {
		if net, err = net.WithHRP(nc.Bech32HRP); err != nil {
			return coin.Network{}, invalid("networks.%s.bech32_hrp: %v", net.Name, err)
		}
	}
	if nc.PrivateVersion != "" {
		if net.PrivateVersion, err = parseVersion(nc.PrivateVersion); err != nil {
			return coin.Network{}, invalid("networks.%s.private_version: %v", net.Name, err)
		}
	}
	if nc.PublicVersion != "" {
		if net.PublicVersion, err = parseVersion(nc.PublicVersion); err != nil {
			return coin.Network{}, invalid("networks.%s.public_version: %v", net.Name, err)
		}
	}
	if net.PrivateVersion == net.PublicVersion {
		return coin.Network{}, invalid("networks.%s: private and public versions must differ", net.Name)
	}
	return net, nil
}

func parseVersion(s string) ([4]byte, error) {
	var v [4]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return v, err
	}
	if len(raw) != len(v) {
		return v, kterr.Newf(kterr.ErrInvalidInput, "expected 4 bytes, got %d", len(raw))
	}
	copy(v[:], raw)
	return v, nil
}

func invalid(format string, args ...any) error {
	return kterr.Newf(kterr.ErrConfigInvalid, format, args...)
}
