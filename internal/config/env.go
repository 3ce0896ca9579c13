package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/go-sanitize"

	"github.com/mrz1836/keytree/internal/codec"
)

// Environment variable names.
const (
	EnvHome         = "KEYTREE_HOME"
	EnvCoin         = "KEYTREE_COIN"
	EnvNetwork      = "KEYTREE_NETWORK"
	EnvOutputFormat = "KEYTREE_OUTPUT_FORMAT"
	EnvVerbose      = "KEYTREE_VERBOSE"
	EnvLogLevel     = "KEYTREE_LOG_LEVEL"
	EnvBech32HRP    = "KEYTREE_BECH32_HRP"
	EnvNoColor      = "NO_COLOR"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
// Values that fail basic checks are ignored.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := SanitizeSymbol(os.Getenv(EnvCoin)); v != "" {
		cfg.Derivation.Coin = v
	}

	if v := SanitizeNetwork(os.Getenv(EnvNetwork)); v != "" {
		cfg.Derivation.Network = v
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// The prefix applies to whichever network is selected at this point
	if v := SanitizeHRP(os.Getenv(EnvBech32HRP)); v != "" {
		if strings.HasPrefix(cfg.Derivation.Network, "test") {
			cfg.Networks.Testnet.Bech32HRP = v
		} else {
			cfg.Networks.Mainnet.Bech32HRP = v
		}
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeSymbol keeps only the ASCII letters and digits of a coin
// symbol and uppercases it. Pasted values often carry quotes or
// invisible characters.
func SanitizeSymbol(s string) string {
	return strings.ToUpper(sanitize.AlphaNumeric(s, false))
}

// SanitizeNetwork keeps only the ASCII letters and digits of a network
// name and lowercases it.
func SanitizeNetwork(s string) string {
	return strings.ToLower(sanitize.AlphaNumeric(s, false))
}

// SanitizeHRP trims and lowercases a Bech32 prefix. It returns "" when
// the result is not a valid prefix.
func SanitizeHRP(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || !codec.ValidHRP(s) {
		return ""
	}
	return s
}
