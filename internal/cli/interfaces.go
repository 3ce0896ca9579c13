package cli

import (
	"github.com/mrz1836/keytree/internal/coin"
	"github.com/mrz1836/keytree/internal/config"
	"github.com/mrz1836/keytree/internal/output"
	"github.com/mrz1836/keytree/internal/path"
	"github.com/mrz1836/keytree/internal/wallet"
)

// Compile-time interface checks.
var (
	_ ConfigProvider = (*config.Config)(nil)
	_ LogWriter      = (*config.Logger)(nil)
	_ FormatProvider = (*output.Formatter)(nil)
	_ wallet.Logger  = LogWriter(nil)
)

// ConfigProvider provides read access to configuration values.
// This interface enables mocking configuration in tests.
type ConfigProvider interface {
	// GetHome returns the keytree home directory path.
	GetHome() string

	// GetCoin returns the default coin symbol.
	GetCoin() string

	// GetAccount returns the default account index.
	GetAccount() uint32

	// IsPassphrasePrompt reports whether every seed command asks for a
	// BIP39 passphrase.
	IsPassphrasePrompt() bool

	// Registry returns the coin policies known to the configuration.
	Registry() (*coin.Registry, error)

	// Network returns the configured network with overrides applied.
	Network() (coin.Network, error)

	// Purpose returns the default path purpose.
	Purpose() path.Purpose
}

// LogWriter provides logging capabilities.
// This interface enables mocking logging in tests.
type LogWriter interface {
	// Debug logs a debug-level message.
	Debug(format string, args ...any)

	// Error logs an error-level message.
	Error(format string, args ...any)
}

// FormatProvider provides output formatting.
// This interface enables mocking output formatting in tests.
type FormatProvider interface {
	// Format returns the current output format.
	Format() output.Format

	// Print writes v in the current format.
	Print(v any) error
}
