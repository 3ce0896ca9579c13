package config

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.keytree",
		Derivation: DerivationConfig{
			Coin:             "BTC",
			Network:          "mainnet",
			Purpose:          84,
			Account:          0,
			PassphrasePrompt: false,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.keytree/keytree.log",
		},
	}
}
