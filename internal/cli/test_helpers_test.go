package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/keytree/internal/config"
)

const (
	abandonPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	chasePhrase   = "chase forward bone horn faith kitten steel bind mutual tide wreck novel priority card saddle"
)

// withMockPrompts replaces prompt functions for testing and restores on cleanup.
func withMockPrompts(t *testing.T, passphrase, phrase string) {
	t.Helper()
	origPassphrase := promptPassphraseFn
	origMnemonic := promptMnemonicFn
	t.Cleanup(func() {
		promptPassphraseFn = origPassphrase
		promptMnemonicFn = origMnemonic
	})
	promptPassphraseFn = func() (string, error) {
		return passphrase, nil
	}
	promptMnemonicFn = func() (string, error) {
		return phrase, nil
	}
}

// clearEnv blanks every environment override for the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		config.EnvHome, config.EnvCoin, config.EnvNetwork, config.EnvOutputFormat,
		config.EnvVerbose, config.EnvLogLevel, config.EnvBech32HRP, config.EnvNoColor,
	} {
		t.Setenv(name, "")
	}
}

// resetFlags restores every flag variable and global to its default.
// Cobra keeps parsed values between Execute calls.
func resetFlags() {
	homeDir, outputFormat, verbose, coinFlag, networkFlag = "", "auto", false, "", ""
	mnemonicFile, askPassphrase, skipChecksum, purposeFlag = "", false, false, 0
	generateWords = 24
	showPrivate, rawPath = false, false
	addressPath, addressAccount, addressChain, addressIndex, addressCount, addressXpub = "", -1, 0, 0, 1, ""
	xpubAccount = -1
	configForce = false
	cfg, logger, formatter = nil, nil, nil

	walkCommands(rootCmd, func(cmd *cobra.Command) {
		if f := cmd.Flags().Lookup("help"); f != nil {
			_ = f.Value.Set("false")
		}
	})
}

// execute runs the CLI with args against a fresh home directory and
// returns stdout and stderr.
func execute(t *testing.T, home, stdin string, args ...string) (string, string, error) {
	t.Helper()
	clearEnv(t)
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--home", home}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// run executes in a temporary home and fails the test on error.
func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	stdout, _, err := execute(t, t.TempDir(), stdin, args...)
	require.NoError(t, err)
	return stdout
}

// decode unmarshals JSON command output.
func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), "output: %s", out)
	return v
}
