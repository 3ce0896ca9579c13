package cli

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrz1836/keytree/internal/config"
	"github.com/mrz1836/keytree/internal/mnemonic"
	"github.com/mrz1836/keytree/internal/output"
	"github.com/mrz1836/keytree/internal/securemem"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// maxMnemonicInput bounds what is read from stdin or a mnemonic file.
const maxMnemonicInput = 4096

// Prompt functions are variables so tests can replace them.
//
//nolint:gochecknoglobals // swappable for tests
var (
	promptSecretFn     = promptSecret
	promptPassphraseFn = promptPassphrase
	promptMnemonicFn   = promptMnemonic
)

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}

// promptSecret prompts on stderr and reads a line without echo.
// The caller is responsible for zeroing the returned bytes after use.
func promptSecret(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	secret, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return secret, nil
}

// promptPassphrase prompts twice for the BIP39 passphrase. An empty
// passphrase is returned without confirmation.
func promptPassphrase() (string, error) {
	outln(os.Stderr, "BIP39 passphrase (leave empty for none).")
	outln(os.Stderr, "A different passphrase yields a different key tree.")

	passphrase, err := promptSecretFn("Enter passphrase: ")
	if err != nil {
		return "", err
	}
	defer securemem.Zero(passphrase)

	if len(passphrase) == 0 {
		return "", nil
	}

	confirm, err := promptSecretFn("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	defer securemem.Zero(confirm)

	if string(passphrase) != string(confirm) {
		return "", kterr.WithSuggestion(kterr.ErrInvalidInput, "passphrases do not match")
	}

	return string(passphrase), nil
}

// promptMnemonic reads the mnemonic from the terminal without echo.
func promptMnemonic() (string, error) {
	phrase, err := promptSecretFn("Enter mnemonic (all words on one line): ")
	if err != nil {
		return "", err
	}
	defer securemem.Zero(phrase)
	return string(phrase), nil
}

// readMnemonic returns the mnemonic from --mnemonic-file, piped stdin or
// an interactive prompt, in that order.
func readMnemonic(cmd *cobra.Command) (string, error) {
	if mnemonicFile != "" {
		return readMnemonicFile(config.ExpandHome(mnemonicFile))
	}

	in := cmd.InOrStdin()
	if output.IsTerminal(in) {
		return promptMnemonicFn()
	}
	return readMnemonicFrom(in)
}

func readMnemonicFile(file string) (string, error) {
	// #nosec G304 -- path is supplied by the user on the command line
	f, err := os.Open(file)
	if err != nil {
		return "", kterr.WithDetails(
			kterr.WithSuggestion(kterr.ErrInvalidInput, "check the --mnemonic-file path"),
			map[string]string{"file": file},
		)
	}
	defer func() { _ = f.Close() }()

	return readMnemonicFrom(f)
}

// readMnemonicFrom reads all of r as one phrase. Line breaks, list
// numbering and bullets are normalized away.
func readMnemonicFrom(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxMnemonicInput))
	if err != nil {
		return "", fmt.Errorf("reading mnemonic: %w", err)
	}
	defer securemem.Zero(data)

	phrase := mnemonic.Normalize(string(data))
	if phrase == "" {
		return "", kterr.WithSuggestion(kterr.ErrInvalidInput, "no mnemonic provided; pipe it on stdin or use --mnemonic-file")
	}
	return phrase, nil
}

// readPassphrase prompts for the passphrase when asked to on the command
// line or in the config.
func readPassphrase(c ConfigProvider) (string, error) {
	if !askPassphrase && !c.IsPassphrasePrompt() {
		return "", nil
	}
	return promptPassphraseFn()
}
