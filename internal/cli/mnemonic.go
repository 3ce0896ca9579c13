package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/keytree/internal/mnemonic"
	"github.com/mrz1836/keytree/internal/output"
	"github.com/mrz1836/keytree/internal/securemem"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// generateWords is the number of words for mnemonic generation.
	generateWords int
)

// mnemonicCmd is the parent command for mnemonic operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mnemonicCmd = &cobra.Command{
	Use:     "mnemonic",
	Short:   "Generate and check BIP39 mnemonics",
	Long:    `Generate BIP39 mnemonics, check them, and convert between phrases, entropy and seeds.`,
	GroupID: groupKeys,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mnemonicGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new mnemonic",
	Long: `Generate a new BIP39 mnemonic from the operating system's random source.

Valid word counts are 12, 15, 18, 21 and 24. Write the phrase down and keep
it offline; anyone holding it controls every key derived from it.`,
	Example: `  keytree mnemonic generate
  keytree mnemonic generate --words 12 -o json`,
	Args: cobra.NoArgs,
	RunE: runMnemonicGenerate,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mnemonicValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a mnemonic",
	Long: `Check the word count, the wordlist membership of every word and the
BIP39 checksum of a mnemonic read from stdin, --mnemonic-file or a prompt.

Misspelled words are reported with the closest wordlist entry.`,
	Example: `  echo "abandon ... about" | keytree mnemonic validate
  keytree mnemonic validate --mnemonic-file phrase.txt`,
	Args: cobra.NoArgs,
	RunE: runMnemonicValidate,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mnemonicEntropyCmd = &cobra.Command{
	Use:   "entropy",
	Short: "Recover the entropy of a mnemonic",
	Long:  `Print the entropy encoded by a mnemonic as hex.`,
	Example: `  keytree mnemonic entropy --mnemonic-file phrase.txt
  echo "legal winner ... yellow" | keytree mnemonic entropy`,
	Args: cobra.NoArgs,
	RunE: runMnemonicEntropy,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mnemonicFromEntropyCmd = &cobra.Command{
	Use:   "from-entropy <hex>",
	Short: "Encode entropy as a mnemonic",
	Long:  `Encode 16 to 32 bytes of hex entropy, in 4-byte steps, as a BIP39 mnemonic.`,
	Example: `  keytree mnemonic from-entropy 00000000000000000000000000000000
  keytree mnemonic from-entropy 7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runMnemonicFromEntropy,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mnemonicSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Derive the BIP39 seed of a mnemonic",
	Long: `Derive the 64-byte BIP39 seed of a mnemonic and optional passphrase.

The seed is the root of every key in the tree. Treat it like the mnemonic.`,
	Example: `  keytree mnemonic seed --mnemonic-file phrase.txt
  keytree mnemonic seed --mnemonic-file phrase.txt --passphrase`,
	Args: cobra.NoArgs,
	RunE: runMnemonicSeed,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(mnemonicCmd)
	mnemonicCmd.AddCommand(mnemonicGenerateCmd)
	mnemonicCmd.AddCommand(mnemonicValidateCmd)
	mnemonicCmd.AddCommand(mnemonicEntropyCmd)
	mnemonicCmd.AddCommand(mnemonicFromEntropyCmd)
	mnemonicCmd.AddCommand(mnemonicSeedCmd)

	mnemonicGenerateCmd.Flags().IntVar(&generateWords, "words", 24, "number of words: 12, 15, 18, 21 or 24")

	mnemonicValidateCmd.Flags().StringVar(&mnemonicFile, "mnemonic-file", "", "read the mnemonic from this file instead of stdin")

	mnemonicEntropyCmd.Flags().StringVar(&mnemonicFile, "mnemonic-file", "", "read the mnemonic from this file instead of stdin")
	mnemonicEntropyCmd.Flags().BoolVar(&skipChecksum, "no-checksum", false, "accept a phrase whose BIP39 checksum does not match")

	addSeedFlags(mnemonicSeedCmd)

	enrichParentLong(mnemonicCmd)
}

// phraseResult is the output of commands that produce a mnemonic.
type phraseResult struct {
	Mnemonic string `json:"mnemonic"`
	Words    int    `json:"words"`
	Entropy  string `json:"entropy,omitempty"`
}

// String implements fmt.Stringer; text mode prints the bare phrase.
func (r phraseResult) String() string {
	return r.Mnemonic
}

// validateResult is the output of mnemonic validate.
type validateResult struct {
	Valid bool `json:"valid"`
	Words int  `json:"words"`
}

// String implements fmt.Stringer.
func (r validateResult) String() string {
	return fmt.Sprintf("valid mnemonic (%d words)", r.Words)
}

// entropyResult is the output of mnemonic entropy.
type entropyResult struct {
	Entropy string `json:"entropy"`
	Bits    int    `json:"bits"`
}

// String implements fmt.Stringer.
func (r entropyResult) String() string {
	return r.Entropy
}

// seedResult is the output of mnemonic seed.
type seedResult struct {
	Seed string `json:"seed"`
}

// String implements fmt.Stringer.
func (r seedResult) String() string {
	return r.Seed
}

func runMnemonicGenerate(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	bits, err := mnemonic.BitsForWords(generateWords)
	if err != nil {
		return kterr.WithSuggestion(err, "use --words 12, 15, 18, 21 or 24")
	}

	words, err := mnemonic.Generate(bits, nil)
	if err != nil {
		return err
	}
	cc.Log.Debug("generated %d-word mnemonic", len(words))

	if cc.Fmt.Format() != output.FormatJSON && output.IsTerminal(cmd.OutOrStdout()) {
		output.Warnf(cmd.ErrOrStderr(), "write these words down and keep them offline")
	}
	return cc.Fmt.Print(phraseResult{Mnemonic: mnemonic.Join(words), Words: len(words)})
}

func runMnemonicValidate(cmd *cobra.Command, _ []string) error {
	phrase, err := readMnemonic(cmd)
	if err != nil {
		return err
	}

	if err = mnemonic.Validate(phrase, nil); err != nil {
		return withTypoHint(err, phrase)
	}
	return GetCmdContext(cmd).Fmt.Print(validateResult{Valid: true, Words: len(mnemonic.Split(phrase))})
}

func runMnemonicEntropy(cmd *cobra.Command, _ []string) error {
	phrase, err := readMnemonic(cmd)
	if err != nil {
		return err
	}

	words := mnemonic.Split(phrase)
	var entropy []byte
	if skipChecksum {
		entropy, err = mnemonic.WordsToEntropy(words, nil)
	} else {
		entropy, err = mnemonic.WordsToEntropyChecked(words, nil)
	}
	if err != nil {
		return withTypoHint(err, phrase)
	}
	defer securemem.Zero(entropy)

	return GetCmdContext(cmd).Fmt.Print(entropyResult{Entropy: hex.EncodeToString(entropy), Bits: len(entropy) * 8})
}

func runMnemonicFromEntropy(cmd *cobra.Command, args []string) error {
	entropy, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(args[0]), "0x"))
	if err != nil {
		return kterr.WithSuggestion(
			kterr.Newf(kterr.ErrInvalidInput, "entropy is not hex: %v", err),
			"pass 32 to 64 hex characters",
		)
	}
	defer securemem.Zero(entropy)

	words, err := mnemonic.EntropyToWords(entropy, nil)
	if err != nil {
		return err
	}
	return GetCmdContext(cmd).Fmt.Print(phraseResult{
		Mnemonic: mnemonic.Join(words),
		Words:    len(words),
		Entropy:  hex.EncodeToString(entropy),
	})
}

func runMnemonicSeed(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	phrase, err := readMnemonic(cmd)
	if err != nil {
		return err
	}
	if !skipChecksum {
		if err = mnemonic.Validate(phrase, nil); err != nil {
			return withTypoHint(err, phrase)
		}
	}

	passphrase, err := readPassphrase(cc.Cfg)
	if err != nil {
		return err
	}

	seed, err := mnemonic.PhraseToSeed(phrase, passphrase, nil)
	if err != nil {
		return withTypoHint(err, phrase)
	}
	defer seed.Destroy()

	return cc.Fmt.Print(seedResult{Seed: hex.EncodeToString(seed.Bytes())})
}

// withTypoHint attaches closest-word suggestions for unknown words.
func withTypoHint(err error, phrase string) error {
	typos := mnemonic.DetectTypos(phrase, nil)
	if len(typos) == 0 {
		return err
	}
	return kterr.WithSuggestion(err, mnemonic.FormatTypoSuggestions(typos))
}
