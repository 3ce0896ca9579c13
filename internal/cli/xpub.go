package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/keytree/internal/path"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var xpubAccount int64

// xpubCmd exports an account extended public key.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var xpubCmd = &cobra.Command{
	Use:   "xpub",
	Short: "Export an account extended public key",
	Long: `Export the extended public key of purpose'/coin'/account'.

An account xpub lets a watch-only wallet derive every receive and change
address of the account without the mnemonic. It reveals the whole address
history of the account, so share it with care.

ed25519 coins such as Solana have no public derivation and no xpub.`,
	Example: `  keytree xpub --mnemonic-file phrase.txt
  keytree xpub --mnemonic-file phrase.txt --purpose 86 --account 2
  keytree xpub --network testnet --mnemonic-file phrase.txt -o json`,
	GroupID: groupDerive,
	Args:    cobra.NoArgs,
	RunE:    runXpub,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(xpubCmd)

	addSeedFlags(xpubCmd)
	addPurposeFlag(xpubCmd)
	xpubCmd.Flags().Int64Var(&xpubAccount, "account", -1, "account number (default from config)")
}

// xpubResult is the output of xpub.
type xpubResult struct {
	Coin    string `json:"coin"`
	Network string `json:"network"`
	Path    string `json:"path"`
	Xpub    string `json:"xpub"`
}

// TextFields implements output.TextFields.
func (r xpubResult) TextFields() [][2]string {
	return [][2]string{
		{"Coin", r.Coin},
		{"Network", r.Network},
		{"Path", r.Path},
		{"Xpub", r.Xpub},
	}
}

func runXpub(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)
	sel, err := selectCoin(cc.Cfg)
	if err != nil {
		return err
	}

	account := cc.Cfg.GetAccount()
	if xpubAccount >= 0 {
		if xpubAccount >= int64(path.HardenedOffset) {
			return kterr.Newf(kterr.ErrInvalidDerivationPath, "account %d out of range", xpubAccount)
		}
		account = uint32(xpubAccount)
	}

	purpose := purposeFor(cc.Cfg, sel.policy)
	p, err := path.New(purpose, sel.policy, sel.network, account, path.External)
	if err != nil {
		return err
	}

	w, err := openWallet(cmd, cc, sel.policy, sel.network, purpose)
	if err != nil {
		return err
	}
	defer w.Destroy()

	xpub, err := w.AccountXpub(account)
	if err != nil {
		return err
	}

	return cc.Fmt.Print(xpubResult{
		Coin:    sel.policy.Symbol,
		Network: sel.network.Name,
		Path:    path.FormatSegments(p.AccountSegments()),
		Xpub:    xpub,
	})
}
