package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/keytree/internal/coin"
	"github.com/mrz1836/keytree/internal/path"
	"github.com/mrz1836/keytree/internal/wallet"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// mnemonicFile is a file holding the mnemonic.
	mnemonicFile string
	// askPassphrase prompts for a BIP39 passphrase.
	askPassphrase bool
	// skipChecksum accepts phrases with a bad BIP39 checksum.
	skipChecksum bool
	// purposeFlag overrides the configured purpose; 0 means not set.
	purposeFlag uint32
)

// addSeedFlags registers the flags of commands that need the mnemonic.
func addSeedFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&mnemonicFile, "mnemonic-file", "", "read the mnemonic from this file instead of stdin")
	cmd.Flags().BoolVar(&askPassphrase, "passphrase", false, "prompt for a BIP39 passphrase")
	cmd.Flags().BoolVar(&skipChecksum, "no-checksum", false, "accept a phrase whose BIP39 checksum does not match")
}

// addPurposeFlag registers --purpose on cmd.
func addPurposeFlag(cmd *cobra.Command) {
	cmd.Flags().Uint32Var(&purposeFlag, "purpose", 0, "path purpose: 44, 49, 84 or 86 (default from config)")
}

// selection is the coin, network and registry a command works with.
type selection struct {
	registry *coin.Registry
	policy   coin.Policy
	network  coin.Network
}

// selectCoin resolves the configured coin and network.
func selectCoin(c ConfigProvider) (selection, error) {
	reg, err := c.Registry()
	if err != nil {
		return selection{}, err
	}
	policy, err := reg.BySymbol(c.GetCoin())
	if err != nil {
		return selection{}, err
	}
	net, err := c.Network()
	if err != nil {
		return selection{}, err
	}
	return selection{registry: reg, policy: policy, network: net}, nil
}

// purposeFor picks the path purpose: --purpose, else BIP44 for coins with
// a fixed address format, else the configured purpose.
func purposeFor(c ConfigProvider, policy coin.Policy) path.Purpose {
	if purposeFlag != 0 {
		return path.Purpose(purposeFlag)
	}
	if policy.Address != coin.AddressByPurpose {
		return path.BIP44
	}
	return c.Purpose()
}

// openWallet reads the mnemonic and passphrase and builds a wallet. The
// caller must Destroy it.
func openWallet(cmd *cobra.Command, cc *CommandContext, policy coin.Policy, net coin.Network, purpose path.Purpose) (*wallet.Wallet, error) {
	phrase, err := readMnemonic(cmd)
	if err != nil {
		return nil, err
	}
	passphrase, err := readPassphrase(cc.Cfg)
	if err != nil {
		return nil, err
	}

	cc.Log.Debug("opening %s wallet on %s with purpose %s", policy.Symbol, net.Name, purpose)
	return wallet.FromMnemonic(phrase, passphrase, policy, net, wallet.Options{
		Purpose:        purpose,
		VerifyChecksum: !skipChecksum,
		Logger:         cc.Log,
	})
}
