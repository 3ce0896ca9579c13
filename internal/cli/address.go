package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/keytree/internal/output"
	"github.com/mrz1836/keytree/internal/path"
	"github.com/mrz1836/keytree/internal/wallet"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	addressPath    string
	addressAccount int64
	addressChain   uint32
	addressIndex   uint32
	addressCount   int
	addressXpub    string
)

// addressCmd derives addresses.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Derive addresses",
	Long: `Derive one or more receive or change addresses.

The address format follows the coin: Ethereum and Solana have one format
each, Bitcoin picks it from the path purpose (44 legacy, 49 nested segwit,
84 native segwit, 86 taproot).

With --xpub the addresses are derived from an account extended public key
instead of the mnemonic. This works for coins with public derivation only.`,
	Example: `  keytree address --mnemonic-file phrase.txt --index 0 --count 5
  keytree address --mnemonic-file phrase.txt --path "m/86'/0'/0'/0/0"
  keytree address --coin ETH --mnemonic-file phrase.txt --account 1
  keytree address --xpub xpub6C... --purpose 84 --chain 1 --count 10`,
	GroupID: groupDerive,
	Args:    cobra.NoArgs,
	RunE:    runAddress,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(addressCmd)

	addSeedFlags(addressCmd)
	addPurposeFlag(addressCmd)
	addressCmd.Flags().StringVar(&addressPath, "path", "", "full derivation path; overrides --account, --chain and --index")
	addressCmd.Flags().Int64Var(&addressAccount, "account", -1, "account number (default from config)")
	addressCmd.Flags().Uint32Var(&addressChain, "chain", 0, "chain: 0 for receive, 1 for change")
	addressCmd.Flags().Uint32Var(&addressIndex, "index", 0, "first address index")
	addressCmd.Flags().IntVar(&addressCount, "count", 1, "number of consecutive addresses")
	addressCmd.Flags().StringVar(&addressXpub, "xpub", "", "derive from this account xpub instead of the mnemonic")
}

// addressResult is a single derived address.
type addressResult struct {
	Coin      string `json:"coin"`
	Network   string `json:"network"`
	Path      string `json:"path"`
	Index     uint32 `json:"index"`
	Address   string `json:"address"`
	PublicKey string `json:"public_key"`
}

func newAddressResult(a wallet.Address, symbol, network string) addressResult {
	return addressResult{
		Coin:      symbol,
		Network:   network,
		Path:      a.Path,
		Index:     a.Index,
		Address:   a.Address,
		PublicKey: a.PublicKey,
	}
}

// TextFields implements output.TextFields.
func (r addressResult) TextFields() [][2]string {
	return [][2]string{
		{"Coin", r.Coin},
		{"Network", r.Network},
		{"Path", r.Path},
		{"Address", r.Address},
		{"Public Key", r.PublicKey},
	}
}

// addressList is the output of address --count N.
type addressList struct {
	Coin      string           `json:"coin"`
	Network   string           `json:"network"`
	Addresses []wallet.Address `json:"addresses"`
}

// String implements fmt.Stringer as a table.
func (l addressList) String() string {
	table := output.NewTable("INDEX", "PATH", "ADDRESS")
	for _, a := range l.Addresses {
		table.AddRow(strconv.FormatUint(uint64(a.Index), 10), a.Path, a.Address)
	}
	return strings.TrimSuffix(table.String(), "\n")
}

func runAddress(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	if addressCount < 1 || addressCount > wallet.MaxAddressDerivation {
		return wallet.ErrInvalidAddressCount
	}
	if addressPath != "" && addressCount != 1 {
		return kterr.WithSuggestion(kterr.ErrInvalidInput, "--count cannot be combined with --path")
	}

	sel, err := selectCoin(cc.Cfg)
	if err != nil {
		return err
	}

	account := cc.Cfg.GetAccount()
	if addressAccount >= 0 {
		if addressAccount >= int64(path.HardenedOffset) {
			return kterr.Newf(kterr.ErrInvalidDerivationPath, "account %d out of range", addressAccount)
		}
		account = uint32(addressAccount)
	}
	chain := path.Chain(addressChain)
	if !chain.IsValid() {
		return kterr.WithSuggestion(
			kterr.Newf(kterr.ErrInvalidDerivationPath, "unknown chain %d", addressChain),
			"use --chain 0 for receive addresses or --chain 1 for change",
		)
	}

	if addressXpub != "" {
		return printAddresses(cc, sel.policy.Symbol, sel.network.Name, func() ([]wallet.Address, error) {
			return addressesFromXpub(cc, sel, chain)
		})
	}

	if addressPath != "" {
		p, err := path.Parse(addressPath, sel.registry)
		if err != nil {
			return err
		}
		w, err := openWallet(cmd, cc, p.Coin, sel.network, p.Purpose)
		if err != nil {
			return err
		}
		defer w.Destroy()

		addr, err := w.AddressAt(p)
		if err != nil {
			return err
		}
		return cc.Fmt.Print(newAddressResult(*addr, p.Coin.Symbol, sel.network.Name))
	}

	w, err := openWallet(cmd, cc, sel.policy, sel.network, purposeFor(cc.Cfg, sel.policy))
	if err != nil {
		return err
	}
	defer w.Destroy()

	return printAddresses(cc, sel.policy.Symbol, sel.network.Name, func() ([]wallet.Address, error) {
		return w.Addresses(account, chain, addressIndex, addressCount)
	})
}

func addressesFromXpub(cc *CommandContext, sel selection, chain path.Chain) ([]wallet.Address, error) {
	if uint64(addressIndex)+uint64(addressCount) > uint64(path.HardenedOffset) {
		return nil, kterr.Newf(kterr.ErrInvalidDerivationPath, "index range %d+%d exceeds 2^31", addressIndex, addressCount)
	}

	purpose := purposeFor(cc.Cfg, sel.policy)
	addrs := make([]wallet.Address, 0, addressCount)
	for i := 0; i < addressCount; i++ {
		addr, err := wallet.AddressFromXpub(addressXpub, sel.policy, sel.network, purpose, chain, addressIndex+uint32(i))
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, *addr)
	}
	return addrs, nil
}

func printAddresses(cc *CommandContext, symbol, network string, derive func() ([]wallet.Address, error)) error {
	addrs, err := derive()
	if err != nil {
		return err
	}
	cc.Log.Debug("derived %d %s addresses", len(addrs), symbol)

	if len(addrs) == 1 {
		return cc.Fmt.Print(newAddressResult(addrs[0], symbol, network))
	}
	return cc.Fmt.Print(addressList{Coin: symbol, Network: network, Addresses: addrs})
}
