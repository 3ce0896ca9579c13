package cli

import (
	"encoding/hex"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/keytree/internal/address"
	"github.com/mrz1836/keytree/internal/coin"
	"github.com/mrz1836/keytree/internal/hdkey"
	"github.com/mrz1836/keytree/internal/path"
	"github.com/mrz1836/keytree/internal/securemem"
	"github.com/mrz1836/keytree/internal/wallet"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// showPrivate includes private material in derive output.
	showPrivate bool
	// rawPath derives an arbitrary child sequence without BIP44 checks.
	rawPath bool
)

// deriveCmd derives the key at a path.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var deriveCmd = &cobra.Command{
	Use:   "derive <path>",
	Short: "Derive the key at a path",
	Long: `Derive the key at a BIP44-style path from a mnemonic.

The coin is taken from the path's coin type, so m/44'/60'/0'/0/0 derives an
Ethereum key whatever --coin says. Hardened markers must match the coin:
Solana paths are hardened at every level.

With --raw the path may be any child sequence below m and is derived on the
curve of --coin, without coin or address checks.

Private keys are printed only with --private.`,
	Example: `  keytree derive "m/84'/0'/0'/0/5" --mnemonic-file phrase.txt
  keytree derive "m/44'/501'/0'/0'" --mnemonic-file phrase.txt -o json
  keytree derive "m/0'/1/2'" --raw --private --mnemonic-file phrase.txt`,
	GroupID: groupDerive,
	Args:    cobra.ExactArgs(1),
	RunE:    runDerive,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(deriveCmd)

	addSeedFlags(deriveCmd)
	deriveCmd.Flags().BoolVar(&showPrivate, "private", false, "include the private key and xprv in the output")
	deriveCmd.Flags().BoolVar(&rawPath, "raw", false, "derive any child sequence without BIP44 structure checks")
}

// keyResult is the output of derive.
type keyResult struct {
	Path              string `json:"path"`
	Coin              string `json:"coin,omitempty"`
	Curve             string `json:"curve"`
	Depth             uint8  `json:"depth"`
	Fingerprint       string `json:"fingerprint"`
	ParentFingerprint string `json:"parent_fingerprint,omitempty"`
	PublicKey         string `json:"public_key"`
	Address           string `json:"address,omitempty"`
	Xpub              string `json:"xpub,omitempty"`
	Xprv              string `json:"xprv,omitempty"`
	PrivateKey        string `json:"private_key,omitempty"`
}

// TextFields implements output.TextFields.
func (r keyResult) TextFields() [][2]string {
	fields := [][2]string{
		{"Path", r.Path},
	}
	if r.Coin != "" {
		fields = append(fields, [2]string{"Coin", r.Coin})
	}
	fields = append(fields,
		[2]string{"Curve", r.Curve},
		[2]string{"Depth", strconv.Itoa(int(r.Depth))},
		[2]string{"Fingerprint", r.Fingerprint},
	)
	if r.ParentFingerprint != "" {
		fields = append(fields, [2]string{"Parent Fingerprint", r.ParentFingerprint})
	}
	fields = append(fields, [2]string{"Public Key", r.PublicKey})
	for _, kv := range [][2]string{
		{"Address", r.Address},
		{"Xpub", r.Xpub},
		{"Xprv", r.Xprv},
		{"Private Key", r.PrivateKey},
	} {
		if kv[1] != "" {
			fields = append(fields, kv)
		}
	}
	return fields
}

func runDerive(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	sel, err := selectCoin(cc.Cfg)
	if err != nil {
		return err
	}

	if rawPath {
		segs, err := path.ParseSegments(args[0])
		if err != nil {
			return err
		}
		w, err := openWallet(cmd, cc, sel.policy, sel.network, purposeFor(cc.Cfg, sel.policy))
		if err != nil {
			return err
		}
		defer w.Destroy()

		k, err := w.DeriveSegments(segs)
		if err != nil {
			return err
		}
		defer k.Zero()

		return cc.Fmt.Print(newKeyResult(path.FormatSegments(segs), k, sel.network))
	}

	p, err := path.Parse(args[0], sel.registry)
	if err != nil {
		return err
	}

	w, err := openWallet(cmd, cc, p.Coin, sel.network, p.Purpose)
	if err != nil {
		return err
	}
	defer w.Destroy()

	k, err := w.KeyAt(p)
	if err != nil {
		return err
	}
	defer k.Zero()

	result := newKeyResult(p.String(), k, sel.network)
	result.Coin = p.Coin.Symbol
	if kind, kindErr := address.KindFor(p.Coin, p.Purpose); kindErr == nil {
		if addr, fmtErr := address.Format(kind, k.PublicKey(), sel.network); fmtErr == nil {
			result.Address = addr
		}
	}
	return cc.Fmt.Print(result)
}

func newKeyResult(display string, k wallet.Key, net coin.Network) keyResult {
	r := keyResult{
		Path:        display,
		Curve:       string(k.Curve()),
		Depth:       k.Depth(),
		Fingerprint: hex.EncodeToString(fingerprintBytes(k.Fingerprint())),
		PublicKey:   hex.EncodeToString(k.PublicKey()),
	}

	if ext, ok := k.Extended(); ok {
		defer ext.Zero()
		if ext.Depth > 0 {
			r.ParentFingerprint = hex.EncodeToString(fingerprintBytes(ext.ParentFingerprint))
		}
		r.Xpub = ext.Public(hdkey.Version(net.PublicVersion)).String()
		if showPrivate {
			r.Xprv = ext.String()
		}
	}
	if ed, ok := k.Ed25519(); ok {
		defer ed.Zero()
		if ed.Depth > 0 {
			r.ParentFingerprint = hex.EncodeToString(fingerprintBytes(ed.ParentFingerprint))
		}
	}

	if showPrivate {
		priv := k.PrivateKey()
		r.PrivateKey = hex.EncodeToString(priv)
		securemem.Zero(priv)
	}
	return r
}

func fingerprintBytes(fp hdkey.Fingerprint) []byte {
	return fp[:]
}
