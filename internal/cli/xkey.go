package cli

import (
	"encoding/hex"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/keytree/internal/address"
	"github.com/mrz1836/keytree/internal/coin"
	"github.com/mrz1836/keytree/internal/hdkey"
	"github.com/mrz1836/keytree/internal/path"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// xkeyCmd is the parent command for extended key operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var xkeyCmd = &cobra.Command{
	Use:     "xkey",
	Short:   "Inspect extended keys",
	Long:    `Decode and check BIP32 extended keys (xprv, xpub, tprv, tpub).`,
	GroupID: groupKeys,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var xkeyInspectCmd = &cobra.Command{
	Use:   "inspect <xkey>",
	Short: "Decode an extended key",
	Long: `Decode a Base58Check extended key and print its fields.

The checksum, version bytes, key material and depth rules are all checked.
Keys of both the configured network and the built-in networks are accepted.
The private key of an xprv is never printed.`,
	Example: `  keytree xkey inspect xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8NqtwybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMcet8
  keytree xkey inspect tpubD6NzVbkrYhZ4... -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runXkeyInspect,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(xkeyCmd)
	xkeyCmd.AddCommand(xkeyInspectCmd)

	enrichParentLong(xkeyCmd)
}

// xkeyResult is the output of xkey inspect.
type xkeyResult struct {
	Type              string `json:"type"`
	Network           string `json:"network"`
	Version           string `json:"version"`
	Depth             uint8  `json:"depth"`
	ParentFingerprint string `json:"parent_fingerprint"`
	ChildNumber       string `json:"child_number"`
	ChainCode         string `json:"chain_code"`
	PublicKey         string `json:"public_key"`
	Fingerprint       string `json:"fingerprint"`
	Xpub              string `json:"xpub,omitempty"`
}

// TextFields implements output.TextFields.
func (r xkeyResult) TextFields() [][2]string {
	fields := [][2]string{
		{"Type", r.Type},
		{"Network", r.Network},
		{"Version", r.Version},
		{"Depth", strconv.Itoa(int(r.Depth))},
		{"Parent Fingerprint", r.ParentFingerprint},
		{"Child Number", r.ChildNumber},
		{"Chain Code", r.ChainCode},
		{"Public Key", r.PublicKey},
		{"Fingerprint", r.Fingerprint},
	}
	if r.Xpub != "" {
		fields = append(fields, [2]string{"Xpub", r.Xpub})
	}
	return fields
}

func runXkeyInspect(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	networks, err := inspectNetworks(cc.Cfg)
	if err != nil {
		return err
	}
	versions := make([]hdkey.Versions, 0, len(networks))
	for _, n := range networks {
		versions = append(versions, hdkey.Versions{
			Private: hdkey.Version(n.PrivateVersion),
			Public:  hdkey.Version(n.PublicVersion),
		})
	}

	parsed, err := hdkey.Parse(address.SanitizeBase58(args[0]), versions...)
	if err != nil {
		return kterr.WithSuggestion(err, "check that the key was copied completely")
	}

	var r xkeyResult
	switch k := parsed.(type) {
	case hdkey.ExtendedPrivateKey:
		defer k.Zero()
		net := networkForVersion(networks, k.Version)
		r = newXkeyResult("private", net.Name, k.Version, k.Depth, k.ParentFingerprint, k.ChildIndex, k.ChainCode[:], k.PublicKeyBytes(), k.Fingerprint())
		r.Xpub = k.Public(hdkey.Version(net.PublicVersion)).String()
	case hdkey.ExtendedPublicKey:
		net := networkForVersion(networks, k.Version)
		r = newXkeyResult("public", net.Name, k.Version, k.Depth, k.ParentFingerprint, k.ChildIndex, k.ChainCode[:], k.PublicKeyBytes(), k.Fingerprint())
	default:
		return kterr.Newf(kterr.ErrMalformedSerialization, "unexpected key type %T", parsed)
	}

	return cc.Fmt.Print(r)
}

func newXkeyResult(kind, network string, v hdkey.Version, depth uint8, parent hdkey.Fingerprint, child uint32, chainCode, pub []byte, fp hdkey.Fingerprint) xkeyResult {
	return xkeyResult{
		Type:              kind,
		Network:           network,
		Version:           hex.EncodeToString(v[:]),
		Depth:             depth,
		ParentFingerprint: hex.EncodeToString(parent[:]),
		ChildNumber:       path.SegmentFromChild(child).String(),
		ChainCode:         hex.EncodeToString(chainCode),
		PublicKey:         hex.EncodeToString(pub),
		Fingerprint:       hex.EncodeToString(fp[:]),
	}
}

// inspectNetworks lists the configured network first, then the built-in
// ones it does not shadow.
func inspectNetworks(c ConfigProvider) ([]coin.Network, error) {
	configured, err := c.Network()
	if err != nil {
		return nil, err
	}

	networks := []coin.Network{configured}
	for _, n := range []coin.Network{coin.Mainnet, coin.Testnet} {
		if n.PrivateVersion == configured.PrivateVersion || n.PublicVersion == configured.PublicVersion {
			continue
		}
		networks = append(networks, n)
	}
	return networks, nil
}

func networkForVersion(networks []coin.Network, v hdkey.Version) coin.Network {
	for _, n := range networks {
		if hdkey.Version(n.PrivateVersion) == v || hdkey.Version(n.PublicVersion) == v {
			return n
		}
	}
	return coin.Network{Name: "unknown"}
}
