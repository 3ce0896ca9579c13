package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/keytree/internal/address"
	"github.com/mrz1836/keytree/internal/path"
)

// pathCmd is the parent command for path operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var pathCmd = &cobra.Command{
	Use:     "path",
	Short:   "Work with derivation paths",
	Long:    `Parse and explain BIP44-style derivation paths.`,
	GroupID: groupDerive,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var pathParseCmd = &cobra.Command{
	Use:   "parse <path>",
	Short: "Parse a derivation path",
	Long: `Parse m/purpose'/coin_type'/account'/chain[/index] and print its parts.

The coin is looked up by coin type among the built-in and configured coins.
Both ' and h mark a hardened level. The chain and index must be hardened
exactly when the coin requires it.`,
	Example: `  keytree path parse "m/84'/0'/0'/0/5"
  keytree path parse "m/44h/501h/0h/0h" -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runPathParse,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(pathCmd)
	pathCmd.AddCommand(pathParseCmd)

	enrichParentLong(pathCmd)
}

// pathResult is the output of path parse.
type pathResult struct {
	Path          string   `json:"path"`
	Purpose       uint32   `json:"purpose"`
	Coin          string   `json:"coin"`
	Curve         string   `json:"curve"`
	CoinType      uint32   `json:"coin_type"`
	Account       uint32   `json:"account"`
	Chain         string   `json:"chain"`
	Index         *uint32  `json:"index,omitempty"`
	AddressFormat string   `json:"address_format,omitempty"`
	Children      []uint32 `json:"children"`
}

// TextFields implements output.TextFields.
func (r pathResult) TextFields() [][2]string {
	index := "-"
	if r.Index != nil {
		index = strconv.FormatUint(uint64(*r.Index), 10)
	}
	children := make([]string, len(r.Children))
	for i, c := range r.Children {
		children[i] = "0x" + strconv.FormatUint(uint64(c), 16)
	}
	fields := [][2]string{
		{"Path", r.Path},
		{"Purpose", strconv.FormatUint(uint64(r.Purpose), 10)},
		{"Coin", r.Coin},
		{"Curve", r.Curve},
		{"Coin Type", strconv.FormatUint(uint64(r.CoinType), 10)},
		{"Account", strconv.FormatUint(uint64(r.Account), 10)},
		{"Chain", r.Chain},
		{"Index", index},
	}
	if r.AddressFormat != "" {
		fields = append(fields, [2]string{"Address Format", r.AddressFormat})
	}
	return append(fields, [2]string{"Children", strings.Join(children, " ")})
}

func runPathParse(cmd *cobra.Command, args []string) error {
	cc := GetCmdContext(cmd)
	reg, err := cc.Cfg.Registry()
	if err != nil {
		return err
	}

	p, err := path.Parse(args[0], reg)
	if err != nil {
		return err
	}

	segs := p.Segments()
	children := make([]uint32, len(segs))
	for i, s := range segs {
		children[i] = s.Child()
	}

	r := pathResult{
		Path:     p.String(),
		Purpose:  uint32(p.Purpose),
		Coin:     p.Coin.Symbol,
		Curve:    string(p.Coin.Curve),
		CoinType: p.CoinType,
		Account:  p.Account,
		Chain:    p.Chain.String(),
		Index:    p.Index,
		Children: children,
	}
	if kind, kindErr := address.KindFor(p.Coin, p.Purpose); kindErr == nil {
		r.AddressFormat = string(kind)
	}
	return cc.Fmt.Print(r)
}
