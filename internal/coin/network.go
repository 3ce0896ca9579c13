package coin

import (
	"strings"

	"github.com/mrz1836/keytree/internal/codec"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Network carries the per-network encoding constants: BIP32 version
// prefixes, address version bytes and the segwit human-readable part.
type Network struct {
	Name              string
	PrivateVersion    [4]byte
	PublicVersion     [4]byte
	PubKeyHashVersion byte
	ScriptHashVersion byte
	Bech32HRP         string
	IsTest            bool
}

// Built-in networks.
//
//nolint:gochecknoglobals // read-only network constants
var (
	Mainnet = Network{
		Name:              "mainnet",
		PrivateVersion:    [4]byte{0x04, 0x88, 0xAD, 0xE4},
		PublicVersion:     [4]byte{0x04, 0x88, 0xB2, 0x1E},
		PubKeyHashVersion: 0x00,
		ScriptHashVersion: 0x05,
		Bech32HRP:         "bc",
	}

	Testnet = Network{
		Name:              "testnet",
		PrivateVersion:    [4]byte{0x04, 0x35, 0x83, 0x94},
		PublicVersion:     [4]byte{0x04, 0x35, 0x87, 0xCF},
		PubKeyHashVersion: 0x6F,
		ScriptHashVersion: 0xC4,
		Bech32HRP:         "tb",
		IsTest:            true,
	}
)

// WithHRP returns a copy of n using hrp, lowercased, for segwit addresses.
func (n Network) WithHRP(hrp string) (Network, error) {
	if !codec.ValidHRP(hrp) {
		return n, kterr.Newf(kterr.ErrInvalidInput, "invalid bech32 prefix %q", hrp)
	}
	n.Bech32HRP = strings.ToLower(hrp)
	return n, nil
}

// ParseNetwork returns the built-in network with the given name.
func ParseNetwork(name string) (Network, error) {
	switch name {
	case "mainnet", "main", "":
		return Mainnet, nil
	case "testnet", "test":
		return Testnet, nil
	default:
		return Network{}, kterr.Newf(kterr.ErrInvalidInput, "unknown network %q", name)
	}
}
