// Package coin describes per-coin derivation policy as plain data: curve,
// BIP44 coin types, hardening rules and preferred address format.
package coin

import (
	"strings"

	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Curve selects the signature curve and with it the master key label.
type Curve string

// Supported curves.
const (
	Secp256k1 Curve = "secp256k1"
	Ed25519   Curve = "ed25519"
)

// SeedLabel returns the HMAC key used to derive a master key from a seed.
func (c Curve) SeedLabel() string {
	switch c {
	case Secp256k1:
		return "Bitcoin seed"
	case Ed25519:
		return "ed25519 seed"
	default:
		return ""
	}
}

// IsValid returns true if the curve is known.
func (c Curve) IsValid() bool {
	return c.SeedLabel() != ""
}

// ParseCurve parses a curve name.
func ParseCurve(s string) (Curve, error) {
	c := Curve(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", kterr.Newf(kterr.ErrInvalidInput, "unknown curve %q", s)
	}
	return c, nil
}

// AddressKind names an address format.
type AddressKind string

// Address formats. An empty kind means the format follows the path purpose.
const (
	AddressByPurpose  AddressKind = ""
	AddressP2PKH      AddressKind = "p2pkh"
	AddressP2SHP2WPKH AddressKind = "p2sh-p2wpkh"
	AddressP2WPKH     AddressKind = "p2wpkh"
	AddressP2TR       AddressKind = "p2tr"
	AddressEthereum   AddressKind = "ethereum"
	AddressSolana     AddressKind = "solana"
)

// ParseAddressKind parses an address format name.
func ParseAddressKind(s string) (AddressKind, error) {
	k := AddressKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case AddressByPurpose, AddressP2PKH, AddressP2SHP2WPKH, AddressP2WPKH,
		AddressP2TR, AddressEthereum, AddressSolana:
		return k, nil
	default:
		return "", kterr.Newf(kterr.ErrInvalidInput, "unknown address kind %q", s)
	}
}

// Policy is the derivation policy of one coin.
type Policy struct {
	Name         string
	Symbol       string
	Curve        Curve
	CoinType     uint32
	TestCoinType uint32

	// AlwaysHardened makes chain and index segments hardened as well.
	AlwaysHardened bool

	Address AddressKind
}

// CoinTypeFor returns the BIP44 coin type to use on net.
func (p Policy) CoinTypeFor(net Network) uint32 {
	if net.IsTest {
		return p.TestCoinType
	}
	return p.CoinType
}

// Validate checks that the policy is usable.
func (p Policy) Validate() error {
	if strings.TrimSpace(p.Symbol) == "" {
		return kterr.Newf(kterr.ErrInvalidInput, "coin symbol is required")
	}
	if !p.Curve.IsValid() {
		return kterr.Newf(kterr.ErrInvalidInput, "coin %s: unknown curve %q", p.Symbol, p.Curve)
	}
	if p.CoinType >= 1<<31 || p.TestCoinType >= 1<<31 {
		return kterr.Newf(kterr.ErrInvalidInput, "coin %s: coin type must be below 2^31", p.Symbol)
	}
	if _, err := ParseAddressKind(string(p.Address)); err != nil {
		return kterr.Wrap(err, "coin %s", p.Symbol)
	}
	if p.Curve == Ed25519 && !p.AlwaysHardened {
		return kterr.Newf(kterr.ErrInvalidInput, "coin %s: ed25519 derivation requires always_hardened", p.Symbol)
	}
	return nil
}

// Built-in coin policies.
//
//nolint:gochecknoglobals // read-only policy table
var (
	BTC = Policy{
		Name:         "Bitcoin",
		Symbol:       "BTC",
		Curve:        Secp256k1,
		CoinType:     0,
		TestCoinType: 1,
	}

	ETH = Policy{
		Name:         "Ethereum",
		Symbol:       "ETH",
		Curve:        Secp256k1,
		CoinType:     60,
		TestCoinType: 60,
		Address:      AddressEthereum,
	}

	SOL = Policy{
		Name:           "Solana",
		Symbol:         "SOL",
		Curve:          Ed25519,
		CoinType:       501,
		TestCoinType:   501,
		AlwaysHardened: true,
		Address:        AddressSolana,
	}

	SEMUX = Policy{
		Name:           "Semux",
		Symbol:         "SEMUX",
		Curve:          Ed25519,
		CoinType:       7562605,
		TestCoinType:   7562605,
		AlwaysHardened: true,
	}
)

// Builtins returns the built-in policies in registration order.
func Builtins() []Policy {
	return []Policy{BTC, ETH, SOL, SEMUX}
}
