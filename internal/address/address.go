// Package address formats public keys as addresses. Each format is a
// Formatter strategy parameterized by the network; no format knows about
// derivation.
package address

import (
	"github.com/mrz1836/keytree/internal/coin"
	"github.com/mrz1836/keytree/internal/path"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Kind names an address format.
type Kind = coin.AddressKind

// Address formats.
const (
	KindP2PKH      = coin.AddressP2PKH
	KindP2SHP2WPKH = coin.AddressP2SHP2WPKH
	KindP2WPKH     = coin.AddressP2WPKH
	KindP2TR       = coin.AddressP2TR
	KindEthereum   = coin.AddressEthereum
	KindSolana     = coin.AddressSolana
)

// Formatter renders a public key as an address on a network.
type Formatter func(pub []byte, net coin.Network) (string, error)

// FormatterFor returns the strategy for kind.
func FormatterFor(kind Kind) (Formatter, error) {
	switch kind {
	case KindP2PKH:
		return P2PKH, nil
	case KindP2SHP2WPKH:
		return P2SHP2WPKH, nil
	case KindP2WPKH:
		return P2WPKH, nil
	case KindP2TR:
		return P2TR, nil
	case KindEthereum:
		return func(pub []byte, _ coin.Network) (string, error) { return Ethereum(pub) }, nil
	case KindSolana:
		return func(pub []byte, _ coin.Network) (string, error) { return Solana(pub) }, nil
	default:
		return nil, kterr.WithDetails(kterr.ErrUnsupportedAddress, map[string]string{"kind": string(kind)})
	}
}

// Format renders pub in the given format.
func Format(kind Kind, pub []byte, net coin.Network) (string, error) {
	f, err := FormatterFor(kind)
	if err != nil {
		return "", err
	}
	return f(pub, net)
}

// KindForPurpose returns the Bitcoin address format conventionally paired
// with a path purpose.
func KindForPurpose(p path.Purpose) (Kind, error) {
	switch p {
	case path.BIP44:
		return KindP2PKH, nil
	case path.BIP49:
		return KindP2SHP2WPKH, nil
	case path.BIP84:
		return KindP2WPKH, nil
	case path.BIP86:
		return KindP2TR, nil
	default:
		return "", kterr.WithDetails(kterr.ErrUnsupportedAddress, map[string]string{"purpose": p.String()})
	}
}

// KindFor resolves the format for a coin policy and purpose: the policy's
// fixed format if it has one, otherwise the purpose's.
func KindFor(policy coin.Policy, p path.Purpose) (Kind, error) {
	if policy.Address != coin.AddressByPurpose {
		return policy.Address, nil
	}
	if policy.Curve != coin.Secp256k1 {
		return "", kterr.WithDetails(kterr.ErrUnsupportedAddress, map[string]string{"coin": policy.Symbol})
	}
	return KindForPurpose(p)
}
