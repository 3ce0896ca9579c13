package wallet

import (
	"github.com/mrz1836/keytree/internal/address"
	"github.com/mrz1836/keytree/internal/coin"
	"github.com/mrz1836/keytree/internal/hdkey"
	"github.com/mrz1836/keytree/internal/path"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

const accountDepth = 3

// ErrXpubIsPrivate is returned when an xprv is provided where an xpub is expected.
var ErrXpubIsPrivate = &kterr.KeytreeError{
	Code:       "XPUB_IS_PRIVATE",
	Message:    "extended key is private",
	Suggestion: "expected an extended public key but got a private one; share only the xpub",
	Cause:      kterr.ErrInvalidInput,
	ExitCode:   kterr.ExitInput,
}

// AddressFromXpub derives the address at chain/index below an account
// xpub, without access to the seed. The xpub must be an account-level
// key (depth 3, hardened child) serialized for network.
func AddressFromXpub(xpub string, policy coin.Policy, network coin.Network, purpose path.Purpose, chain path.Chain, index uint32) (*Address, error) {
	if policy.AlwaysHardened {
		return nil, kterr.WithDetails(kterr.ErrHardenedFromPublic, map[string]string{"coin": policy.Symbol})
	}

	kind, err := address.KindFor(policy, purpose)
	if err != nil {
		return nil, err
	}

	parsed, err := hdkey.Parse(address.SanitizeBase58(xpub), versionsFor(network))
	if err != nil {
		return nil, err
	}
	acct, ok := parsed.(hdkey.ExtendedPublicKey)
	if !ok {
		if priv, isPriv := parsed.(hdkey.ExtendedPrivateKey); isPriv {
			priv.Zero()
		}
		return nil, ErrXpubIsPrivate
	}
	if acct.Depth != accountDepth || acct.ChildIndex < hdkey.HardenedOffset {
		return nil, kterr.Newf(kterr.ErrInvalidInput, "expected an account key at depth %d, got depth %d", accountDepth, acct.Depth)
	}

	p, err := path.New(purpose, policy, network, acct.ChildIndex-hdkey.HardenedOffset, chain)
	if err != nil {
		return nil, err
	}
	p = p.WithIndex(index)

	child, err := hdkey.DerivePublicPath(acct, p.Segments()[accountDepth:])
	if err != nil {
		return nil, err
	}

	return formatAddress(kind, child.PublicKeyBytes(), p, network)
}
