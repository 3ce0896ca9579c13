// Package path models BIP44-style derivation paths
// (m/purpose'/coin_type'/account'/chain/index) and arbitrary BIP32 paths.
package path

import (
	"strconv"
	"strings"

	"github.com/mrz1836/keytree/internal/coin"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// HardenedOffset is added to an index to mark it hardened.
const HardenedOffset uint32 = 0x80000000

// MaxDepth is the deepest path a BIP32 key can carry.
const MaxDepth = 255

// Purpose is the first path level.
type Purpose uint32

// Recognized purposes.
const (
	BIP44 Purpose = 44 // legacy P2PKH
	BIP49 Purpose = 49 // P2SH-wrapped segwit
	BIP84 Purpose = 84 // native segwit
	BIP86 Purpose = 86 // taproot
)

// IsValid returns true if p is a recognized purpose.
func (p Purpose) IsValid() bool {
	switch p {
	case BIP44, BIP49, BIP84, BIP86:
		return true
	default:
		return false
	}
}

func (p Purpose) String() string {
	return "BIP" + strconv.FormatUint(uint64(p), 10)
}

// Chain selects the receiving or change branch.
type Chain uint32

// Chains.
const (
	External Chain = 0
	Change   Chain = 1
)

// IsValid returns true if c is a known chain code.
func (c Chain) IsValid() bool {
	return c == External || c == Change
}

func (c Chain) String() string {
	switch c {
	case External:
		return "external"
	case Change:
		return "change"
	default:
		return "chain(" + strconv.FormatUint(uint64(c), 10) + ")"
	}
}

// Path is a parsed m/purpose'/coin_type'/account'/chain[/index] path.
// Purpose, coin type and account are always hardened; chain and index
// are hardened only when the coin policy requires it.
type Path struct {
	Purpose  Purpose
	Coin     coin.Policy
	CoinType uint32
	Account  uint32
	Chain    Chain
	Index    *uint32
}

// New builds a path without an index for policy on net.
func New(purpose Purpose, policy coin.Policy, net coin.Network, account uint32, chain Chain) (Path, error) {
	if !purpose.IsValid() {
		return Path{}, kterr.Newf(kterr.ErrInvalidDerivationPath, "unrecognized purpose %d", purpose)
	}
	if account >= HardenedOffset {
		return Path{}, kterr.Newf(kterr.ErrInvalidDerivationPath, "account %d out of range", account)
	}
	if !chain.IsValid() {
		return Path{}, kterr.Newf(kterr.ErrInvalidDerivationPath, "unknown chain code %d", chain)
	}
	return Path{
		Purpose:  purpose,
		Coin:     policy,
		CoinType: policy.CoinTypeFor(net),
		Account:  account,
		Chain:    chain,
	}, nil
}

// WithIndex returns a copy of p ending at index i.
func (p Path) WithIndex(i uint32) Path {
	p.Index = &i
	return p
}

// String returns the canonical form, e.g. m/84'/0'/0'/0/5.
func (p Path) String() string {
	return FormatSegments(p.Segments())
}

// Segments returns the path as BIP32 child numbers from the master key.
func (p Path) Segments() []Segment {
	segs := []Segment{
		{Index: uint32(p.Purpose), Hardened: true},
		{Index: p.CoinType, Hardened: true},
		{Index: p.Account, Hardened: true},
		{Index: uint32(p.Chain), Hardened: p.Coin.AlwaysHardened},
	}
	if p.Index != nil {
		segs = append(segs, Segment{Index: *p.Index, Hardened: p.Coin.AlwaysHardened})
	}
	return segs
}

// AccountSegments returns the hardened purpose'/coin'/account' prefix.
func (p Path) AccountSegments() []Segment {
	return p.Segments()[:3]
}

// Parse parses a BIP44-style path, resolving the coin type against reg.
// A nil reg uses the built-in coin policies.
func Parse(s string, reg *coin.Registry) (Path, error) {
	if reg == nil {
		reg = coin.Default()
	}

	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 5 && len(parts) != 6 {
		return Path{}, invalid(s, "expected 4 or 5 levels after m, got %d", len(parts)-1)
	}
	if parts[0] != "m" {
		return Path{}, invalid(s, "path must start with m")
	}

	segs := make([]Segment, len(parts)-1)
	for i, part := range parts[1:] {
		seg, err := parseSegment(part)
		if err != nil {
			return Path{}, invalid(s, "level %d: %v", i+1, err)
		}
		segs[i] = seg
	}

	for i, name := range []string{"purpose", "coin type", "account"} {
		if !segs[i].Hardened {
			return Path{}, invalid(s, "%s must be hardened", name)
		}
	}

	p := Path{
		Purpose:  Purpose(segs[0].Index),
		CoinType: segs[1].Index,
		Account:  segs[2].Index,
		Chain:    Chain(segs[3].Index),
	}
	if !p.Purpose.IsValid() {
		return Path{}, invalid(s, "unrecognized purpose %d", segs[0].Index)
	}

	policy, ok := reg.ByCoinType(p.CoinType)
	if !ok {
		return Path{}, invalid(s, "unknown coin type %d", p.CoinType)
	}
	p.Coin = policy

	if !p.Chain.IsValid() {
		return Path{}, invalid(s, "unknown chain code %d", segs[3].Index)
	}

	for _, seg := range segs[3:] {
		if seg.Hardened != policy.AlwaysHardened {
			if policy.AlwaysHardened {
				return Path{}, invalid(s, "%s requires hardened chain and index", policy.Symbol)
			}
			return Path{}, invalid(s, "%s does not allow hardened chain or index", policy.Symbol)
		}
	}

	if len(segs) == 5 {
		idx := segs[4].Index
		p.Index = &idx
	}
	return p, nil
}

func invalid(s, format string, args ...any) error {
	return kterr.WithDetails(
		kterr.Newf(kterr.ErrInvalidDerivationPath, format, args...),
		map[string]string{"path": s},
	)
}
