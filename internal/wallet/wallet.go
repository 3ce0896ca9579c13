// Package wallet ties the mnemonic, derivation and address packages together
// behind a small facade: one seed, one coin policy, one network.
//
// A Wallet holds the seed and master key until Destroy is called. Nothing
// derived below the master is cached.
package wallet

import (
	"encoding/hex"
	"sync"
	"time"

	"github.com/mrz1836/keytree/internal/address"
	"github.com/mrz1836/keytree/internal/coin"
	"github.com/mrz1836/keytree/internal/hdkey"
	"github.com/mrz1836/keytree/internal/metrics"
	"github.com/mrz1836/keytree/internal/mnemonic"
	"github.com/mrz1836/keytree/internal/path"
	"github.com/mrz1836/keytree/internal/securemem"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// MaxAddressDerivation bounds the number of addresses a single call to
// Addresses will derive.
const MaxAddressDerivation = 100000

var (
	// ErrDestroyed is returned by every method after Destroy.
	ErrDestroyed = &kterr.KeytreeError{
		Code:     "WALLET_DESTROYED",
		Message:  "wallet has been destroyed",
		Cause:    kterr.ErrInvalidInput,
		ExitCode: kterr.ExitInput,
	}

	// ErrInvalidAddressCount indicates a bad count for Addresses.
	ErrInvalidAddressCount = &kterr.KeytreeError{
		Code:       "INVALID_ADDRESS_COUNT",
		Message:    "invalid address count",
		Suggestion: "address count must be between 1 and 100000",
		Cause:      kterr.ErrInvalidInput,
		ExitCode:   kterr.ExitInput,
	}
)

// Logger receives debug messages about derivation steps. Secrets are
// never passed to it. *config.Logger satisfies it.
type Logger interface {
	Debug(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Options tunes how a Wallet is built.
type Options struct {
	// Purpose is the path purpose used by Key and Address. Zero means BIP44.
	Purpose path.Purpose

	// Wordlist defaults to English.
	Wordlist *mnemonic.Wordlist

	// VerifyChecksum rejects phrases whose BIP39 checksum does not match.
	// Seed derivation itself only needs known words.
	VerifyChecksum bool

	// Deriver supplies the secp256k1 arithmetic. Nil means hdkey.Default().
	Deriver *hdkey.Deriver

	Logger Logger
}

// Address represents a derived address.
type Address struct {
	// Path is the derivation path used.
	Path string `json:"path"`

	// Index is the address index within the chain.
	Index uint32 `json:"index"`

	// Address is the formatted address string.
	Address string `json:"address"`

	// PublicKey is the public key in hex format.
	PublicKey string `json:"public_key"`
}

// Wallet derives keys and addresses for one coin on one network.
type Wallet struct {
	policy  coin.Policy
	network coin.Network
	purpose path.Purpose
	deriver *hdkey.Deriver
	log     Logger

	mu        sync.RWMutex
	seed      *securemem.SecureBytes
	master    hdkey.ExtendedPrivateKey
	edMaster  hdkey.Ed25519Key
	destroyed bool
}

// FromMnemonic builds a wallet from a phrase and optional passphrase.
func FromMnemonic(phrase, passphrase string, policy coin.Policy, network coin.Network, opts Options) (*Wallet, error) {
	if opts.VerifyChecksum {
		if err := mnemonic.Validate(phrase, opts.Wordlist); err != nil {
			return nil, err
		}
	}

	seed, err := mnemonic.PhraseToSeed(phrase, passphrase, opts.Wordlist)
	if err != nil {
		return nil, err
	}

	w, err := newWallet(seed, policy, network, opts)
	if err != nil {
		seed.Destroy()
		return nil, err
	}
	return w, nil
}

// FromSeed builds a wallet from a raw 16 to 64 byte seed. The seed is
// copied; the caller keeps ownership of its slice.
func FromSeed(seed []byte, policy coin.Policy, network coin.Network, opts Options) (*Wallet, error) {
	sb, err := securemem.FromSlice(seed)
	if err != nil {
		return nil, err
	}

	w, err := newWallet(sb, policy, network, opts)
	if err != nil {
		sb.Destroy()
		return nil, err
	}
	return w, nil
}

func newWallet(seed *securemem.SecureBytes, policy coin.Policy, network coin.Network, opts Options) (*Wallet, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	w := &Wallet{
		policy:  policy,
		network: network,
		purpose: opts.Purpose,
		deriver: opts.Deriver,
		log:     opts.Logger,
		seed:    seed,
	}
	if w.purpose == 0 {
		w.purpose = path.BIP44
	}
	if !w.purpose.IsValid() {
		return nil, kterr.Newf(kterr.ErrInvalidDerivationPath, "unrecognized purpose %d", w.purpose)
	}
	if w.deriver == nil {
		w.deriver = hdkey.Default()
	}
	if w.log == nil {
		w.log = nopLogger{}
	}

	var err error
	switch policy.Curve {
	case coin.Ed25519:
		w.edMaster, err = hdkey.Ed25519MasterKey(seed.Bytes())
	default:
		w.master, _, err = w.deriver.MasterKeyFromSeed(seed.Bytes(), policy.Curve.SeedLabel(), versionsFor(network))
	}
	if err != nil {
		return nil, err
	}

	w.log.Debug("wallet ready: coin=%s curve=%s network=%s purpose=%s", policy.Symbol, policy.Curve, network.Name, w.purpose)
	return w, nil
}

// Policy returns the coin policy.
func (w *Wallet) Policy() coin.Policy {
	return w.policy
}

// Network returns the network parameters.
func (w *Wallet) Network() coin.Network {
	return w.network
}

// Purpose returns the path purpose used by Key and Address.
func (w *Wallet) Purpose() path.Purpose {
	return w.purpose
}

// Path builds the wallet's path for account and chain, ending at index
// when it is non-nil.
func (w *Wallet) Path(account uint32, chain path.Chain, index *uint32) (path.Path, error) {
	p, err := path.New(w.purpose, w.policy, w.network, account, chain)
	if err != nil {
		return path.Path{}, err
	}
	if index != nil {
		if *index >= path.HardenedOffset {
			return path.Path{}, kterr.Newf(kterr.ErrInvalidDerivationPath, "index %d out of range", *index)
		}
		p = p.WithIndex(*index)
	}
	return p, nil
}

// Key derives the key at purpose'/coin'/account'/chain[/index]. The
// caller should Zero the result when done.
func (w *Wallet) Key(account uint32, chain path.Chain, index *uint32) (Key, error) {
	p, err := w.Path(account, chain, index)
	if err != nil {
		return Key{}, err
	}
	return w.KeyAt(p)
}

// KeyAt derives the key at a parsed path. The path's curve must match the
// wallet's coin policy.
func (w *Wallet) KeyAt(p path.Path) (Key, error) {
	if p.Coin.Curve != w.policy.Curve {
		return Key{}, kterr.WithDetails(
			kterr.Newf(kterr.ErrInvalidDerivationPath, "path curve %s does not match wallet curve %s", p.Coin.Curve, w.policy.Curve),
			map[string]string{"path": p.String()},
		)
	}

	segs := p.Segments()
	k, err := w.derive(segs)
	if err != nil {
		return Key{}, err
	}
	k.Path = p
	return k, nil
}

// DeriveSegments derives the key at an arbitrary child sequence from the
// master key, without BIP44 structure checks.
func (w *Wallet) DeriveSegments(segs []path.Segment) (Key, error) {
	return w.derive(segs)
}

func (w *Wallet) derive(segs []path.Segment) (Key, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.destroyed {
		return Key{}, ErrDestroyed
	}

	display := path.FormatSegments(segs)
	w.log.Debug("deriving %s", display)

	start := time.Now()
	k, err := w.deriveLocked(segs)
	metrics.Global.RecordDerivation(w.policy.Curve, time.Since(start), err)
	if err != nil {
		w.log.Debug("derivation of %s failed: %v", display, err)
		return Key{}, err
	}
	return k, nil
}

func (w *Wallet) deriveLocked(segs []path.Segment) (Key, error) {
	if w.policy.Curve == coin.Ed25519 {
		ek, err := w.edMaster.DerivePath(segs)
		if err != nil {
			return Key{}, err
		}
		return Key{curve: coin.Ed25519, ed: ek}, nil
	}

	xk, err := w.deriver.DerivePath(w.master, segs)
	if err != nil {
		return Key{}, err
	}
	return Key{curve: coin.Secp256k1, ext: xk}, nil
}

// Address derives the address at purpose'/coin'/account'/chain/index.
func (w *Wallet) Address(account uint32, chain path.Chain, index uint32) (*Address, error) {
	p, err := w.Path(account, chain, &index)
	if err != nil {
		return nil, err
	}
	return w.AddressAt(p)
}

// AddressAt derives the address at a parsed path. A path without an index
// formats the chain-level key, as some ed25519 wallets do.
func (w *Wallet) AddressAt(p path.Path) (*Address, error) {
	kind, err := address.KindFor(w.policy, p.Purpose)
	if err != nil {
		return nil, err
	}

	k, err := w.KeyAt(p)
	if err != nil {
		return nil, err
	}
	defer k.Zero()

	return formatAddress(kind, k.PublicKey(), p, w.network)
}

// Addresses derives count consecutive addresses starting at index start.
func (w *Wallet) Addresses(account uint32, chain path.Chain, start uint32, count int) ([]Address, error) {
	if count < 1 || count > MaxAddressDerivation {
		return nil, ErrInvalidAddressCount
	}
	if uint64(start)+uint64(count) > uint64(path.HardenedOffset) {
		return nil, kterr.Newf(kterr.ErrInvalidDerivationPath, "index range %d+%d exceeds 2^31", start, count)
	}

	out := make([]Address, 0, count)
	for i := 0; i < count; i++ {
		addr, err := w.Address(account, chain, start+uint32(i))
		if err != nil {
			return nil, err
		}
		out = append(out, *addr)
	}
	return out, nil
}

// AccountXpub returns the serialized extended public key of
// purpose'/coin'/account'. ed25519 has no public derivation and returns
// an error.
func (w *Wallet) AccountXpub(account uint32) (string, error) {
	if w.policy.Curve != coin.Secp256k1 {
		return "", kterr.WithSuggestion(
			kterr.Newf(kterr.ErrUnsupportedCoin, "%s uses %s which has no extended public keys", w.policy.Symbol, w.policy.Curve),
			"derive each address from the mnemonic instead",
		)
	}

	p, err := path.New(w.purpose, w.policy, w.network, account, path.External)
	if err != nil {
		return "", err
	}

	k, err := w.derive(p.AccountSegments())
	if err != nil {
		return "", err
	}
	defer k.Zero()

	return k.ext.Public(hdkey.Version(w.network.PublicVersion)).String(), nil
}

// Destroy wipes the seed and master key. The wallet cannot be used after.
func (w *Wallet) Destroy() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.destroyed {
		return
	}
	w.destroyed = true
	if w.seed != nil {
		w.seed.Destroy()
	}
	w.master.Zero()
	w.edMaster.Zero()
}

func versionsFor(n coin.Network) hdkey.Versions {
	return hdkey.Versions{
		Private: hdkey.Version(n.PrivateVersion),
		Public:  hdkey.Version(n.PublicVersion),
	}
}

func formatAddress(kind address.Kind, pub []byte, p path.Path, net coin.Network) (*Address, error) {
	addr, err := address.Format(kind, pub, net)
	metrics.Global.RecordAddress(err)
	if err != nil {
		return nil, err
	}

	var index uint32
	if p.Index != nil {
		index = *p.Index
	}
	return &Address{
		Path:      p.String(),
		Index:     index,
		Address:   addr,
		PublicKey: hex.EncodeToString(pub),
	}, nil
}
