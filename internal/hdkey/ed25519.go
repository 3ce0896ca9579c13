package hdkey

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/mrz1836/keytree/internal/path"
	"github.com/mrz1836/keytree/internal/securemem"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Ed25519SeedLabel is the SLIP-10 master key HMAC key for ed25519.
const Ed25519SeedLabel = "ed25519 seed"

// Ed25519Key is a SLIP-10 ed25519 node. Only hardened children exist.
type Ed25519Key struct {
	Depth             uint8
	ParentFingerprint Fingerprint
	ChildIndex        uint32
	ChainCode         [ChainCodeSize]byte

	key [ed25519.SeedSize]byte
}

// Ed25519MasterKey derives the SLIP-10 ed25519 master node from a seed.
// Every 32-byte string is a valid ed25519 private key, so this cannot
// produce an invalid key.
func Ed25519MasterKey(seed []byte) (Ed25519Key, error) {
	if len(seed) < MinSeedSize || len(seed) > MaxSeedSize {
		return Ed25519Key{}, kterr.Newf(kterr.ErrInvalidSeed, "got %d bytes", len(seed))
	}

	il, ir := hmacSplit([]byte(Ed25519SeedLabel), seed)
	defer securemem.Zero(il)
	defer securemem.Zero(ir)

	var k Ed25519Key
	copy(k.key[:], il)
	copy(k.ChainCode[:], ir)
	return k, nil
}

// DeriveChild derives the child at index. Non-hardened derivation is not
// defined for ed25519 and returns ErrInvalidDerivationPath.
func (k Ed25519Key) DeriveChild(index uint32, hardened bool) (Ed25519Key, error) {
	if !hardened {
		return Ed25519Key{}, kterr.Newf(kterr.ErrInvalidDerivationPath, "ed25519 supports hardened derivation only, got index %d", index)
	}
	child, err := checkChild(k.Depth, index, true)
	if err != nil {
		return Ed25519Key{}, err
	}

	data := make([]byte, 0, 1+ed25519.SeedSize+4)
	data = append(data, 0x00)
	data = append(data, k.key[:]...)
	data = binary.BigEndian.AppendUint32(data, child)
	defer securemem.Zero(data)

	il, ir := hmacSplit(k.ChainCode[:], data)
	defer securemem.Zero(il)
	defer securemem.Zero(ir)

	out := Ed25519Key{
		Depth:             k.Depth + 1,
		ParentFingerprint: k.Fingerprint(),
		ChildIndex:        child,
	}
	copy(out.key[:], il)
	copy(out.ChainCode[:], ir)
	return out, nil
}

// DerivePath walks segments, all of which must be hardened.
func (k Ed25519Key) DerivePath(segments []path.Segment) (Ed25519Key, error) {
	cur := k
	for i, seg := range segments {
		next, err := cur.DeriveChild(seg.Index, seg.Hardened)
		if i > 0 {
			cur.Zero()
		}
		if err != nil {
			return Ed25519Key{}, kterr.Wrap(err, "deriving %s", path.FormatSegments(segments[:i+1]))
		}
		cur = next
	}
	return cur, nil
}

// PrivateKey returns the ed25519 private key (seed followed by public key).
func (k Ed25519Key) PrivateKey() ed25519.PrivateKey {
	return ed25519.NewKeyFromSeed(k.key[:])
}

// PrivateKeyBytes returns a copy of the 32-byte private seed.
func (k Ed25519Key) PrivateKeyBytes() []byte {
	out := make([]byte, ed25519.SeedSize)
	copy(out, k.key[:])
	return out
}

// PublicKey returns the 32-byte ed25519 public key.
func (k Ed25519Key) PublicKey() ed25519.PublicKey {
	priv := ed25519.NewKeyFromSeed(k.key[:])
	defer securemem.Zero(priv)
	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, priv[ed25519.SeedSize:])
	return pub
}

// Fingerprint returns Hash160(0x00 || public key)[:4].
func (k Ed25519Key) Fingerprint() Fingerprint {
	return fingerprintOf(append([]byte{0x00}, k.PublicKey()...))
}

// Zero wipes the private key and chain code.
func (k *Ed25519Key) Zero() {
	securemem.Zero(k.key[:])
	securemem.Zero(k.ChainCode[:])
}
