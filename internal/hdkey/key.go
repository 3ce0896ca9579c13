// Package hdkey implements BIP32 hierarchical deterministic key derivation
// and extended key serialization, plus SLIP-10 ed25519 hardened derivation.
//
// Keys are immutable values: derivation returns new keys and never
// modifies the parent. Version prefixes are supplied by the caller.
package hdkey

import (
	"github.com/mrz1836/keytree/internal/codec"
	"github.com/mrz1836/keytree/internal/curve"
	"github.com/mrz1836/keytree/internal/securemem"
)

// Sizes of the serialized parts of an extended key.
const (
	ChainCodeSize  = 32
	SerializedSize = 78
	MaxDepth       = 255

	// HardenedOffset is added to the child number of hardened children.
	HardenedOffset uint32 = 0x80000000
)

// Version is the 4-byte serialization prefix of an extended key.
type Version [4]byte

// Versions pairs the private and public prefixes of one network.
type Versions struct {
	Private Version
	Public  Version
}

// Fingerprint is the first 4 bytes of Hash160 of a public key.
type Fingerprint [4]byte

// ExtendedPrivateKey is a private key with its chain code and tree position.
type ExtendedPrivateKey struct {
	Version           Version
	Depth             uint8
	ParentFingerprint Fingerprint
	ChildIndex        uint32
	ChainCode         [ChainCodeSize]byte

	key [curve.ScalarSize]byte
	pub [curve.CompressedSize]byte
}

// PrivateKeyBytes returns a copy of the 32-byte private scalar.
// The caller should zero it when done.
func (k ExtendedPrivateKey) PrivateKeyBytes() []byte {
	out := make([]byte, curve.ScalarSize)
	copy(out, k.key[:])
	return out
}

// SecurePrivateKey returns the private scalar in a locked buffer.
func (k ExtendedPrivateKey) SecurePrivateKey() (*securemem.SecureBytes, error) {
	return securemem.FromSlice(k.key[:])
}

// PublicKeyBytes returns the 33-byte compressed public key.
func (k ExtendedPrivateKey) PublicKeyBytes() []byte {
	out := make([]byte, curve.CompressedSize)
	copy(out, k.pub[:])
	return out
}

// Identifier returns Hash160 of the compressed public key.
func (k ExtendedPrivateKey) Identifier() []byte {
	return codec.Hash160(k.pub[:])
}

// Fingerprint returns the first 4 bytes of the key identifier.
func (k ExtendedPrivateKey) Fingerprint() Fingerprint {
	return fingerprintOf(k.pub[:])
}

// IsHardened reports whether the key is a hardened child.
func (k ExtendedPrivateKey) IsHardened() bool {
	return k.ChildIndex >= HardenedOffset
}

// IsPrivate returns true.
func (k ExtendedPrivateKey) IsPrivate() bool {
	return true
}

// Public returns the extended public key with the given version prefix.
func (k ExtendedPrivateKey) Public(version Version) ExtendedPublicKey {
	return ExtendedPublicKey{
		Version:           version,
		Depth:             k.Depth,
		ParentFingerprint: k.ParentFingerprint,
		ChildIndex:        k.ChildIndex,
		ChainCode:         k.ChainCode,
		Key:               k.pub,
	}
}

// Zero wipes the private scalar and chain code.
func (k *ExtendedPrivateKey) Zero() {
	securemem.Zero(k.key[:])
	securemem.Zero(k.ChainCode[:])
}

// ExtendedPublicKey is a compressed public key with its chain code and
// tree position.
type ExtendedPublicKey struct {
	Version           Version
	Depth             uint8
	ParentFingerprint Fingerprint
	ChildIndex        uint32
	ChainCode         [ChainCodeSize]byte
	Key               [curve.CompressedSize]byte
}

// PublicKeyBytes returns the 33-byte compressed public key.
func (k ExtendedPublicKey) PublicKeyBytes() []byte {
	out := make([]byte, curve.CompressedSize)
	copy(out, k.Key[:])
	return out
}

// Identifier returns Hash160 of the compressed public key.
func (k ExtendedPublicKey) Identifier() []byte {
	return codec.Hash160(k.Key[:])
}

// Fingerprint returns the first 4 bytes of the key identifier.
func (k ExtendedPublicKey) Fingerprint() Fingerprint {
	return fingerprintOf(k.Key[:])
}

// IsHardened reports whether the key is a hardened child.
func (k ExtendedPublicKey) IsHardened() bool {
	return k.ChildIndex >= HardenedOffset
}

// IsPrivate returns false.
func (k ExtendedPublicKey) IsPrivate() bool {
	return false
}

// ExtendedKey is implemented by ExtendedPrivateKey and ExtendedPublicKey.
type ExtendedKey interface {
	IsPrivate() bool
	PublicKeyBytes() []byte
	Fingerprint() Fingerprint
	Serialize() []byte
	String() string
}

func fingerprintOf(pub []byte) Fingerprint {
	var fp Fingerprint
	copy(fp[:], codec.Hash160(pub))
	return fp
}
