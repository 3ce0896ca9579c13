package wallet

import (
	"github.com/mrz1836/keytree/internal/coin"
	"github.com/mrz1836/keytree/internal/hdkey"
	"github.com/mrz1836/keytree/internal/path"
)

// Key is a derived private node on either supported curve.
type Key struct {
	// Path is set when the key was derived from a BIP44-style path.
	Path path.Path

	curve coin.Curve
	ext   hdkey.ExtendedPrivateKey
	ed    hdkey.Ed25519Key
}

// Curve returns the curve the key lives on.
func (k Key) Curve() coin.Curve {
	return k.curve
}

// Extended returns the BIP32 key. ok is false for ed25519 keys.
func (k Key) Extended() (hdkey.ExtendedPrivateKey, bool) {
	return k.ext, k.curve == coin.Secp256k1
}

// Ed25519 returns the SLIP-10 key. ok is false for secp256k1 keys.
func (k Key) Ed25519() (hdkey.Ed25519Key, bool) {
	return k.ed, k.curve == coin.Ed25519
}

// PublicKey returns the 33-byte compressed secp256k1 key or the 32-byte
// ed25519 key.
func (k Key) PublicKey() []byte {
	if k.curve == coin.Ed25519 {
		return k.ed.PublicKey()
	}
	return k.ext.PublicKeyBytes()
}

// PrivateKey returns a copy of the 32-byte private key. The caller
// should zero it when done.
func (k Key) PrivateKey() []byte {
	if k.curve == coin.Ed25519 {
		return k.ed.PrivateKeyBytes()
	}
	return k.ext.PrivateKeyBytes()
}

// ChainCode returns the node's chain code.
func (k Key) ChainCode() []byte {
	if k.curve == coin.Ed25519 {
		return append([]byte(nil), k.ed.ChainCode[:]...)
	}
	return append([]byte(nil), k.ext.ChainCode[:]...)
}

// Fingerprint returns the key's own fingerprint.
func (k Key) Fingerprint() hdkey.Fingerprint {
	if k.curve == coin.Ed25519 {
		return k.ed.Fingerprint()
	}
	return k.ext.Fingerprint()
}

// Depth returns the number of derivation steps from the master key.
func (k Key) Depth() uint8 {
	if k.curve == coin.Ed25519 {
		return k.ed.Depth
	}
	return k.ext.Depth
}

// Zero wipes the private material.
func (k *Key) Zero() {
	k.ext.Zero()
	k.ed.Zero()
}
