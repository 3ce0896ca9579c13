package address

import (
	"crypto/ed25519"

	"github.com/mrz1836/keytree/internal/codec"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Solana returns the Base58 encoding of a 32-byte ed25519 public key.
func Solana(pub []byte) (string, error) {
	if len(pub) != ed25519.PublicKeySize {
		return "", kterr.Newf(kterr.ErrInvalidPublicKey, "expected %d-byte ed25519 key, got %d", ed25519.PublicKeySize, len(pub))
	}
	return codec.Base58Encode(pub), nil
}
