// Package codec implements the byte-level encodings used by keytree:
// Bitcoin hashes, Base58 and Base58Check, Bech32 and Bech32m, and
// segwit address framing on top of Bech32.
package codec

import (
	"crypto/sha256"

	// RIPEMD160 is deprecated but REQUIRED by Bitcoin protocol (BIP-13, BIP-16).
	// Key fingerprints and P2PKH addresses use Hash160 = RIPEMD160(SHA256(pubkey)).
	//nolint:gosec,staticcheck // G507,SA1019: RIPEMD160 required by Bitcoin protocol
	"golang.org/x/crypto/ripemd160"
)

// ChecksumLen is the length of a Base58Check checksum in bytes.
const ChecksumLen = 4

// SHA256 returns the SHA-256 digest of data.
func SHA256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// DoubleSHA256 computes SHA256(SHA256(data)) as used by Bitcoin protocol.
func DoubleSHA256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// Hash160 computes RIPEMD160(SHA256(data)) as required by Bitcoin protocol.
//
//nolint:gosec // G406: RIPEMD160 usage required by Bitcoin hash160
func Hash160(data []byte) []byte {
	sha256Hash := sha256.Sum256(data)
	ripemd := ripemd160.New()
	ripemd.Write(sha256Hash[:])
	return ripemd.Sum(nil)
}

// Checksum returns the first four bytes of DoubleSHA256(payload).
func Checksum(payload []byte) [ChecksumLen]byte {
	var out [ChecksumLen]byte
	copy(out[:], DoubleSHA256(payload))
	return out
}

// TaggedHash computes the BIP340 tagged hash SHA256(SHA256(tag)||SHA256(tag)||msg...).
func TaggedHash(tag string, msgs ...[]byte) []byte {
	tagHash := sha256.Sum256([]byte(tag))
	h := sha256.New()
	h.Write(tagHash[:])
	h.Write(tagHash[:])
	for _, m := range msgs {
		h.Write(m)
	}
	return h.Sum(nil)
}
