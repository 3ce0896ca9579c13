package address

import (
	"math/big"
	"strings"

	"github.com/mrz1836/go-sanitize"

	"github.com/mrz1836/keytree/internal/codec"
	"github.com/mrz1836/keytree/internal/coin"
	"github.com/mrz1836/keytree/internal/curve"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Witness versions used here.
const (
	witnessV0 = 0
	witnessV1 = 1

	pubKeyHashSize = 20
)

// P2PKH returns the legacy Base58Check pay-to-pubkey-hash address.
// Both compressed and uncompressed keys are accepted and hashed as given.
func P2PKH(pub []byte, net coin.Network) (string, error) {
	if _, err := curve.Secp256k1().Params().ParsePublicKey(pub); err != nil {
		return "", err
	}
	return codec.Base58CheckEncodeVersion(net.PubKeyHashVersion, codec.Hash160(pub)), nil
}

// P2SHP2WPKH returns the BIP49 P2SH-wrapped segwit v0 address.
func P2SHP2WPKH(pub []byte, net coin.Network) (string, error) {
	if err := requireCompressed(pub); err != nil {
		return "", err
	}
	// redeem script: OP_0 PUSH20 <hash160(pub)>
	script := append([]byte{0x00, 0x14}, codec.Hash160(pub)...)
	return codec.Base58CheckEncodeVersion(net.ScriptHashVersion, codec.Hash160(script)), nil
}

// P2WPKH returns the native segwit v0 Bech32 address.
func P2WPKH(pub []byte, net coin.Network) (string, error) {
	if err := requireCompressed(pub); err != nil {
		return "", err
	}
	return codec.EncodeSegwit(net.Bech32HRP, witnessV0, codec.Hash160(pub))
}

// P2TR returns the BIP86 key-path-only taproot Bech32m address.
// pub may be a 33-byte compressed key or a 32-byte x-only key.
func P2TR(pub []byte, net coin.Network) (string, error) {
	out, err := TaprootOutputKey(pub)
	if err != nil {
		return "", err
	}
	return codec.EncodeSegwit(net.Bech32HRP, witnessV1, out)
}

// TaprootOutputKey returns x(Q) for Q = P + int(TapTweak(x(P)))G, where
// P is pub lifted to even y.
func TaprootOutputKey(pub []byte) ([]byte, error) {
	c := curve.Secp256k1()

	var xonly []byte
	switch len(pub) {
	case curve.ScalarSize:
		xonly = pub
	case curve.CompressedSize:
		if err := requireCompressed(pub); err != nil {
			return nil, err
		}
		xonly = pub[1:]
	default:
		return nil, kterr.Newf(kterr.ErrInvalidPublicKey, "expected 32 or 33 bytes, got %d", len(pub))
	}

	even := append([]byte{0x02}, xonly...)
	p, err := c.Params().Decompress(even)
	if err != nil {
		return nil, err
	}

	tweak := codec.TaggedHash("TapTweak", xonly)
	if new(big.Int).SetBytes(tweak).Cmp(c.Params().N) >= 0 {
		return nil, kterr.Newf(kterr.ErrInvalidPublicKey, "taproot tweak exceeds curve order")
	}
	t, err := c.ScalarBaseMult(tweak)
	if err != nil {
		return nil, err
	}
	q, err := c.Add(p, t)
	if err != nil {
		return nil, err
	}
	if q.IsInfinity() {
		return nil, kterr.Newf(kterr.ErrInvalidPublicKey, "taproot output key is infinity")
	}

	compressed := curve.Compress(q)
	return compressed[1:], nil
}

// DecodeP2PKH returns the 20-byte public key hash of a legacy address.
// Characters outside the Base58 alphabet are dropped first.
func DecodeP2PKH(addr string, net coin.Network) ([]byte, error) {
	return decodeBase58Hash(SanitizeBase58(addr), net.PubKeyHashVersion)
}

// DecodeP2SH returns the 20-byte script hash of a P2SH address.
func DecodeP2SH(addr string, net coin.Network) ([]byte, error) {
	return decodeBase58Hash(SanitizeBase58(addr), net.ScriptHashVersion)
}

// DecodeSegwit returns the witness version and program of a segwit address
// on net. Anything but ASCII letters and digits is dropped first.
func DecodeSegwit(addr string, net coin.Network) (byte, []byte, error) {
	return codec.DecodeSegwit(net.Bech32HRP, sanitize.AlphaNumeric(addr, false))
}

// SanitizeBase58 cleans pasted Base58Check input such as legacy addresses
// and extended keys by dropping every character outside the Bitcoin
// Base58 alphabet.
func SanitizeBase58(input string) string {
	return sanitize.BitcoinAddress(strings.TrimSpace(input))
}

func decodeBase58Hash(addr string, want byte) ([]byte, error) {
	version, payload, err := codec.Base58CheckDecodeVersion(addr)
	if err != nil {
		return nil, err
	}
	if version != want {
		return nil, kterr.Newf(kterr.ErrMalformedSerialization, "version byte %#02x, expected %#02x", version, want)
	}
	if len(payload) != pubKeyHashSize {
		return nil, kterr.Newf(kterr.ErrMalformedSerialization, "expected %d-byte hash, got %d", pubKeyHashSize, len(payload))
	}
	return payload, nil
}

func requireCompressed(pub []byte) error {
	if len(pub) != curve.CompressedSize {
		return kterr.Newf(kterr.ErrInvalidPublicKey, "expected %d-byte compressed key, got %d", curve.CompressedSize, len(pub))
	}
	_, err := curve.Decompress(pub)
	return err
}
