package hdkey

import (
	"encoding/binary"
	"math/big"

	"github.com/mrz1836/keytree/internal/codec"
	"github.com/mrz1836/keytree/internal/securemem"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Serialize returns the 78-byte BIP32 encoding:
// version || depth || parent fingerprint || child index || chain code || 0x00 || key.
// The result holds the private key; the caller should zero it.
func (k ExtendedPrivateKey) Serialize() []byte {
	buf := header(k.Version, k.Depth, k.ParentFingerprint, k.ChildIndex, k.ChainCode)
	buf = append(buf, 0x00)
	return append(buf, k.key[:]...)
}

// String returns the Base58Check-encoded serialization (xprv...).
func (k ExtendedPrivateKey) String() string {
	raw := k.Serialize()
	defer securemem.Zero(raw)
	return codec.Base58CheckEncode(raw)
}

// Serialize returns the 78-byte BIP32 encoding.
func (k ExtendedPublicKey) Serialize() []byte {
	buf := header(k.Version, k.Depth, k.ParentFingerprint, k.ChildIndex, k.ChainCode)
	return append(buf, k.Key[:]...)
}

// String returns the Base58Check-encoded serialization (xpub...).
func (k ExtendedPublicKey) String() string {
	return codec.Base58CheckEncode(k.Serialize())
}

func header(v Version, depth uint8, fp Fingerprint, child uint32, chainCode [ChainCodeSize]byte) []byte {
	buf := make([]byte, 0, SerializedSize)
	buf = append(buf, v[:]...)
	buf = append(buf, depth)
	buf = append(buf, fp[:]...)
	buf = binary.BigEndian.AppendUint32(buf, child)
	return append(buf, chainCode[:]...)
}

// Parse decodes an extended key of either kind. When versions are given
// the prefix must belong to one of them and decides the kind; otherwise
// the key data decides.
func (d *Deriver) Parse(s string, versions ...Versions) (ExtendedKey, error) {
	raw, err := decode(s)
	if err != nil {
		return nil, err
	}
	defer securemem.Zero(raw)

	private := raw[45] == 0x00
	if len(versions) > 0 {
		var v Version
		copy(v[:], raw[:4])
		isPriv, ok := lookupVersion(v, versions)
		if !ok {
			return nil, kterr.Newf(kterr.ErrMalformedSerialization, "unknown version %x", v[:])
		}
		private = isPriv
	}

	if private {
		k, err := d.parsePrivate(raw)
		if err != nil {
			return nil, err
		}
		return k, nil
	}
	k, err := d.parsePublic(raw)
	if err != nil {
		return nil, err
	}
	return k, nil
}

// ParsePrivate decodes an extended private key.
func (d *Deriver) ParsePrivate(s string, versions ...Versions) (ExtendedPrivateKey, error) {
	raw, err := decode(s)
	if err != nil {
		return ExtendedPrivateKey{}, err
	}
	defer securemem.Zero(raw)

	if len(versions) > 0 {
		var v Version
		copy(v[:], raw[:4])
		isPriv, ok := lookupVersion(v, versions)
		if !ok {
			return ExtendedPrivateKey{}, kterr.Newf(kterr.ErrMalformedSerialization, "unknown version %x", v[:])
		}
		if !isPriv {
			return ExtendedPrivateKey{}, kterr.Newf(kterr.ErrMalformedSerialization, "expected a private key, got a public version")
		}
	}
	return d.parsePrivate(raw)
}

// ParsePublic decodes an extended public key.
func (d *Deriver) ParsePublic(s string, versions ...Versions) (ExtendedPublicKey, error) {
	raw, err := decode(s)
	if err != nil {
		return ExtendedPublicKey{}, err
	}

	if len(versions) > 0 {
		var v Version
		copy(v[:], raw[:4])
		isPriv, ok := lookupVersion(v, versions)
		if !ok {
			return ExtendedPublicKey{}, kterr.Newf(kterr.ErrMalformedSerialization, "unknown version %x", v[:])
		}
		if isPriv {
			securemem.Zero(raw)
			return ExtendedPublicKey{}, kterr.Newf(kterr.ErrMalformedSerialization, "expected a public key, got a private version")
		}
	}
	return d.parsePublic(raw)
}

func (d *Deriver) parsePrivate(raw []byte) (ExtendedPrivateKey, error) {
	if raw[45] != 0x00 {
		return ExtendedPrivateKey{}, kterr.Newf(kterr.ErrMalformedSerialization, "private key data must start with 0x00")
	}

	k := ExtendedPrivateKey{}
	readHeader(raw, &k.Version, &k.Depth, &k.ParentFingerprint, &k.ChildIndex, &k.ChainCode)
	if err := checkHeader(k.Depth, k.ParentFingerprint, k.ChildIndex); err != nil {
		return ExtendedPrivateKey{}, err
	}

	scalar := new(big.Int).SetBytes(raw[46:])
	if scalar.Sign() == 0 || scalar.Cmp(d.curve.Params().N) >= 0 {
		return ExtendedPrivateKey{}, badKeyData(kterr.Newf(kterr.ErrInvalidPrivateKey, "scalar out of range"))
	}
	scalar.SetInt64(0)

	copy(k.key[:], raw[46:])
	if err := d.fillPublic(&k); err != nil {
		k.Zero()
		return ExtendedPrivateKey{}, badKeyData(err)
	}
	return k, nil
}

func (d *Deriver) parsePublic(raw []byte) (ExtendedPublicKey, error) {
	k := ExtendedPublicKey{}
	readHeader(raw, &k.Version, &k.Depth, &k.ParentFingerprint, &k.ChildIndex, &k.ChainCode)
	if err := checkHeader(k.Depth, k.ParentFingerprint, k.ChildIndex); err != nil {
		return ExtendedPublicKey{}, err
	}

	if _, err := d.curve.Params().Decompress(raw[45:]); err != nil {
		return ExtendedPublicKey{}, badKeyData(err)
	}
	copy(k.Key[:], raw[45:])
	return k, nil
}

// badKeyData reports unusable key material inside an otherwise well-formed
// serialization. The result matches ErrMalformedSerialization and the
// underlying key error.
func badKeyData(err error) error {
	return &kterr.KeytreeError{
		Code:     kterr.ErrMalformedSerialization.Code,
		Message:  "bad key data",
		Cause:    err,
		ExitCode: kterr.ErrMalformedSerialization.ExitCode,
	}
}

// decode Base58Check-decodes s and checks the serialized length.
func decode(s string) ([]byte, error) {
	raw, err := codec.Base58CheckDecode(s)
	if err != nil {
		return nil, err
	}
	if len(raw) != SerializedSize {
		securemem.Zero(raw)
		return nil, kterr.Newf(kterr.ErrMalformedSerialization, "expected %d bytes, got %d", SerializedSize, len(raw))
	}
	return raw, nil
}

func readHeader(raw []byte, v *Version, depth *uint8, fp *Fingerprint, child *uint32, chainCode *[ChainCodeSize]byte) {
	copy(v[:], raw[0:4])
	*depth = raw[4]
	copy(fp[:], raw[5:9])
	*child = binary.BigEndian.Uint32(raw[9:13])
	copy(chainCode[:], raw[13:45])
}

// checkHeader rejects a master key that claims a parent.
func checkHeader(depth uint8, fp Fingerprint, child uint32) error {
	if depth == 0 && (fp != Fingerprint{} || child != 0) {
		return kterr.Newf(kterr.ErrMalformedSerialization, "zero depth with non-zero parent fingerprint or child index")
	}
	return nil
}

func lookupVersion(v Version, versions []Versions) (private, ok bool) {
	for _, vs := range versions {
		switch v {
		case vs.Private:
			return true, true
		case vs.Public:
			return false, true
		}
	}
	return false, false
}

// Parse decodes an extended key with the secp256k1 deriver.
func Parse(s string, versions ...Versions) (ExtendedKey, error) {
	return defaultDeriver.Parse(s, versions...)
}

// ParsePrivate decodes an extended private key with the secp256k1 deriver.
func ParsePrivate(s string, versions ...Versions) (ExtendedPrivateKey, error) {
	return defaultDeriver.ParsePrivate(s, versions...)
}

// ParsePublic decodes an extended public key with the secp256k1 deriver.
func ParsePublic(s string, versions ...Versions) (ExtendedPublicKey, error) {
	return defaultDeriver.ParsePublic(s, versions...)
}
