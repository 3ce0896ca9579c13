package hdkey

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"math/big"

	"github.com/mrz1836/keytree/internal/curve"
	"github.com/mrz1836/keytree/internal/path"
	"github.com/mrz1836/keytree/internal/securemem"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Seed length bounds accepted by MasterKeyFromSeed.
const (
	MinSeedSize = 16
	MaxSeedSize = 64
)

// DefaultSeedLabel is the BIP32 master key HMAC key.
const DefaultSeedLabel = "Bitcoin seed"

// Deriver derives keys over an injected curve. It holds no mutable state
// and is safe for concurrent use.
type Deriver struct {
	curve curve.Curve
}

// NewDeriver returns a Deriver over c.
func NewDeriver(c curve.Curve) *Deriver {
	return &Deriver{curve: c}
}

//nolint:gochecknoglobals // stateless default deriver
var defaultDeriver = NewDeriver(curve.Secp256k1())

// Default returns the secp256k1 deriver used by the package functions.
func Default() *Deriver {
	return defaultDeriver
}

// MasterKeyFromSeed derives the master key pair from a seed.
// An empty label means DefaultSeedLabel.
func (d *Deriver) MasterKeyFromSeed(seed []byte, label string, v Versions) (ExtendedPrivateKey, ExtendedPublicKey, error) {
	if len(seed) < MinSeedSize || len(seed) > MaxSeedSize {
		return ExtendedPrivateKey{}, ExtendedPublicKey{}, kterr.Newf(kterr.ErrInvalidSeed, "got %d bytes", len(seed))
	}
	if label == "" {
		label = DefaultSeedLabel
	}

	il, ir := hmacSplit([]byte(label), seed)
	defer securemem.Zero(il)
	defer securemem.Zero(ir)

	n := d.curve.Params().N
	k := new(big.Int).SetBytes(il)
	if k.Sign() == 0 || k.Cmp(n) >= 0 {
		return ExtendedPrivateKey{}, ExtendedPublicKey{}, kterr.Newf(kterr.ErrInvalidChildKey, "master scalar out of range")
	}

	priv := ExtendedPrivateKey{Version: v.Private}
	copy(priv.ChainCode[:], ir)
	copy(priv.key[:], il)
	if err := d.fillPublic(&priv); err != nil {
		priv.Zero()
		return ExtendedPrivateKey{}, ExtendedPublicKey{}, err
	}
	return priv, priv.Public(v.Public), nil
}

// DeriveChild derives the private child at index, which must be below
// 2^31; hardened selects hardened derivation. An out-of-range child
// scalar returns ErrInvalidChildKey and is never retried.
func (d *Deriver) DeriveChild(parent ExtendedPrivateKey, index uint32, hardened bool) (ExtendedPrivateKey, error) {
	child, err := checkChild(parent.Depth, index, hardened)
	if err != nil {
		return ExtendedPrivateKey{}, err
	}

	// 0x00 || k || i  for hardened, serP(K) || i otherwise
	data := make([]byte, 0, 1+curve.ScalarSize+4)
	if hardened {
		data = append(data, 0x00)
		data = append(data, parent.key[:]...)
	} else {
		data = append(data, parent.pub[:]...)
	}
	data = binary.BigEndian.AppendUint32(data, child)
	defer securemem.Zero(data)

	il, ir := hmacSplit(parent.ChainCode[:], data)
	defer securemem.Zero(il)
	defer securemem.Zero(ir)

	n := d.curve.Params().N
	tweak := new(big.Int).SetBytes(il)
	if tweak.Cmp(n) >= 0 {
		return ExtendedPrivateKey{}, kterr.WithDetails(kterr.ErrInvalidChildKey, childDetails(child))
	}
	k := new(big.Int).SetBytes(parent.key[:])
	k.Add(k, tweak)
	k.Mod(k, n)
	if k.Sign() == 0 {
		return ExtendedPrivateKey{}, kterr.WithDetails(kterr.ErrInvalidChildKey, childDetails(child))
	}

	out := ExtendedPrivateKey{
		Version:           parent.Version,
		Depth:             parent.Depth + 1,
		ParentFingerprint: parent.Fingerprint(),
		ChildIndex:        child,
	}
	copy(out.ChainCode[:], ir)
	k.FillBytes(out.key[:])
	k.SetInt64(0)
	if err := d.fillPublic(&out); err != nil {
		out.Zero()
		return ExtendedPrivateKey{}, err
	}
	return out, nil
}

// DerivePublicChild derives the non-hardened public child at index.
func (d *Deriver) DerivePublicChild(parent ExtendedPublicKey, index uint32, hardened bool) (ExtendedPublicKey, error) {
	child, err := checkChild(parent.Depth, index, hardened)
	if err != nil {
		return ExtendedPublicKey{}, err
	}
	if hardened {
		return ExtendedPublicKey{}, kterr.WithDetails(kterr.ErrHardenedFromPublic, childDetails(child))
	}

	params := d.curve.Params()
	parentPoint, err := params.Decompress(parent.Key[:])
	if err != nil {
		return ExtendedPublicKey{}, err
	}

	data := make([]byte, 0, curve.CompressedSize+4)
	data = append(data, parent.Key[:]...)
	data = binary.BigEndian.AppendUint32(data, child)

	il, ir := hmacSplit(parent.ChainCode[:], data)
	if new(big.Int).SetBytes(il).Cmp(params.N) >= 0 {
		return ExtendedPublicKey{}, kterr.WithDetails(kterr.ErrInvalidChildKey, childDetails(child))
	}

	// A zero tweak contributes the point at infinity
	var tweakPoint curve.Point
	if !isZero(il) {
		if tweakPoint, err = d.curve.ScalarBaseMult(il); err != nil {
			return ExtendedPublicKey{}, err
		}
	}
	point, err := d.curve.Add(tweakPoint, parentPoint)
	if err != nil {
		return ExtendedPublicKey{}, err
	}
	if point.IsInfinity() {
		return ExtendedPublicKey{}, kterr.WithDetails(kterr.ErrInvalidChildKey, childDetails(child))
	}

	out := ExtendedPublicKey{
		Version:           parent.Version,
		Depth:             parent.Depth + 1,
		ParentFingerprint: parent.Fingerprint(),
		ChildIndex:        child,
		Key:               curve.Compress(point),
	}
	copy(out.ChainCode[:], ir)
	return out, nil
}

// DerivePath walks segments from key, returning the final private key.
// Intermediate keys are wiped.
func (d *Deriver) DerivePath(key ExtendedPrivateKey, segments []path.Segment) (ExtendedPrivateKey, error) {
	cur := key
	for i, seg := range segments {
		next, err := d.DeriveChild(cur, seg.Index, seg.Hardened)
		if i > 0 {
			cur.Zero()
		}
		if err != nil {
			return ExtendedPrivateKey{}, kterr.Wrap(err, "deriving %s", path.FormatSegments(segments[:i+1]))
		}
		cur = next
	}
	return cur, nil
}

// DerivePublicPath walks non-hardened segments from an extended public key.
func (d *Deriver) DerivePublicPath(key ExtendedPublicKey, segments []path.Segment) (ExtendedPublicKey, error) {
	cur := key
	for i, seg := range segments {
		next, err := d.DerivePublicChild(cur, seg.Index, seg.Hardened)
		if err != nil {
			return ExtendedPublicKey{}, kterr.Wrap(err, "deriving segment %d (%s)", i+1, seg)
		}
		cur = next
	}
	return cur, nil
}

// fillPublic computes the compressed public key of k's scalar.
func (d *Deriver) fillPublic(k *ExtendedPrivateKey) error {
	pt, err := d.curve.ScalarBaseMult(k.key[:])
	if err != nil {
		return err
	}
	k.pub = curve.Compress(pt)
	return nil
}

// checkChild validates depth and index and returns the 32-bit child number.
func checkChild(depth uint8, index uint32, hardened bool) (uint32, error) {
	if index >= HardenedOffset {
		return 0, kterr.Newf(kterr.ErrInvalidDerivationPath, "index %d must be below 2^31", index)
	}
	if depth == MaxDepth {
		return 0, kterr.ErrDepthExceeded
	}
	if hardened {
		return index + HardenedOffset, nil
	}
	return index, nil
}

// hmacSplit returns the left and right halves of HMAC-SHA512(key, data).
func hmacSplit(key, data []byte) ([]byte, []byte) {
	mac := hmac.New(sha512.New, key)
	_, _ = mac.Write(data)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

func isZero(b []byte) bool {
	var acc byte
	for _, c := range b {
		acc |= c
	}
	return acc == 0
}

func childDetails(child uint32) map[string]string {
	return map[string]string{"child": path.SegmentFromChild(child).String()}
}

// MasterKeyFromSeed derives a secp256k1 master key pair from a seed.
func MasterKeyFromSeed(seed []byte, label string, v Versions) (ExtendedPrivateKey, ExtendedPublicKey, error) {
	return defaultDeriver.MasterKeyFromSeed(seed, label, v)
}

// DeriveChild derives a secp256k1 private child.
func DeriveChild(parent ExtendedPrivateKey, index uint32, hardened bool) (ExtendedPrivateKey, error) {
	return defaultDeriver.DeriveChild(parent, index, hardened)
}

// DerivePublicChild derives a secp256k1 public child.
func DerivePublicChild(parent ExtendedPublicKey, index uint32, hardened bool) (ExtendedPublicKey, error) {
	return defaultDeriver.DerivePublicChild(parent, index, hardened)
}

// DerivePath walks segments with the secp256k1 deriver.
func DerivePath(key ExtendedPrivateKey, segments []path.Segment) (ExtendedPrivateKey, error) {
	return defaultDeriver.DerivePath(key, segments)
}

// DerivePublicPath walks segments with the secp256k1 deriver.
func DerivePublicPath(key ExtendedPublicKey, segments []path.Segment) (ExtendedPublicKey, error) {
	return defaultDeriver.DerivePublicPath(key, segments)
}
