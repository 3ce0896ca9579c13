// Package curve adapts elliptic curve point arithmetic for key derivation.
//
// Derivation code depends on the Curve interface rather than a concrete
// library, so the point provider is passed in where it is needed. The
// default provider is secp256k1 backed by decred's constant-time field
// implementation; point encoding and decoding are done here with math/big.
package curve

import (
	"math/big"

	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Encoded point sizes.
const (
	ScalarSize       = 32
	CompressedSize   = 33
	UncompressedSize = 65
)

// SEC1 point prefixes.
const (
	prefixEven         = 0x02
	prefixOdd          = 0x03
	prefixUncompressed = 0x04
)

// Params holds the domain parameters of a short Weierstrass curve
// y^2 = x^3 + B over the prime field P with group order N.
type Params struct {
	Name    string
	P       *big.Int
	N       *big.Int
	B       *big.Int
	Gx, Gy  *big.Int
	BitSize int
}

// Point is an affine curve point. The zero value is the point at infinity.
type Point struct {
	X, Y *big.Int
}

// IsInfinity reports whether p is the point at infinity.
func (p Point) IsInfinity() bool {
	return p.X == nil || p.Y == nil
}

// Equal reports whether two points are the same.
func (p Point) Equal(o Point) bool {
	if p.IsInfinity() || o.IsInfinity() {
		return p.IsInfinity() == o.IsInfinity()
	}
	return p.X.Cmp(o.X) == 0 && p.Y.Cmp(o.Y) == 0
}

// HasEvenY reports whether the y coordinate is even.
func (p Point) HasEvenY() bool {
	return !p.IsInfinity() && p.Y.Bit(0) == 0
}

// Curve is the point arithmetic needed by key derivation.
type Curve interface {
	// Params returns the curve domain parameters.
	Params() *Params

	// ScalarBaseMult returns k*G for a big-endian scalar 0 < k < N.
	ScalarBaseMult(k []byte) (Point, error)

	// Add returns a+b. Either operand may be the point at infinity and
	// the result is infinity when b == -a.
	Add(a, b Point) (Point, error)
}

// IsOnCurve reports whether pt satisfies the curve equation.
func (c *Params) IsOnCurve(pt Point) bool {
	if pt.IsInfinity() {
		return false
	}
	if pt.X.Sign() < 0 || pt.X.Cmp(c.P) >= 0 || pt.Y.Sign() < 0 || pt.Y.Cmp(c.P) >= 0 {
		return false
	}

	lhs := new(big.Int).Mul(pt.Y, pt.Y)
	lhs.Mod(lhs, c.P)
	return lhs.Cmp(c.rhs(pt.X)) == 0
}

// rhs computes x^3 + B mod P.
func (c *Params) rhs(x *big.Int) *big.Int {
	r := new(big.Int).Exp(x, big.NewInt(3), c.P)
	r.Add(r, c.B)
	return r.Mod(r, c.P)
}

// Compress returns the 33-byte SEC1 encoding: 0x02 or 0x03 by y parity, then X.
func Compress(pt Point) [CompressedSize]byte {
	var out [CompressedSize]byte
	if pt.IsInfinity() {
		return out
	}
	out[0] = prefixEven
	if pt.Y.Bit(0) == 1 {
		out[0] = prefixOdd
	}
	pt.X.FillBytes(out[1:])
	return out
}

// Uncompressed returns the 65-byte SEC1 encoding 0x04||X||Y.
func Uncompressed(pt Point) [UncompressedSize]byte {
	var out [UncompressedSize]byte
	if pt.IsInfinity() {
		return out
	}
	out[0] = prefixUncompressed
	pt.X.FillBytes(out[1:33])
	pt.Y.FillBytes(out[33:])
	return out
}

// Decompress recovers a point from its 33-byte compressed encoding.
//
// P is 3 mod 4 for the supported curves, so the square root of
// y^2 = x^3 + B is (x^3 + B)^((P+1)/4). The root with the parity named by
// the prefix is kept; the other one is P - y.
func (c *Params) Decompress(b []byte) (Point, error) {
	if len(b) != CompressedSize {
		return Point{}, kterr.Newf(kterr.ErrInvalidPublicKey, "expected %d bytes, got %d", CompressedSize, len(b))
	}
	prefix := b[0]
	if prefix != prefixEven && prefix != prefixOdd {
		return Point{}, kterr.Newf(kterr.ErrInvalidPublicKey, "invalid prefix %#02x", prefix)
	}

	x := new(big.Int).SetBytes(b[1:])
	if x.Cmp(c.P) >= 0 {
		return Point{}, kterr.Newf(kterr.ErrInvalidPublicKey, "x coordinate exceeds field prime")
	}

	y2 := c.rhs(x)
	exp := new(big.Int).Add(c.P, big.NewInt(1))
	exp.Rsh(exp, 2)
	y := new(big.Int).Exp(y2, exp, c.P)

	check := new(big.Int).Mul(y, y)
	check.Mod(check, c.P)
	if check.Cmp(y2) != 0 {
		return Point{}, kterr.Newf(kterr.ErrInvalidPublicKey, "point is not on the curve")
	}

	wantOdd := prefix == prefixOdd
	if (y.Bit(0) == 1) != wantOdd {
		y.Sub(c.P, y)
	}

	return Point{X: x, Y: y}, nil
}

// ParsePublicKey decodes a compressed or uncompressed SEC1 public key.
func (c *Params) ParsePublicKey(b []byte) (Point, error) {
	switch len(b) {
	case CompressedSize:
		return c.Decompress(b)
	case UncompressedSize:
		if b[0] != prefixUncompressed {
			return Point{}, kterr.Newf(kterr.ErrInvalidPublicKey, "invalid prefix %#02x", b[0])
		}
		pt := Point{X: new(big.Int).SetBytes(b[1:33]), Y: new(big.Int).SetBytes(b[33:])}
		if !c.IsOnCurve(pt) {
			return Point{}, kterr.Newf(kterr.ErrInvalidPublicKey, "point is not on the curve")
		}
		return pt, nil
	default:
		return Point{}, kterr.Newf(kterr.ErrInvalidPublicKey, "unexpected length %d", len(b))
	}
}

// Decompress recovers a secp256k1 point from its compressed encoding.
func Decompress(b []byte) (Point, error) {
	return secp256k1Params.Decompress(b)
}

// IsOnCurve reports whether pt is a valid secp256k1 point.
func IsOnCurve(pt Point) bool {
	return secp256k1Params.IsOnCurve(pt)
}
