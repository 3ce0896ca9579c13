package curve

import (
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	kterr "github.com/mrz1836/keytree/pkg/errors"
)

//nolint:gochecknoglobals // secp256k1 domain parameters (SEC 2, section 2.4.1)
var secp256k1Params = &Params{
	Name:    "secp256k1",
	P:       mustHex("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f"),
	N:       mustHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"),
	B:       big.NewInt(7),
	Gx:      mustHex("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"),
	Gy:      mustHex("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"),
	BitSize: 256,
}

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("curve: bad constant " + s)
	}
	return v
}

type secp256k1Curve struct{}

// Secp256k1 returns the secp256k1 curve.
func Secp256k1() Curve {
	return secp256k1Curve{}
}

func (secp256k1Curve) Params() *Params {
	return secp256k1Params
}

func (secp256k1Curve) ScalarBaseMult(k []byte) (Point, error) {
	if len(k) != ScalarSize {
		return Point{}, kterr.Newf(kterr.ErrInvalidPrivateKey, "scalar must be %d bytes, got %d", ScalarSize, len(k))
	}

	var s secp256k1.ModNScalar
	overflow := s.SetByteSlice(k)
	defer s.Zero()
	if overflow || s.IsZero() {
		return Point{}, kterr.Newf(kterr.ErrInvalidPrivateKey, "scalar out of range")
	}

	var r secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&s, &r)
	return fromJacobian(&r), nil
}

func (secp256k1Curve) Add(a, b Point) (Point, error) {
	if a.IsInfinity() {
		return b, nil
	}
	if b.IsInfinity() {
		return a, nil
	}

	ja, err := toJacobian(a)
	if err != nil {
		return Point{}, err
	}
	jb, err := toJacobian(b)
	if err != nil {
		return Point{}, err
	}

	var r secp256k1.JacobianPoint
	secp256k1.AddNonConst(&ja, &jb, &r)
	return fromJacobian(&r), nil
}

func toJacobian(pt Point) (secp256k1.JacobianPoint, error) {
	if !secp256k1Params.IsOnCurve(pt) {
		return secp256k1.JacobianPoint{}, kterr.Newf(kterr.ErrInvalidPublicKey, "point is not on the curve")
	}

	var xb, yb [32]byte
	pt.X.FillBytes(xb[:])
	pt.Y.FillBytes(yb[:])

	var x, y, z secp256k1.FieldVal
	x.SetByteSlice(xb[:])
	y.SetByteSlice(yb[:])
	z.SetInt(1)
	return secp256k1.MakeJacobianPoint(&x, &y, &z), nil
}

// fromJacobian converts to affine coordinates. decred represents the
// point at infinity with all-zero coordinates, which is not on the curve.
func fromJacobian(r *secp256k1.JacobianPoint) Point {
	r.ToAffine()
	if r.X.IsZero() && r.Y.IsZero() {
		return Point{}
	}
	x := r.X.Bytes()
	y := r.Y.Bytes()
	return Point{
		X: new(big.Int).SetBytes(x[:]),
		Y: new(big.Int).SetBytes(y[:]),
	}
}
