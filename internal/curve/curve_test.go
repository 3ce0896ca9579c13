package curve

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"sync"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kterr "github.com/mrz1836/keytree/pkg/errors"
)

const (
	twoGx = "c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5"
	twoGy = "1ae168fea63dc339a3c58419466ceaeef7f632653266d0e1236431a950cfe52a"
)

func scalar(v int64) []byte {
	out := make([]byte, ScalarSize)
	big.NewInt(v).FillBytes(out)
	return out
}

func TestParams_MatchDecred(t *testing.T) {
	t.Parallel()
	params := Secp256k1().Params()
	assert.Equal(t, 0, params.N.Cmp(secp256k1.Params().N))
	assert.Equal(t, 0, params.P.Cmp(secp256k1.Params().P))
	assert.True(t, params.IsOnCurve(Point{X: params.Gx, Y: params.Gy}))
}

func TestScalarBaseMult(t *testing.T) {
	t.Parallel()
	c := Secp256k1()

	g, err := c.ScalarBaseMult(scalar(1))
	require.NoError(t, err)
	assert.Equal(t, 0, g.X.Cmp(c.Params().Gx))
	assert.Equal(t, 0, g.Y.Cmp(c.Params().Gy))

	two, err := c.ScalarBaseMult(scalar(2))
	require.NoError(t, err)
	assert.Equal(t, twoGx, hex.EncodeToString(two.X.FillBytes(make([]byte, 32))))
	assert.Equal(t, twoGy, hex.EncodeToString(two.Y.FillBytes(make([]byte, 32))))
}

func TestScalarBaseMult_MatchesDecredPubKey(t *testing.T) {
	t.Parallel()
	c := Secp256k1()
	keys := []string{
		"e8f32e723decf4051aefac8e2c93c9c5b214313817cdb01a1494b917c8436b35",
		"edb2e14f9ee77d26dd93b4ecede8d16ed408ce149b6cd80b0715a2d911a0afea",
		"0000000000000000000000000000000000000000000000000000000000000003",
		"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364140",
	}
	for _, k := range keys {
		kb, err := hex.DecodeString(k)
		require.NoError(t, err)

		pt, err := c.ScalarBaseMult(kb)
		require.NoError(t, err)

		want := secp256k1.PrivKeyFromBytes(kb).PubKey()
		compressed := Compress(pt)
		uncompressed := Uncompressed(pt)
		assert.Equal(t, want.SerializeCompressed(), compressed[:])
		assert.Equal(t, want.SerializeUncompressed(), uncompressed[:])
	}
}

func TestScalarBaseMult_Invalid(t *testing.T) {
	t.Parallel()
	c := Secp256k1()
	n := c.Params().N.FillBytes(make([]byte, 32))

	for name, k := range map[string][]byte{
		"zero":      make([]byte, 32),
		"order":     n,
		"too short": {1},
		"too long":  make([]byte, 33),
		"all ones":  bytes.Repeat([]byte{0xff}, 32),
	} {
		_, err := c.ScalarBaseMult(k)
		require.ErrorIs(t, err, kterr.ErrInvalidPrivateKey, name)
	}
}

func TestAdd(t *testing.T) {
	t.Parallel()
	c := Secp256k1()

	g, err := c.ScalarBaseMult(scalar(1))
	require.NoError(t, err)
	two, err := c.ScalarBaseMult(scalar(2))
	require.NoError(t, err)
	three, err := c.ScalarBaseMult(scalar(3))
	require.NoError(t, err)

	t.Run("doubling", func(t *testing.T) {
		t.Parallel()
		sum, err := c.Add(g, g)
		require.NoError(t, err)
		assert.True(t, sum.Equal(two))
	})

	t.Run("distinct points", func(t *testing.T) {
		t.Parallel()
		sum, err := c.Add(g, two)
		require.NoError(t, err)
		assert.True(t, sum.Equal(three))
	})

	t.Run("identity", func(t *testing.T) {
		t.Parallel()
		sum, err := c.Add(Point{}, g)
		require.NoError(t, err)
		assert.True(t, sum.Equal(g))
		sum, err = c.Add(g, Point{})
		require.NoError(t, err)
		assert.True(t, sum.Equal(g))
	})

	t.Run("inverse gives infinity", func(t *testing.T) {
		t.Parallel()
		neg := Point{X: g.X, Y: new(big.Int).Sub(c.Params().P, g.Y)}
		sum, err := c.Add(g, neg)
		require.NoError(t, err)
		assert.True(t, sum.IsInfinity())
	})

	t.Run("off curve operand", func(t *testing.T) {
		t.Parallel()
		_, err := c.Add(g, Point{X: big.NewInt(5), Y: big.NewInt(5)})
		require.ErrorIs(t, err, kterr.ErrInvalidPublicKey)
	})
}

func TestCompressDecompress(t *testing.T) {
	t.Parallel()
	c := Secp256k1()

	for i := int64(1); i <= 20; i++ {
		pt, err := c.ScalarBaseMult(scalar(i))
		require.NoError(t, err)

		enc := Compress(pt)
		if pt.HasEvenY() {
			assert.Equal(t, byte(0x02), enc[0])
		} else {
			assert.Equal(t, byte(0x03), enc[0])
		}

		back, err := Decompress(enc[:])
		require.NoError(t, err)
		assert.True(t, back.Equal(pt), "scalar %d", i)
		assert.True(t, IsOnCurve(back))
	}
}

func TestDecompress_KnownKey(t *testing.T) {
	t.Parallel()
	compressed, err := hex.DecodeString("027476ebfc5fadf2e44df5d53d04eef907a591a74c9d104836dd85ffd1cf8555e5")
	require.NoError(t, err)

	pt, err := Decompress(compressed)
	require.NoError(t, err)

	ref, err := secp256k1.ParsePubKey(compressed)
	require.NoError(t, err)
	uncompressed := Uncompressed(pt)
	assert.Equal(t, ref.SerializeUncompressed(), uncompressed[:])
}

func TestDecompress_Invalid(t *testing.T) {
	t.Parallel()
	p := Secp256k1().Params().P

	withX := func(prefix byte, x *big.Int) []byte {
		out := make([]byte, CompressedSize)
		out[0] = prefix
		x.FillBytes(out[1:])
		return out
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"short", make([]byte, 32)},
		{"uncompressed prefix", withX(0x04, big.NewInt(1))},
		{"zero prefix", withX(0x00, big.NewInt(1))},
		{"x not on curve", withX(0x02, big.NewInt(5))},
		{"x zero", withX(0x03, big.NewInt(0))},
		{"x equals p", withX(0x02, p)},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decompress(tc.input)
			require.ErrorIs(t, err, kterr.ErrInvalidPublicKey)
		})
	}
}

func TestParsePublicKey(t *testing.T) {
	t.Parallel()
	c := Secp256k1()
	pt, err := c.ScalarBaseMult(scalar(7))
	require.NoError(t, err)

	comp := Compress(pt)
	uncomp := Uncompressed(pt)

	got, err := c.Params().ParsePublicKey(comp[:])
	require.NoError(t, err)
	assert.True(t, got.Equal(pt))

	got, err = c.Params().ParsePublicKey(uncomp[:])
	require.NoError(t, err)
	assert.True(t, got.Equal(pt))

	bad := uncomp
	bad[64] ^= 1
	_, err = c.Params().ParsePublicKey(bad[:])
	require.ErrorIs(t, err, kterr.ErrInvalidPublicKey)

	bad = uncomp
	bad[0] = 0x06
	_, err = c.Params().ParsePublicKey(bad[:])
	require.ErrorIs(t, err, kterr.ErrInvalidPublicKey)

	_, err = c.Params().ParsePublicKey(make([]byte, 64))
	require.ErrorIs(t, err, kterr.ErrInvalidPublicKey)
}

func TestPoint_Infinity(t *testing.T) {
	t.Parallel()
	var inf Point
	assert.True(t, inf.IsInfinity())
	assert.False(t, inf.HasEvenY())
	assert.False(t, IsOnCurve(inf))
	assert.True(t, inf.Equal(Point{}))

	enc := Compress(inf)
	assert.Equal(t, [CompressedSize]byte{}, enc)
}

func TestSecp256k1_Concurrent(t *testing.T) {
	t.Parallel()
	c := Secp256k1()
	want, err := c.ScalarBaseMult(scalar(12345))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.ScalarBaseMult(scalar(12345))
			assert.NoError(t, err)
			assert.True(t, got.Equal(want))
		}()
	}
	wg.Wait()
}
