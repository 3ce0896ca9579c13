package hdkey

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/keytree/internal/curve"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// tinyOrderCurve reports a group order of 2 so almost every HMAC output
// lands out of range, which makes the invalid-key branches reachable.
type tinyOrderCurve struct {
	curve.Curve
	params *curve.Params
}

func newTinyOrderCurve() tinyOrderCurve {
	base := curve.Secp256k1()
	p := *base.Params()
	p.N = big.NewInt(2)
	return tinyOrderCurve{Curve: base, params: &p}
}

func (c tinyOrderCurve) Params() *curve.Params {
	return c.params
}

func TestInvalidChildKey_Surfaced(t *testing.T) {
	t.Parallel()
	tiny := NewDeriver(newTinyOrderCurve())

	_, _, err := tiny.MasterKeyFromSeed(make([]byte, 32), "", mainnet)
	require.ErrorIs(t, err, kterr.ErrInvalidChildKey)

	master, pub, err := MasterKeyFromSeed(make([]byte, 32), "", mainnet)
	require.NoError(t, err)

	_, err = tiny.DeriveChild(master, 5, false)
	require.ErrorIs(t, err, kterr.ErrInvalidChildKey)

	var ke *kterr.KeytreeError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, "5", ke.Details["child"], "the failing index is reported, not skipped")

	_, err = tiny.DeriveChild(master, 5, true)
	require.ErrorIs(t, err, kterr.ErrInvalidChildKey)
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, "5'", ke.Details["child"])

	_, err = tiny.DerivePublicChild(pub, 9, false)
	require.ErrorIs(t, err, kterr.ErrInvalidChildKey)
}

func TestInvalidChildKey_ParseRejectsScalarAboveOrder(t *testing.T) {
	t.Parallel()
	tiny := NewDeriver(newTinyOrderCurve())
	_, err := tiny.ParsePrivate(bip32Vectors[0].steps[0].xprv)
	require.ErrorIs(t, err, kterr.ErrInvalidPrivateKey)
}

func TestNewDeriver_Default(t *testing.T) {
	t.Parallel()
	d := NewDeriver(curve.Secp256k1())
	a, _, err := d.MasterKeyFromSeed(make([]byte, 16), "", mainnet)
	require.NoError(t, err)
	b, _, err := Default().MasterKeyFromSeed(make([]byte, 16), "", mainnet)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
