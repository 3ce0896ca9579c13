package codec

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kterr "github.com/mrz1836/keytree/pkg/errors"
)

func TestDecodeSegwit_Valid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		hrp     string
		addr    string
		version byte
		program string
	}{
		{"bc", "BC1QW508D6QEJXTDG4Y5R3ZARVARY0C5XW7KV8F3T4", 0, "751e76e8199196d454941c45d1b3a323f1433bd6"},
		{"tb", "tb1qrp33g0q5c5txsp9arysrx4k6zdkfs4nce4xj0gdcccefvpysxf3q0sl5k7", 0, "1863143c14c5166804bd19203356da136c985678cd4d27a1b8c6329604903262"},
		{"bc", "bc1pw508d6qejxtdg4y5r3zarvary0c5xw7kw508d6qejxtdg4y5r3zarvary0c5xw7kt5nd6y", 1, "751e76e8199196d454941c45d1b3a323f1433bd6751e76e8199196d454941c45d1b3a323f1433bd6"},
		{"bc", "BC1SW50QGDZ25J", 16, "751e"},
		{"bc", "bc1zw508d6qejxtdg4y5r3zarvaryvaxxpcs", 2, "751e76e8199196d454941c45d1b3a323"},
		{"tb", "tb1pqqqqp399et2xygdj5xreqhjjvcmzhxw4aywxecjdzew6hylgvsesf3hn0c", 1, "000000c4a5cad46221b2a187905e5266362b99d5e91c6ce24d165dab93e86433"},
		{"bc", "bc1p0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vqzk5jj0", 1, "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.addr, func(t *testing.T) {
			t.Parallel()
			version, program, err := DecodeSegwit(tc.hrp, tc.addr)
			require.NoError(t, err)
			assert.Equal(t, tc.version, version)
			assert.Equal(t, tc.program, hex.EncodeToString(program))

			encoded, err := EncodeSegwit(tc.hrp, version, program)
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(tc.addr), encoded)
		})
	}
}

func TestDecodeSegwit_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		hrp  string
		addr string
		want error
	}{
		{"wrong hrp", "bc", "tc1p0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vq5zuyut", kterr.ErrMalformedSerialization},
		{"v1 with bech32 constant", "bc", "bc1p0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vqh2y7hd", kterr.ErrChecksumMismatch},
		{"v16 with bech32 constant", "bc", "BC1S0XLXVLHEMJA6C4DQV22UAPCTQUPFHLXM9H8Z3K2E72Q4K9HCZ7VQ54WELL", kterr.ErrChecksumMismatch},
		{"v0 with bech32m constant", "bc", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kemeawh", kterr.ErrChecksumMismatch},
		{"v0 32-byte with bech32m constant", "tb", "tb1q0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7vq24jc47", kterr.ErrChecksumMismatch},
		{"invalid character", "bc", "bc1p38j9r5y49hruaue7wxjce0updqjuyyx0kh56v8s25huc6995vvpql3jow4", kterr.ErrMalformedSerialization},
		{"mixed case", "tb", "tb1qrp33g0q5c5txsp9arysrx4k6zdkfs4nce4xj0gdcccefvpysxf3q0sL5k7", kterr.ErrMalformedSerialization},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := DecodeSegwit(tc.hrp, tc.addr)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecodeSegwit_InvalidProgram(t *testing.T) {
	t.Parallel()
	for _, addr := range []string{
		"BC130XLXVLHEMJA6C4DQV22UAPCTQUPFHLXM9H8Z3K2E72Q4K9HCZ7VQ7ZWS8R",
		"bc1pw5dgrnzv",
		"bc1p0xlxvlhemja6c4dqv22uapctqupfhlxm9h8z3k2e72q4k9hcz7v8n0nx0muaewav253zgeav",
		"BC1QR508D6QEJXTDG4Y5R3ZARVARYV98GJ9P",
		"bc1zw508d6qejxtdg4y5r3zarvaryvqyzf3du",
		"tb1pw508d6qejxtdg4y5r3zarqfsj6c3",
		"bc1gmk9yu",
	} {
		_, _, err := DecodeSegwit("bc", addr)
		require.Error(t, err, addr)
	}
}

func TestSegwit_RoundTripAllVersions(t *testing.T) {
	t.Parallel()
	for version := byte(0); version <= MaxWitnessVersion; version++ {
		lengths := []int{2, 20, 32, 40}
		if version == 0 {
			lengths = []int{20, 32}
		}
		for _, n := range lengths {
			program := bytes.Repeat([]byte{version + 1}, n)
			program[0] = byte(n)

			addr, err := EncodeSegwit("bc", version, program)
			require.NoError(t, err)

			gotVersion, gotProgram, err := DecodeSegwit("bc", addr)
			require.NoError(t, err)
			assert.Equal(t, version, gotVersion)
			assert.Equal(t, program, gotProgram)

			// One flipped checksum character must fail
			b := []byte(addr)
			last := len(b) - 1
			if b[last] == 'q' {
				b[last] = 'p'
			} else {
				b[last] = 'q'
			}
			_, _, err = DecodeSegwit("bc", string(b))
			require.ErrorIs(t, err, kterr.ErrChecksumMismatch)
		}
	}
}

func TestEncodeSegwit_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		version byte
		n       int
	}{
		{"version too high", 17, 20},
		{"program too short", 1, 1},
		{"program too long", 1, 41},
		{"v0 wrong length", 0, 21},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := EncodeSegwit("bc", tc.version, make([]byte, tc.n))
			require.ErrorIs(t, err, kterr.ErrMalformedSerialization)
		})
	}
}
