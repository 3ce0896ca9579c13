package codec

import (
	"strings"

	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Encoding selects the checksum constant of a Bech32 string.
type Encoding uint32

// Checksum constants from BIP173 and BIP350.
const (
	Bech32  Encoding = 1
	Bech32m Encoding = 0x2bc830a3
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case Bech32:
		return "bech32"
	case Bech32m:
		return "bech32m"
	default:
		return "unknown"
	}
}

const (
	bech32Charset   = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
	bech32MaxLen    = 90
	bech32ChecksumN = 6
	bech32Separator = '1'
)

//nolint:gochecknoglobals // BCH generator coefficients
var bech32Generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

// Polymod computes the Bech32 BCH checksum over 5-bit values.
func Polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= bech32Generator[i]
			}
		}
	}
	return chk
}

// hrpExpand returns the high bits of each HRP character, a zero, then the low bits.
func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

func bech32Checksum(hrp string, data []byte, enc Encoding) []byte {
	values := make([]byte, 0, len(hrp)*2+1+len(data)+bech32ChecksumN)
	values = append(values, hrpExpand(hrp)...)
	values = append(values, data...)
	values = append(values, make([]byte, bech32ChecksumN)...)
	mod := Polymod(values) ^ uint32(enc)

	out := make([]byte, bech32ChecksumN)
	for i := range out {
		out[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return out
}

// bech32Verify returns the encoding whose constant matches the checksum, if any.
func bech32Verify(hrp string, data []byte) (Encoding, bool) {
	values := make([]byte, 0, len(hrp)*2+1+len(data))
	values = append(values, hrpExpand(hrp)...)
	values = append(values, data...)
	switch Encoding(Polymod(values)) {
	case Bech32:
		return Bech32, true
	case Bech32m:
		return Bech32m, true
	default:
		return 0, false
	}
}

// Bech32Encode encodes an HRP and 5-bit data values with the given checksum encoding.
// The output is always lowercase.
func Bech32Encode(hrp string, data []byte, enc Encoding) (string, error) {
	if enc != Bech32 && enc != Bech32m {
		return "", kterr.Newf(kterr.ErrInvalidInput, "unknown bech32 encoding %#x", uint32(enc))
	}
	if err := validateHRP(hrp); err != nil {
		return "", err
	}
	hrp = strings.ToLower(hrp)

	if len(hrp)+1+len(data)+bech32ChecksumN > bech32MaxLen {
		return "", kterr.Newf(kterr.ErrMalformedSerialization,
			"encoded length %d exceeds %d", len(hrp)+1+len(data)+bech32ChecksumN, bech32MaxLen)
	}

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(data) + bech32ChecksumN)
	sb.WriteString(hrp)
	sb.WriteByte(bech32Separator)
	for _, v := range data {
		if v >= 32 {
			return "", kterr.Newf(kterr.ErrInvalidInput, "data value %d is not 5-bit", v)
		}
		sb.WriteByte(bech32Charset[v])
	}
	for _, v := range bech32Checksum(hrp, data, enc) {
		sb.WriteByte(bech32Charset[v])
	}
	return sb.String(), nil
}

// Bech32Decode parses a Bech32 or Bech32m string.
// It returns the lowercase HRP, the 5-bit data without checksum, and the
// encoding whose constant validated the checksum.
func Bech32Decode(s string) (string, []byte, Encoding, error) {
	if len(s) > bech32MaxLen {
		return "", nil, 0, kterr.Newf(kterr.ErrMalformedSerialization,
			"length %d exceeds %d", len(s), bech32MaxLen)
	}

	var hasLower, hasUpper bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 33 || c > 126 {
			return "", nil, 0, kterr.Newf(kterr.ErrMalformedSerialization,
				"invalid character %#x at position %d", c, i)
		}
		hasLower = hasLower || (c >= 'a' && c <= 'z')
		hasUpper = hasUpper || (c >= 'A' && c <= 'Z')
	}
	if hasLower && hasUpper {
		return "", nil, 0, kterr.Newf(kterr.ErrMalformedSerialization, "mixed case")
	}
	s = strings.ToLower(s)

	pos := strings.LastIndexByte(s, bech32Separator)
	if pos < 1 {
		return "", nil, 0, kterr.Newf(kterr.ErrMalformedSerialization, "missing separator or empty hrp")
	}
	if pos+bech32ChecksumN+1 > len(s) {
		return "", nil, 0, kterr.Newf(kterr.ErrMalformedSerialization, "checksum too short")
	}

	hrp := s[:pos]
	data := make([]byte, 0, len(s)-pos-1)
	for i := pos + 1; i < len(s); i++ {
		v := strings.IndexByte(bech32Charset, s[i])
		if v < 0 {
			return "", nil, 0, kterr.Newf(kterr.ErrMalformedSerialization,
				"invalid data character %q at position %d", s[i], i)
		}
		data = append(data, byte(v))
	}

	enc, ok := bech32Verify(hrp, data)
	if !ok {
		return "", nil, 0, kterr.ErrChecksumMismatch
	}

	return hrp, data[:len(data)-bech32ChecksumN], enc, nil
}

// ConvertBits regroups a slice of fromBits-wide values into toBits-wide values.
// With pad set, a trailing partial group is zero padded. Without it, a
// partial group or non-zero padding is an error.
func ConvertBits(data []byte, fromBits, toBits uint8, pad bool) ([]byte, error) {
	if fromBits < 1 || fromBits > 8 || toBits < 1 || toBits > 8 {
		return nil, kterr.Newf(kterr.ErrInvalidInput, "bit widths must be 1..8")
	}

	var acc uint32
	var bits uint8
	maxv := uint32(1)<<toBits - 1
	out := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)

	for _, v := range data {
		if uint32(v)>>fromBits != 0 {
			return nil, kterr.Newf(kterr.ErrMalformedSerialization, "value %d exceeds %d bits", v, fromBits)
		}
		acc = acc<<fromBits | uint32(v)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}

	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits || acc<<(toBits-bits)&maxv != 0 {
		return nil, kterr.Newf(kterr.ErrMalformedSerialization, "invalid padding")
	}

	return out, nil
}

func validateHRP(hrp string) error {
	if len(hrp) < 1 || len(hrp) > 83 {
		return kterr.Newf(kterr.ErrMalformedSerialization, "hrp length %d out of range", len(hrp))
	}
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return kterr.Newf(kterr.ErrMalformedSerialization, "invalid hrp character %#x", hrp[i])
		}
	}
	return nil
}

// ValidHRP reports whether hrp can be used as a Bech32 human-readable part.
func ValidHRP(hrp string) bool {
	return validateHRP(hrp) == nil
}
