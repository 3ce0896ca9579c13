package codec

import (
	"crypto/subtle"

	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Base58 alphabet used by Bitcoin.
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// base58Index maps an ASCII byte to its alphabet value, or -1.
//
//nolint:gochecknoglobals // read-only lookup table
var base58Index = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}
	for i := 0; i < len(base58Alphabet); i++ {
		idx[base58Alphabet[i]] = int8(i) //nolint:gosec // alphabet has 58 entries
	}
	return idx
}()

// Base58Encode encodes data to Base58.
// Each leading zero byte becomes a leading '1'.
func Base58Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var zeros int
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	size := (len(data)-zeros)*138/100 + 1 // log(256) / log(58), rounded up
	buf := make([]byte, size)

	for _, b := range data[zeros:] {
		carry := int(b)
		for j := len(buf) - 1; j >= 0; j-- {
			carry += int(buf[j]) << 8
			buf[j] = byte(carry % 58)
			carry /= 58
		}
	}

	j := 0
	for j < len(buf) && buf[j] == 0 {
		j++
	}

	result := make([]byte, zeros+len(buf)-j)
	for i := 0; i < zeros; i++ {
		result[i] = '1'
	}
	for i, b := range buf[j:] {
		result[zeros+i] = base58Alphabet[b]
	}

	return string(result)
}

// Base58Decode decodes a Base58-encoded string.
// An empty string decodes to an empty slice.
func Base58Decode(s string) ([]byte, error) {
	zeros := 0
	for zeros < len(s) && s[zeros] == '1' {
		zeros++
	}

	size := (len(s)-zeros)*733/1000 + 1 // log(58) / log(256), rounded up
	b256 := make([]byte, size)

	for i := zeros; i < len(s); i++ {
		v := base58Index[s[i]]
		if v < 0 {
			return nil, kterr.Newf(kterr.ErrMalformedSerialization,
				"invalid base58 character %q at position %d", s[i], i)
		}
		carry := int(v)
		for j := len(b256) - 1; j >= 0; j-- {
			carry += int(b256[j]) * 58
			b256[j] = byte(carry % 256)
			carry /= 256
		}
	}

	j := 0
	for j < len(b256) && b256[j] == 0 {
		j++
	}
	result := make([]byte, zeros+len(b256)-j)
	copy(result[zeros:], b256[j:])
	return result, nil
}

// Base58CheckEncode appends a 4-byte checksum to payload and encodes the result.
func Base58CheckEncode(payload []byte) string {
	data := make([]byte, 0, len(payload)+ChecksumLen)
	data = append(data, payload...)
	sum := Checksum(payload)
	data = append(data, sum[:]...)
	return Base58Encode(data)
}

// Base58CheckEncodeVersion encodes data with a version byte and checksum.
func Base58CheckEncodeVersion(version byte, payload []byte) string {
	data := make([]byte, 0, 1+len(payload))
	data = append(data, version)
	data = append(data, payload...)
	return Base58CheckEncode(data)
}

// Base58CheckDecode decodes a Base58Check string and verifies its checksum.
// The returned payload excludes the checksum.
func Base58CheckDecode(s string) ([]byte, error) {
	decoded, err := Base58Decode(s)
	if err != nil {
		return nil, err
	}

	if len(decoded) < ChecksumLen {
		return nil, kterr.Newf(kterr.ErrMalformedSerialization,
			"decoded length %d is shorter than the checksum", len(decoded))
	}

	payload := decoded[:len(decoded)-ChecksumLen]
	expected := Checksum(payload)
	if subtle.ConstantTimeCompare(decoded[len(decoded)-ChecksumLen:], expected[:]) != 1 {
		return nil, kterr.ErrChecksumMismatch
	}

	return payload, nil
}

// Base58CheckDecodeVersion decodes a Base58Check string and splits off the version byte.
func Base58CheckDecodeVersion(s string) (byte, []byte, error) {
	payload, err := Base58CheckDecode(s)
	if err != nil {
		return 0, nil, err
	}
	if len(payload) == 0 {
		return 0, nil, kterr.Newf(kterr.ErrMalformedSerialization, "missing version byte")
	}
	return payload[0], payload[1:], nil
}
