package address

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/mrz1836/keytree/internal/curve"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

const ethAddressBytes = 20

// Ethereum returns the EIP-55 checksummed address of a secp256k1 key:
// the last 20 bytes of Keccak-256 over the uncompressed X||Y.
func Ethereum(pub []byte) (string, error) {
	pt, err := curve.Secp256k1().Params().ParsePublicKey(pub)
	if err != nil {
		return "", err
	}
	uncompressed := curve.Uncompressed(pt)

	hash := sha3.NewLegacyKeccak256()
	hash.Write(uncompressed[1:]) // skip the 0x04 prefix
	return ChecksumHex(hash.Sum(nil)[12:])
}

// ChecksumHex renders a 20-byte address with the EIP-55 mixed-case checksum.
func ChecksumHex(addr []byte) (string, error) {
	if len(addr) != ethAddressBytes {
		return "", kterr.Newf(kterr.ErrInvalidInput, "expected %d bytes, got %d", ethAddressBytes, len(addr))
	}

	addrHex := hex.EncodeToString(addr)

	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(addrHex))
	hashBytes := hash.Sum(nil)

	result := make([]byte, len(addrHex))
	for i := 0; i < len(addrHex); i++ {
		result[i] = checksumChar(addrHex[i], hashBytes[i/2], i%2 == 1)
	}
	return "0x" + string(result), nil
}

// checksumChar uppercases a hex letter when its hash nibble is 8 or more.
func checksumChar(c, hashByte byte, isOddPosition bool) byte {
	if c >= '0' && c <= '9' {
		return c
	}

	nibble := hashByte >> 4
	if isOddPosition {
		nibble = hashByte & 0x0F
	}

	if nibble >= 8 {
		return c - 32 // Uppercase
	}
	return c
}

// ValidEthereum reports whether s is a 0x-prefixed 20-byte hex address
// whose mixed case, if any, matches its EIP-55 checksum.
func ValidEthereum(s string) bool {
	if len(s) != 2+2*ethAddressBytes || !strings.HasPrefix(s, "0x") {
		return false
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return false
	}

	body := s[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	want, err := ChecksumHex(raw)
	return err == nil && want == s
}
