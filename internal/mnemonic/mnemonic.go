// Package mnemonic implements BIP39: entropy to word phrase and back, and
// phrase plus passphrase to a 64-byte seed.
package mnemonic

import (
	"crypto/sha256"
	"crypto/sha512"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"

	"github.com/mrz1836/keytree/internal/securemem"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// BIP39 parameters.
const (
	MinEntropyBits = 128
	MaxEntropyBits = 256
	MinWords       = 12
	MaxWords       = 24
	SeedSize       = 64

	bitsPerWord      = 11
	pbkdf2Iterations = 2048
	saltPrefix       = "mnemonic"
)

// EntropyToWords encodes entropy as a BIP39 word sequence.
// The entropy must be 128 to 256 bits in steps of 32.
func EntropyToWords(entropy []byte, wl *Wordlist) ([]string, error) {
	wl = orDefault(wl)

	entBits := len(entropy) * 8
	if entBits%32 != 0 || entBits < MinEntropyBits || entBits > MaxEntropyBits {
		return nil, kterr.Newf(kterr.ErrInvalidEntropyLength, "got %d bits", entBits)
	}

	// At most 8 checksum bits, so the first hash byte is enough
	hash := sha256.Sum256(entropy)
	data := make([]byte, len(entropy)+1)
	copy(data, entropy)
	data[len(entropy)] = hash[0]
	defer securemem.Zero(data)

	total := entBits + entBits/32
	words := make([]string, total/bitsPerWord)
	for i := range words {
		idx := 0
		for j := 0; j < bitsPerWord; j++ {
			bit := i*bitsPerWord + j
			idx = idx<<1 | int(data[bit/8]>>(7-bit%8)&1)
		}
		words[i] = wl.Word(idx)
	}
	return words, nil
}

// WordsToEntropy decodes words back to entropy. The checksum bits are
// dropped without being verified; use WordsToEntropyChecked for that.
func WordsToEntropy(words []string, wl *Wordlist) ([]byte, error) {
	entropy, _, err := decodeWords(words, orDefault(wl))
	return entropy, err
}

// WordsToEntropyChecked decodes words back to entropy and verifies the
// embedded checksum.
func WordsToEntropyChecked(words []string, wl *Wordlist) ([]byte, error) {
	entropy, checksum, err := decodeWords(words, orDefault(wl))
	if err != nil {
		return nil, err
	}

	csBits := uint(len(words) / 3) //nolint:gosec // len(words) is bounded by MaxWords
	hash := sha256.Sum256(entropy)
	if hash[0]>>(8-csBits) != checksum {
		securemem.Zero(entropy)
		return nil, kterr.Newf(kterr.ErrInvalidMnemonic, "checksum mismatch")
	}
	return entropy, nil
}

// decodeWords regroups the 11-bit word indices into bytes and splits the
// entropy from the trailing checksum bits.
func decodeWords(words []string, wl *Wordlist) ([]byte, byte, error) {
	n := len(words)
	if n < MinWords || n > MaxWords || n%3 != 0 {
		return nil, 0, kterr.Newf(kterr.ErrInvalidMnemonic, "word count %d is not one of 12, 15, 18, 21, 24", n)
	}

	buf := make([]byte, (n*bitsPerWord+7)/8)
	defer securemem.Zero(buf)

	for i, w := range words {
		idx, ok := wl.Index(w)
		if !ok {
			return nil, 0, unknownWord(w, i, wl)
		}
		for j := 0; j < bitsPerWord; j++ {
			if idx>>(bitsPerWord-1-j)&1 == 1 {
				bit := i*bitsPerWord + j
				buf[bit/8] |= 1 << (7 - bit%8)
			}
		}
	}

	// ENT = 32 * n / 3 bits; the checksum is the next n/3 bits
	entLen := n * 4 / 3
	csBits := uint(n / 3) //nolint:gosec // n is bounded above
	entropy := make([]byte, entLen)
	copy(entropy, buf[:entLen])
	checksum := buf[entLen] >> (8 - csBits)

	return entropy, checksum, nil
}

// WordsToSeed derives the 64-byte BIP39 seed from a word sequence and an
// optional passphrase. Both are NFKD-normalized before hashing.
//
// Only the word count (12 to 24 inclusive) and wordlist membership are
// checked; the checksum is not. The caller owns the returned seed and
// should Destroy it when done.
func WordsToSeed(words []string, passphrase string, wl *Wordlist) (*securemem.SecureBytes, error) {
	wl = orDefault(wl)

	if len(words) < MinWords || len(words) > MaxWords {
		return nil, kterr.Newf(kterr.ErrInvalidMnemonic, "word count %d outside %d..%d", len(words), MinWords, MaxWords)
	}
	for i, w := range words {
		if !wl.Contains(w) {
			return nil, unknownWord(w, i, wl)
		}
	}

	password := []byte(norm.NFKD.String(strings.Join(words, " ")))
	defer securemem.Zero(password)
	salt := []byte(saltPrefix + norm.NFKD.String(passphrase))
	defer securemem.Zero(salt)

	seed := pbkdf2.Key(password, salt, pbkdf2Iterations, SeedSize, sha512.New)
	return securemem.Take(seed)
}

// PhraseToSeed normalizes and splits phrase, then calls WordsToSeed.
func PhraseToSeed(phrase, passphrase string, wl *Wordlist) (*securemem.SecureBytes, error) {
	return WordsToSeed(Split(Normalize(phrase)), passphrase, wl)
}

// Generate returns a new random phrase with the given entropy size in bits.
func Generate(bits int, wl *Wordlist) ([]string, error) {
	if bits%32 != 0 || bits < MinEntropyBits || bits > MaxEntropyBits {
		return nil, kterr.Newf(kterr.ErrInvalidEntropyLength, "got %d bits", bits)
	}

	entropy, err := securemem.SecureRandomBytes(bits / 8)
	if err != nil {
		return nil, kterr.Wrap(err, "reading entropy")
	}
	defer entropy.Destroy()

	return EntropyToWords(entropy.Bytes(), wl)
}

// BitsForWords returns the entropy size for a standard word count.
func BitsForWords(n int) (int, error) {
	if n < MinWords || n > MaxWords || n%3 != 0 {
		return 0, kterr.Newf(kterr.ErrInvalidInput, "word count must be 12, 15, 18, 21 or 24, got %d", n)
	}
	return n * 32 / 3, nil
}

// Validate performs the full BIP39 check on a phrase: standard word count,
// wordlist membership and checksum.
func Validate(phrase string, wl *Wordlist) error {
	words := Split(Normalize(phrase))
	if len(words) == 0 {
		return kterr.Newf(kterr.ErrInvalidMnemonic, "empty phrase")
	}
	entropy, err := WordsToEntropyChecked(words, wl)
	if err != nil {
		return err
	}
	securemem.Zero(entropy)
	return nil
}

func unknownWord(word string, position int, wl *Wordlist) error {
	err := kterr.WithDetails(kterr.ErrUnknownWord, map[string]string{
		"word":     word,
		"position": strconv.Itoa(position + 1),
	})
	if s := SuggestWord(word, wl); s != "" {
		err = kterr.WithSuggestion(err, "did you mean '"+s+"'?")
	}
	return err
}
