package mnemonic

import (
	"testing"
	"unicode/utf8"
)

// FuzzNormalize tests that normalization never panics and always returns
// trimmed, lowercase, valid UTF-8 output.
func FuzzNormalize(f *testing.F) {
	f.Add("")
	f.Add("abandon")
	f.Add("  abandon  abandon  ")
	f.Add("ABANDON ABILITY")
	f.Add("1. abandon\n2. ability")
	f.Add("\t\n\r abandon \t ability \n")
	f.Add(string([]byte{0xFF, 0xFE})) // Invalid UTF-8

	f.Fuzz(func(t *testing.T, input string) {
		result := Normalize(input)

		if !utf8.ValidString(result) {
			t.Errorf("Normalize returned invalid UTF-8 for input %q", input)
		}
		if len(result) > 0 && (result[0] == ' ' || result[len(result)-1] == ' ') {
			t.Errorf("Normalize returned leading/trailing whitespace for input %q", input)
		}
		for _, r := range result {
			if r >= 'A' && r <= 'Z' {
				t.Errorf("Normalize returned uppercase character for input %q", input)
				break
			}
		}
	})
}

// FuzzValidate tests that validation never panics and that anything it
// accepts round-trips through entropy.
func FuzzValidate(f *testing.F) {
	f.Add(abandonAbout)
	f.Add("")
	f.Add("abandon")
	f.Add("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon")
	f.Add("zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo wrong")
	f.Add("\x00\x01\x02")

	f.Fuzz(func(t *testing.T, input string) {
		if err := Validate(input, nil); err != nil {
			return
		}

		words := Split(Normalize(input))
		entropy, err := WordsToEntropyChecked(words, nil)
		if err != nil {
			t.Fatalf("Validate accepted %q but decoding failed: %v", input, err)
		}
		again, err := EntropyToWords(entropy, nil)
		if err != nil {
			t.Fatalf("re-encoding failed for %q: %v", input, err)
		}
		if Join(again) != Join(words) {
			t.Errorf("round trip mismatch: %q != %q", Join(again), Join(words))
		}
	})
}

// FuzzEntropyRoundTrip tests that every valid entropy length encodes and
// decodes back to itself.
func FuzzEntropyRoundTrip(f *testing.F) {
	f.Add(make([]byte, 16))
	f.Add(make([]byte, 32))
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	f.Add([]byte{1, 2, 3})

	f.Fuzz(func(t *testing.T, entropy []byte) {
		words, err := EntropyToWords(entropy, nil)
		if err != nil {
			return
		}
		back, err := WordsToEntropyChecked(words, nil)
		if err != nil {
			t.Fatalf("decoding own output failed: %v", err)
		}
		if string(back) != string(entropy) {
			t.Errorf("entropy mismatch: %x != %x", back, entropy)
		}
	})
}

// FuzzSuggestWord tests that a suggestion is always a wordlist entry.
func FuzzSuggestWord(f *testing.F) {
	f.Add("abandon")
	f.Add("abondon") //nolint:misspell // intentional typo
	f.Add("zooo")
	f.Add("")
	f.Add("verylongwordthatdoesnotexistinthewordlist")
	f.Add("\x00\x01\x02")

	f.Fuzz(func(t *testing.T, input string) {
		if s := SuggestWord(input, nil); s != "" && !English().Contains(s) {
			t.Errorf("SuggestWord returned invalid word %q for input %q", s, input)
		}
	})
}
