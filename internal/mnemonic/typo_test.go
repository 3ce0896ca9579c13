package mnemonic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:misspell // intentional misspellings throughout
func TestSuggestWord(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string // empty string means no suggestion (too far)
	}{
		{name: "off by one char", input: "abondon", expected: "abandon"},
		{name: "missing letter", input: "abadon", expected: "abandon"},
		{name: "extra letter", input: "abanddon", expected: "abandon"},
		{name: "zoo typo", input: "zooo", expected: "zoo"},
		{name: "exact match", input: "abandon", expected: "abandon"},
		{name: "completely different", input: "xyzqwerty", expected: ""},
		{name: "uppercase typo", input: "ABONDON", expected: "abandon"},
		{name: "mixed case typo", input: "AbOndon", expected: "abandon"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, SuggestWord(tc.input, nil))
		})
	}
}

//nolint:misspell // intentional misspellings throughout
func TestDetectTypos(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		phrase      string
		indices     []int
		suggestions []string
	}{
		{
			name:        "single typo",
			phrase:      "abondon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
			indices:     []int{0},
			suggestions: []string{"abandon"},
		},
		{
			name:        "multiple typos",
			phrase:      "abondon abondon abandon abandon abandon abandon abandon abandon abandon abandon abandon zooo",
			indices:     []int{0, 1, 11},
			suggestions: []string{"abandon", "abandon", "zoo"},
		},
		{
			name:   "no typos",
			phrase: abandonAbout,
		},
		{
			name:        "no suggestion",
			phrase:      "abandon xyzqwerty",
			indices:     []int{1},
			suggestions: []string{""},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			typos := DetectTypos(tc.phrase, nil)
			require.Len(t, typos, len(tc.indices))
			for i, typo := range typos {
				assert.Equal(t, tc.indices[i], typo.Index)
				assert.Equal(t, tc.suggestions[i], typo.Suggestion)
				if typo.Suggestion != "" {
					assert.Positive(t, typo.Distance)
					assert.LessOrEqual(t, typo.Distance, MaxTypoDistance)
				}
			}
		})
	}
}

func TestDetectTypos_EdgeCases(t *testing.T) {
	t.Parallel()
	assert.Empty(t, DetectTypos("", nil))
	assert.Empty(t, DetectTypos("abandon", nil))
	assert.Len(t, DetectTypos("xyzabc qwerty asdfgh", nil), 3)
}

//nolint:misspell // intentional misspellings throughout
func TestFormatTypoSuggestions(t *testing.T) {
	t.Parallel()
	assert.Empty(t, FormatTypoSuggestions(nil))

	got := FormatTypoSuggestions([]TypoInfo{
		{Index: 0, Word: "abondon", Suggestion: "abandon", Distance: 1},
		{Index: 4, Word: "xyzqwerty"},
	})
	assert.Equal(t, "Word 1: 'abondon' - did you mean 'abandon'?\nWord 5: 'xyzqwerty' is not a valid BIP39 word", got)
}
