package mnemonic

import (
	"math"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// MaxTypoDistance is the maximum Levenshtein distance to consider a suggestion.
const MaxTypoDistance = 2

// TypoInfo contains information about a detected typo and its suggestion.
type TypoInfo struct {
	// Index is the word position in the phrase (0-based).
	Index int
	// Word is the original (possibly misspelled) word.
	Word string
	// Suggestion is the closest wordlist entry, or empty if none found.
	Suggestion string
	// Distance is the Levenshtein distance to the suggestion.
	Distance int
}

// SuggestWord finds the closest wordlist entry to input.
// Returns empty string if nothing is within MaxTypoDistance.
func SuggestWord(input string, wl *Wordlist) string {
	wl = orDefault(wl)
	input = strings.ToLower(input)
	if wl.Contains(input) {
		return input
	}

	minDist := math.MaxInt
	var suggestion string
	for _, word := range wl.words {
		if dist := levenshtein.ComputeDistance(input, word); dist < minDist {
			minDist = dist
			suggestion = word
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// DetectTypos returns every word of phrase that is not in the wordlist,
// with the closest suggestion for each.
func DetectTypos(phrase string, wl *Wordlist) []TypoInfo {
	wl = orDefault(wl)
	var typos []TypoInfo

	for i, word := range Split(Normalize(phrase)) {
		if wl.Contains(word) {
			continue
		}
		suggestion := SuggestWord(word, wl)
		distance := 0
		if suggestion != "" {
			distance = levenshtein.ComputeDistance(word, suggestion)
		}
		typos = append(typos, TypoInfo{
			Index:      i,
			Word:       word,
			Suggestion: suggestion,
			Distance:   distance,
		})
	}

	return typos
}

// FormatTypoSuggestions formats typo information into human-readable suggestions.
func FormatTypoSuggestions(typos []TypoInfo) string {
	if len(typos) == 0 {
		return ""
	}

	var b strings.Builder
	for i, typo := range typos {
		if i > 0 {
			b.WriteByte('\n')
		}
		// Word position is 1-indexed for human readability
		b.WriteString("Word ")
		b.WriteString(strconv.Itoa(typo.Index + 1))
		b.WriteString(": '")
		b.WriteString(typo.Word)
		b.WriteByte('\'')
		if typo.Suggestion != "" {
			b.WriteString(" - did you mean '")
			b.WriteString(typo.Suggestion)
			b.WriteString("'?")
		} else {
			b.WriteString(" is not a valid BIP39 word")
		}
	}
	return b.String()
}
