package mnemonic

import (
	"regexp"
	"strings"
)

//nolint:gochecknoglobals // compiled once
var (
	// whitespaceRegex matches one or more whitespace characters.
	whitespaceRegex = regexp.MustCompile(`\s+`)

	// numberedListRegex matches numbered list prefixes like "1." "2)" "3:"
	numberedListRegex = regexp.MustCompile(`(?m)^\s*\d+[\.\)\:]\s*`)

	// bulletListRegex matches bullet prefixes like "- " "* " "• "
	bulletListRegex = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// Normalize cleans pasted phrase input: lowercase, list numbering and
// bullets removed, commas treated as spaces, whitespace collapsed.
func Normalize(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// Split breaks a phrase into words on any whitespace.
func Split(phrase string) []string {
	return strings.Fields(phrase)
}

// Join joins words with single spaces, the form hashed by WordsToSeed.
func Join(words []string) string {
	return strings.Join(words, " ")
}
