package mnemonic

import (
	"testing"
)

func BenchmarkGenerate128(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Generate(128, nil)
	}
}

func BenchmarkGenerate256(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Generate(256, nil)
	}
}

func BenchmarkValidate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Validate(abandonAbout, nil)
	}
}

func BenchmarkWordsToSeed(b *testing.B) {
	words := Split(abandonAbout)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seed, err := WordsToSeed(words, "", nil)
		if err == nil {
			seed.Destroy()
		}
	}
}

func BenchmarkSuggestWord(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = SuggestWord("abondon", nil) //nolint:misspell // intentional typo
	}
}
