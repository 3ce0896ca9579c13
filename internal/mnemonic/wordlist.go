package mnemonic

import (
	"strings"
	"sync"

	"github.com/tyler-smith/go-bip39/wordlists"

	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// WordlistSize is the number of words in a BIP39 wordlist.
const WordlistSize = 2048

// Wordlist is an ordered BIP39 wordlist with a reverse index.
type Wordlist struct {
	words []string
	index map[string]int
}

// NewWordlist builds a Wordlist from exactly 2048 unique, non-empty words.
func NewWordlist(words []string) (*Wordlist, error) {
	if len(words) != WordlistSize {
		return nil, kterr.Newf(kterr.ErrInvalidInput, "wordlist must have %d words, got %d", WordlistSize, len(words))
	}

	wl := &Wordlist{
		words: make([]string, len(words)),
		index: make(map[string]int, len(words)),
	}
	for i, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			return nil, kterr.Newf(kterr.ErrInvalidInput, "wordlist entry %d is empty", i)
		}
		if _, dup := wl.index[w]; dup {
			return nil, kterr.Newf(kterr.ErrInvalidInput, "wordlist entry %q is duplicated", w)
		}
		wl.words[i] = w
		wl.index[w] = i
	}
	return wl, nil
}

//nolint:gochecknoglobals // lazily built read-only default wordlist
var (
	englishOnce sync.Once
	english     *Wordlist
)

// English returns the BIP39 English wordlist.
func English() *Wordlist {
	englishOnce.Do(func() {
		wl, err := NewWordlist(wordlists.English)
		if err != nil {
			panic("mnemonic: embedded English wordlist is invalid: " + err.Error())
		}
		english = wl
	})
	return english
}

// Word returns the word at index i. It panics if i is out of range.
func (w *Wordlist) Word(i int) string {
	return w.words[i]
}

// Index returns the position of word in the list.
func (w *Wordlist) Index(word string) (int, bool) {
	i, ok := w.index[word]
	return i, ok
}

// Contains reports whether word is in the list.
func (w *Wordlist) Contains(word string) bool {
	_, ok := w.index[word]
	return ok
}

// Words returns a copy of the words in order.
func (w *Wordlist) Words() []string {
	out := make([]string, len(w.words))
	copy(out, w.words)
	return out
}

// orDefault returns wl, or the English list when wl is nil.
func orDefault(wl *Wordlist) *Wordlist {
	if wl == nil {
		return English()
	}
	return wl
}
