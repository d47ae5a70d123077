// Package spell provides word-validity oracles for dehyphenation.
//
// Two implementations are available: Checker, backed by a trained
// sajari/fuzzy spelling model with ranked suggestions, and Wordlist, a
// plain in-memory set for tests and embedded deployments. Both satisfy
// dehyphen.Oracle and are safe for concurrent readers once built.
package spell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sajari/fuzzy"
)

// ErrEmptyWordlist is returned when a checker is built from a source
// containing no words.
var ErrEmptyWordlist = errors.New("spell: wordlist contains no words")

// suggestionDepth controls how aggressively the fuzzy model indexes
// deletions; 2 covers the single- and double-edit typos that matter
// for hyphenation merges without blowing up memory.
const suggestionDepth = 2

// Checker validates words against a known vocabulary and produces
// ranked near-match suggestions from a fuzzy spelling model.
type Checker struct {
	known map[string]bool
	model *fuzzy.Model
}

// NewChecker builds a checker from newline-separated words.
func NewChecker(r io.Reader) (*Checker, error) {
	c := &Checker{
		known: make(map[string]bool),
		model: fuzzy.NewModel(),
	}
	c.model.SetDepth(suggestionDepth)

	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		c.known[word] = true
		words = append(words, strings.ToLower(word))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("spell: reading wordlist: %w", err)
	}
	if len(c.known) == 0 {
		return nil, ErrEmptyWordlist
	}

	c.model.Train(words)
	return c, nil
}

// NewCheckerFromFile builds a checker from a wordlist file such as
// /usr/share/dict/words.
func NewCheckerFromFile(path string) (*Checker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("spell: opening wordlist: %w", err)
	}
	defer f.Close()
	return NewChecker(f)
}

// IsValid reports whether the word is in the vocabulary, either
// exactly or case-folded.
func (c *Checker) IsValid(word string) bool {
	return c.known[word] || c.known[strings.ToLower(word)]
}

// Suggest returns ranked spelling suggestions for the word.
func (c *Checker) Suggest(word string) []string {
	return c.model.Suggestions(strings.ToLower(word), false)
}

// Wordlist is a minimal set-backed oracle. Suggestions are limited to
// case variants that exist in the set.
type Wordlist struct {
	known map[string]bool
}

// NewWordlist builds an oracle from the given words.
func NewWordlist(words ...string) *Wordlist {
	w := &Wordlist{known: make(map[string]bool, len(words))}
	for _, word := range words {
		w.known[word] = true
	}
	return w
}

// IsValid reports whether the word is in the set.
func (w *Wordlist) IsValid(word string) bool {
	return w.known[word]
}

// Suggest returns the case variants of word present in the set.
func (w *Wordlist) Suggest(word string) []string {
	var out []string
	lower := strings.ToLower(word)
	if w.known[lower] {
		out = append(out, lower)
	}
	if title := titleCase(lower); title != lower && w.known[title] {
		out = append(out, title)
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
