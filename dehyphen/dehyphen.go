// Package dehyphen merges words that OCR captured as hyphenated
// fragments across line breaks.
//
// Typeset text breaks long words at line endings ("retriev-" / "ing"),
// and recognizers report the two halves as separate words. Downstream
// search and extraction then see two fragments instead of one word.
// This package walks adjacent line pairs, proposes merges for trailing
// hyphens, validates them against an injected word-validity oracle,
// and rewrites the page tree in place.
package dehyphen

import (
	"strings"
	"unicode"

	"github.com/Node0/morphic/hocr"
)

// Oracle answers whether a string is a known word and offers ranked
// near-match suggestions. Implementations must be safe for concurrent
// readers; the engine never mutates the oracle.
type Oracle interface {
	IsValid(word string) bool
	Suggest(word string) []string
}

// Config controls merge validation.
type Config struct {
	// MinMergedLength rejects merged words shorter than this many
	// characters.
	MinMergedLength int

	// Oracle validates candidate merges. A nil Oracle is a supported
	// configuration: the engine falls back to an alphabetic heuristic.
	Oracle Oracle
}

// DefaultConfig returns the default merge configuration.
func DefaultConfig() Config {
	return Config{MinMergedLength: 4}
}

// MergeCandidate describes one proposed hyphenation merge. Candidates
// are ephemeral: they are evaluated and consumed immediately by the
// apply step, never persisted.
type MergeCandidate struct {
	// LineIndex is the index of the line whose last word carries the
	// trailing hyphen; the continuation is the first word of the
	// following line.
	LineIndex int

	// FirstText and SecondText are the original word texts.
	FirstText  string
	SecondText string

	// MergedText is the proposed healed word.
	MergedText string

	// MergedBBox is the union of the two word boxes.
	MergedBBox hocr.BBox

	// Confidence is the validation confidence in [0,1].
	Confidence float64
}

// mergeThreshold is the minimum confidence at which a candidate is
// applied.
const mergeThreshold = 0.5

// Validation confidences, highest to lowest: exact dictionary hit,
// case-folded hit, case-folded form among the oracle's top
// suggestions, and the oracle-less alphabetic heuristic.
const (
	confidenceExact      = 0.95
	confidenceCaseFolded = 0.90
	confidenceSuggested  = 0.70
	confidenceHeuristic  = 0.60
)

// maxSuggestions bounds how deep into the oracle's suggestion list a
// candidate may match.
const maxSuggestions = 5

// Dehyphenator rewrites pages in place. It is the sole mutator of the
// hocr tree.
type Dehyphenator struct {
	cfg Config
}

// New creates a Dehyphenator with the given configuration. Zero-value
// fields fall back to defaults.
func New(cfg Config) *Dehyphenator {
	if cfg.MinMergedLength <= 0 {
		cfg.MinMergedLength = DefaultConfig().MinMergedLength
	}
	return &Dehyphenator{cfg: cfg}
}

// Process merges hyphenated word pairs on the page and returns the
// number of merges applied. Zero merges is a normal outcome. The pass
// is idempotent: once no trailing-hyphen line ending validates, a
// second call changes nothing.
func (d *Dehyphenator) Process(p *hocr.Page) int {
	merged := 0

	for i := 0; i+1 < len(p.Lines); i++ {
		c := d.evaluate(p, i)
		if c == nil || c.Confidence < mergeThreshold {
			continue
		}
		d.apply(p, c)
		merged++
	}

	return merged
}

// evaluate inspects the line pair (i, i+1) and returns a candidate if
// the pair proposes a valid merge. Only adjacent lines are considered.
func (d *Dehyphenator) evaluate(p *hocr.Page, i int) *MergeCandidate {
	cur := &p.Lines[i]
	next := &p.Lines[i+1]
	if len(cur.Words) == 0 || len(next.Words) == 0 {
		return nil
	}

	last := &cur.Words[len(cur.Words)-1]
	first := &next.Words[0]
	if last.Text == "" || first.Text == "" {
		return nil
	}
	if !strings.HasSuffix(last.Text, "-") {
		return nil
	}

	mergedText := strings.TrimRight(last.Text, "-") + first.Text
	if len(mergedText) < d.cfg.MinMergedLength {
		return nil
	}

	conf, ok := d.validate(mergedText)
	if !ok {
		return nil
	}

	return &MergeCandidate{
		LineIndex:  i,
		FirstText:  last.Text,
		SecondText: first.Text,
		MergedText: mergedText,
		MergedBBox: last.BBox.Union(first.BBox),
		Confidence: conf,
	}
}

// validate scores a merged word. With an oracle, only dictionary
// evidence counts; without one, the merge is accepted when the word is
// purely alphabetic (apostrophes permitted).
//
// Whether the hyphenated form itself is a legitimate compound is
// deliberately not consulted: a merged form that validates wins even
// when "first-second" would also be a word. Compound false positives
// are an accepted limitation.
func (d *Dehyphenator) validate(merged string) (float64, bool) {
	if d.cfg.Oracle == nil {
		if !isAlphabetic(merged) {
			return 0, false
		}
		return confidenceHeuristic, true
	}

	if d.cfg.Oracle.IsValid(merged) {
		return confidenceExact, true
	}
	folded := strings.ToLower(merged)
	if d.cfg.Oracle.IsValid(folded) {
		return confidenceCaseFolded, true
	}

	suggestions := d.cfg.Oracle.Suggest(merged)
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	for _, s := range suggestions {
		if strings.ToLower(s) == folded {
			return confidenceSuggested, true
		}
	}

	return 0, false
}

// apply rewrites the tree for an accepted candidate: the hyphen word
// takes the merged text and the union box, keeping its non-bbox title
// fields, and the continuation word is deleted from the next line.
func (d *Dehyphenator) apply(p *hocr.Page, c *MergeCandidate) {
	cur := &p.Lines[c.LineIndex]
	next := &p.Lines[c.LineIndex+1]

	w := &cur.Words[len(cur.Words)-1]
	w.Text = c.MergedText
	w.BBox = c.MergedBBox
	w.Title = hocr.ReplaceBBox(w.Title, c.MergedBBox)

	next.RemoveWord(0)
}

// isAlphabetic reports whether s consists only of letters, optionally
// with apostrophes.
func isAlphabetic(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r == '\'' {
			continue
		}
		if !unicode.IsLetter(r) {
			return false
		}
		hasLetter = true
	}
	return hasLetter
}
