package textlayer

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// asciiSubstitutions maps common typographic Unicode characters onto
// ASCII equivalents so that the searchable portion of a word survives
// even though the text layer uses a single unembedded font.
var asciiSubstitutions = map[rune]string{
	'‘': "'",   // left single quote
	'’': "'",   // right single quote
	'“': `"`,   // left double quote
	'”': `"`,   // right double quote
	'–': "-",   // en dash
	'—': "-",   // em dash
	'…': "...", // ellipsis
	' ': " ",   // non-breaking space
	'ﬁ': "fi",  // fi ligature
	'ﬂ': "fl",  // fl ligature
}

// stringEscaper escapes the characters that are significant inside a
// PDF literal string.
var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	"(", `\(`,
	")", `\)`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// normalizeText folds typographic characters to ASCII and drops any
// rune that remains outside the ASCII range. Dropping keeps the
// ASCII-representable part of the word searchable instead of failing
// the page.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		if sub, ok := asciiSubstitutions[r]; ok {
			b.WriteString(sub)
		}
	}
	return b.String()
}

// encodeTextRun prepares a word for inclusion in a literal string:
// normalize to ASCII, escape string delimiters, and run the result
// through the Latin-1 encoder that PDF literal strings expect.
func encodeTextRun(s string) []byte {
	escaped := stringEscaper.Replace(normalizeText(s))
	// Encoders carry transform state, so one is built per call; pages
	// may be synthesized concurrently.
	out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(escaped))
	if err != nil {
		// The input is pure ASCII at this point; the encoder cannot
		// fail, but fall through to the raw bytes rather than drop
		// the word.
		return []byte(escaped)
	}
	return out
}
