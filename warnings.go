package morphic

import (
	"fmt"
	"strings"
)

// Warning describes a non-fatal condition encountered while
// processing a page. Warnings never stop the pipeline; they exist so
// callers can log what was recovered or dropped.
type Warning struct {
	// Code is a stable machine-readable identifier.
	Code string

	// Message is a human-readable description.
	Message string
}

// Warning codes.
const (
	// WarnOracleUnavailable: the word-validity oracle could not be
	// initialized; dehyphenation ran with heuristic validation only.
	WarnOracleUnavailable = "oracle-unavailable"

	// WarnDegenerateBBox: one or more words carried an unparsable
	// bounding box and were substituted with the zero box.
	WarnDegenerateBBox = "degenerate-bbox"

	// WarnDroppedWords: words with empty text or degenerate geometry
	// were excluded from the text layer.
	WarnDroppedWords = "dropped-words"
)

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

// FormatWarnings renders warnings as a single readable string.
//
// Example:
//
//	result, warnings, err := morphic.New().ProcessHOCR(markup, img)
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", morphic.FormatWarnings(warnings))
//	}
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}
