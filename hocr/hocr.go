// Package hocr provides parsing, mutation, and serialization of hOCR
// documents, the HTML-based interchange format used by OCR engines to
// report recognized text with positional metadata.
//
// The package builds a strongly-typed Page -> Line -> Word tree from
// hOCR markup. Parsing is tolerant by design: a strict XML parse is
// attempted first, and malformed documents fall back to an
// error-recovering HTML parse, because real-world recognizer output is
// frequently not well-formed.
package hocr

// BBox is an axis-aligned pixel rectangle with the origin at the
// top-left of the source raster. X2 >= X1 and Y2 >= Y1 for all valid
// boxes; the zero value is the degenerate box substituted when a bbox
// attribute cannot be parsed.
type BBox struct {
	X1, Y1, X2, Y2 int
}

// Width returns the box width in pixels.
func (b BBox) Width() int { return b.X2 - b.X1 }

// Height returns the box height in pixels.
func (b BBox) Height() int { return b.Y2 - b.Y1 }

// IsZero reports whether the box is the degenerate zero box.
func (b BBox) IsZero() bool { return b == BBox{} }

// Union returns the smallest rectangle containing both boxes.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X1: min(b.X1, other.X1),
		Y1: min(b.Y1, other.Y1),
		X2: max(b.X2, other.X2),
		Y2: max(b.Y2, other.Y2),
	}
}

// ContainsBox reports whether other lies entirely within b.
func (b BBox) ContainsBox(other BBox) bool {
	return other.X1 >= b.X1 && other.Y1 >= b.Y1 &&
		other.X2 <= b.X2 && other.Y2 <= b.Y2
}

// Word is a single recognized token. Words are owned by exactly one
// Line (or by the Page directly, for documents without line structure)
// and are mutated only during dehyphenation.
type Word struct {
	// ID is the element id from the source markup, if any.
	ID string

	// Text is the recognized text with surrounding whitespace trimmed.
	// It may be empty.
	Text string

	// BBox is the word's pixel bounding box.
	BBox BBox

	// Confidence is the recognizer's word confidence (x_wconf), or -1
	// when the source carried none.
	Confidence float64

	// Title is the raw hOCR title attribute. Fields other than bbox
	// are preserved verbatim when the bounding box is rewritten.
	Title string

	// Lang is the element's lang attribute, if any.
	Lang string
}

// Line is an ordered sequence of Words in reading order as produced by
// the recognizer. Lines are created during parsing and never reordered;
// the only structural mutation is word removal during dehyphenation.
type Line struct {
	// ID is the element id from the source markup, if any.
	ID string

	// Class is the hOCR line class (ocr_line, ocr_header, ocr_caption,
	// or ocr_textfloat). Defaults to ocr_line when serialized empty.
	Class string

	// Words are the line's words in reading order.
	Words []Word

	// BBox is the line's pixel bounding box.
	BBox BBox

	// Title is the raw hOCR title attribute.
	Title string
}

// RemoveWord deletes the word at index i, preserving the order of the
// remaining words. Out-of-range indexes are ignored.
func (l *Line) RemoveWord(i int) {
	if i < 0 || i >= len(l.Words) {
		return
	}
	l.Words = append(l.Words[:i], l.Words[i+1:]...)
}

// Page is the root of one recognition result.
type Page struct {
	// ID is the element id from the source markup, if any.
	ID string

	// Lines are the page's lines in reading order.
	Lines []Line

	// LooseWords are words that appeared outside any line container.
	// Documents without line structure carry all their words here.
	LooseWords []Word

	// BBox is the page bounding box from the page title attribute.
	BBox BBox

	// Title is the raw hOCR title attribute of the page element.
	Title string

	// WidthPx and HeightPx are the pixel dimensions of the source
	// raster. They are supplied by the caller, not derived from the
	// tree.
	WidthPx  int
	HeightPx int
}

// WordCount returns the total number of words on the page, including
// loose words.
func (p *Page) WordCount() int {
	n := len(p.LooseWords)
	for i := range p.Lines {
		n += len(p.Lines[i].Words)
	}
	return n
}

// NodeCount returns the number of structural nodes in the tree (the
// page itself, each line, and each word).
func (p *Page) NodeCount() int {
	return 1 + len(p.Lines) + p.WordCount()
}
