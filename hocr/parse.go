package hocr

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrUnparsableMarkup is returned when a document cannot be parsed by
// the strict XML parser or the error-tolerant HTML parser.
var ErrUnparsableMarkup = errors.New("hocr: markup not parsable as XML or HTML")

// lineClasses are the hOCR element classes treated as line containers.
var lineClasses = map[string]bool{
	"ocr_line":      true,
	"ocr_header":    true,
	"ocr_caption":   true,
	"ocr_textfloat": true,
}

// Parse reads hOCR markup and returns the first recognized page.
//
// A strict XML parse is attempted first; if the document is not
// well-formed the error-recovering HTML parser is used instead.
// Documents that contain no hOCR elements parse to an empty Page.
func Parse(r io.Reader) (*Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("hocr: reading markup: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses hOCR markup from an in-memory document.
func ParseBytes(data []byte) (*Page, error) {
	if p, err := parseStrict(data); err == nil {
		return p, nil
	}

	p, err := parseLenient(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableMarkup, err)
	}
	return p, nil
}

// parseStrict walks the document with the stdlib XML tokenizer. It
// fails on anything that is not well-formed XML, including undeclared
// HTML entities, which pushes such documents onto the lenient path.
func parseStrict(data []byte) (*Page, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	b := newTreeBuilder()

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			attrs := make(map[string]string, len(t.Attr))
			for _, a := range t.Attr {
				attrs[a.Name.Local] = a.Value
			}
			b.open(attrs)
		case xml.EndElement:
			b.close()
		case xml.CharData:
			b.text(string(t))
		}
	}

	return b.result(), nil
}

// parseLenient uses the recovering HTML parser, honoring any declared
// character encoding.
func parseLenient(data []byte) (*Page, error) {
	r, err := charset.NewReader(bytes.NewReader(data), "text/html")
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	b := newTreeBuilder()
	walkHTML(doc, b)
	return b.result(), nil
}

// walkHTML feeds an HTML node tree through the same builder used by
// the strict parser, so both paths share one set of hOCR semantics.
func walkHTML(n *html.Node, b *treeBuilder) {
	switch n.Type {
	case html.ElementNode:
		attrs := make(map[string]string, len(n.Attr))
		for _, a := range n.Attr {
			attrs[a.Key] = a.Val
		}
		b.open(attrs)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkHTML(c, b)
		}
		b.close()
	case html.TextNode:
		b.text(n.Data)
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walkHTML(c, b)
		}
	}
}

// nodeKind identifies what an open element contributes to the tree.
type nodeKind int

const (
	kindOther nodeKind = iota
	kindPage
	kindLine
	kindWord
)

// treeBuilder assembles a Page from a stream of element open/close and
// text events. Only the first ocr_page element is captured; trailing
// pages in multi-page documents are ignored (the pipeline processes
// one page per recognition result).
type treeBuilder struct {
	page     Page
	havePage bool
	pageDone bool

	stack []nodeKind

	line     *Line
	word     *Word
	wordText strings.Builder
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{}
}

func (b *treeBuilder) open(attrs map[string]string) {
	kind := kindOther

	if !b.pageDone {
		switch {
		case b.word != nil:
			// Markup nested inside a word only contributes text.
		case attrs["class"] == "ocr_page":
			if !b.havePage {
				kind = kindPage
				b.havePage = true
				b.page.ID = attrs["id"]
				b.page.Title = attrs["title"]
				b.page.BBox, _ = ParseTitle(attrs["title"])
			}
		case lineClasses[attrs["class"]]:
			if b.line == nil {
				kind = kindLine
				box, _ := ParseTitle(attrs["title"])
				b.line = &Line{
					ID:    attrs["id"],
					Class: attrs["class"],
					BBox:  box,
					Title: attrs["title"],
				}
			}
		case attrs["class"] == "ocrx_word":
			kind = kindWord
			box, conf := ParseTitle(attrs["title"])
			b.word = &Word{
				ID:         attrs["id"],
				BBox:       box,
				Confidence: conf,
				Title:      attrs["title"],
				Lang:       attrs["lang"],
			}
			b.wordText.Reset()
		}
	}

	b.stack = append(b.stack, kind)
}

func (b *treeBuilder) close() {
	if len(b.stack) == 0 {
		return
	}
	kind := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]

	switch kind {
	case kindWord:
		b.word.Text = strings.TrimSpace(b.wordText.String())
		if b.line != nil {
			b.line.Words = append(b.line.Words, *b.word)
		} else {
			b.page.LooseWords = append(b.page.LooseWords, *b.word)
		}
		b.word = nil
	case kindLine:
		b.page.Lines = append(b.page.Lines, *b.line)
		b.line = nil
	case kindPage:
		b.pageDone = true
	}
}

func (b *treeBuilder) text(s string) {
	if b.word != nil {
		b.wordText.WriteString(s)
	}
}

func (b *treeBuilder) result() *Page {
	p := b.page
	return &p
}
