package hocr

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Serialize writes the page as an hOCR document. The output is built
// from the tree alone, so structural mutations (merged or deleted
// words) are reflected without needing the source markup. The result
// is well-formed XHTML and re-parses to a tree with the same node
// count.
func Serialize(p *Page, w io.Writer) error {
	var buf bytes.Buffer

	buf.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	buf.WriteString("<html xmlns=\"http://www.w3.org/1999/xhtml\">\n")
	buf.WriteString(" <head>\n")
	buf.WriteString("  <title></title>\n")
	buf.WriteString("  <meta name=\"ocr-system\" content=\"morphic\"/>\n")
	buf.WriteString("  <meta name=\"ocr-capabilities\" content=\"ocr_page ocr_line ocrx_word\"/>\n")
	buf.WriteString(" </head>\n")
	buf.WriteString(" <body>\n")

	buf.WriteString("  <div class=\"ocr_page\"")
	writeAttr(&buf, "id", p.ID)
	writeAttr(&buf, "title", pageTitle(p))
	buf.WriteString(">\n")

	for i := range p.Lines {
		writeLine(&buf, &p.Lines[i])
	}
	for i := range p.LooseWords {
		writeWord(&buf, &p.LooseWords[i], "   ")
	}

	buf.WriteString("  </div>\n")
	buf.WriteString(" </body>\n")
	buf.WriteString("</html>\n")

	_, err := w.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("hocr: writing markup: %w", err)
	}
	return nil
}

// SerializeBytes renders the page as hOCR markup in memory.
func SerializeBytes(p *Page) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes cannot fail.
	_ = Serialize(p, &buf)
	return buf.Bytes()
}

func writeLine(buf *bytes.Buffer, l *Line) {
	class := l.Class
	if class == "" {
		class = "ocr_line"
	}
	buf.WriteString("   <span class=\"" + class + "\"")
	writeAttr(buf, "id", l.ID)
	writeAttr(buf, "title", lineTitle(l))
	buf.WriteString(">\n")
	for i := range l.Words {
		writeWord(buf, &l.Words[i], "    ")
	}
	buf.WriteString("   </span>\n")
}

func writeWord(buf *bytes.Buffer, w *Word, indent string) {
	buf.WriteString(indent + "<span class=\"ocrx_word\"")
	writeAttr(buf, "id", w.ID)
	writeAttr(buf, "lang", w.Lang)
	writeAttr(buf, "title", wordTitle(w))
	buf.WriteString(">")
	buf.WriteString(escapeMarkup(w.Text))
	buf.WriteString("</span>\n")
}

// pageTitle prefers the title carried through from the source so that
// engine-specific fields round-trip verbatim.
func pageTitle(p *Page) string {
	if p.Title != "" {
		return p.Title
	}
	if !p.BBox.IsZero() {
		return FormatBBox(p.BBox)
	}
	return ""
}

func lineTitle(l *Line) string {
	if l.Title != "" {
		return l.Title
	}
	if !l.BBox.IsZero() {
		return FormatBBox(l.BBox)
	}
	return ""
}

func wordTitle(w *Word) string {
	if w.Title != "" {
		return w.Title
	}
	if w.BBox.IsZero() {
		return ""
	}
	title := FormatBBox(w.BBox)
	if w.Confidence >= 0 {
		title += fmt.Sprintf("; x_wconf %g", w.Confidence)
	}
	return title
}

func writeAttr(buf *bytes.Buffer, name, value string) {
	if value == "" {
		return
	}
	buf.WriteString(" " + name + "=\"" + escapeMarkup(value) + "\"")
}

var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
)

func escapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}
