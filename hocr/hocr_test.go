package hocr

import (
	"strings"
	"testing"
)

// ============================================================================
// BBox Tests
// ============================================================================

func TestBBoxUnion(t *testing.T) {
	tests := []struct {
		name string
		a, b BBox
		want BBox
	}{
		{"disjoint", BBox{0, 0, 10, 10}, BBox{20, 20, 30, 30}, BBox{0, 0, 30, 30}},
		{"overlapping", BBox{0, 0, 15, 15}, BBox{10, 10, 20, 20}, BBox{0, 0, 20, 20}},
		{"contained", BBox{0, 0, 100, 100}, BBox{10, 10, 20, 20}, BBox{0, 0, 100, 100}},
		{"adjacent words", BBox{100, 100, 200, 130}, BBox{210, 102, 280, 128}, BBox{100, 100, 280, 130}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Union(tt.b)
			if got != tt.want {
				t.Errorf("Union() = %+v, want %+v", got, tt.want)
			}
			if !got.ContainsBox(tt.a) || !got.ContainsBox(tt.b) {
				t.Errorf("Union() = %+v does not contain both inputs", got)
			}
			// Minimality: shrinking any edge must exclude an input.
			shrunk := []BBox{
				{got.X1 + 1, got.Y1, got.X2, got.Y2},
				{got.X1, got.Y1 + 1, got.X2, got.Y2},
				{got.X1, got.Y1, got.X2 - 1, got.Y2},
				{got.X1, got.Y1, got.X2, got.Y2 - 1},
			}
			for _, s := range shrunk {
				if s.ContainsBox(tt.a) && s.ContainsBox(tt.b) {
					t.Errorf("Union() = %+v is not minimal; %+v still contains both", got, s)
				}
			}
		})
	}
}

func TestBBoxDimensions(t *testing.T) {
	b := BBox{100, 100, 200, 130}
	if b.Width() != 100 {
		t.Errorf("Width() = %d, want 100", b.Width())
	}
	if b.Height() != 30 {
		t.Errorf("Height() = %d, want 30", b.Height())
	}
	if b.IsZero() {
		t.Error("IsZero() = true for non-zero box")
	}
	if !(BBox{}).IsZero() {
		t.Error("IsZero() = false for zero box")
	}
}

// ============================================================================
// Title Attribute Tests
// ============================================================================

func TestParseTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		wantBox  BBox
		wantConf float64
	}{
		{"bbox only", "bbox 232 133 250 162", BBox{232, 133, 250, 162}, -1},
		{"bbox with confidence", "bbox 232 133 250 162; x_wconf 96", BBox{232, 133, 250, 162}, 96},
		{"extra whitespace", "  bbox 1 2 3 4 ;  x_wconf 50 ", BBox{1, 2, 3, 4}, 50},
		{"empty", "", BBox{}, -1},
		{"garbage bbox", "bbox a b c d; x_wconf 12", BBox{}, 12},
		{"short bbox", "bbox 1 2 3", BBox{}, -1},
		{"no bbox field", "baseline 0.01 -4; x_wconf 88", BBox{}, 88},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box, conf := ParseTitle(tt.title)
			if box != tt.wantBox {
				t.Errorf("ParseTitle() box = %+v, want %+v", box, tt.wantBox)
			}
			if conf != tt.wantConf {
				t.Errorf("ParseTitle() conf = %v, want %v", conf, tt.wantConf)
			}
		})
	}
}

func TestReplaceBBox(t *testing.T) {
	tests := []struct {
		name  string
		title string
		box   BBox
		want  string
	}{
		{
			"preserves trailing fields",
			"bbox 10 10 20 20; x_wconf 96",
			BBox{10, 10, 50, 22},
			"bbox 10 10 50 22; x_wconf 96",
		},
		{
			"preserves multiple fields",
			"bbox 1 2 3 4; baseline 0.01 -4; x_wconf 88",
			BBox{1, 2, 30, 40},
			"bbox 1 2 30 40; baseline 0.01 -4; x_wconf 88",
		},
		{
			"inserts when missing",
			"x_wconf 75",
			BBox{5, 6, 7, 8},
			"bbox 5 6 7 8; x_wconf 75",
		},
		{
			"empty title",
			"",
			BBox{1, 1, 2, 2},
			"bbox 1 1 2 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReplaceBBox(tt.title, tt.box)
			if got != tt.want {
				t.Errorf("ReplaceBBox() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ============================================================================
// Parser Tests
// ============================================================================

const wellFormedDoc = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
 <body>
  <div class="ocr_page" id="page_1" title="bbox 0 0 2550 3300">
   <span class="ocr_line" id="line_1" title="bbox 100 100 600 130">
    <span class="ocrx_word" id="word_1" title="bbox 100 100 200 130; x_wconf 96">The</span>
    <span class="ocrx_word" id="word_2" title="bbox 210 100 400 130; x_wconf 91">patient</span>
   </span>
   <span class="ocr_line" id="line_2" title="bbox 100 140 600 170">
    <span class="ocrx_word" id="word_3" title="bbox 100 140 220 170; x_wconf 89">had</span>
   </span>
  </div>
 </body>
</html>`

func TestParseWellFormed(t *testing.T) {
	p, err := ParseBytes([]byte(wellFormedDoc))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if p.ID != "page_1" {
		t.Errorf("page ID = %q, want page_1", p.ID)
	}
	if p.BBox != (BBox{0, 0, 2550, 3300}) {
		t.Errorf("page BBox = %+v", p.BBox)
	}
	if len(p.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(p.Lines))
	}
	if len(p.Lines[0].Words) != 2 || len(p.Lines[1].Words) != 1 {
		t.Fatalf("word counts = %d,%d, want 2,1", len(p.Lines[0].Words), len(p.Lines[1].Words))
	}

	w := p.Lines[0].Words[1]
	if w.Text != "patient" {
		t.Errorf("word text = %q, want patient", w.Text)
	}
	if w.BBox != (BBox{210, 100, 400, 130}) {
		t.Errorf("word BBox = %+v", w.BBox)
	}
	if w.Confidence != 91 {
		t.Errorf("word confidence = %v, want 91", w.Confidence)
	}
	if w.Title != "bbox 210 100 400 130; x_wconf 91" {
		t.Errorf("word title = %q", w.Title)
	}
}

func TestParseLenientFallback(t *testing.T) {
	// Unclosed spans and a bare ampersand make this invalid XML; the
	// recovering HTML parser must still produce the tree.
	malformed := `<html><body>
	 <div class="ocr_page" title="bbox 0 0 1000 1000">
	  <span class="ocr_line" title="bbox 10 10 400 40">
	   <span class="ocrx_word" title="bbox 10 10 100 40">Smith</span>
	   <span class="ocrx_word" title="bbox 110 10 200 40">& Sons
	  </span>
	 </div>`

	p, err := ParseBytes([]byte(malformed))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if len(p.Lines) != 1 {
		t.Fatalf("len(Lines) = %d, want 1", len(p.Lines))
	}
	words := p.Lines[0].Words
	if len(words) != 2 {
		t.Fatalf("len(Words) = %d, want 2", len(words))
	}
	if words[0].Text != "Smith" {
		t.Errorf("word 0 = %q, want Smith", words[0].Text)
	}
	if !strings.HasPrefix(words[1].Text, "&") {
		t.Errorf("word 1 = %q, want leading ampersand", words[1].Text)
	}
}

func TestParseDegenerateBBox(t *testing.T) {
	doc := `<html><body><div class="ocr_page">
	 <span class="ocr_line" title="bbox ten 10 400 40">
	  <span class="ocrx_word" title="nonsense">word</span>
	 </span>
	</div></body></html>`

	p, err := ParseBytes([]byte(doc))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if !p.Lines[0].BBox.IsZero() {
		t.Errorf("line BBox = %+v, want zero box", p.Lines[0].BBox)
	}
	if !p.Lines[0].Words[0].BBox.IsZero() {
		t.Errorf("word BBox = %+v, want zero box", p.Lines[0].Words[0].BBox)
	}
	if p.Lines[0].Words[0].Text != "word" {
		t.Errorf("word text = %q, want word", p.Lines[0].Words[0].Text)
	}
}

func TestParseLooseWords(t *testing.T) {
	doc := `<html><body><div class="ocr_page" title="bbox 0 0 500 500">
	 <span class="ocrx_word" title="bbox 10 10 50 30">alpha</span>
	 <span class="ocrx_word" title="bbox 60 10 100 30">beta</span>
	</div></body></html>`

	p, err := ParseBytes([]byte(doc))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if len(p.Lines) != 0 {
		t.Errorf("len(Lines) = %d, want 0", len(p.Lines))
	}
	if len(p.LooseWords) != 2 {
		t.Fatalf("len(LooseWords) = %d, want 2", len(p.LooseWords))
	}
	if p.LooseWords[1].Text != "beta" {
		t.Errorf("loose word 1 = %q, want beta", p.LooseWords[1].Text)
	}
}

func TestParseNestedWordMarkup(t *testing.T) {
	doc := `<html><body><div class="ocr_page">
	 <span class="ocr_line" title="bbox 10 10 400 40">
	  <span class="ocrx_word" title="bbox 10 10 100 40"><em>bold</em>ly</span>
	 </span>
	</div></body></html>`

	p, err := ParseBytes([]byte(doc))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if got := p.Lines[0].Words[0].Text; got != "boldly" {
		t.Errorf("word text = %q, want boldly", got)
	}
}

// ============================================================================
// Serialization Tests
// ============================================================================

func TestSerializeRoundTrip(t *testing.T) {
	p1, err := ParseBytes([]byte(wellFormedDoc))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	out1 := SerializeBytes(p1)
	p2, err := ParseBytes(out1)
	if err != nil {
		t.Fatalf("reparse error = %v", err)
	}
	out2 := SerializeBytes(p2)
	p3, err := ParseBytes(out2)
	if err != nil {
		t.Fatalf("second reparse error = %v", err)
	}

	if p2.NodeCount() != p1.NodeCount() || p3.NodeCount() != p2.NodeCount() {
		t.Errorf("node counts changed across round trips: %d, %d, %d",
			p1.NodeCount(), p2.NodeCount(), p3.NodeCount())
	}
	if string(out2) != string(out1) {
		t.Error("serialize(parse(x)) is not idempotent")
	}
}

func TestSerializePreservesTitles(t *testing.T) {
	p, err := ParseBytes([]byte(wellFormedDoc))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	out := string(SerializeBytes(p))
	if !strings.Contains(out, `title="bbox 210 100 400 130; x_wconf 91"`) {
		t.Errorf("serialized output lost word title fields:\n%s", out)
	}
}

func TestSerializeEscapesText(t *testing.T) {
	p := &Page{
		Lines: []Line{{
			Words: []Word{{Text: `a<b & "c"`, BBox: BBox{1, 1, 2, 2}}},
		}},
	}
	out := string(SerializeBytes(p))
	if !strings.Contains(out, "a&lt;b &amp; &quot;c&quot;") {
		t.Errorf("text not escaped:\n%s", out)
	}

	p2, err := ParseBytes(SerializeBytes(p))
	if err != nil {
		t.Fatalf("reparse error = %v", err)
	}
	if got := p2.Lines[0].Words[0].Text; got != `a<b & "c"` {
		t.Errorf("round-tripped text = %q", got)
	}
}

func TestRemoveWord(t *testing.T) {
	l := Line{Words: []Word{{Text: "a"}, {Text: "b"}, {Text: "c"}}}
	l.RemoveWord(1)
	if len(l.Words) != 2 || l.Words[0].Text != "a" || l.Words[1].Text != "c" {
		t.Errorf("RemoveWord() left %+v", l.Words)
	}
	l.RemoveWord(5)
	if len(l.Words) != 2 {
		t.Error("out-of-range RemoveWord() mutated the line")
	}
}
