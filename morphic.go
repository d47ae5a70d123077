// Package morphic converts image-only scanned pages into pages with
// an accurate, searchable text layer.
//
// Basic usage:
//
//	img, err := raster.LoadFile("page.png")
//	if err != nil {
//	    // handle error
//	}
//	result, warnings, err := morphic.New().ProcessHOCR(markup, img)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", morphic.FormatWarnings(warnings))
//	}
//	os.WriteFile("page.pdf", result.PDF, 0o644)
//
// With options:
//
//	result, _, err := morphic.New().
//	    DPI(600).
//	    WordlistFile("/usr/share/dict/words").
//	    JPEGQuality(90).
//	    ProcessHOCR(markup, img)
//
// Each page runs the full model -> dehyphenate -> synthesize ->
// assemble sequence to completion before its bytes are returned;
// there is no partial or streaming output. Pipelines are immutable:
// every configuration method returns a new instance, so one
// configured pipeline can process many pages concurrently.
package morphic

import (
	"bytes"
	"fmt"

	"github.com/Node0/morphic/dehyphen"
	"github.com/Node0/morphic/ocr"
	"github.com/Node0/morphic/hocr"
	"github.com/Node0/morphic/pdfpage"
	"github.com/Node0/morphic/raster"
	"github.com/Node0/morphic/spell"
	"github.com/Node0/morphic/textlayer"
)

// Pipeline chains recognition-result parsing, dehyphenation, text
// layer synthesis, and page assembly.
type Pipeline struct {
	options Options
	oracle  dehyphen.Oracle

	// Configuration-time warnings, replayed into every result.
	warnings []Warning
}

// PageResult is the output of processing one page.
type PageResult struct {
	// PDF is the assembled single-page document.
	PDF []byte

	// Markup is the serialized hOCR tree after any dehyphenation.
	Markup []byte

	// Merges is the number of hyphenation merges applied.
	Merges int

	// Stats reports what the synthesizer emitted and dropped.
	Stats textlayer.Stats
}

// PageInput pairs one page's recognition markup with its raster.
type PageInput struct {
	Markup []byte
	Image  *raster.Source
}

// New creates a pipeline with default options: 300 dpi, dehyphenation
// enabled with heuristic validation, invisible render mode.
func New() *Pipeline {
	return &Pipeline{options: defaultOptions()}
}

// clone creates a copy of the pipeline so each chain method returns a
// new instance.
func (p *Pipeline) clone() *Pipeline {
	return &Pipeline{
		options:  p.options,
		oracle:   p.oracle,
		warnings: append([]Warning(nil), p.warnings...),
	}
}

// DPI sets the resolution of the source raster (default 300).
func (p *Pipeline) DPI(dpi int) *Pipeline {
	c := p.clone()
	if dpi > 0 {
		c.options.dpi = dpi
	}
	return c
}

// Dehyphenate enables or disables the line-break merge pass
// (default enabled).
func (p *Pipeline) Dehyphenate(enabled bool) *Pipeline {
	c := p.clone()
	c.options.dehyphenate = enabled
	return c
}

// Oracle injects a word-validity oracle for merge validation. Without
// one, dehyphenation falls back to alphabetic heuristics.
func (p *Pipeline) Oracle(o dehyphen.Oracle) *Pipeline {
	c := p.clone()
	c.oracle = o
	return c
}

// WordlistFile builds a spell-check oracle from a newline-separated
// wordlist file. A missing or empty wordlist is not fatal: the
// pipeline records a warning and continues with heuristic validation.
func (p *Pipeline) WordlistFile(path string) *Pipeline {
	c := p.clone()
	checker, err := spell.NewCheckerFromFile(path)
	if err != nil {
		c.warnings = append(c.warnings, Warning{
			Code:    WarnOracleUnavailable,
			Message: fmt.Sprintf("wordlist %q unusable (%v); using heuristic validation", path, err),
		})
		return c
	}
	c.oracle = checker
	return c
}

// MinMergedLength sets the minimum merged word length (default 4).
func (p *Pipeline) MinMergedLength(n int) *Pipeline {
	c := p.clone()
	if n > 0 {
		c.options.minMergedLength = n
	}
	return c
}

// FontSizeRatio sets the bbox-height-to-font-size ratio (default 0.75).
func (p *Pipeline) FontSizeRatio(r float64) *Pipeline {
	c := p.clone()
	if r > 0 {
		c.options.fontSizeRatio = r
	}
	return c
}

// RenderMode sets the PDF text rendering mode (default 3, invisible).
func (p *Pipeline) RenderMode(mode int) *Pipeline {
	c := p.clone()
	c.options.renderMode = mode
	return c
}

// WordSpacing sets the magnitude of the TJ spacing adjustment emitted
// between words (default 300).
func (p *Pipeline) WordSpacing(n int) *Pipeline {
	c := p.clone()
	if n > 0 {
		c.options.wordSpacing = n
	}
	return c
}

// LineTolerance sets the vertical grouping window, in pixels, used
// when the input has no line structure (default 10).
func (p *Pipeline) LineTolerance(px int) *Pipeline {
	c := p.clone()
	if px > 0 {
		c.options.lineTolerancePx = px
	}
	return c
}

// PerWordSizing switches the text layer to one font size per word
// instead of one averaged size per line.
func (p *Pipeline) PerWordSizing(enabled bool) *Pipeline {
	c := p.clone()
	c.options.perWordSizing = enabled
	return c
}

// JPEGQuality sets the raster encoder quality (default 85).
func (p *Pipeline) JPEGQuality(q int) *Pipeline {
	c := p.clone()
	if q >= 1 && q <= 100 {
		c.options.jpegQuality = q
	}
	return c
}

// ProcessHOCR runs the full per-page sequence: parse the recognition
// markup, optionally dehyphenate, synthesize the invisible text
// layer, and assemble a single-page PDF with the raster painted over
// the text. Warnings report recovered conditions; the error is
// non-nil only when the markup is unparsable or assembly fails.
func (p *Pipeline) ProcessHOCR(markup []byte, img *raster.Source) (*PageResult, []Warning, error) {
	warnings := append([]Warning(nil), p.warnings...)

	result, data, pageWarnings, err := p.processPage(PageInput{Markup: markup, Image: img})
	warnings = append(warnings, pageWarnings...)
	if err != nil {
		return nil, warnings, err
	}

	out, err := pdfpage.Assemble(data)
	if err != nil {
		return nil, warnings, err
	}
	result.PDF = out

	return result, warnings, nil
}

// ProcessImage recognizes a page image with the built-in engine and
// then runs the standard per-page sequence on the result. It requires
// a build with the ocr tag; otherwise it fails with
// ocr.ErrOCRNotEnabled.
func (p *Pipeline) ProcessImage(imageData []byte) (*PageResult, []Warning, error) {
	client, err := ocr.New()
	if err != nil {
		return nil, nil, err
	}
	defer client.Close()

	if err := client.SetDPI(p.options.dpi); err != nil {
		return nil, nil, err
	}
	markup, err := client.HOCRImage(imageData)
	if err != nil {
		return nil, nil, err
	}

	img, err := raster.Load(bytes.NewReader(imageData))
	if err != nil {
		return nil, nil, err
	}

	return p.ProcessHOCR([]byte(markup), img)
}

// ProcessPages assembles a multi-page document, running the per-page
// sequence to completion for each input in order.
func (p *Pipeline) ProcessPages(inputs []PageInput) ([]byte, []Warning, error) {
	if len(inputs) == 0 {
		return nil, nil, pdfpage.ErrNoPages
	}

	warnings := append([]Warning(nil), p.warnings...)
	pages := make([]pdfpage.PageData, 0, len(inputs))

	for i, in := range inputs {
		_, data, pageWarnings, err := p.processPage(in)
		warnings = append(warnings, pageWarnings...)
		if err != nil {
			return nil, warnings, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, data)
	}

	out, err := pdfpage.AssembleDocument(pages)
	if err != nil {
		return nil, warnings, err
	}
	return out, warnings, nil
}

// processPage runs parse, dehyphenate, and synthesize for one input
// and prepares the assembly data. The returned PageResult has every
// field populated except PDF.
func (p *Pipeline) processPage(in PageInput) (*PageResult, pdfpage.PageData, []Warning, error) {
	var warnings []Warning

	page, err := hocr.ParseBytes(in.Markup)
	if err != nil {
		return nil, pdfpage.PageData{}, warnings, fmt.Errorf("parsing recognition markup: %w", err)
	}
	page.WidthPx = in.Image.WidthPx
	page.HeightPx = in.Image.HeightPx

	if n := countZeroBoxWords(page); n > 0 {
		warnings = append(warnings, Warning{
			Code:    WarnDegenerateBBox,
			Message: fmt.Sprintf("%d word(s) carried unparsable bounding boxes", n),
		})
	}

	result := &PageResult{}

	if p.options.dehyphenate {
		d := dehyphen.New(dehyphen.Config{
			MinMergedLength: p.options.minMergedLength,
			Oracle:          p.oracle,
		})
		result.Merges = d.Process(page)
	}

	result.Markup = hocr.SerializeBytes(page)

	synth := textlayer.New(textlayer.Config{
		FontSizeRatio:   p.options.fontSizeRatio,
		RenderMode:      p.options.renderMode,
		WordSpacing:     p.options.wordSpacing,
		LineTolerancePx: p.options.lineTolerancePx,
		PerWordSizing:   p.options.perWordSizing,
	})
	instructions, stats := synth.Synthesize(page, p.options.dpi)
	result.Stats = stats
	if stats.DroppedWords > 0 {
		warnings = append(warnings, Warning{
			Code:    WarnDroppedWords,
			Message: fmt.Sprintf("%d word(s) excluded from the text layer", stats.DroppedWords),
		})
	}

	jpegData, err := in.Image.EncodeJPEG(p.options.jpegQuality)
	if err != nil {
		return nil, pdfpage.PageData{}, warnings, err
	}

	data := pdfpage.PageData{
		WidthPt:  float64(in.Image.WidthPx) / float64(p.options.dpi) * 72,
		HeightPt: float64(in.Image.HeightPx) / float64(p.options.dpi) * 72,
		Content:  textlayer.Encode(instructions),
		Image: pdfpage.Image{
			WidthPx:          in.Image.WidthPx,
			HeightPx:         in.Image.HeightPx,
			ColorSpace:       in.Image.ColorSpace(),
			BitsPerComponent: 8,
			Filter:           "DCTDecode",
			Data:             jpegData,
		},
	}

	return result, data, warnings, nil
}

// countZeroBoxWords reports how many words carry the substituted zero
// box after parsing.
func countZeroBoxWords(p *hocr.Page) int {
	n := 0
	for i := range p.Lines {
		for j := range p.Lines[i].Words {
			if p.Lines[i].Words[j].BBox.IsZero() {
				n++
			}
		}
	}
	for i := range p.LooseWords {
		if p.LooseWords[i].BBox.IsZero() {
			n++
		}
	}
	return n
}

// Must unwraps a (value, warnings, error) return, panicking on error.
// It is intended for examples and tests.
func Must[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
