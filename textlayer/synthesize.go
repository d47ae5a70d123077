// Package textlayer synthesizes the invisible-text content stream that
// makes a scanned page searchable.
//
// The synthesizer reads a recognized page tree plus the raster's pixel
// resolution and emits an ordered instruction sequence: one invisible
// text object per line, followed by the commands that paint the page
// image on top. Each line is shown with a single TJ array whose
// spacing adjustments stay small; large adjustments make line-oriented
// text extractors split one line into many, scrambling reading order.
package textlayer

import (
	"fmt"
	"sort"

	"github.com/Node0/morphic/hocr"
)

// Config controls text layer generation.
type Config struct {
	// FontSizeRatio scales a word's bbox height into its font size.
	FontSizeRatio float64

	// MinFontSize is the smallest font size emitted, in points.
	MinFontSize float64

	// RenderMode is the PDF text rendering mode; 3 renders no ink,
	// leaving the text selectable but invisible.
	RenderMode int

	// WordSpacing is the magnitude of the TJ spacing adjustment
	// emitted between words. It must stay well below 1000: beyond
	// roughly that threshold pdftotext and friends treat the words as
	// separate lines.
	WordSpacing int

	// LineTolerancePx is the vertical window, in pixels, used to
	// group loose words into synthetic lines when the input tree has
	// no line structure.
	LineTolerancePx int

	// PerWordSizing emits a font size per word instead of one
	// averaged size per line.
	PerWordSizing bool
}

// DefaultConfig returns the default synthesis configuration.
func DefaultConfig() Config {
	return Config{
		FontSizeRatio:   0.75,
		MinFontSize:     4,
		RenderMode:      3,
		WordSpacing:     300,
		LineTolerancePx: 10,
	}
}

// Stats counts what synthesis emitted and dropped. Dropped words are
// an observability signal, not an error.
type Stats struct {
	Lines        int
	Words        int
	DroppedWords int
}

// Synthesizer converts page trees into content stream instructions.
type Synthesizer struct {
	cfg Config
}

// New creates a Synthesizer. Zero-value config fields fall back to
// defaults.
func New(cfg Config) *Synthesizer {
	def := DefaultConfig()
	if cfg.FontSizeRatio <= 0 {
		cfg.FontSizeRatio = def.FontSizeRatio
	}
	if cfg.MinFontSize <= 0 {
		cfg.MinFontSize = def.MinFontSize
	}
	if cfg.WordSpacing <= 0 {
		cfg.WordSpacing = def.WordSpacing
	}
	if cfg.LineTolerancePx <= 0 {
		cfg.LineTolerancePx = def.LineTolerancePx
	}
	return &Synthesizer{cfg: cfg}
}

// placedWord is a word with its page-unit metrics resolved.
type placedWord struct {
	text     string
	xPt      float64
	fontSize float64
}

// Synthesize emits the instruction sequence for one page at the given
// raster resolution: invisible text objects in reading order, then the
// image-paint quadruple. It is a pure function of its inputs and never
// fails on a well-formed tree; degenerate words and lines are skipped
// silently and counted.
func (s *Synthesizer) Synthesize(p *hocr.Page, dpi int) ([]Instruction, Stats) {
	var out []Instruction
	var stats Stats

	pageHeightPt := pxToPt(p.HeightPx, dpi)
	pageWidthPt := pxToPt(p.WidthPx, dpi)

	for i := range p.Lines {
		line := &p.Lines[i]
		out = s.emitLine(out, line.Words, line.BBox, pageHeightPt, dpi, &stats)
	}

	if len(p.LooseWords) > 0 {
		for _, group := range groupWords(p.LooseWords, s.cfg.LineTolerancePx) {
			box := unionBoxes(group)
			out = s.emitLine(out, group, box, pageHeightPt, dpi, &stats)
		}
	}

	out = append(out,
		Instruction{KindSaveState, []byte("q")},
		Instruction{KindTransform, []byte(fmt.Sprintf("%.2f 0 0 %.2f 0 0 cm", pageWidthPt, pageHeightPt))},
		Instruction{KindPaintImage, []byte("/Im1 Do")},
		Instruction{KindRestoreState, []byte("Q")},
	)

	return out, stats
}

// emitLine appends one text object covering the line's words. Lines
// whose words are all degenerate emit nothing.
func (s *Synthesizer) emitLine(out []Instruction, words []hocr.Word, lineBox hocr.BBox, pageHeightPt float64, dpi int, stats *Stats) []Instruction {
	placed := make([]placedWord, 0, len(words))
	for _, w := range words {
		if w.Text == "" || w.BBox.Width() <= 0 || w.BBox.Height() <= 0 {
			if w.Text != "" || !w.BBox.IsZero() {
				stats.DroppedWords++
			}
			continue
		}
		size := pxToPtF(float64(w.BBox.Height()), dpi) * s.cfg.FontSizeRatio
		if size < s.cfg.MinFontSize {
			size = s.cfg.MinFontSize
		}
		placed = append(placed, placedWord{
			text:     w.Text,
			xPt:      pxToPt(w.BBox.X1, dpi),
			fontSize: size,
		})
	}
	if len(placed) == 0 {
		return out
	}

	// The baseline origin comes from the line box bottom; when the
	// line carried no usable box, fall back to the words themselves.
	if lineBox.Height() <= 0 {
		lineBox = unionBoxes(words)
	}
	baselineY := pageHeightPt - pxToPt(lineBox.Y2, dpi)

	out = append(out,
		Instruction{KindBeginText, []byte("BT")},
		Instruction{KindSetRenderMode, []byte(fmt.Sprintf("%d Tr", s.cfg.RenderMode))},
	)

	if s.cfg.PerWordSizing {
		out = s.emitPerWord(out, placed, baselineY)
	} else {
		out = s.emitGrouped(out, placed, baselineY)
	}

	out = append(out, Instruction{KindEndText, []byte("ET")})

	stats.Lines++
	stats.Words += len(placed)
	return out
}

// emitGrouped shows the whole line as a single TJ array at one font
// size (the arithmetic mean across the line's words): literal runs
// interleaved with a small fixed spacing adjustment and an explicit
// space character between words. Keeping all runs in one array is
// what makes extractors reassemble the line as a unit.
func (s *Synthesizer) emitGrouped(out []Instruction, placed []placedWord, baselineY float64) []Instruction {
	sum := 0.0
	for _, w := range placed {
		sum += w.fontSize
	}
	avg := sum / float64(len(placed))

	out = append(out,
		Instruction{KindSetFont, []byte(fmt.Sprintf("/F1 %.1f Tf", avg))},
		Instruction{KindSetPosition, []byte(fmt.Sprintf("1 0 0 1 %.2f %.2f Tm", placed[0].xPt, baselineY))},
	)

	var tj []byte
	tj = append(tj, '[')
	for i, w := range placed {
		if i > 0 {
			tj = append(tj, fmt.Sprintf(" %d ( ) ", -s.cfg.WordSpacing)...)
		}
		tj = append(tj, '(')
		tj = append(tj, encodeTextRun(w.text)...)
		tj = append(tj, ')')
	}
	tj = append(tj, "] TJ"...)

	return append(out, Instruction{KindShowText, tj})
}

// emitPerWord keeps the single text object but resets the font size
// before each word's TJ array, preserving extraction order while
// matching each word's own box height.
func (s *Synthesizer) emitPerWord(out []Instruction, placed []placedWord, baselineY float64) []Instruction {
	out = append(out,
		Instruction{KindSetPosition, []byte(fmt.Sprintf("1 0 0 1 %.2f %.2f Tm", placed[0].xPt, baselineY))},
	)
	for i, w := range placed {
		out = append(out, Instruction{KindSetFont, []byte(fmt.Sprintf("/F1 %.1f Tf", w.fontSize))})
		var tj []byte
		tj = append(tj, '[')
		if i > 0 {
			tj = append(tj, fmt.Sprintf("%d ( ) ", -s.cfg.WordSpacing)...)
		}
		tj = append(tj, '(')
		tj = append(tj, encodeTextRun(w.text)...)
		tj = append(tj, ")] TJ"...)
		out = append(out, Instruction{KindShowText, tj})
	}
	return out
}

// groupWords sorts loose words by position and greedily groups them
// into synthetic lines: a word joins the current group while its top
// edge is within the tolerance window of the group's reference Y.
func groupWords(words []hocr.Word, tolerancePx int) [][]hocr.Word {
	sorted := make([]hocr.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y1 != sorted[j].BBox.Y1 {
			return sorted[i].BBox.Y1 < sorted[j].BBox.Y1
		}
		return sorted[i].BBox.X1 < sorted[j].BBox.X1
	})

	var groups [][]hocr.Word
	var current []hocr.Word
	referenceY := 0

	for _, w := range sorted {
		if len(current) == 0 {
			current = []hocr.Word{w}
			referenceY = w.BBox.Y1
			continue
		}
		if abs(w.BBox.Y1-referenceY) <= tolerancePx {
			current = append(current, w)
			continue
		}
		groups = append(groups, current)
		current = []hocr.Word{w}
		referenceY = w.BBox.Y1
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func unionBoxes(words []hocr.Word) hocr.BBox {
	var box hocr.BBox
	first := true
	for _, w := range words {
		if w.BBox.IsZero() {
			continue
		}
		if first {
			box = w.BBox
			first = false
			continue
		}
		box = box.Union(w.BBox)
	}
	return box
}

// pxToPt converts a pixel coordinate to page units (72 per inch).
func pxToPt(px, dpi int) float64 {
	return float64(px) / float64(dpi) * 72
}

func pxToPtF(px float64, dpi int) float64 {
	return px / float64(dpi) * 72
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
