package morphic

import "github.com/Node0/morphic/raster"

// Options holds pipeline configuration.
type Options struct {
	// dpi is the resolution of the source raster.
	dpi int

	// dehyphenate enables the line-break merge pass.
	dehyphenate bool

	// minMergedLength rejects merged words shorter than this.
	minMergedLength int

	// fontSizeRatio, renderMode, wordSpacing, lineTolerancePx, and
	// perWordSizing feed the text layer synthesizer.
	fontSizeRatio   float64
	renderMode      int
	wordSpacing     int
	lineTolerancePx int
	perWordSizing   bool

	// jpegQuality controls raster encoding for the image layer.
	jpegQuality int
}

// defaultOptions returns the default pipeline configuration.
func defaultOptions() Options {
	return Options{
		dpi:             300,
		dehyphenate:     true,
		minMergedLength: 4,
		fontSizeRatio:   0.75,
		renderMode:      3,
		wordSpacing:     300,
		lineTolerancePx: 10,
		perWordSizing:   false,
		jpegQuality:     raster.DefaultJPEGQuality,
	}
}
