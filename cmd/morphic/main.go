// morphic - convert scanned page images into searchable PDFs
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Node0/morphic"
	"github.com/Node0/morphic/format"
	"github.com/Node0/morphic/ocr"
	"github.com/Node0/morphic/raster"
)

var (
	output      = flag.String("o", "out.pdf", "output PDF file")
	dpi         = flag.Int("dpi", 300, "resolution of the scanned images")
	wordlist    = flag.String("wordlist", "", "wordlist file for merge validation")
	noDehyphen  = flag.Bool("no-dehyphenate", false, "keep words hyphenated across line breaks")
	lang        = flag.String("lang", "eng", "recognition language (built-in OCR only)")
	quality     = flag.Int("quality", raster.DefaultJPEGQuality, "JPEG quality for the page rasters")
	renderMode  = flag.Int("render", 3, "PDF text rendering mode (3 = invisible)")
	wordSizing  = flag.Bool("word-sizing", false, "size the text layer per word instead of per line")
	writeMarkup = flag.Bool("hocr-out", false, "write the post-merge hOCR next to each image")
	verbose     = flag.Bool("v", false, "print per-page statistics and warnings")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: morphic [options] <image> [<image>...]\n")
	fmt.Fprintf(os.Stderr, "\nEach image becomes one page of the output PDF. Recognition\n")
	fmt.Fprintf(os.Stderr, "markup is read from a sidecar file (<image>.hocr or <image>.html\n")
	fmt.Fprintf(os.Stderr, "with the image extension replaced); without one, the built-in\n")
	fmt.Fprintf(os.Stderr, "OCR engine is used when compiled in (-tags ocr).\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		usage()
		os.Exit(1)
	}

	pipeline := morphic.New().
		DPI(*dpi).
		Dehyphenate(!*noDehyphen).
		RenderMode(*renderMode).
		PerWordSizing(*wordSizing).
		JPEGQuality(*quality)
	if *wordlist != "" {
		pipeline = pipeline.WordlistFile(*wordlist)
	}

	inputs := make([]morphic.PageInput, 0, len(paths))
	for _, path := range paths {
		in, err := loadPage(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
			os.Exit(1)
		}
		inputs = append(inputs, in)
	}

	if *writeMarkup {
		writeSidecars(pipeline, paths, inputs)
	}

	pdf, warnings, err := pipeline.ProcessPages(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *verbose && len(warnings) > 0 {
		fmt.Fprintln(os.Stderr, morphic.FormatWarnings(warnings))
	}

	if err := os.WriteFile(*output, pdf, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Wrote %s (%d pages, %d bytes)\n", *output, len(inputs), len(pdf))
	}
}

// loadPage decodes one image and obtains its recognition markup, from
// a sidecar file when present, otherwise from the built-in engine.
func loadPage(path string) (morphic.PageInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return morphic.PageInput{}, err
	}
	switch f := format.DetectFromMagic(data); {
	case f == format.Markup:
		return morphic.PageInput{}, fmt.Errorf("recognition markup given where a page image was expected")
	case f == format.PDF:
		return morphic.PageInput{}, fmt.Errorf("already a PDF document")
	case !f.IsImage():
		return morphic.PageInput{}, fmt.Errorf("unrecognized image format")
	}

	img, err := raster.Load(bytes.NewReader(data))
	if err != nil {
		return morphic.PageInput{}, err
	}

	if markup, ok := readSidecar(path); ok {
		return morphic.PageInput{Markup: markup, Image: img}, nil
	}

	markup, err := recognize(data)
	if err != nil {
		return morphic.PageInput{}, fmt.Errorf("no sidecar markup and %w", err)
	}
	return morphic.PageInput{Markup: markup, Image: img}, nil
}

// readSidecar looks for recognition markup stored next to the image.
func readSidecar(imagePath string) ([]byte, bool) {
	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	for _, suffix := range []string{".hocr", ".html"} {
		if data, err := os.ReadFile(base + suffix); err == nil {
			if format.DetectFromMagic(data) == format.Markup {
				return data, true
			}
		}
	}
	return nil, false
}

// recognize runs the built-in OCR engine against the raw image bytes.
// It fails with ocr.ErrOCRNotEnabled when support was not compiled in.
func recognize(data []byte) ([]byte, error) {
	client, err := ocr.New()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetLanguage(*lang); err != nil {
		return nil, err
	}
	if err := client.SetDPI(*dpi); err != nil {
		return nil, err
	}

	markup, err := client.HOCRImage(data)
	if err != nil {
		return nil, err
	}
	return []byte(markup), nil
}

// writeSidecars saves the dehyphenated markup for each page alongside
// its source image, using a .morphic.hocr suffix so the input sidecar
// is never clobbered.
func writeSidecars(pipeline *morphic.Pipeline, paths []string, inputs []morphic.PageInput) {
	for i, in := range inputs {
		result, _, err := pipeline.ProcessHOCR(in.Markup, in.Image)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", paths[i], err)
			continue
		}
		out := strings.TrimSuffix(paths[i], filepath.Ext(paths[i])) + ".morphic.hocr"
		if err := os.WriteFile(out, result.Markup, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: writing %s: %v\n", out, err)
		}
	}
}
