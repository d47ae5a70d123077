// Package format provides input format detection for scanned pages
// and their recognition markup.
package format

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format represents a recognized input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// TIFF indicates a TIFF image.
	TIFF
	// BMP indicates a Windows bitmap image.
	BMP
	// GIF indicates a GIF image.
	GIF
	// Markup indicates hOCR recognition markup.
	Markup
	// PDF indicates an already-assembled PDF document.
	PDF
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case TIFF:
		return "TIFF"
	case BMP:
		return "BMP"
	case GIF:
		return "GIF"
	case Markup:
		return "Markup"
	case PDF:
		return "PDF"
	default:
		return "Unknown"
	}
}

// IsImage reports whether the format is a raster image a page scan
// can be loaded from.
func (f Format) IsImage() bool {
	switch f {
	case PNG, JPEG, TIFF, BMP, GIF:
		return true
	}
	return false
}

// Detect determines input format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".tif", ".tiff":
		return TIFF
	case ".bmp":
		return BMP
	case ".gif":
		return GIF
	case ".hocr", ".html", ".htm", ".xml":
		return Markup
	case ".pdf":
		return PDF
	default:
		return Unknown
	}
}

// DetectFromMagic checks leading bytes to determine format. This is
// more reliable than extension-based detection: scanner output is
// routinely misnamed.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return PNG
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return JPEG
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFF
	case bytes.HasPrefix(data, []byte("BM")):
		return BMP
	case bytes.HasPrefix(data, []byte("GIF8")):
		return GIF
	case bytes.HasPrefix(data, []byte("%PDF")):
		return PDF
	}

	if detectMarkupMagic(data) {
		return Markup
	}

	return Unknown
}

// detectMarkupMagic checks if the data looks like recognition markup:
// an HTML or XHTML document, or any fragment carrying hOCR classes.
func detectMarkupMagic(data []byte) bool {
	start := 0
	for start < len(data) && (data[start] == ' ' || data[start] == '\t' || data[start] == '\n' || data[start] == '\r') {
		start++
	}
	if start >= len(data) {
		return false
	}
	data = data[start:]

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	upper := strings.ToUpper(string(head))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<?XML") {
		return true
	}

	// Bare fragments: a page or line element near the top is enough.
	return bytes.Contains(head, []byte("ocr_page")) || bytes.Contains(head, []byte("ocr_line"))
}
