// Package pdfpage assembles synthesized content streams and compressed
// raster images into PDF documents.
//
// Each page is a MediaBox sized in points, a Contents stream holding
// the instruction bytes in their original order, and a Resources
// dictionary exposing the raster as image XObject /Im1 and a Base-14
// font as /F1. Base-14 fonts need no embedding, which keeps the text
// layer substitutable across viewers.
package pdfpage

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrNoPages is returned when a document is assembled from an empty
// page list.
var ErrNoPages = errors.New("pdfpage: no pages to assemble")

// FontName is the Base-14 font backing the text layer.
const FontName = "Helvetica"

// Image is the compressed raster payload for one page.
type Image struct {
	WidthPx          int
	HeightPx         int
	ColorSpace       string // DeviceRGB or DeviceGray
	BitsPerComponent int    // 8 for JPEG payloads
	Filter           string // DCTDecode
	Data             []byte
}

// PageData is everything needed to assemble one page.
type PageData struct {
	WidthPt  float64
	HeightPt float64
	Content  []byte // content stream bytes, order preserved verbatim
	Image    Image
}

// Assemble writes a single-page document.
func Assemble(page PageData) ([]byte, error) {
	return AssembleDocument([]PageData{page})
}

// AssembleDocument writes all pages into one document. Object layout:
// 1 catalog, 2 page tree, 3 shared font, then three objects per page
// (page, contents, image).
func AssembleDocument(pages []PageData) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	w := newWriter()

	kids := make([]int, len(pages))
	for i := range pages {
		kids[i] = 4 + 3*i
	}

	w.beginObject(1)
	w.writeString("<< /Type /Catalog /Pages 2 0 R >>")
	w.endObject()

	w.beginObject(2)
	var kidRefs bytes.Buffer
	for _, k := range kids {
		fmt.Fprintf(&kidRefs, "%d 0 R ", k)
	}
	w.writeString(fmt.Sprintf("<< /Type /Pages /Kids [ %s] /Count %d >>", kidRefs.String(), len(pages)))
	w.endObject()

	w.beginObject(3)
	w.writeString(fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s >>", FontName))
	w.endObject()

	for i, page := range pages {
		if err := writePage(w, 4+3*i, page); err != nil {
			return nil, err
		}
	}

	w.writeXref()
	return w.bytes(), nil
}

// writePage emits the page object, its contents stream, and its image
// XObject, numbered num, num+1, num+2.
func writePage(w *writer, num int, page PageData) error {
	img := page.Image
	if len(img.Data) == 0 {
		return fmt.Errorf("pdfpage: page object %d: empty image payload", num)
	}
	if img.ColorSpace == "" {
		img.ColorSpace = "DeviceRGB"
	}
	if img.BitsPerComponent == 0 {
		img.BitsPerComponent = 8
	}
	if img.Filter == "" {
		img.Filter = "DCTDecode"
	}

	w.beginObject(num)
	w.writeString(fmt.Sprintf(
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f] "+
			"/Resources << /Font << /F1 3 0 R >> /XObject << /Im1 %d 0 R >> >> "+
			"/Contents %d 0 R >>",
		page.WidthPt, page.HeightPt, num+2, num+1))
	w.endObject()

	w.beginObject(num + 1)
	w.writeStream(fmt.Sprintf("<< /Length %d >>", len(page.Content)), page.Content)
	w.endObject()

	w.beginObject(num + 2)
	dict := fmt.Sprintf(
		"<< /Type /XObject /Subtype /Image /Width %d /Height %d "+
			"/ColorSpace /%s /BitsPerComponent %d /Filter /%s /Length %d >>",
		img.WidthPx, img.HeightPx, img.ColorSpace, img.BitsPerComponent,
		img.Filter, len(img.Data))
	w.writeStream(dict, img.Data)
	w.endObject()

	return nil
}
