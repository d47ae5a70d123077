// Package raster loads and prepares scanned source images for page
// assembly.
//
// Scans arrive as PNG, JPEG, TIFF, or BMP. Images with transparency
// are flattened onto a white background, matching what a paper scan
// would look like, and encoded as a JPEG (DCTDecode) payload for the
// page's raster layer.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"io"
	"os"

	// Register decoders for the formats scanners produce.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// DefaultJPEGQuality is the encoder quality used when none is given.
const DefaultJPEGQuality = 85

// Source is a decoded, assembly-ready page image.
type Source struct {
	// Img is the decoded image, flattened if the original carried
	// transparency.
	Img image.Image

	// WidthPx and HeightPx are the pixel dimensions.
	WidthPx  int
	HeightPx int

	// Format is the detected source format name (png, jpeg, tiff, bmp).
	Format string
}

// Load decodes an image and flattens any transparency onto white.
func Load(r io.Reader) (*Source, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("raster: decoding image: %w", err)
	}

	img = flatten(img)
	bounds := img.Bounds()

	return &Source{
		Img:      img,
		WidthPx:  bounds.Dx(),
		HeightPx: bounds.Dy(),
		Format:   format,
	}, nil
}

// LoadFile decodes an image file.
func LoadFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: opening image: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// ColorSpace returns the PDF color space matching the image's pixel
// format: DeviceGray for grayscale sources, DeviceRGB otherwise.
func (s *Source) ColorSpace() string {
	switch s.Img.(type) {
	case *image.Gray, *image.Gray16:
		return "DeviceGray"
	default:
		return "DeviceRGB"
	}
}

// EncodeJPEG produces the DCTDecode payload for the raster layer.
// Quality outside [1,100] falls back to DefaultJPEGQuality.
func (s *Source) EncodeJPEG(quality int) ([]byte, error) {
	if s.Img == nil {
		return nil, fmt.Errorf("raster: no decoded image")
	}
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, s.Img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("raster: encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten composites images that carry an alpha channel onto a white
// background. Grayscale and already-opaque images pass through.
func flatten(img image.Image) image.Image {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return img
	case interface{ Opaque() bool }:
		if m.Opaque() {
			return img
		}
	}

	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, bounds, img, bounds.Min, draw.Over)
	return out
}
