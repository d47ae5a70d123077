//go:build ocr

// Package ocr wraps the Tesseract recognition engine via gosseract.
//
// Tesseract must be installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
//
// The package is compiled only with the "ocr" build tag; without it a
// stub implementation returns ErrOCRNotEnabled, so the rest of the
// pipeline builds and tests without Tesseract present.
package ocr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// ErrOCRNotEnabled is returned by the stub build; it is declared here
// as well so callers can test against it regardless of build tags.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client wraps Tesseract for recognition.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	client := gosseract.NewClient()
	return &Client{client: client}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// HOCRImage recognizes image data (PNG, TIFF, JPEG, etc.) and returns
// hOCR markup carrying the recognized words with bounding boxes.
func (c *Client) HOCRImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	markup, err := c.client.HOCRText()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return markup, nil
}

// RecognizeImage performs OCR on image data and returns the plain
// recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "eng+fra").
// Default is "eng" (English).
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// SetPageSegMode sets the page segmentation mode.
// This affects how Tesseract analyzes the page layout.
// See gosseract.PageSegMode constants for available modes.
func (c *Client) SetPageSegMode(mode gosseract.PageSegMode) error {
	return c.client.SetPageSegMode(mode)
}

// SetDPI declares the source resolution so Tesseract's layout
// heuristics scale correctly for high-resolution scans.
func (c *Client) SetDPI(dpi int) error {
	return c.client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(dpi))
}
