//go:build ocr

// Package ocr recovers text from scanned pages whose content streams carry
// images instead of text. It is the extraction pipeline's last-resort span
// source and is only compiled in with the "ocr" build tag.
//
// This implementation wraps the Tesseract engine via gosseract and requires
// Tesseract to be installed on the system. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/rubrica/reader"
)

// Client wraps Tesseract for OCR operations.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// SetLanguage sets the language(s) for recognition. Multiple languages can
// be specified as a "+" separated string (e.g. "eng+fra"). Default is "eng".
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// RecognizeImage performs OCR on encoded image data (PNG, TIFF, JPEG, ...).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// RecognizePage runs OCR over the images extracted from one page and joins
// the recognized fragments with newlines. Images that cannot be converted
// or recognized are skipped; a page of unusable images yields "".
func (c *Client) RecognizePage(images []reader.PageImage) (string, error) {
	var parts []string
	for i := range images {
		img := &images[i]

		data := img.Data
		if !img.JPEG() {
			encoded, err := img.ToPNG()
			if err != nil {
				continue
			}
			data = encoded
		}

		text, err := c.RecognizeImage(data)
		if err != nil || text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}
