// Package rubrica infers document structure from PDF files. It extracts
// text elements with their font properties, fits a font-statistics model to
// them, and derives a title and a hierarchical outline (H1/H2/H3) without
// relying on embedded bookmarks.
//
// Basic usage:
//
//	outline, warnings, err := rubrica.Open("document.pdf").Outline()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", rubrica.FormatWarnings(warnings))
//	}
//
// With options:
//
//	outline, _, err := rubrica.Open("report.pdf").
//	    MaxPages(10).
//	    MinConfidence(0.75).
//	    Outline()
//
// For advanced use cases, the lower-level reader, stats, and layout
// packages are also available.
package rubrica

import (
	"github.com/tsawler/rubrica/reader"
)

// Open opens a PDF file and returns an Extractor for fluent configuration.
// The returned Extractor must be closed when done, either explicitly via
// Close() or implicitly when calling a terminal operation like Outline().
//
// Example:
//
//	outline, warnings, err := rubrica.Open("document.pdf").Outline()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromDocument creates an Extractor from an already-opened reader.Document.
// This is useful when you need more control over the document lifecycle.
// Note: The caller is responsible for closing the document.
//
// Example:
//
//	doc, err := reader.Open("document.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer doc.Close()
//	outline, warnings, err := rubrica.FromDocument(doc).Outline()
func FromDocument(doc *reader.Document) *Extractor {
	return &Extractor{
		doc:       doc,
		ownsDoc:   false,
		docOpened: true,
		options:   defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := rubrica.Must(rubrica.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustResult is a helper that wraps a terminal operation returning
// (T, []Warning, error) and panics if the error is non-nil. It discards
// warnings and returns just the value. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	title := rubrica.MustResult(rubrica.Open("document.pdf").Title())
func MustResult[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
