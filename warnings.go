package rubrica

import (
	"fmt"
	"strings"
)

// WarningCode classifies a non-fatal problem encountered during extraction.
type WarningCode string

const (
	// WarnPagesCapped indicates the document has more pages than the
	// configured maximum and trailing pages were skipped.
	WarnPagesCapped WarningCode = "pages_capped"

	// WarnPageUnreadable indicates a page's content could not be parsed.
	// The page contributes no elements but extraction continues.
	WarnPageUnreadable WarningCode = "page_unreadable"

	// WarnPageEmpty indicates a page yielded no usable text after all
	// fallbacks were tried.
	WarnPageEmpty WarningCode = "page_empty"

	// WarnLineFallback indicates per-span extraction produced nothing and
	// the page's text was recovered by reassembling characters into lines.
	WarnLineFallback WarningCode = "line_fallback"

	// WarnOCRFallback indicates the page carried images instead of text
	// and its content was recovered by OCR.
	WarnOCRFallback WarningCode = "ocr_fallback"

	// WarnOCRUnavailable indicates an image-only page was found but OCR
	// support is not compiled in or Tesseract is not installed.
	WarnOCRUnavailable WarningCode = "ocr_unavailable"
)

// Warning reports a non-fatal problem encountered while processing a
// document. Terminal operations return warnings alongside their result;
// a non-empty list means the result may be incomplete, not invalid.
type Warning struct {
	Code    WarningCode
	Page    int // 1-indexed, 0 for document-scoped warnings
	Message string
}

// String returns a human-readable form of the warning.
func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("page %d: %s", w.Page, w.Message)
	}
	return w.Message
}

// FormatWarnings joins warnings into a single human-readable string,
// suitable for logging.
//
// Example:
//
//	outline, warnings, err := rubrica.Open("report.pdf").Outline()
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", rubrica.FormatWarnings(warnings))
//	}
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}
