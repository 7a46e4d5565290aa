package rubrica

import (
	"strings"

	"github.com/tsawler/rubrica/model"
	"github.com/tsawler/rubrica/stats"
	"github.com/tsawler/rubrica/text"
)

// Report summarizes extraction quality for one document. Callers use it to
// decide whether structure inference is trustworthy before acting on an
// outline: a document with mostly empty pages or a low printable ratio
// produces outlines of little value.
type Report struct {
	// Pages is the number of pages processed (after any cap).
	Pages int `json:"pages"`

	// PagesWithText counts pages that yielded at least one element.
	PagesWithText int `json:"pages_with_text"`

	// EmptyPages counts pages that yielded nothing after all fallbacks.
	EmptyPages int `json:"empty_pages"`

	// Elements is the total element count across all pages.
	Elements int `json:"elements"`

	// ReassembledPages counts pages recovered by line reassembly.
	ReassembledPages int `json:"reassembled_pages"`

	// OCRPages counts pages recovered by OCR.
	OCRPages int `json:"ocr_pages"`

	// PrintableRatio is the fraction of printable runes in the extracted
	// text. Values well below 1.0 indicate encoding problems.
	PrintableRatio float64 `json:"printable_ratio"`

	// BodyFontSize is the modal font size, the assumed body text size.
	BodyFontSize float64 `json:"body_font_size"`
}

func buildReport(doc *model.Document, warnings []Warning) *Report {
	report := &Report{Pages: doc.PageCount()}

	var all strings.Builder
	for _, page := range doc.Pages {
		if len(page.Elements) > 0 {
			report.PagesWithText++
		} else {
			report.EmptyPages++
		}
		report.Elements += len(page.Elements)
		for _, el := range page.Elements {
			all.WriteString(el.Text)
			all.WriteByte('\n')
		}
	}

	report.PrintableRatio = text.PrintableRatio(all.String())
	report.BodyFontSize = stats.Compute(doc.Elements()).Mode

	for _, w := range warnings {
		switch w.Code {
		case WarnLineFallback:
			report.ReassembledPages++
		case WarnOCRFallback:
			report.OCRPages++
		}
	}

	return report
}
