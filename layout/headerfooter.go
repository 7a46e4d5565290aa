package layout

import (
	"strings"

	"github.com/tsawler/rubrica/model"
)

// HeaderFooterConfig holds configuration for running header/footer detection
type HeaderFooterConfig struct {
	// BandRatio is the fraction of the page height treated as the header
	// band (top) and footer band (bottom)
	// Default: 0.10
	BandRatio float64

	// MinRepeatRatio is the fraction of pages a band text must appear on to
	// count as a running header or footer
	// Default: 0.50
	MinRepeatRatio float64

	// MinPages is the minimum page count before repetition is meaningful
	// Default: 3
	MinPages int
}

// DefaultHeaderFooterConfig returns sensible default configuration
func DefaultHeaderFooterConfig() HeaderFooterConfig {
	return HeaderFooterConfig{
		BandRatio:      0.10,
		MinRepeatRatio: 0.50,
		MinPages:       3,
	}
}

// HeaderFooterDetector finds text that repeats across pages in the top or
// bottom band: running titles, page numbers, footer notices.
type HeaderFooterDetector struct {
	config HeaderFooterConfig
}

// NewHeaderFooterDetector creates a detector with default configuration
func NewHeaderFooterDetector() *HeaderFooterDetector {
	return &HeaderFooterDetector{config: DefaultHeaderFooterConfig()}
}

// NewHeaderFooterDetectorWithConfig creates a detector with custom configuration
func NewHeaderFooterDetectorWithConfig(config HeaderFooterConfig) *HeaderFooterDetector {
	return &HeaderFooterDetector{config: config}
}

// Filter returns the document's elements with running headers and footers
// removed. Documents shorter than MinPages pass through untouched.
func (d *HeaderFooterDetector) Filter(doc *model.Document) []model.TextElement {
	elements := doc.Elements()
	repeated := d.Detect(doc)
	if len(repeated) == 0 {
		return elements
	}

	kept := make([]model.TextElement, 0, len(elements))
	for _, el := range elements {
		if d.inBand(el) && repeated[bandKey(el.Text)] {
			continue
		}
		kept = append(kept, el)
	}
	return kept
}

// Detect returns the set of band keys that repeat on enough pages to be
// running headers or footers.
func (d *HeaderFooterDetector) Detect(doc *model.Document) map[string]bool {
	if doc == nil || doc.PageCount() < d.config.MinPages {
		return nil
	}

	// Count the pages (not occurrences) each band text appears on.
	pagesSeen := make(map[string]map[int]bool)
	for _, el := range doc.Elements() {
		if !d.inBand(el) {
			continue
		}
		key := bandKey(el.Text)
		if key == "" {
			continue
		}
		if pagesSeen[key] == nil {
			pagesSeen[key] = make(map[int]bool)
		}
		pagesSeen[key][el.Page] = true
	}

	minPages := int(float64(doc.PageCount()) * d.config.MinRepeatRatio)
	if minPages < 2 {
		minPages = 2
	}

	repeated := make(map[string]bool)
	for key, pages := range pagesSeen {
		if len(pages) >= minPages {
			repeated[key] = true
		}
	}
	if len(repeated) == 0 {
		return nil
	}
	return repeated
}

// inBand reports whether an element sits in the header or footer band.
func (d *HeaderFooterDetector) inBand(el model.TextElement) bool {
	return el.YNorm <= d.config.BandRatio || el.YNorm >= 1-d.config.BandRatio
}

// bandKey normalizes band text for repetition counting. Digit runs collapse
// to a placeholder so "Page 3" and "Page 17" count as the same running
// footer.
func bandKey(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return ""
	}

	var sb strings.Builder
	inDigits := false
	for _, r := range lower {
		if r >= '0' && r <= '9' {
			if !inDigits {
				sb.WriteByte('#')
				inDigits = true
			}
			continue
		}
		inDigits = false
		sb.WriteRune(r)
	}
	return sb.String()
}
