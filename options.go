package rubrica

import (
	"github.com/tsawler/rubrica/layout"
)

// ExtractOptions holds configuration for structure extraction.
type ExtractOptions struct {
	// Page budget (0 means the default cap, negative means unlimited)
	maxPages int

	// Heading thresholds
	minFontSize   float64
	minConfidence float64

	// Layout filtering
	excludeHeadersFooters bool

	// Extra section names treated as canonical headings
	canonicalSections []string

	// Title heuristics
	title layout.TitleConfig

	// OCR language passed to Tesseract ("" uses its default)
	ocrLanguage string
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		maxPages:              DefaultMaxPages,
		minFontSize:           DefaultMinFontSize,
		minConfidence:         DefaultMinConfidence,
		excludeHeadersFooters: true,
		canonicalSections:     nil,
		title:                 layout.DefaultTitleConfig(),
		ocrLanguage:           "",
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := ExtractOptions{
		maxPages:              o.maxPages,
		minFontSize:           o.minFontSize,
		minConfidence:         o.minConfidence,
		excludeHeadersFooters: o.excludeHeadersFooters,
		title:                 o.title,
		ocrLanguage:           o.ocrLanguage,
	}

	// Deep copy the sections slice
	if o.canonicalSections != nil {
		newOpts.canonicalSections = make([]string, len(o.canonicalSections))
		copy(newOpts.canonicalSections, o.canonicalSections)
	}

	return newOpts
}
