package layout

import (
	"sort"
	"strings"

	"github.com/tsawler/rubrica/model"
	"github.com/tsawler/rubrica/text"
)

// TitleConfig holds configuration for title extraction
type TitleConfig struct {
	// SizeTolerance is the minimum candidate size as a fraction of the
	// largest page-1 font size
	// Default: 0.90
	SizeTolerance float64

	// MaxYNorm is the normalized page depth a candidate may sit at
	// (0 = top of page)
	// Default: 0.40
	MaxYNorm float64

	// LineEpsilon is the normalized Y distance within which candidates are
	// merged into the same visual line
	// Default: 0.04
	LineEpsilon float64

	// MinLength is the minimum assembled title length in characters
	// Default: 10
	MinLength int

	// MinCandidateLength is the minimum per-element text length
	// Default: 3
	MinCandidateLength int
}

// DefaultTitleConfig returns sensible default configuration
func DefaultTitleConfig() TitleConfig {
	return TitleConfig{
		SizeTolerance:      0.90,
		MaxYNorm:           0.40,
		LineEpsilon:        0.04,
		MinLength:          10,
		MinCandidateLength: 3,
	}
}

// TitleExtractor assembles a document title from the most prominent
// elements in the upper region of the first page.
type TitleExtractor struct {
	config TitleConfig
}

// NewTitleExtractor creates a title extractor with default configuration
func NewTitleExtractor() *TitleExtractor {
	return &TitleExtractor{config: DefaultTitleConfig()}
}

// NewTitleExtractorWithConfig creates a title extractor with custom configuration
func NewTitleExtractorWithConfig(config TitleConfig) *TitleExtractor {
	return &TitleExtractor{config: config}
}

// Extract returns the document title assembled from the given page-1
// elements, or "" when no credible title exists. The function is pure:
// the same element set always yields the same title.
func (e *TitleExtractor) Extract(pageOne []model.TextElement) string {
	candidates := e.candidates(pageOne)
	if len(candidates) == 0 {
		return ""
	}

	// Reading order: top to bottom, then left to right.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].YNorm != candidates[j].YNorm {
			return candidates[i].YNorm < candidates[j].YNorm
		}
		return candidates[i].Font.BBox.X < candidates[j].Font.BBox.X
	})

	title := text.CollapseWhitespace(strings.Join(e.mergeLines(candidates), " "))
	if len(title) <= e.config.MinLength {
		return ""
	}
	return title
}

// candidates filters page-1 elements to plausible title parts: large enough
// relative to the page maximum, high enough on the page, and not numeric
// noise.
func (e *TitleExtractor) candidates(pageOne []model.TextElement) []model.TextElement {
	maxSize := 0.0
	for _, el := range pageOne {
		if el.Page == 1 && el.Font.Size > maxSize {
			maxSize = el.Font.Size
		}
	}
	if maxSize == 0 {
		return nil
	}

	var candidates []model.TextElement
	for _, el := range pageOne {
		if el.Page != 1 {
			continue
		}
		trimmed := strings.TrimSpace(el.Text)
		if el.Font.Size < maxSize*e.config.SizeTolerance {
			continue
		}
		if el.YNorm >= e.config.MaxYNorm {
			continue
		}
		if len(trimmed) < e.config.MinCandidateLength || isNumeric(trimmed) {
			continue
		}
		candidates = append(candidates, el)
	}
	return candidates
}

// mergeLines groups sorted candidates into visual lines: neighbors closer
// than LineEpsilon share a line, larger gaps start a new one.
func (e *TitleExtractor) mergeLines(candidates []model.TextElement) []string {
	var lines []string
	var current []string
	lastY := -1.0

	for _, el := range candidates {
		if lastY >= 0 && el.YNorm-lastY > e.config.LineEpsilon {
			lines = append(lines, strings.Join(current, " "))
			current = current[:0]
		}
		current = append(current, strings.TrimSpace(el.Text))
		lastY = el.YNorm
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}

// isNumeric reports whether s consists solely of digits.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
