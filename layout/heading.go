package layout

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tsawler/rubrica/model"
	"github.com/tsawler/rubrica/stats"
)

// Structural patterns evaluated by the classifier ladder. The three numbered
// forms are mutually exclusive by construction, so priority order alone
// decides the level.
var (
	topNumberedPattern  = regexp.MustCompile(`^\d+\.\s+\S`)         // "1. Introduction"
	subNumberedPattern  = regexp.MustCompile(`^\d+\.\d+\.?\s+`)     // "2.1 Methods"
	deepNumberedPattern = regexp.MustCompile(`^\d+\.\d+\.\d+\.?\s+`) // "2.1.3 Detail"
	numberWordPattern   = regexp.MustCompile(`^\d+\s+\w`)           // "3 Results"
	listItemPrefix      = regexp.MustCompile(`^[1-9]\.`)
	lowercaseOnly       = regexp.MustCompile(`^[a-z\s]+$`)
	digitsPunctOnly     = regexp.MustCompile(`^[\d\s.\-]+$`)
	bareAcronym         = regexp.MustCompile(`^[A-Z]{1,3}$`)
)

// Confidence assigned by the ladder before the bold/position adjustments.
const (
	patternConfidence = 0.90
	tier1Confidence   = 0.80
	tier2Confidence   = 0.72
	tier3Confidence   = 0.65
)

// ClassifierConfig holds configuration for heading classification
type ClassifierConfig struct {
	// MinTextLength and MaxTextLength bound candidate text length
	// Defaults: 4 and 150
	MinTextLength int
	MaxTextLength int

	// MaxWords is the maximum number of space-separated words
	// Default: 15
	MaxWords int

	// MinConfidence drops headings scoring below it (0.0-1.0)
	// Default: 0.60
	MinConfidence float64

	// MinFontSize is the absolute size floor for the font fallback tiers.
	// Pattern rules ignore it.
	// Default: 10
	MinFontSize float64

	// CanonicalSections are section names that force level 1 regardless of
	// font size (compared lowercase, optional trailing colon)
	CanonicalSections []string

	// FormTitleWords mark a document as form-like when they appear in the
	// title
	// Default: application, form, grant
	FormTitleWords []string

	// ShortElementLimit and ShortDocumentRatio drive the form guard: when
	// more than ShortDocumentRatio of all elements are shorter than
	// ShortElementLimit characters, the outline is suppressed
	// Defaults: 15 and 0.40
	ShortElementLimit  int
	ShortDocumentRatio float64

	// H1Ratio, H2Ratio, H3Ratio are the size/body ratios of the font
	// fallback tiers
	// Defaults: 1.3, 1.2, 1.1
	H1Ratio float64
	H2Ratio float64
	H3Ratio float64

	// H3MaxLength bounds tier-3 (bold-only) candidates
	// Default: 100
	H3MaxLength int

	// ColonMinLength and ColonMaxLength bound the "ends in a colon" rule
	// Defaults: 5 and 60
	ColonMinLength int
	ColonMaxLength int
}

// DefaultClassifierConfig returns sensible default configuration
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MinTextLength: 4,
		MaxTextLength: 150,
		MaxWords:      15,
		MinConfidence: 0.60,
		MinFontSize:   10,
		CanonicalSections: []string{
			"abstract",
			"introduction",
			"background",
			"methodology",
			"summary",
			"overview",
			"conclusion",
			"references",
			"acknowledgements",
			"appendix",
		},
		FormTitleWords:     []string{"application", "form", "grant"},
		ShortElementLimit:  15,
		ShortDocumentRatio: 0.40,
		H1Ratio:            1.3,
		H2Ratio:            1.2,
		H3Ratio:            1.1,
		H3MaxLength:        100,
		ColonMinLength:     5,
		ColonMaxLength:     60,
	}
}

// Classifier turns extracted elements into leveled outline headings.
type Classifier struct {
	config ClassifierConfig
}

// NewClassifier creates a classifier with default configuration
func NewClassifier() *Classifier {
	return &Classifier{config: DefaultClassifierConfig()}
}

// NewClassifierWithConfig creates a classifier with custom configuration
func NewClassifierWithConfig(config ClassifierConfig) *Classifier {
	return &Classifier{config: config}
}

type headingKey struct {
	text string
	page int
}

// Classify returns the document's outline headings in reading order. The
// title, when non-empty, excludes its constituent elements from candidacy.
// Degenerate or form-like input yields nil, never an error.
func (c *Classifier) Classify(elements []model.TextElement, fontStats stats.FontStatistics, title string) []model.Heading {
	if len(elements) == 0 || c.IsFormDocument(elements, title) {
		return nil
	}

	titleLower := strings.ToLower(strings.TrimSpace(title))
	seen := make(map[headingKey]bool)
	var headings []model.Heading

	for _, el := range elements {
		trimmed := strings.TrimSpace(el.Text)
		if c.rejected(trimmed, titleLower) {
			continue
		}

		level, confidence := c.level(trimmed, el, fontStats)
		if level == 0 {
			continue
		}
		confidence = c.adjustConfidence(confidence, el)
		if confidence < c.config.MinConfidence {
			continue
		}

		key := headingKey{text: strings.ToLower(trimmed), page: el.Page}
		if seen[key] {
			continue
		}
		seen[key] = true

		headings = append(headings, model.Heading{
			Text:       trimmed,
			Level:      level,
			Page:       el.Page,
			Confidence: confidence,
		})
	}

	// Reading-order approximation: layout order is no longer tracked after
	// filtering, so sort by page, then text length, then lexically.
	sort.SliceStable(headings, func(i, j int) bool {
		if headings[i].Page != headings[j].Page {
			return headings[i].Page < headings[j].Page
		}
		if len(headings[i].Text) != len(headings[j].Text) {
			return len(headings[i].Text) < len(headings[j].Text)
		}
		return headings[i].Text < headings[j].Text
	})

	return headings
}

// IsFormDocument reports whether the document looks like a fillable form.
// Form layouts are dominated by short field labels that defeat font-ratio
// classification, so their outlines are suppressed entirely.
func (c *Classifier) IsFormDocument(elements []model.TextElement, title string) bool {
	titleLower := strings.ToLower(title)
	for _, word := range c.config.FormTitleWords {
		if strings.Contains(titleLower, word) {
			return true
		}
	}

	if len(elements) == 0 {
		return false
	}
	short := 0
	for _, el := range elements {
		if len(strings.TrimSpace(el.Text)) < c.config.ShortElementLimit {
			short++
		}
	}
	return float64(short)/float64(len(elements)) > c.config.ShortDocumentRatio
}

// rejected applies the per-element filters that weed out body text, noise,
// and title fragments before level assignment.
func (c *Classifier) rejected(trimmed, titleLower string) bool {
	if len(trimmed) < c.config.MinTextLength || len(trimmed) > c.config.MaxTextLength {
		return true
	}

	lower := strings.ToLower(trimmed)
	if titleLower != "" && (strings.Contains(titleLower, lower) || strings.Contains(lower, titleLower)) {
		return true
	}
	if isNumeric(trimmed) {
		return true
	}
	if len(strings.Fields(trimmed)) > c.config.MaxWords {
		return true
	}
	if strings.HasSuffix(trimmed, ".") && !listItemPrefix.MatchString(trimmed) {
		return true
	}
	if lowercaseOnly.MatchString(trimmed) {
		return true
	}
	if digitsPunctOnly.MatchString(trimmed) {
		return true
	}
	if bareAcronym.MatchString(trimmed) {
		return true
	}
	return false
}

// level runs the priority ladder: structural patterns first, font fallback
// last. Pattern rules hold at any font size. Returns level 0 for non-headings.
func (c *Classifier) level(trimmed string, el model.TextElement, fontStats stats.FontStatistics) (int, float64) {
	if topNumberedPattern.MatchString(trimmed) ||
		c.isAllCapsHeading(trimmed) ||
		c.isCanonicalSection(trimmed) {
		return 1, patternConfidence
	}

	if subNumberedPattern.MatchString(trimmed) {
		return 2, patternConfidence
	}

	if deepNumberedPattern.MatchString(trimmed) {
		return 3, patternConfidence
	}
	if strings.HasSuffix(trimmed, ":") &&
		len(trimmed) >= c.config.ColonMinLength && len(trimmed) <= c.config.ColonMaxLength {
		return 3, patternConfidence
	}
	if numberWordPattern.MatchString(trimmed) {
		return 3, patternConfidence
	}

	size := el.Font.Size
	if size < c.config.MinFontSize {
		return 0, 0
	}
	ratio := fontStats.Ratio(size)
	switch {
	case size >= fontStats.P90 && ratio > c.config.H1Ratio:
		return 1, tier1Confidence
	case size >= fontStats.P75 && ratio > c.config.H2Ratio && el.Bold():
		return 2, tier2Confidence
	case el.Bold() && ratio > c.config.H3Ratio && len(trimmed) < c.config.H3MaxLength:
		return 3, tier3Confidence
	}
	return 0, 0
}

// adjustConfidence applies the weight and position corrections and clamps
// to [0,1].
func (c *Classifier) adjustConfidence(confidence float64, el model.TextElement) float64 {
	if el.Bold() {
		confidence += 0.05
	}
	if el.YNorm > 0.90 {
		confidence -= 0.05
	}
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// isAllCapsHeading reports whether text is an all-capitals line long enough
// to be a section header rather than an acronym.
func (c *Classifier) isAllCapsHeading(trimmed string) bool {
	if len(strings.Fields(trimmed)) < 2 {
		return false
	}

	upper, lower := 0, 0
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			upper++
		case r >= 'a' && r <= 'z':
			lower++
		}
	}
	if upper < 4 {
		return false
	}
	return lower == 0 || float64(upper)/float64(upper+lower) > 0.9
}

// isCanonicalSection matches conventional section names ("Introduction",
// "References:") case-insensitively.
func (c *Classifier) isCanonicalSection(trimmed string) bool {
	name := strings.ToLower(strings.TrimSuffix(trimmed, ":"))
	name = strings.TrimSpace(name)
	for _, canonical := range c.config.CanonicalSections {
		if name == canonical {
			return true
		}
	}
	return false
}
