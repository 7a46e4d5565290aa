package persona

import (
	"strings"

	"github.com/tsawler/rubrica/model"
)

// Section is a run of content under one heading-like boundary. Score is
// filled in by the ranker.
type Section struct {
	Document string
	Title    string
	Page     int // 1-indexed page the heading appeared on
	Content  []string
	Score    int
}

// SegmenterConfig holds configuration for section segmentation
type SegmenterConfig struct {
	// MinHeadingSize is the absolute font size a boundary element must
	// exceed
	// Default: 11
	MinHeadingSize float64

	// MinTitleLength and MaxTitleLength bound boundary text length
	// Defaults: 5 and 120
	MinTitleLength int
	MaxTitleLength int

	// GenericLabels are lowercased texts that never open a section
	// ("note:", "tip:", ...)
	GenericLabels []string
}

// DefaultSegmenterConfig returns sensible default configuration
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		MinHeadingSize: 11,
		MinTitleLength: 5,
		MaxTitleLength: 120,
		GenericLabels: []string{
			"note:", "tip:", "important:", "warning:", "example:",
			"note", "tip", "important", "warning",
		},
	}
}

// Segmenter splits a document's elements into sections at heading-like
// boundaries.
type Segmenter struct {
	config SegmenterConfig
}

// NewSegmenter creates a segmenter with default configuration
func NewSegmenter() *Segmenter {
	return &Segmenter{config: DefaultSegmenterConfig()}
}

// NewSegmenterWithConfig creates a segmenter with custom configuration
func NewSegmenterWithConfig(config SegmenterConfig) *Segmenter {
	return &Segmenter{config: config}
}

// Segment walks the elements in extraction order. A heading-like element
// opens a new section; everything after it accumulates as content until the
// next boundary or end of input. Content before the first boundary is
// dropped, matching the notion that unlabeled preamble has no section title
// to rank.
func (s *Segmenter) Segment(document string, elements []model.TextElement) []Section {
	var sections []Section
	var current *Section

	for _, el := range elements {
		if s.isBoundary(el) {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &Section{
				Document: document,
				Title:    strings.TrimSpace(el.Text),
				Page:     el.Page,
			}
			continue
		}
		if current != nil {
			current.Content = append(current.Content, el.Text)
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

// isBoundary applies the heading heuristic: bold, above the absolute size
// floor, reasonable length, and not a generic label.
func (s *Segmenter) isBoundary(el model.TextElement) bool {
	if !el.Bold() || el.Font.Size <= s.config.MinHeadingSize {
		return false
	}
	trimmed := strings.TrimSpace(el.Text)
	if len(trimmed) < s.config.MinTitleLength || len(trimmed) > s.config.MaxTitleLength {
		return false
	}

	lower := strings.ToLower(trimmed)
	for _, label := range s.config.GenericLabels {
		if lower == label {
			return false
		}
	}
	return true
}
