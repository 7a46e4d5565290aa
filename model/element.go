package model

import "strings"

// ForceBoldFlag is the ForceBold bit of a PDF font descriptor's Flags entry.
const ForceBoldFlag = 1 << 18

// boldNameMarkers are the font name substrings that indicate a bold face.
var boldNameMarkers = []string{"bold", "black", "heavy", "semibold", "demibold"}

// FontInfo describes the font a text run was drawn with. Values are
// immutable once created.
type FontInfo struct {
	Size float64 // rendered size in points
	Name string  // base font name, e.g. "Helvetica-Bold"
	Bold bool
	BBox BBox // run bounding box in page coordinates
}

// NewFontInfo builds a FontInfo, deriving boldness from the font name and
// the font descriptor flags.
func NewFontInfo(size float64, name string, flags int, bbox BBox) FontInfo {
	return FontInfo{
		Size: size,
		Name: name,
		Bold: BoldFontName(name) || flags&ForceBoldFlag != 0,
		BBox: bbox,
	}
}

// BoldFontName reports whether a font name indicates a bold or heavy face.
func BoldFontName(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range boldNameMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// TextElement is a single extracted text run with its font metadata and
// position. Elements are read-only after extraction.
//
// YNorm is the run's top edge measured from the top of the page and divided
// by the page height: 0 is the very top, 1 the very bottom. Normalizing
// makes position thresholds independent of page size and resolution.
type TextElement struct {
	Text  string
	Font  FontInfo
	Page  int // 1-based page number
	YNorm float64
}

// Bold reports whether the element was drawn with a bold face.
func (e TextElement) Bold() bool {
	return e.Font.Bold
}

// Size returns the element's rendered font size in points.
func (e TextElement) Size() float64 {
	return e.Font.Size
}

// Words returns the number of space-separated words in the element text.
func (e TextElement) Words() int {
	return len(strings.Fields(e.Text))
}
