package layout

import (
	"strings"
	"testing"

	"github.com/tsawler/rubrica/model"
	"github.com/tsawler/rubrica/stats"
)

// makeEl builds a text element for classifier tests.
func makeEl(text string, size float64, bold bool, page int, yNorm float64) model.TextElement {
	name := "Helvetica"
	if bold {
		name = "Helvetica-Bold"
	}
	return model.TextElement{
		Text:  text,
		Font:  model.FontInfo{Size: size, Name: name, Bold: bold},
		Page:  page,
		YNorm: yNorm,
	}
}

// makeElAt additionally positions the element horizontally.
func makeElAt(text string, size float64, bold bool, page int, yNorm, x float64) model.TextElement {
	el := makeEl(text, size, bold, page, yNorm)
	el.Font.BBox = model.NewBBox(x, 0, float64(len(text))*size*0.5, size)
	return el
}

// bodyElements pads a document with enough paragraph-size text that the
// short-element form guard stays quiet and the mode lands on 12pt.
func bodyElements(n, page int) []model.TextElement {
	elements := make([]model.TextElement, 0, n)
	for i := 0; i < n; i++ {
		elements = append(elements, makeEl("This is an ordinary paragraph of body text for statistics.", 12, false, page, 0.5))
	}
	return elements
}

func classify(t *testing.T, elements []model.TextElement, title string) []model.Heading {
	t.Helper()
	return NewClassifier().Classify(elements, stats.Compute(elements), title)
}

func findHeading(headings []model.Heading, text string) (model.Heading, bool) {
	for _, h := range headings {
		if h.Text == text {
			return h, true
		}
	}
	return model.Heading{}, false
}

// ============================================================================
// Ladder Tests
// ============================================================================

func TestClassifyEmptyInput(t *testing.T) {
	if got := classify(t, nil, ""); got != nil {
		t.Errorf("Classify(nil) = %+v, want nil", got)
	}
	if got := classify(t, []model.TextElement{}, "Some Title"); got != nil {
		t.Errorf("Classify(empty) = %+v, want nil", got)
	}
}

func TestClassifyNumberedPatternForcesLevel1(t *testing.T) {
	// Pattern rules hold at any size/weight combination.
	tests := []struct {
		name string
		size float64
		bold bool
	}{
		{"body size, regular", 12, false},
		{"body size, bold", 12, true},
		{"display size, bold", 30, true},
		{"small size", 8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elements := append(bodyElements(10, 1), makeEl("1. Introduction", tt.size, tt.bold, 1, 0.2))
			headings := classify(t, elements, "")

			h, ok := findHeading(headings, "1. Introduction")
			if !ok {
				t.Fatal("numbered heading not classified")
			}
			if h.Level != 1 {
				t.Errorf("Level = %d, want 1", h.Level)
			}
		})
	}
}

func TestClassifyPatternLevels(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantLevel int
	}{
		{"top numbered", "1. Overview of the System", 1},
		{"all caps line", "TABLE OF CONTENTS", 1},
		{"canonical section", "Introduction", 1},
		{"canonical with colon", "References:", 1},
		{"sub numbered", "2.1 Network Protocols", 2},
		{"sub numbered trailing dot", "2.1. Network Protocols", 2},
		{"deep numbered", "2.1.3 Retry Semantics", 3},
		{"ends with colon", "Key findings:", 3},
		{"number space word", "3 Results and Discussion", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elements := append(bodyElements(10, 1), makeEl(tt.text, 12, false, 1, 0.3))
			headings := classify(t, elements, "")

			h, ok := findHeading(headings, tt.text)
			if !ok {
				t.Fatalf("%q not classified as a heading", tt.text)
			}
			if h.Level != tt.wantLevel {
				t.Errorf("Level = %d, want %d", h.Level, tt.wantLevel)
			}
		})
	}
}

func TestClassifyFontFallbackTiers(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		size      float64
		bold      bool
		wantLevel int
	}{
		{"tier 1 large", "Major Section Heading", 18, false, 1},
		{"tier 2 bold above p75", "Secondary Heading Text", 14.5, true, 2},
		{"tier 3 bold slightly larger", "Minor Bold Heading", 13.4, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elements := append(bodyElements(10, 1), makeEl(tt.text, tt.size, tt.bold, 1, 0.3))
			headings := classify(t, elements, "")

			h, ok := findHeading(headings, tt.text)
			if !ok {
				t.Fatalf("%q not classified as a heading", tt.text)
			}
			if h.Level != tt.wantLevel {
				t.Errorf("Level = %d, want %d", h.Level, tt.wantLevel)
			}
		})
	}
}

func TestClassifyBodyTextDropped(t *testing.T) {
	elements := append(bodyElements(10, 1),
		makeEl("Plain Body Sentence Without Prominence", 12, false, 1, 0.4))
	headings := classify(t, elements, "")

	if _, ok := findHeading(headings, "Plain Body Sentence Without Prominence"); ok {
		t.Error("body-size regular text classified as heading")
	}
}

func TestClassifyFontFloorGatesFallbackOnly(t *testing.T) {
	// Tiny-print document: body mode well below the 10pt floor.
	var elements []model.TextElement
	for i := 0; i < 30; i++ {
		elements = append(elements, makeEl("the body text of this tiny manual runs well below ten points.", 7, false, 1, 0.5))
	}
	elements = append(elements,
		makeEl("Methodology Deep Dive", 9, true, 1, 0.3), // prominent relative to 7pt body
		makeEl("2.1 Sampling", 8, false, 1, 0.4),         // sub-numbered pattern
	)
	headings := classify(t, elements, "")

	if _, ok := findHeading(headings, "Methodology Deep Dive"); ok {
		t.Error("sub-floor element classified through the font fallback")
	}
	h, ok := findHeading(headings, "2.1 Sampling")
	if !ok {
		t.Fatal("sub-floor pattern match should still classify")
	}
	if h.Level != 2 {
		t.Errorf("Level = %d, want 2", h.Level)
	}
}

// ============================================================================
// Filter Tests
// ============================================================================

func TestClassifyFilters(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"too short", "Hi"},
		{"too long", strings.Repeat("word ", 31)[:151] + "x"},
		{"too many words", "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen"},
		{"purely numeric", "2024"},
		{"digits and punctuation", "3.14 - 2.71"},
		{"ends with period", "This sentence ends with a period."},
		{"all lowercase", "introduction to the appendix"},
		{"bare acronym", "API"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Large and bold, so only the text filter can reject it.
			elements := append(bodyElements(10, 1), makeEl(tt.text, 20, true, 1, 0.3))
			headings := classify(t, elements, "")

			if _, ok := findHeading(headings, tt.text); ok {
				t.Errorf("%q survived filtering", tt.text)
			}
		})
	}
}

func TestClassifyNumberedItemMayEndWithPeriod(t *testing.T) {
	elements := append(bodyElements(10, 1), makeEl("1. Introduction.", 12, false, 1, 0.2))
	headings := classify(t, elements, "")

	if _, ok := findHeading(headings, "1. Introduction."); !ok {
		t.Error("numbered item ending with a period should not be filtered")
	}
}

func TestClassifyTitleExclusion(t *testing.T) {
	title := "Machine Learning Survey"
	elements := append(bodyElements(10, 1),
		makeEl("Machine Learning", 20, true, 1, 0.1),                  // contained in title
		makeEl("The Machine Learning Survey Annotated", 20, true, 1, 0.15), // contains title
		makeEl("1. Introduction", 12, false, 1, 0.3),
	)
	headings := classify(t, elements, title)

	if _, ok := findHeading(headings, "Machine Learning"); ok {
		t.Error("element contained in the title was not excluded")
	}
	if _, ok := findHeading(headings, "The Machine Learning Survey Annotated"); ok {
		t.Error("element containing the title was not excluded")
	}
	if _, ok := findHeading(headings, "1. Introduction"); !ok {
		t.Error("unrelated heading wrongly excluded")
	}
}

func TestClassifyDeduplication(t *testing.T) {
	elements := append(bodyElements(10, 1),
		makeEl("1. Introduction", 12, false, 1, 0.2),
		makeEl("1. INTRODUCTION", 12, false, 1, 0.4), // same page, same lowercased text
		makeEl("1. Introduction", 12, false, 2, 0.2), // different page survives
	)
	elements = append(elements, bodyElements(10, 2)...)
	headings := classify(t, elements, "")

	count := 0
	for _, h := range headings {
		if strings.EqualFold(h.Text, "1. Introduction") {
			count++
		}
	}
	if count != 2 {
		t.Errorf("got %d occurrences across pages, want 2 (one per page)", count)
	}

	seen := make(map[headingKey]bool)
	for _, h := range headings {
		key := headingKey{text: strings.ToLower(h.Text), page: h.Page}
		if seen[key] {
			t.Errorf("duplicate (text, page) pair in outline: %q page %d", h.Text, h.Page)
		}
		seen[key] = true
	}
}

func TestClassifyOrdering(t *testing.T) {
	elements := append(bodyElements(10, 1),
		makeEl("2. Design and Implementation", 12, false, 2, 0.2),
		makeEl("1. Introduction", 12, false, 1, 0.5),
		makeEl("1.1 Scope", 12, false, 1, 0.6),
	)
	elements = append(elements, bodyElements(10, 2)...)
	headings := classify(t, elements, "")

	if len(headings) != 3 {
		t.Fatalf("got %d headings, want 3: %+v", len(headings), headings)
	}
	// Page first, then text length.
	if headings[0].Text != "1.1 Scope" || headings[1].Text != "1. Introduction" {
		t.Errorf("page-1 ordering wrong: %q, %q", headings[0].Text, headings[1].Text)
	}
	if headings[2].Page != 2 {
		t.Errorf("page-2 heading sorted before page-1: %+v", headings)
	}
}

// ============================================================================
// Form Guard Tests
// ============================================================================

func TestIsFormDocumentShortElements(t *testing.T) {
	var elements []model.TextElement
	for i := 0; i < 6; i++ {
		elements = append(elements, makeEl("Name:", 12, false, 1, 0.3))
	}
	elements = append(elements, bodyElements(4, 1)...)

	c := NewClassifier()
	if !c.IsFormDocument(elements, "") {
		t.Error("60% short elements should trip the form guard")
	}

	headings := c.Classify(elements, stats.Compute(elements), "")
	if headings != nil {
		t.Errorf("form document outline = %+v, want nil", headings)
	}
}

func TestIsFormDocumentTitleVocabulary(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Application for Leave", true},
		{"Registration Form 2024", true},
		{"Grant Proposal Cover Sheet", true},
		{"Annual Technical Report", false},
		{"", false},
	}

	c := NewClassifier()
	elements := bodyElements(10, 1)
	for _, tt := range tests {
		if got := c.IsFormDocument(elements, tt.title); got != tt.want {
			t.Errorf("IsFormDocument(title=%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestFormDocumentSuppressesPatternHeadings(t *testing.T) {
	elements := append(bodyElements(2, 1),
		makeEl("1. Introduction", 12, false, 1, 0.2),
		makeEl("Name:", 12, false, 1, 0.3),
		makeEl("Date:", 12, false, 1, 0.35),
		makeEl("Sign:", 12, false, 1, 0.4),
	)
	headings := classify(t, elements, "")

	if headings != nil {
		t.Errorf("form-like document should yield an empty outline, got %+v", headings)
	}
}

// ============================================================================
// Confidence Tests
// ============================================================================

func TestClassifyConfidence(t *testing.T) {
	elements := append(bodyElements(10, 1),
		makeEl("1. Introduction", 12, true, 1, 0.2),
		makeEl("Minor Bold Heading", 13.4, true, 1, 0.3),
	)
	headings := classify(t, elements, "")

	h, ok := findHeading(headings, "1. Introduction")
	if !ok {
		t.Fatal("pattern heading missing")
	}
	if h.Confidence < 0.9 || h.Confidence > 1 {
		t.Errorf("pattern+bold confidence = %v, want within [0.9, 1]", h.Confidence)
	}

	h, ok = findHeading(headings, "Minor Bold Heading")
	if !ok {
		t.Fatal("tier-3 heading missing")
	}
	if h.Confidence >= 0.9 {
		t.Errorf("tier-3 confidence = %v, expected below pattern confidence", h.Confidence)
	}
}

func TestClassifyConfidenceThreshold(t *testing.T) {
	config := DefaultClassifierConfig()
	config.MinConfidence = 0.99
	c := NewClassifierWithConfig(config)

	elements := append(bodyElements(10, 1), makeEl("1. Introduction", 12, true, 1, 0.2))
	headings := c.Classify(elements, stats.Compute(elements), "")

	if headings != nil {
		t.Errorf("threshold 0.99 should drop every heading, got %+v", headings)
	}
}

func TestClassifyBottomOfPagePenalty(t *testing.T) {
	elements := append(bodyElements(10, 1),
		makeEl("1. Introduction", 12, false, 1, 0.95),
	)
	headings := classify(t, elements, "")

	h, ok := findHeading(headings, "1. Introduction")
	if !ok {
		t.Fatal("bottom-of-page pattern heading should survive the penalty")
	}
	if h.Confidence >= patternConfidence {
		t.Errorf("Confidence = %v, want reduced below %v", h.Confidence, patternConfidence)
	}
}
