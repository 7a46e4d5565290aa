package persona

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

// ============================================================================
// Section Scoring Tests
// ============================================================================

func TestScoreSectionWeights(t *testing.T) {
	profile := Profile{Name: "Test", Keywords: []string{"hotel"}}
	r := NewRanker()

	tests := []struct {
		name string
		sec  Section
		want int
	}{
		{
			"title hit weighs five",
			Section{Title: "Hotel", Content: []string{"nothing relevant"}},
			5,
		},
		{
			"content hit weighs one",
			Section{Title: "Lodging", Content: []string{"hotel hotel"}},
			2,
		},
		{
			"colon bonus",
			Section{Title: "Overview: Basics"},
			2,
		},
		{
			"substantial content bonus",
			Section{Title: "Overview", Content: []string{"a", "b", "c", "d"}},
			1,
		},
		{
			"all signals combined",
			Section{
				Title:   "Hotels and Hostels: a guide",
				Content: []string{"The hotel is cheap", "Rooms vary", "Booking tips", "Nearby food"},
			},
			9,
		},
		{
			"no signals",
			Section{Title: "Appendix", Content: []string{"unrelated text"}},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ScoreSection(tt.sec, profile); got != tt.want {
				t.Errorf("ScoreSection(%q) = %d, want %d", tt.sec.Title, got, tt.want)
			}
		})
	}
}

func TestScoreSectionCaseInsensitive(t *testing.T) {
	profile := Profile{Keywords: []string{"museum"}}
	sec := Section{Title: "MUSEUM HOURS"}
	if got := NewRanker().ScoreSection(sec, profile); got != 5 {
		t.Errorf("ScoreSection uppercase title = %d, want 5", got)
	}
}

// ============================================================================
// Task Relevance Tests
// ============================================================================

func TestTaskRelevance(t *testing.T) {
	food := ProfileFor("Food Contractor")
	r := NewRanker()

	tests := []struct {
		name string
		sec  Section
		task string
		want int
	}{
		{
			"dietary and buffet rules fire",
			Section{Content: []string{"Tofu and beans with quinoa", "buffet serving layout"}},
			"Prepare a vegetarian buffet",
			19,
		},
		{
			"penalty clamps at zero",
			Section{Content: []string{"Chicken and beef with pork"}},
			"Prepare a vegetarian buffet",
			0,
		},
		{
			"no trigger in task",
			Section{Content: []string{"Tofu and beans with quinoa"}},
			"Plan the annual gala dinner",
			0,
		},
		{
			"empty task",
			Section{Content: []string{"Tofu and beans"}},
			"",
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.taskRelevance(tt.sec, food, tt.task); got != tt.want {
				t.Errorf("taskRelevance(task=%q) = %d, want %d", tt.task, got, tt.want)
			}
		})
	}
}

func TestTaskRelevanceNoRules(t *testing.T) {
	bare := Profile{Name: "Archivist", Keywords: []string{"archive"}}
	sec := Section{Content: []string{"archive boxes on every shelf"}}
	if got := NewRanker().taskRelevance(sec, bare, "archive everything"); got != 0 {
		t.Errorf("taskRelevance without rules = %d, want 0", got)
	}
}

// ============================================================================
// Ranking Tests
// ============================================================================

func TestRankOrdersByScore(t *testing.T) {
	travel := ProfileFor("Travel Planner")

	sections := []Section{
		{
			Document: "a.pdf",
			Title:    "Hotel Deals: Summer",
			Page:     2,
			Content:  []string{"Cheap hotel rates", "More text", "Even more", "And more"},
		},
		{Document: "a.pdf", Title: "Blank Filler", Content: []string{"nothing here"}},
		{Document: "b.pdf", Title: "Museum Tours", Page: 5},
	}

	ranked := NewRanker().Rank(sections, travel)
	if len(ranked) != 2 {
		t.Fatalf("Rank() kept %d sections, want 2", len(ranked))
	}
	if ranked[0].Title != "Museum Tours" {
		t.Errorf("ranked[0] = %q, want Museum Tours", ranked[0].Title)
	}
	if ranked[1].Title != "Hotel Deals: Summer" {
		t.Errorf("ranked[1] = %q, want Hotel Deals: Summer", ranked[1].Title)
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Errorf("scores not descending: %d then %d", ranked[0].Score, ranked[1].Score)
	}
}

func TestRankDropsBelowMinimum(t *testing.T) {
	profile := Profile{Keywords: []string{"hotel"}}
	sections := []Section{
		{Document: "a.pdf", Title: "Irrelevant", Content: []string{"no matches at all"}},
	}
	if got := NewRanker().Rank(sections, profile); len(got) != 0 {
		t.Errorf("Rank() kept %d zero-score sections, want 0", len(got))
	}
}

func TestRankTiebreakPreservesInputOrder(t *testing.T) {
	profile := Profile{Keywords: []string{"hotel"}}
	sections := []Section{
		{Document: "a.pdf", Title: "Hotel", Page: 1},
		{Document: "b.pdf", Title: "Hotel", Page: 1},
	}

	ranked := NewRanker().Rank(sections, profile)
	if len(ranked) != 2 {
		t.Fatalf("Rank() kept %d sections, want 2", len(ranked))
	}
	if ranked[0].Document != "a.pdf" || ranked[1].Document != "b.pdf" {
		t.Errorf("tie order = [%s, %s], want input order", ranked[0].Document, ranked[1].Document)
	}
}

func TestRankPerDocumentCap(t *testing.T) {
	config := DefaultRankerConfig()
	config.MaxSections = 100
	r := NewRankerWithConfig(config)

	profile := Profile{Keywords: []string{"hotel"}}
	var sections []Section
	for i := 0; i < 20; i++ {
		sections = append(sections, Section{
			Document: "big.pdf",
			Title:    fmt.Sprintf("Hotel Option %d", i),
			Page:     i + 1,
		})
	}

	if got := r.Rank(sections, profile); len(got) != config.MaxSectionsPerDocument {
		t.Errorf("Rank() kept %d sections, want per-document cap %d",
			len(got), config.MaxSectionsPerDocument)
	}
}

func TestRankGlobalCap(t *testing.T) {
	profile := Profile{Keywords: []string{"hotel"}}
	var sections []Section
	for d := 0; d < 3; d++ {
		for i := 0; i < 6; i++ {
			sections = append(sections, Section{
				Document: fmt.Sprintf("doc%d.pdf", d),
				Title:    fmt.Sprintf("Hotel Pick %d", i),
				Page:     i + 1,
			})
		}
	}

	ranked := NewRanker().Rank(sections, profile)
	if len(ranked) != 12 {
		t.Fatalf("Rank() kept %d sections, want global cap 12", len(ranked))
	}
	for _, sec := range ranked {
		if sec.Score < 1 {
			t.Errorf("section %q has score %d below the inclusion threshold", sec.Title, sec.Score)
		}
	}
}

// ============================================================================
// Title Truncation Tests
// ============================================================================

func TestTruncateTitle(t *testing.T) {
	r := NewRanker()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"short unchanged", "Hello", "Hello"},
		{"at limit unchanged", strings.Repeat("a", 80), strings.Repeat("a", 80)},
		{"over limit cut", strings.Repeat("a", 100), strings.Repeat("a", 80)},
		{"multibyte under rune limit", strings.Repeat("é", 50), strings.Repeat("é", 50)},
		{"multibyte over rune limit", strings.Repeat("é", 90), strings.Repeat("é", 80)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.truncateTitle(tt.title)
			if got != tt.want {
				t.Errorf("truncateTitle() length %d, want length %d",
					utf8.RuneCountInString(got), utf8.RuneCountInString(tt.want))
			}
		})
	}
}
