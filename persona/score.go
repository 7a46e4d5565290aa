package persona

import (
	"sort"
	"strings"
)

// RankerConfig holds configuration for cross-collection section ranking
type RankerConfig struct {
	// MaxSectionsPerDocument caps the per-document shortlist
	// Default: 15
	MaxSectionsPerDocument int

	// MaxSections caps the global ranking
	// Default: 12
	MaxSections int

	// MinSectionScore discards sections scoring below it (after task
	// relevance and clamping)
	// Default: 1
	MinSectionScore int

	// MaxSubsectionCandidates bounds how many ranked sections are refined
	// Default: 8
	MaxSubsectionCandidates int

	// MaxPerDocument is the diversity cap on refined rows per source
	// document
	// Default: 3
	MaxPerDocument int

	// MinRefinedLength drops refined rows whose text is this short or
	// shorter
	// Default: 80
	MinRefinedLength int

	// TitleTruncate bounds section titles in the artifact
	// Default: 80
	TitleTruncate int

	// Refine configures sentence refinement
	Refine RefineConfig
}

// DefaultRankerConfig returns sensible default configuration
func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		MaxSectionsPerDocument:  15,
		MaxSections:             12,
		MinSectionScore:         1,
		MaxSubsectionCandidates: 8,
		MaxPerDocument:          3,
		MinRefinedLength:        80,
		TitleTruncate:           80,
		Refine:                  DefaultRefineConfig(),
	}
}

// Ranker scores and ranks sections across a document collection.
type Ranker struct {
	config RankerConfig
}

// NewRanker creates a ranker with default configuration
func NewRanker() *Ranker {
	return &Ranker{config: DefaultRankerConfig()}
}

// NewRankerWithConfig creates a ranker with custom configuration
func NewRankerWithConfig(config RankerConfig) *Ranker {
	return &Ranker{config: config}
}

// ScoreSection computes a section's importance for the persona vocabulary:
// title keyword hits weigh five, content hits one, a colon in the title adds
// two, and substantial content (more than three elements) adds one. The task
// description does not enter here; it orders refinement candidates via
// taskRelevance instead.
func (r *Ranker) ScoreSection(sec Section, profile Profile) int {
	titleLower := strings.ToLower(sec.Title)
	contentLower := strings.ToLower(strings.Join(sec.Content, " "))

	score := 5*countMatches(titleLower, profile.Keywords) +
		countMatches(contentLower, profile.Keywords)
	if strings.Contains(sec.Title, ":") {
		score += 2
	}
	if len(sec.Content) > 3 {
		score++
	}
	return score
}

// taskRelevance applies the profile's task-conditioned rules: a rule fires
// only when the task mentions one of its triggers, then counts its terms in
// the section content. Penalty rules can drive the total negative, so the
// result clamps at zero.
func (r *Ranker) taskRelevance(sec Section, profile Profile, task string) int {
	if len(profile.rules) == 0 || task == "" {
		return 0
	}

	taskLower := strings.ToLower(task)
	contentLower := strings.ToLower(strings.Join(sec.Content, " "))

	total := 0
	for _, rule := range profile.rules {
		if !containsAny(taskLower, rule.triggers) {
			continue
		}
		total += rule.weight * countMatches(contentLower, rule.terms)
	}
	if total < 0 {
		total = 0
	}
	return total
}

// Rank scores every section, shortlists the best per document, and returns
// the global top sections in rank order. Input order is the tiebreak for
// equal scores, which keeps collection runs deterministic.
func (r *Ranker) Rank(sections []Section, profile Profile) []Section {
	perDocument := make(map[string][]Section)
	var documents []string

	for _, sec := range sections {
		sec.Score = r.ScoreSection(sec, profile)
		if sec.Score < r.config.MinSectionScore {
			continue
		}
		if _, ok := perDocument[sec.Document]; !ok {
			documents = append(documents, sec.Document)
		}
		perDocument[sec.Document] = append(perDocument[sec.Document], sec)
	}

	var ranked []Section
	for _, doc := range documents {
		shortlist := perDocument[doc]
		sort.SliceStable(shortlist, func(i, j int) bool {
			return shortlist[i].Score > shortlist[j].Score
		})
		if len(shortlist) > r.config.MaxSectionsPerDocument {
			shortlist = shortlist[:r.config.MaxSectionsPerDocument]
		}
		ranked = append(ranked, shortlist...)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > r.config.MaxSections {
		ranked = ranked[:r.config.MaxSections]
	}
	return ranked
}

// truncateTitle bounds a section title for the artifact, counting runes so
// multibyte text never splits mid-character.
func (r *Ranker) truncateTitle(title string) string {
	limit := r.config.TitleTruncate
	if limit <= 0 || len(title) <= limit {
		return title
	}
	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}
	return string(runes[:limit])
}
