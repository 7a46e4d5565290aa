package persona

import (
	"sort"
	"strings"
)

// RefineConfig holds configuration for sentence refinement
type RefineConfig struct {
	// MinSentenceLength skips fragments shorter than this
	// Default: 30
	MinSentenceLength int

	// MaxSentences and MaxChars bound the assembled text
	// Defaults: 4 and 500
	MaxSentences int
	MaxChars     int

	// MinTaskWordLength is the minimum length of a task word to match on
	// Default: 4 (words longer than 3 characters)
	MinTaskWordLength int

	// NonMatchingQuota is how many non-dietary sentences survive the
	// vegetarian reordering
	// Default: 2
	NonMatchingQuota int
}

// DefaultRefineConfig returns sensible default configuration
func DefaultRefineConfig() RefineConfig {
	return RefineConfig{
		MinSentenceLength: 30,
		MaxSentences:      4,
		MaxChars:          500,
		MinTaskWordLength: 4,
		NonMatchingQuota:  2,
	}
}

// structuralMarkers are cheap signals that a sentence carries instructions
// or enumerations worth surfacing.
var structuralMarkers = []string{":", "•", "-", "step", "how", "what", "where", "when"}

type scoredSentence struct {
	text  string
	score int
}

// RefineSentences distills a section's content into at most MaxSentences
// sentence fragments relevant to the persona and task, joined with sentence
// terminators. Returns "" when nothing qualifies.
func RefineSentences(sec Section, profile Profile, task string, config RefineConfig) string {
	sentences := splitSentences(strings.Join(sec.Content, " "))
	if len(sentences) == 0 {
		return ""
	}
	if vegetarianTask(profile, task) {
		sentences = reorderForVegetarian(sentences, config.NonMatchingQuota)
	}

	taskWords := taskWords(task, config.MinTaskWordLength)

	var scored []scoredSentence
	for _, sentence := range sentences {
		if len(sentence) < config.MinSentenceLength {
			continue
		}
		if score := scoreSentence(sentence, profile, taskWords); score >= 1 {
			scored = append(scored, scoredSentence{text: sentence, score: score})
		}
	}
	if len(scored) == 0 {
		return ""
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	// Greedy assembly: best sentences first. A sentence that would blow the
	// character budget is skipped, not terminal, so a shorter lower-ranked
	// one can still fit.
	var selected []string
	total := 0
	for _, s := range scored {
		if len(selected) >= config.MaxSentences {
			break
		}
		if total+len(s.text) >= config.MaxChars {
			continue
		}
		selected = append(selected, s.text)
		total += len(s.text)
	}
	if len(selected) == 0 {
		return ""
	}
	return strings.Join(selected, ". ") + "."
}

// splitSentences breaks content into trimmed, non-empty sentence-like units
// on period boundaries.
func splitSentences(content string) []string {
	parts := strings.Split(content, ".")
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// scoreSentence weighs persona keywords double, task words triple, the
// profile's sentence bonus terms quadruple, and adds flat bonuses for digits
// and structural markers.
func scoreSentence(sentence string, profile Profile, taskWords []string) int {
	lower := strings.ToLower(sentence)

	score := 2 * countMatches(lower, profile.Keywords)
	score += 3 * countMatches(lower, taskWords)
	if len(profile.SentenceBonus) > 0 {
		score += 4 * countMatches(lower, profile.SentenceBonus)
	}
	if strings.ContainsAny(sentence, "0123456789") {
		score++
	}
	if containsAny(lower, structuralMarkers) {
		score++
	}
	return score
}

// taskWords extracts the matchable words of the task description.
func taskWords(task string, minLength int) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(task)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len(w) >= minLength {
			words = append(words, w)
		}
	}
	return words
}

// vegetarianTask reports whether a food-service task asks for vegetarian
// content.
func vegetarianTask(profile Profile, task string) bool {
	if len(profile.SentenceBonus) == 0 {
		return false
	}
	return containsAny(strings.ToLower(task), []string{"vegetarian", "veggie", "plant-based", "plant"})
}

// reorderForVegetarian prefers sentences mentioning dietary terms, keeping a
// small quota of non-matching sentences for context.
func reorderForVegetarian(sentences []string, quota int) []string {
	var matching, other []string
	for _, s := range sentences {
		if containsAny(strings.ToLower(s), vegetarianTerms) {
			matching = append(matching, s)
		} else {
			other = append(other, s)
		}
	}
	if len(other) > quota {
		other = other[:quota]
	}
	return append(matching, other...)
}
