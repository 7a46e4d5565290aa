package persona

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// relevanceRule is a task-conditioned scoring rule: when the task mentions
// any trigger, every term hit in a section's text adjusts the score by
// weight.
type relevanceRule struct {
	triggers []string
	terms    []string
	weight   int
}

// Profile is a persona's immutable keyword vocabulary. SentenceBonus terms
// get extra weight during sentence refinement (the food profile's dietary
// terms).
type Profile struct {
	Name          string   `yaml:"name"`
	Keywords      []string `yaml:"keywords"`
	SentenceBonus []string `yaml:"sentence_bonus,omitempty"`

	rules []relevanceRule
}

// Term groups used by the built-in relevance rules and the vegetarian
// sentence reordering.
var (
	vegetarianTerms = []string{"vegetarian", "vegan", "plant-based", "veggie", "tofu", "beans", "lentils", "quinoa", "chickpeas"}
	nonVegTerms     = []string{"chicken", "beef", "pork", "fish", "meat", "sausage", "bacon", "shrimp"}
	glutenFreeTerms = []string{"gluten-free", "gluten free", "rice", "quinoa", "corn"}
	buffetTerms     = []string{"buffet", "serving", "corporate", "large", "group", "catering", "party"}
)

// builtinProfiles returns the three stock personas.
func builtinProfiles() []Profile {
	return []Profile{
		{
			Name: "Travel Planner",
			Keywords: []string{
				"itinerary", "accommodation", "hotel", "restaurant", "attraction",
				"tour", "transport", "flight", "train", "bus", "guide", "booking",
				"reservation", "sightseeing", "museum", "beach", "activity", "cost",
				"price", "budget", "travel", "destination", "location", "map",
				"route", "schedule", "visit", "explore", "experience", "culture",
				"history", "tradition", "city", "town", "festival", "event",
				"entertainment", "nightlife", "shopping", "market",
			},
			rules: []relevanceRule{
				{
					triggers: []string{"group", "friends", "college", "budget", "young"},
					terms:    []string{"group", "friends", "college", "budget", "affordable", "young"},
					weight:   3,
				},
				{
					triggers: []string{"trip", "plan", "travel", "days"},
					terms:    []string{"activity", "attraction", "tour", "visit", "explore", "experience"},
					weight:   2,
				},
			},
		},
		{
			Name: "HR Professional",
			Keywords: []string{
				"form", "fillable", "field", "signature", "submit", "workflow",
				"approval", "onboarding", "compliance", "document", "template",
				"process", "digital", "electronic", "pdf", "acrobat", "create",
				"manage", "distribute", "collect", "employee", "hr",
				"human resources", "policy", "procedure", "training", "export",
				"convert", "edit", "share", "collaboration", "review", "comment",
				"security", "permission", "access", "protect", "password", "encrypt",
			},
			rules: []relevanceRule{
				{
					triggers: []string{"form", "forms", "fillable", "onboarding", "compliance"},
					terms:    []string{"form", "fillable", "onboarding", "compliance", "employee", "workflow"},
					weight:   3,
				},
			},
		},
		{
			Name: "Food Contractor",
			Keywords: []string{
				"recipe", "ingredient", "cook", "preparation", "vegetarian", "vegan",
				"buffet", "menu", "dish", "meal", "serving", "portion", "corporate",
				"catering", "dinner", "lunch", "breakfast", "food", "cuisine",
				"dietary", "allergen", "nutrition", "quantity", "scale", "cooking",
				"kitchen",
			},
			SentenceBonus: []string{"vegetarian", "vegan", "gluten-free", "buffet", "serving", "corporate"},
			rules: []relevanceRule{
				{
					triggers: []string{"vegetarian", "veggie", "plant-based", "plant"},
					terms:    vegetarianTerms,
					weight:   5,
				},
				{
					triggers: []string{"vegetarian", "veggie", "plant-based", "plant"},
					terms:    nonVegTerms,
					weight:   -10,
				},
				{
					triggers: []string{"gluten"},
					terms:    glutenFreeTerms,
					weight:   3,
				},
				{
					triggers: []string{"buffet", "corporate", "gathering", "party"},
					terms:    buffetTerms,
					weight:   2,
				},
			},
		},
	}
}

// Builtin returns the built-in profiles.
func Builtin() []Profile {
	return builtinProfiles()
}

// ProfileFor resolves a persona role name to a profile. Resolution is
// case-insensitive: exact name first, then a substring match on the role
// ("Senior HR Professional" still resolves). Unknown roles yield an empty
// vocabulary profile carrying the requested name.
func ProfileFor(role string) Profile {
	roleLower := strings.ToLower(strings.TrimSpace(role))

	for _, p := range builtinProfiles() {
		if strings.ToLower(p.Name) == roleLower {
			return p
		}
	}
	for _, p := range builtinProfiles() {
		first := strings.ToLower(strings.Fields(p.Name)[0])
		if strings.Contains(roleLower, first) {
			return p
		}
	}
	return Profile{Name: role}
}

// LoadProfiles reads custom persona vocabularies from a YAML file. The file
// holds a list of profiles:
//
//	- name: Legal Reviewer
//	  keywords: [contract, clause, liability]
func LoadProfiles(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles %s: %w", path, err)
	}

	var profiles []Profile
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse profiles %s: %w", path, err)
	}
	for i, p := range profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("parse profiles %s: profile %d has no name", path, i)
		}
	}
	return profiles, nil
}

// countMatches sums the non-overlapping occurrences of every term in the
// lowercased text.
func countMatches(lowerText string, terms []string) int {
	total := 0
	for _, term := range terms {
		total += strings.Count(lowerText, term)
	}
	return total
}

// containsAny reports whether the lowercased text mentions any of the terms.
func containsAny(lowerText string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lowerText, term) {
			return true
		}
	}
	return false
}
