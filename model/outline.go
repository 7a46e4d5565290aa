package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Heading is a single classified outline entry. Level 1 is the most
// prominent. Confidence is the classifier's score in [0,1]; it is an API
// convenience and does not appear in the JSON artifact.
type Heading struct {
	Text       string
	Level      int
	Page       int // 1-indexed
	Confidence float64
}

// LevelTag returns the wire form of the heading level ("H1", "H2", ...).
func (h Heading) LevelTag() string {
	return "H" + strconv.Itoa(h.Level)
}

// headingJSON is the wire form of a Heading.
type headingJSON struct {
	Level string `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// MarshalJSON encodes the heading with its level as an "H<N>" tag.
func (h Heading) MarshalJSON() ([]byte, error) {
	return json.Marshal(headingJSON{
		Level: h.LevelTag(),
		Text:  h.Text,
		Page:  h.Page,
	})
}

// UnmarshalJSON decodes the "H<N>" wire form back into a Heading.
func (h *Heading) UnmarshalJSON(data []byte) error {
	var wire headingJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	level, err := parseLevelTag(wire.Level)
	if err != nil {
		return err
	}
	h.Level = level
	h.Text = wire.Text
	h.Page = wire.Page
	return nil
}

func parseLevelTag(tag string) (int, error) {
	if len(tag) < 2 || (tag[0] != 'H' && tag[0] != 'h') {
		return 0, fmt.Errorf("invalid heading level tag %q", tag)
	}
	level, err := strconv.Atoi(tag[1:])
	if err != nil || level < 1 {
		return 0, fmt.Errorf("invalid heading level tag %q", tag)
	}
	return level, nil
}

// Outline is the outline-extraction artifact: a document title (possibly
// empty) and the classified headings in reading order.
type Outline struct {
	Title    string    `json:"title"`
	Headings []Heading `json:"outline"`
}

// MarshalJSON keeps the outline array non-null even when empty, which the
// artifact consumers rely on.
func (o Outline) MarshalJSON() ([]byte, error) {
	headings := o.Headings
	if headings == nil {
		headings = []Heading{}
	}
	type wire struct {
		Title   string    `json:"title"`
		Outline []Heading `json:"outline"`
	}
	return json.Marshal(wire{Title: o.Title, Outline: headings})
}

// UnmarshalJSON decodes the artifact wire form.
func (o *Outline) UnmarshalJSON(data []byte) error {
	var wire struct {
		Title   string    `json:"title"`
		Outline []Heading `json:"outline"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	o.Title = wire.Title
	o.Headings = wire.Outline
	return nil
}

// HeadingsAtLevel returns the outline entries with the given level.
func (o Outline) HeadingsAtLevel(level int) []Heading {
	var result []Heading
	for _, h := range o.Headings {
		if h.Level == level {
			result = append(result, h)
		}
	}
	return result
}

// MarkdownTOC returns a markdown-formatted table of contents
func (o Outline) MarkdownTOC() string {
	var sb strings.Builder
	if o.Title != "" {
		sb.WriteString("# ")
		sb.WriteString(o.Title)
		sb.WriteString("\n\n")
	}
	for _, h := range o.Headings {
		// Indent based on level
		indent := strings.Repeat("  ", h.Level-1)
		sb.WriteString(indent)
		sb.WriteString("- ")
		sb.WriteString(h.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
