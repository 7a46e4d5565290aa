package reader

import (
	"math"
	"sort"
	"strings"
)

// lineGapFactor is the horizontal gap, as a fraction of the font size,
// beyond which two spans on the same baseline read as separate words.
const lineGapFactor = 0.3

// lineKey buckets spans that belong to the same visual line. Rounding
// absorbs the sub-point jitter that per-glyph positioning produces.
type lineKey struct {
	y    float64
	font string
	size float64
}

// ReassembleLines merges spans that share a baseline, font, and size into
// whole-line spans. Writers that emit one positioning operator per glyph
// or word leave PageSpans with fragments too short to classify; grouping
// them recovers the lines the page actually shows. Order follows the
// first appearance of each line in the input, and spans within a line are
// merged left to right.
func ReassembleLines(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}

	groups := make(map[lineKey][]Span)
	var order []lineKey
	for _, s := range spans {
		k := lineKey{
			y:    math.Round(s.BBox.Y),
			font: s.FontName,
			size: math.Round(s.FontSize),
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], s)
	}

	lines := make([]Span, 0, len(order))
	for _, k := range order {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].BBox.X < group[j].BBox.X
		})
		lines = append(lines, joinLine(group))
	}
	return lines
}

// joinLine concatenates left-to-right spans into one, inserting a space
// where the horizontal gap indicates a word break.
func joinLine(group []Span) Span {
	line := group[0]
	var b strings.Builder
	b.WriteString(line.Text)

	for _, s := range group[1:] {
		if needsSpace(line, s, b.String()) {
			b.WriteByte(' ')
		}
		b.WriteString(s.Text)
		line.BBox = line.BBox.Union(s.BBox)
		line.Bold = line.Bold || s.Bold
	}

	line.Text = b.String()
	return line
}

// needsSpace reports whether a word break separates the accumulated line
// from the next span. A break already written by either side counts.
func needsSpace(line, next Span, accumulated string) bool {
	if strings.HasSuffix(accumulated, " ") || strings.HasPrefix(next.Text, " ") {
		return false
	}
	gap := next.BBox.Left() - line.BBox.Right()
	return gap >= line.FontSize*lineGapFactor
}
