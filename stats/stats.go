package stats

import (
	"sort"

	"github.com/tsawler/rubrica/model"
)

// DefaultBodySize is the body font size assumed when a document yields no
// measurable text.
const DefaultBodySize = 12.0

// FontStatistics summarizes the font size distribution of a document's
// elements. Mode is the body text size used for every ratio test.
type FontStatistics struct {
	Mean        float64
	Mode        float64
	P75         float64
	P90         float64
	Max         float64
	SampleCount int
}

// Compute derives font statistics from the extracted elements using
// DefaultBodySize for degenerate input.
func Compute(elements []model.TextElement) FontStatistics {
	return ComputeWithDefault(elements, DefaultBodySize)
}

// ComputeWithDefault derives font statistics from the extracted elements.
// An empty element set yields defaultSize in every field and SampleCount 0.
func ComputeWithDefault(elements []model.TextElement, defaultSize float64) FontStatistics {
	sizes := make([]float64, 0, len(elements))
	for _, el := range elements {
		if el.Font.Size > 0 {
			sizes = append(sizes, el.Font.Size)
		}
	}

	if len(sizes) == 0 {
		return FontStatistics{
			Mean: defaultSize,
			Mode: defaultSize,
			P75:  defaultSize,
			P90:  defaultSize,
			Max:  defaultSize,
		}
	}

	sort.Float64s(sizes)

	var sum float64
	for _, s := range sizes {
		sum += s
	}

	return FontStatistics{
		Mean:        sum / float64(len(sizes)),
		Mode:        mode(sizes),
		P75:         Percentile(sizes, 0.75),
		P90:         Percentile(sizes, 0.90),
		Max:         sizes[len(sizes)-1],
		SampleCount: len(sizes),
	}
}

// Percentile returns the value at percentile p from an ascending-sorted
// slice using floor indexing, no interpolation. p is clamped to [0,1].
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// mode returns the most frequent size; ties resolve toward the larger size.
// The input must be sorted ascending.
func mode(sorted []float64) float64 {
	best := sorted[0]
	bestCount := 0
	count := 0
	for i, s := range sorted {
		if i > 0 && s != sorted[i-1] {
			count = 0
		}
		count++
		if count >= bestCount {
			best = s
			bestCount = count
		}
	}
	return best
}

// Ratio returns size relative to the body (modal) size. A zero mode yields
// ratio 0 rather than dividing by zero.
func (s FontStatistics) Ratio(size float64) float64 {
	if s.Mode == 0 {
		return 0
	}
	return size / s.Mode
}
