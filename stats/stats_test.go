package stats

import (
	"math"
	"testing"

	"github.com/tsawler/rubrica/model"
)

func elementsWithSizes(sizes ...float64) []model.TextElement {
	elements := make([]model.TextElement, 0, len(sizes))
	for _, s := range sizes {
		elements = append(elements, model.TextElement{
			Text: "sample text",
			Font: model.FontInfo{Size: s, Name: "Helvetica"},
			Page: 1,
		})
	}
	return elements
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.0001
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil)

	if s.SampleCount != 0 {
		t.Errorf("SampleCount = %d, want 0", s.SampleCount)
	}
	for name, got := range map[string]float64{
		"Mean": s.Mean, "Mode": s.Mode, "P75": s.P75, "P90": s.P90, "Max": s.Max,
	} {
		if got != DefaultBodySize {
			t.Errorf("%s = %v, want default %v", name, got, DefaultBodySize)
		}
	}
}

func TestComputeWithDefault(t *testing.T) {
	s := ComputeWithDefault(nil, 10)
	if s.Mode != 10 || s.Max != 10 {
		t.Errorf("empty stats with default 10 = %+v", s)
	}
}

func TestComputeIgnoresNonPositiveSizes(t *testing.T) {
	s := Compute(elementsWithSizes(12, 12, 0, -3))
	if s.SampleCount != 2 {
		t.Errorf("SampleCount = %d, want 2", s.SampleCount)
	}
	if s.Mode != 12 {
		t.Errorf("Mode = %v, want 12", s.Mode)
	}
}

func TestComputeSingleSize(t *testing.T) {
	s := Compute(elementsWithSizes(11.5))

	if !almostEqual(s.Mean, 11.5) || s.Mode != 11.5 || s.P75 != 11.5 || s.P90 != 11.5 || s.Max != 11.5 {
		t.Errorf("single-size stats = %+v, want all 11.5", s)
	}
	if s.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1", s.SampleCount)
	}
}

func TestModeIsBodySizeNotMean(t *testing.T) {
	// Ten body-size elements and two display headings: the mean moves, the
	// mode must not.
	sizes := []float64{12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 24, 30}
	s := Compute(elementsWithSizes(sizes...))

	if s.Mode != 12 {
		t.Errorf("Mode = %v, want 12", s.Mode)
	}
	if s.Mean <= 12 {
		t.Errorf("Mean = %v, expected it pulled above 12", s.Mean)
	}
	if s.Max != 30 {
		t.Errorf("Max = %v, want 30", s.Max)
	}
}

func TestModeTieBreaksLarger(t *testing.T) {
	s := Compute(elementsWithSizes(12, 12, 14, 14))
	if s.Mode != 14 {
		t.Errorf("Mode = %v, want tie broken to 14", s.Mode)
	}
}

func TestPercentileFloorIndexing(t *testing.T) {
	sorted := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{0.5, 15},   // int(0.5*10) = 5
		{0.75, 17},  // int(0.75*10) = 7
		{0.90, 19},  // int(0.9*10) = 9
		{1.0, 19},   // clamped to last
		{-0.5, 10},  // clamped to first
		{1.5, 19},   // clamped
	}

	for _, tt := range tests {
		if got := Percentile(sorted, tt.p); got != tt.want {
			t.Errorf("Percentile(p=%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	if got := Percentile(nil, 0.75); got != 0 {
		t.Errorf("Percentile(empty) = %v, want 0", got)
	}
}

func TestComputePercentiles(t *testing.T) {
	s := Compute(elementsWithSizes(10, 11, 12, 13, 14, 15, 16, 17, 18, 19))

	if s.P75 != 17 {
		t.Errorf("P75 = %v, want 17", s.P75)
	}
	if s.P90 != 19 {
		t.Errorf("P90 = %v, want 19", s.P90)
	}
}

func TestRatio(t *testing.T) {
	s := Compute(elementsWithSizes(12, 12, 12, 18))

	if got := s.Ratio(18); !almostEqual(got, 1.5) {
		t.Errorf("Ratio(18) = %v, want 1.5", got)
	}
	if got := s.Ratio(12); !almostEqual(got, 1.0) {
		t.Errorf("Ratio(12) = %v, want 1.0", got)
	}

	var zero FontStatistics
	if got := zero.Ratio(12); got != 0 {
		t.Errorf("Ratio on zero stats = %v, want 0", got)
	}
}
