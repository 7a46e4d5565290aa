package rubrica

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default extraction thresholds.
const (
	// DefaultMaxPages caps per-document processing. Structure inference
	// rarely improves past the front matter, and the cap bounds work on
	// pathological inputs.
	DefaultMaxPages = 50

	// DefaultMinFontSize is the size floor for font-prominence heading
	// detection.
	DefaultMinFontSize = 10.0

	// DefaultMinConfidence is the threshold below which heading candidates
	// are discarded.
	DefaultMinConfidence = 0.60

	// DefaultWorkers bounds batch-mode concurrency.
	DefaultWorkers = 4
)

// Config is the full configuration surface, loadable from YAML. The zero
// value is not usable; start from DefaultConfig or LoadConfig.
type Config struct {
	// MaxPages caps how many pages are processed per document.
	MaxPages int `yaml:"max_pages"`

	// MinFontSize is the absolute floor for font-prominence headings.
	MinFontSize float64 `yaml:"min_font_size"`

	// MinConfidence discards heading candidates scoring below it.
	MinConfidence float64 `yaml:"min_confidence"`

	// ExcludeHeadersFooters drops text repeating at the same page position
	// across most pages.
	ExcludeHeadersFooters bool `yaml:"exclude_headers_footers"`

	// CanonicalSections lists extra lowercase section names recognized as
	// level-1 headings, on top of the built-in academic set.
	CanonicalSections []string `yaml:"canonical_sections"`

	// OCRLanguage is passed to Tesseract when image-only pages are
	// recovered. Empty uses the Tesseract default.
	OCRLanguage string `yaml:"ocr_language"`

	// Workers bounds concurrent document processing in batch mode.
	Workers int `yaml:"workers"`

	// Title tunes the page-1 title heuristics.
	Title TitleTuning `yaml:"title"`

	// Persona configures collection ranking.
	Persona PersonaSettings `yaml:"persona"`
}

// TitleTuning adjusts the first-page title heuristics. All three knobs are
// validated against narrow bands; values outside them degrade title
// detection badly enough that they are almost certainly mistakes.
type TitleTuning struct {
	// SizeTolerance is the minimum candidate size as a fraction of the
	// largest page-1 font size. Band: [0.85, 0.90].
	SizeTolerance float64 `yaml:"size_tolerance"`

	// MaxDepth is the normalized page depth a candidate may sit at,
	// 0 meaning the top of the page. Band: [0.30, 0.40].
	MaxDepth float64 `yaml:"max_depth"`

	// LineEpsilon is the normalized Y distance within which candidates
	// merge into one visual line. Band: [0.03, 0.05].
	LineEpsilon float64 `yaml:"line_epsilon"`
}

// PersonaSettings configures collection ranking for batch mode.
type PersonaSettings struct {
	// Role selects the relevance profile, e.g. "Travel Planner".
	Role string `yaml:"role"`

	// Task is the job description scored against section text.
	Task string `yaml:"task"`

	// Profiles optionally points at a YAML file of extra relevance
	// profiles merged over the built-in set.
	Profiles string `yaml:"profiles"`
}

// DefaultConfig returns the configuration used when no file is provided.
func DefaultConfig() *Config {
	return &Config{
		MaxPages:              DefaultMaxPages,
		MinFontSize:           DefaultMinFontSize,
		MinConfidence:         DefaultMinConfidence,
		ExcludeHeadersFooters: true,
		OCRLanguage:           "",
		Workers:               DefaultWorkers,
		Title: TitleTuning{
			SizeTolerance: 0.90,
			MaxDepth:      0.40,
			LineEpsilon:   0.04,
		},
	}
}

// LoadConfig reads a YAML config file, fills unset fields from defaults,
// and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks every field against its allowed range.
func (c *Config) Validate() error {
	if c.MaxPages == 0 {
		return fmt.Errorf("max_pages must not be zero (use a negative value to disable the cap)")
	}
	if c.MinFontSize < 0 {
		return fmt.Errorf("min_font_size must not be negative, got %g", c.MinFontSize)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0, 1], got %g", c.MinConfidence)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Title.SizeTolerance < 0.85 || c.Title.SizeTolerance > 0.90 {
		return fmt.Errorf("title.size_tolerance must be in [0.85, 0.90], got %g", c.Title.SizeTolerance)
	}
	if c.Title.MaxDepth < 0.30 || c.Title.MaxDepth > 0.40 {
		return fmt.Errorf("title.max_depth must be in [0.30, 0.40], got %g", c.Title.MaxDepth)
	}
	if c.Title.LineEpsilon < 0.03 || c.Title.LineEpsilon > 0.05 {
		return fmt.Errorf("title.line_epsilon must be in [0.03, 0.05], got %g", c.Title.LineEpsilon)
	}
	return nil
}
