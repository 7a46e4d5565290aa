package persona

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tsawler/rubrica/model"
)

// ErrEmptyCollection reports a collection with no readable documents to rank.
var ErrEmptyCollection = errors.New("collection has no readable documents")

// Manifest describes a document collection: the files to process, the
// persona reading them, and the job to be done.
type Manifest struct {
	ChallengeInfo map[string]string  `json:"challenge_info,omitempty"`
	Documents     []ManifestDocument `json:"documents"`
	Persona       ManifestPersona    `json:"persona"`
	JobToBeDone   ManifestJob        `json:"job_to_be_done"`
}

// ManifestDocument names one collection member.
type ManifestDocument struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

// ManifestPersona carries the persona role, e.g. "Travel Planner".
type ManifestPersona struct {
	Role string `json:"role"`
}

// ManifestJob carries the free-text task description.
type ManifestJob struct {
	Task string `json:"task"`
}

// LoadManifest reads and parses a collection manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// ParseManifest parses a collection manifest from JSON bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON: %w", err)
	}
	if len(m.Documents) == 0 {
		return nil, errors.New("manifest lists no documents")
	}
	return &m, nil
}

// DocumentInput pairs a document's name with its extracted elements. The
// caller (usually the batch runner) owns extraction; the processor only
// ranks.
type DocumentInput struct {
	Name     string
	Elements []model.TextElement
}

// Artifact is the persona-mode output for one collection.
type Artifact struct {
	Metadata           Metadata             `json:"metadata"`
	ExtractedSections  []ExtractedSection   `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionAnalysis `json:"subsection_analysis"`
}

// Metadata records what the artifact was computed from.
type Metadata struct {
	InputDocuments []string `json:"input_documents"`
	Persona        string   `json:"persona"`
	JobToBeDone    string   `json:"job_to_be_done"`
}

// ExtractedSection is one globally ranked section.
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"`
	PageNumber     int    `json:"page_number"`
}

// SubsectionAnalysis is one refined-text row.
type SubsectionAnalysis struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// ProcessorConfig holds configuration for collection processing
type ProcessorConfig struct {
	// Segmenter configures section boundary detection
	Segmenter SegmenterConfig

	// Ranker configures scoring, ranking and refinement
	Ranker RankerConfig

	// Profiles are extra persona vocabularies consulted before the
	// built-ins when resolving a role name
	Profiles []Profile
}

// DefaultProcessorConfig returns sensible default configuration
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		Segmenter: DefaultSegmenterConfig(),
		Ranker:    DefaultRankerConfig(),
	}
}

// Processor runs the whole persona pipeline for one collection: segment
// every document, rank sections across the collection, refine the top
// candidates into subsection rows.
type Processor struct {
	config    ProcessorConfig
	segmenter *Segmenter
	ranker    *Ranker
}

// NewProcessor creates a processor with default configuration
func NewProcessor() *Processor {
	return NewProcessorWithConfig(DefaultProcessorConfig())
}

// NewProcessorWithConfig creates a processor with custom configuration
func NewProcessorWithConfig(config ProcessorConfig) *Processor {
	return &Processor{
		config:    config,
		segmenter: NewSegmenterWithConfig(config.Segmenter),
		ranker:    NewRankerWithConfig(config.Ranker),
	}
}

// Process ranks a collection's sections for the given persona role and task
// and assembles the output artifact. Documents are processed in input order,
// which fixes all ranking tiebreaks. Returns ErrEmptyCollection when there is
// nothing to rank.
func (p *Processor) Process(inputs []DocumentInput, role, task string) (*Artifact, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyCollection
	}

	profile := p.resolveProfile(role)

	names := make([]string, 0, len(inputs))
	var sections []Section
	for _, input := range inputs {
		names = append(names, input.Name)
		sections = append(sections, p.segmenter.Segment(input.Name, input.Elements)...)
	}

	ranked := p.ranker.Rank(sections, profile)

	extracted := make([]ExtractedSection, 0, len(ranked))
	for i, sec := range ranked {
		extracted = append(extracted, ExtractedSection{
			Document:       sec.Document,
			SectionTitle:   p.ranker.truncateTitle(sec.Title),
			ImportanceRank: i + 1,
			PageNumber:     sec.Page,
		})
	}

	return &Artifact{
		Metadata: Metadata{
			InputDocuments: names,
			Persona:        role,
			JobToBeDone:    task,
		},
		ExtractedSections:  extracted,
		SubsectionAnalysis: p.analyzeSubsections(ranked, profile, task),
	}, nil
}

// resolveProfile checks the configured extra profiles before the built-ins.
func (p *Processor) resolveProfile(role string) Profile {
	roleLower := strings.ToLower(strings.TrimSpace(role))
	for _, prof := range p.config.Profiles {
		if strings.ToLower(prof.Name) == roleLower {
			return prof
		}
	}
	return ProfileFor(role)
}

// analyzeSubsections refines the strongest ranked sections into short text
// rows. Candidates are the top ranked sections reordered by task relevance,
// subject to the per-document diversity cap; a row survives only when its
// refined text is long enough to stand alone.
func (p *Processor) analyzeSubsections(ranked []Section, profile Profile, task string) []SubsectionAnalysis {
	candidates := ranked
	if len(candidates) > p.config.Ranker.MaxSubsectionCandidates {
		candidates = candidates[:p.config.Ranker.MaxSubsectionCandidates]
	}

	type scored struct {
		sec       Section
		relevance int
	}
	ordered := make([]scored, 0, len(candidates))
	for _, sec := range candidates {
		ordered = append(ordered, scored{sec: sec, relevance: p.ranker.taskRelevance(sec, profile, task)})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].relevance > ordered[j].relevance
	})

	rows := make([]SubsectionAnalysis, 0, len(ordered))
	perDocument := make(map[string]int)
	for _, cand := range ordered {
		if perDocument[cand.sec.Document] >= p.config.Ranker.MaxPerDocument {
			continue
		}
		refined := RefineSentences(cand.sec, profile, task, p.config.Ranker.Refine)
		if len(refined) <= p.config.Ranker.MinRefinedLength {
			continue
		}
		rows = append(rows, SubsectionAnalysis{
			Document:    cand.sec.Document,
			RefinedText: refined,
			PageNumber:  cand.sec.Page,
		})
		perDocument[cand.sec.Document]++
	}
	return rows
}
