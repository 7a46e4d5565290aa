package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/rubrica"
	"github.com/tsawler/rubrica/persona"
)

// pdfSubdir is the conventional name of the directory holding a
// collection's documents, next to its manifest.
const pdfSubdir = "PDFs"

// ProcessCollection runs persona mode over one collection directory: a
// manifest JSON describing the documents, persona, and task, with the
// PDFs in a PDFs/ subdirectory. Extraction failures are isolated per
// document and recorded in the results; the run only fails when the
// manifest is unusable or no document could be read at all, in which case
// the error wraps persona.ErrEmptyCollection.
//
// The configured persona role and task, when set, override the
// manifest's.
func (r *Runner) ProcessCollection(ctx context.Context, dir string) (*persona.Artifact, []Result, error) {
	manifestPath, err := findManifest(dir)
	if err != nil {
		return nil, nil, err
	}
	manifest, err := persona.LoadManifest(manifestPath)
	if err != nil {
		return nil, nil, err
	}

	role := manifest.Persona.Role
	task := manifest.JobToBeDone.Task
	if r.config.Extract.Persona.Role != "" {
		role = r.config.Extract.Persona.Role
	}
	if r.config.Extract.Persona.Task != "" {
		task = r.config.Extract.Persona.Task
	}

	processorConfig := persona.DefaultProcessorConfig()
	if path := r.config.Extract.Persona.Profiles; path != "" {
		profiles, err := persona.LoadProfiles(path)
		if err != nil {
			return nil, nil, err
		}
		processorConfig.Profiles = profiles
	}

	log := r.logger.With("run_id", newRunID())
	log.Info("collection run starting",
		"manifest", filepath.Base(manifestPath),
		"documents", len(manifest.Documents),
		"role", role,
		"workers", r.config.Workers)
	start := time.Now()

	pdfDir := filepath.Join(dir, pdfSubdir)
	results := make([]Result, len(manifest.Documents))
	inputs := make([]persona.DocumentInput, len(manifest.Documents))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.config.Workers)

	for i, doc := range manifest.Documents {
		i, doc := i, doc
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(pdfDir, doc.Filename)
			results[i] = Result{Input: path}

			elements, warnings, err := rubrica.Open(path).WithConfig(r.config.Extract).Elements()
			results[i].Warnings = warnings
			if err != nil {
				results[i].Err = err
				log.Error("document failed", "file", doc.Filename, "error", err)
				return nil
			}

			inputs[i] = persona.DocumentInput{Name: doc.Filename, Elements: elements}
			log.Info("document extracted",
				"file", doc.Filename,
				"elements", len(elements),
				"warnings", len(warnings))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, results, err
	}

	// Keep manifest order for the survivors; it fixes ranking tiebreaks.
	readable := make([]persona.DocumentInput, 0, len(inputs))
	for i := range inputs {
		if results[i].Err == nil {
			readable = append(readable, inputs[i])
		}
	}

	artifact, err := persona.NewProcessorWithConfig(processorConfig).Process(readable, role, task)
	if err != nil {
		return nil, results, err
	}

	log.Info("collection run complete",
		"documents", len(readable),
		"failed", len(inputs)-len(readable),
		"sections", len(artifact.ExtractedSections),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return artifact, results, nil
}

// SaveArtifact writes a persona artifact as indented JSON.
func SaveArtifact(path string, artifact *persona.Artifact) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// findManifest locates the collection manifest: the lone JSON file at the
// collection root, or the one whose name contains "input" when several
// are present.
func findManifest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read collection dir: %w", err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			candidates = append(candidates, entry.Name())
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("no manifest JSON in %s", dir)
	case 1:
		return filepath.Join(dir, candidates[0]), nil
	}

	for _, name := range candidates {
		if strings.Contains(strings.ToLower(name), "input") {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("cannot pick a manifest among %d JSON files in %s", len(candidates), dir)
}
