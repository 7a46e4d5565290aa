// Package batch runs structure extraction across document sets: a
// directory of PDFs in outline mode, or a manifest-driven collection in
// persona mode. Failures are isolated per document, so one broken file
// never sinks a run.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/rubrica"
)

// Output formats for outline mode.
const (
	FormatJSON     = "json"
	FormatMarkdown = "md"
)

// Config holds configuration for batch runs.
type Config struct {
	// Workers bounds concurrent document processing.
	Workers int

	// Format selects the outline artifact format, FormatJSON or
	// FormatMarkdown.
	Format string

	// Extract is the per-document extraction configuration.
	Extract *rubrica.Config
}

// DefaultConfig returns the default batch configuration.
func DefaultConfig() Config {
	return Config{
		Workers: rubrica.DefaultWorkers,
		Format:  FormatJSON,
		Extract: rubrica.DefaultConfig(),
	}
}

// Runner executes batch runs.
type Runner struct {
	config Config
	logger *slog.Logger
}

// NewRunner creates a runner with default configuration.
func NewRunner(logger *slog.Logger) *Runner {
	return NewRunnerWithConfig(DefaultConfig(), logger)
}

// NewRunnerWithConfig creates a runner with custom configuration.
func NewRunnerWithConfig(config Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Extract == nil {
		config.Extract = rubrica.DefaultConfig()
	}
	return &Runner{config: config, logger: logger}
}

// Result records the outcome for one input document.
type Result struct {
	Input    string // source PDF path
	Output   string // written artifact path, "" when nothing was written
	Title    string
	Headings int
	Warnings []rubrica.Warning
	Err      error
}

// OutlineDir extracts an outline from every PDF in inputDir and writes one
// artifact per document into outputDir. Documents are processed
// concurrently up to the configured worker limit. Per-document failures
// are recorded in the results, not returned; the error is reserved for
// setup problems and context cancellation.
func (r *Runner) OutlineDir(ctx context.Context, inputDir, outputDir string) ([]Result, error) {
	pdfs, err := listPDFs(inputDir)
	if err != nil {
		return nil, err
	}
	if len(pdfs) == 0 {
		return nil, fmt.Errorf("no PDF files in %s", inputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	log := r.logger.With("run_id", newRunID())
	log.Info("outline run starting",
		"documents", len(pdfs),
		"workers", r.config.Workers,
		"format", r.config.Format)
	start := time.Now()

	results := make([]Result, len(pdfs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.config.Workers)

	for i, path := range pdfs {
		i, path := i, path
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.processOutline(path, outputDir)

			res := &results[i]
			if res.Err != nil {
				log.Error("document failed", "file", filepath.Base(path), "error", res.Err)
				return nil
			}
			log.Info("document processed",
				"file", filepath.Base(path),
				"title", res.Title,
				"headings", res.Headings,
				"warnings", len(res.Warnings))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return results, err
	}

	ok, failed := 0, 0
	for i := range results {
		if results[i].Err != nil {
			failed++
		} else {
			ok++
		}
	}
	log.Info("outline run complete",
		"processed", ok,
		"failed", failed,
		"elapsed", time.Since(start).Round(time.Millisecond))

	return results, nil
}

// processOutline extracts one document and writes its artifact.
func (r *Runner) processOutline(path, outputDir string) Result {
	res := Result{Input: path}

	outline, warnings, err := rubrica.Open(path).WithConfig(r.config.Extract).Outline()
	res.Warnings = warnings
	if err != nil {
		res.Err = err
		return res
	}
	res.Title = outline.Title
	res.Headings = len(outline.Headings)

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var data []byte
	var name string
	switch r.config.Format {
	case FormatMarkdown:
		data = []byte(outline.MarkdownTOC())
		name = stem + ".md"
	default:
		data, err = json.MarshalIndent(outline, "", "  ")
		if err != nil {
			res.Err = fmt.Errorf("encode outline: %w", err)
			return res
		}
		data = append(data, '\n')
		name = stem + ".json"
	}

	out := filepath.Join(outputDir, name)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		res.Err = fmt.Errorf("write artifact: %w", err)
		return res
	}
	res.Output = out
	return res
}

// listPDFs returns the sorted full paths of the PDF files directly inside
// dir.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(pdfs)
	return pdfs, nil
}

// newRunID returns a short random identifier that ties a run's log lines
// together.
func newRunID() string {
	return uuid.New().String()[:8]
}
