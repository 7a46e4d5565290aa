// Command rubrica infers document structure from PDF files.
//
// Usage:
//
//	rubrica outline report.pdf                    # print the outline as JSON
//	rubrica outline -out build -format md docs    # outline every PDF in docs/
//	rubrica persona -role "Travel Planner" coll   # rank sections for a persona
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/tsawler/rubrica"
	"github.com/tsawler/rubrica/batch"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "outline":
		err = cmdOutline(ctx, os.Args[2:])
	case "persona":
		err = cmdPersona(ctx, os.Args[2:])
	case "version":
		fmt.Println("rubrica " + version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "rubrica: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `rubrica - PDF outline inference and persona section ranking

usage:
  rubrica outline [flags] <file.pdf | directory>
  rubrica persona [flags] <collection_dir>
  rubrica version

outline   Infers a title and H1/H2/H3 outline from font statistics.
          A single file prints to stdout; a directory writes one
          artifact per PDF into the -out directory.
persona   Extracts sections from every document named in the
          collection manifest and ranks them against a persona and
          task, writing a single ranked artifact.

Run "rubrica <command> -h" for the command's flags.
`)
}

func cmdOutline(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("outline", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	outDir := fs.String("out", "", "output directory (required for directory input)")
	format := fs.String("format", batch.FormatJSON, "artifact format: json or md")
	workers := fs.Int("workers", 0, "concurrent documents in directory mode (0 uses the config value)")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: rubrica outline [flags] <file.pdf | directory>\n\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	input := fs.Arg(0)

	if *format != batch.FormatJSON && *format != batch.FormatMarkdown {
		return fmt.Errorf("unknown format %q (supported: json, md)", *format)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	logger := newLogger(*logLevel)

	info, err := os.Stat(input)
	if err != nil {
		return err
	}

	if info.IsDir() {
		if *outDir == "" {
			return fmt.Errorf("-out is required when the input is a directory")
		}
		runner := batch.NewRunnerWithConfig(batch.Config{
			Workers: cfg.Workers,
			Format:  *format,
			Extract: cfg,
		}, logger)
		results, err := runner.OutlineDir(ctx, input, *outDir)
		if err != nil {
			return err
		}
		var failed int
		for _, res := range results {
			if res.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(results))
		}
		return nil
	}

	return outlineFile(input, *outDir, *format, cfg, logger)
}

func outlineFile(path, outDir, format string, cfg *rubrica.Config, logger *slog.Logger) error {
	outline, warnings, err := rubrica.Open(path).WithConfig(cfg).Outline()
	if err != nil {
		return fmt.Errorf("outline %s: %w", path, err)
	}
	for _, w := range warnings {
		logger.Warn("extraction warning", "doc", path, "warning", w.String())
	}

	var data []byte
	switch format {
	case batch.FormatMarkdown:
		data = []byte(outline.MarkdownTOC())
	default:
		data, err = json.MarshalIndent(outline, "", "  ")
		if err != nil {
			return fmt.Errorf("encode outline: %w", err)
		}
		data = append(data, '\n')
	}

	if outDir == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	ext := ".json"
	if format == batch.FormatMarkdown {
		ext = ".md"
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(outDir, stem+ext)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write outline: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", out)
	return nil
}

func cmdPersona(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("persona", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	out := fs.String("out", "", "artifact path (default <collection_dir>/ranked_sections.json)")
	role := fs.String("role", "", "persona role, overrides the manifest")
	task := fs.String("task", "", "job to be done, overrides the manifest")
	profiles := fs.String("profiles", "", "YAML file with custom persona profiles")
	workers := fs.Int("workers", 0, "concurrent documents (0 uses the config value)")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: rubrica persona [flags] <collection_dir>\n\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	dir := fs.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *role != "" {
		cfg.Persona.Role = *role
	}
	if *task != "" {
		cfg.Persona.Task = *task
	}
	if *profiles != "" {
		cfg.Persona.Profiles = *profiles
	}
	logger := newLogger(*logLevel)

	runner := batch.NewRunnerWithConfig(batch.Config{
		Workers: cfg.Workers,
		Extract: cfg,
	}, logger)
	artifact, results, err := runner.ProcessCollection(ctx, dir)
	if err != nil {
		return err
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(dir, "ranked_sections.json")
	}
	if err := batch.SaveArtifact(outPath, artifact); err != nil {
		return err
	}

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d sections from %d of %d documents)\n",
		outPath, len(artifact.ExtractedSections), len(results)-failed, len(results))
	return nil
}

func loadConfig(path string) (*rubrica.Config, error) {
	if path == "" {
		return rubrica.DefaultConfig(), nil
	}
	return rubrica.LoadConfig(path)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
