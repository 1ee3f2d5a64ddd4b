package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	mdman "github.com/alnah/go-mdman"
	"github.com/alnah/go-mdman/internal/config"
	"github.com/alnah/go-mdman/internal/dateutil"
	"github.com/alnah/go-mdman/internal/fileutil"
	"github.com/alnah/go-mdman/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrConflictingOutputs = errors.New("--html-only and --man-only are mutually exclusive")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Converter is the interface for the conversion pipeline.
type Converter interface {
	Convert(ctx context.Context, input mdman.Input) (*mdman.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ Converter = (*mdman.Converter)(nil)

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath string
	HTMLPath  string
	ManPath   string
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath string
	Outputs   []string
	Err       error
	Duration  time.Duration
}

// conversionParams groups parameters shared across the batch.
type conversionParams struct {
	cfg      *config.Config
	dates    dateutil.Resolver
	htmlOnly bool
	manOnly  bool
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	// Validate output and worker flags early
	if flags.outputMode.htmlOnly && flags.outputMode.manOnly {
		return ErrConflictingOutputs
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	// Load configuration
	cfg := config.DefaultConfig()
	var err error
	if flags.common.config != "" {
		cfg, err = config.LoadConfig(flags.common.config)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(nil))
			}
			return fmt.Errorf("loading config: %w", err)
		}
	}

	// Merge CLI flags into config (CLI wins)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Resolve input path
	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}

	// Resolve output directory
	outputDir := resolveOutputDir(flags.output, cfg)

	// Discover files to convert
	section := cfg.Document.Section
	if section == "" {
		section = mdman.DefaultSection
	}
	files, err := discoverFiles(inputPath, outputDir, section)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("no markdown files found in %s", inputPath)
	}

	// Build the converter from config
	conv, err := buildConverter(cfg)
	if err != nil {
		return err
	}

	params := &conversionParams{
		cfg:      cfg,
		dates:    dateutil.Resolver{LookupEnv: env.LookupEnv, Now: env.Now},
		htmlOnly: flags.outputMode.htmlOnly,
		manOnly:  flags.outputMode.manOnly,
	}

	// Convert files
	results := convertBatch(ctx, conv, files, params, resolveWorkers(cfg))

	// Print results
	failedCount := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return fmt.Errorf("%d conversion(s) failed", failedCount)
	}

	return nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.document.program != "" {
		cfg.Document.Program = flags.document.program
	}
	if flags.document.section != "" {
		cfg.Document.Section = flags.document.section
	}
	if flags.document.title != "" {
		cfg.Document.Title = flags.document.title
	}
	if flags.document.version != "" {
		cfg.Document.Version = flags.document.version
	}
	if flags.document.date != "" {
		cfg.Document.Date = flags.document.date
	}
	if flags.document.prefix != "" {
		cfg.Document.Prefix = flags.document.prefix
	}

	if flags.assets.style != "" {
		cfg.CSS.Style = flags.assets.style
	}
	if flags.assets.assetPath != "" {
		cfg.Assets.BasePath = flags.assets.assetPath
	}

	if flags.workers > 0 {
		cfg.Convert.Workers = flags.workers
	}
	if flags.highlight {
		cfg.Convert.SyntaxHighlight = true
	}
}

// buildConverter assembles converter options from the merged config.
func buildConverter(cfg *config.Config) (*mdman.Converter, error) {
	var opts []mdman.Option
	if cfg.CSS.Style != "" {
		opts = append(opts, mdman.WithStyle(cfg.CSS.Style))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, mdman.WithAssetPath(cfg.Assets.BasePath))
	}
	if cfg.Convert.SyntaxHighlight {
		opts = append(opts, mdman.WithSyntaxHighlighting())
	}

	conv, err := mdman.NewConverter(opts...)
	if err != nil {
		if errors.Is(err, mdman.ErrStyleNotFound) {
			return nil, fmt.Errorf("%w%s", err, hints.ForStyleNotFound([]string{mdman.DefaultStyle}))
		}
		return nil, err
	}
	return conv, nil
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// resolveWorkers picks the batch concurrency. Zero means one worker per CPU,
// clamped to the config ceiling.
func resolveWorkers(cfg *config.Config) int {
	n := cfg.Convert.Workers
	if n == 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > config.MaxWorkers {
		n = config.MaxWorkers
	}
	return n
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > config.MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, config.MaxWorkers)
	}
	return nil
}

// discoverFiles finds all markdown files to convert.
func discoverFiles(inputPath, outputDir, section string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, err
		}
		return []FileToConvert{newFileToConvert(inputPath, outputDir, "", section)}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".markdown" {
			return nil
		}
		files = append(files, newFileToConvert(path, outputDir, inputPath, section))
		return nil
	})

	return files, err
}

// newFileToConvert derives both output paths for a markdown file.
// The man page extension is the section string, so "foo.md" with section "1"
// yields "foo.html" and "foo.1".
func newFileToConvert(inputPath, outputDir, baseInputDir, section string) FileToConvert {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	dir := filepath.Dir(inputPath)
	if outputDir != "" {
		dir = outputDir
		if baseInputDir != "" {
			if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
				dir = filepath.Join(outputDir, filepath.Dir(relPath))
			}
		}
	}

	return FileToConvert{
		InputPath: inputPath,
		HTMLPath:  filepath.Join(dir, base+".html"),
		ManPath:   filepath.Join(dir, base+"."+section),
	}
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	ext := filepath.Ext(path)
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// buildMetadata fills per-file page metadata from config. The program name
// falls back to the file's base name, and the date resolution honors
// SOURCE_DATE_EPOCH before the source modification time.
func buildMetadata(cfg *config.Config, inputPath string, dates dateutil.Resolver, sourceMtime time.Time) mdman.Metadata {
	program := cfg.Document.Program
	if program == "" {
		base := filepath.Base(inputPath)
		program = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return mdman.Metadata{
		Program: program,
		Section: cfg.Document.Section,
		Title:   cfg.Document.Title,
		Version: cfg.Document.Version,
		Prefix:  cfg.Document.Prefix,
		Date:    dates.Resolve(cfg.Document.Date, sourceMtime),
	}
}

// convertBatch processes files concurrently with a bounded worker group.
func convertBatch(ctx context.Context, conv Converter, files []FileToConvert, params *conversionParams, workers int) []ConversionResult {
	if len(files) == 0 {
		return nil
	}
	if workers > len(files) {
		workers = len(files)
	}

	results := make([]ConversionResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = ConversionResult{InputPath: f.InputPath, Err: gctx.Err()}
				return nil
			}
			results[i] = convertFile(gctx, conv, f, params)
			// Failures are reported per file, not propagated, so one bad
			// document does not cancel the rest of the batch.
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv Converter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: f.InputPath}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		result.Duration = time.Since(start)
		return result
	}

	var sourceMtime time.Time
	if info, err := os.Stat(f.InputPath); err == nil {
		sourceMtime = info.ModTime()
	}

	res, err := conv.Convert(ctx, mdman.Input{
		Markdown: string(content),
		Meta:     buildMetadata(params.cfg, f.InputPath, params.dates, sourceMtime),
	})
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	outDir := filepath.Dir(f.HTMLPath)
	if err := os.MkdirAll(outDir, dirPermissions); err != nil {
		result.Err = fmt.Errorf("creating output directory: %w%s", err, hints.ForOutputDirectory())
		result.Duration = time.Since(start)
		return result
	}

	if !params.manOnly {
		if err := fileutil.WriteFileAtomic(f.HTMLPath, res.HTML, filePermissions); err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
			result.Duration = time.Since(start)
			return result
		}
		result.Outputs = append(result.Outputs, f.HTMLPath)
	}
	if !params.htmlOnly {
		if err := fileutil.WriteFileAtomic(f.ManPath, res.Man, filePermissions); err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
			result.Duration = time.Since(start)
			return result
		}
		result.Outputs = append(result.Outputs, f.ManPath)
	}

	result.Duration = time.Since(start)
	return result
}

// printResults outputs conversion results using the environment writers.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	var succeeded, failed int

	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		succeeded++
		if quiet {
			continue
		}

		outputs := strings.Join(r.Outputs, ", ")
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, outputs, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", outputs)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}
