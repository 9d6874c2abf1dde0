package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	nb2medium "github.com/alnah/go-nb2medium"
	"github.com/alnah/go-nb2medium/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// converterPool abstracts nb2medium.ConverterPool for testability.
type converterPool interface {
	Acquire() (*nb2medium.Converter, error)
	Release(*nb2medium.Converter)
	Size() int
}

// Compile-time interface implementation check.
var _ converterPool = (*nb2medium.ConverterPool)(nil)

// outputParams selects the local artifacts written for each notebook.
type outputParams struct {
	title string // Empty = file name
	save  bool   // <stem>_medium.md and <title>_files/
	html  bool   // <stem>_medium.html
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string // Markdown, or HTML preview when markdown is not saved
	Gists      int
	Err        error
	Duration   time.Duration
}

// convertBatch converts files concurrently, at most pool.Size() at a time.
// A failure is recorded in its result and does not stop the others.
func convertBatch(ctx context.Context, pool converterPool, files []notebookFile, params *outputParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	results := make([]ConversionResult, len(files))

	var g errgroup.Group
	g.SetLimit(pool.Size())
	for i, f := range files {
		g.Go(func() error {
			results[i] = convertNotebook(ctx, pool, f, params)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// convertNotebook converts a single notebook with a pooled converter and
// writes its outputs.
func convertNotebook(ctx context.Context, pool converterPool, f notebookFile, params *outputParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: f.InputPath}
	done := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	if err := ctx.Err(); err != nil {
		return done(err)
	}

	conv, err := pool.Acquire()
	if err != nil {
		return done(err)
	}
	defer pool.Release(conv)

	res, err := conv.ConvertFile(ctx, f.InputPath, params.title)
	if err != nil {
		return done(err)
	}
	result.Gists = len(res.GistURLs)

	result.OutputPath, err = writeOutputs(ctx, conv, res, f, params)
	return done(err)
}

// writeOutputs writes the artifacts params asks for and appends the gist
// URLs next to the notebook. Returns the main output path.
func writeOutputs(ctx context.Context, conv *nb2medium.Converter, res *nb2medium.Result, f notebookFile, params *outputParams) (string, error) {
	if _, err := nb2medium.AppendGistURLs(res, filepath.Dir(f.InputPath)); err != nil {
		return "", err
	}

	if !params.save && !params.html {
		return "", nil
	}
	if err := os.MkdirAll(f.OutputDir, dirPermissions); err != nil {
		return "", fmt.Errorf("%w: creating output directory: %v", ErrWriteOutput, err)
	}

	stem := filepath.Base(fileutil.StemPath(f.InputPath))
	var out string

	if params.html {
		page, err := conv.Preview(ctx, res)
		if err != nil {
			return "", err
		}
		out = filepath.Join(f.OutputDir, stem+"_medium.html")
		// #nosec G306 -- previews are meant to be readable
		if err := os.WriteFile(out, []byte(page), filePermissions); err != nil {
			return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}

	if params.save {
		saved, err := nb2medium.SaveMarkdown(res, f.OutputDir, stem)
		if err != nil {
			return "", err
		}
		out = saved.Markdown
	}

	return out, nil
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
	FirstErr  error
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			if summary.FirstErr == nil {
				summary.FirstErr = r.Err
			}
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// reportResults prints the outcome of each conversion and returns an error
// wrapping the first failure, so the exit code reflects its cause.
func reportResults(results []ConversionResult, flags commonFlags, env *Environment) error {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if flags.quiet {
			continue
		}

		if flags.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v, %d gists)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond), r.Gists)
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !flags.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d conversion(s) failed: %w", summary.Failed, summary.FirstErr)
	}
	return nil
}
