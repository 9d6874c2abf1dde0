package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	nb2medium "github.com/alnah/go-nb2medium"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .ipynb extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// notebookExt is the only extension discovered in directories.
const notebookExt = ".ipynb"

// checkpointDir holds autosaved copies Jupyter keeps next to notebooks.
const checkpointDir = ".ipynb_checkpoints"

// notebookFile is a notebook to convert and where its outputs go.
type notebookFile struct {
	InputPath string
	OutputDir string
}

// discoverNotebooks finds the notebooks to convert. A directory is walked
// recursively, skipping checkpoint copies.
func discoverNotebooks(inputPath, outputDir string) ([]notebookFile, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateNotebookExtension(inputPath); err != nil {
			return nil, err
		}
		return []notebookFile{{InputPath: inputPath, OutputDir: resolveOutputDir(inputPath, outputDir, "")}}, nil
	}

	var files []notebookFile
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			if d.Name() == checkpointDir {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != notebookExt {
			return nil
		}
		files = append(files, notebookFile{InputPath: path, OutputDir: resolveOutputDir(path, outputDir, inputPath)})
		return nil
	})

	return files, err
}

// resolveOutputDir determines where the outputs of a notebook go: next to
// it by default, else under outputDir mirroring the input tree.
func resolveOutputDir(inputPath, outputDir, baseInputDir string) string {
	if outputDir == "" {
		return filepath.Dir(inputPath)
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath))
		}
	}

	return outputDir
}

// validateNotebookExtension checks that the file has the .ipynb extension.
func validateNotebookExtension(path string) error {
	if ext := filepath.Ext(path); ext != notebookExt {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// resolveWorkers validates --workers, falling back to NB2MEDIUM_WORKERS.
// Zero means automatic sizing.
func resolveWorkers(n int, env *envConfig) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > nb2medium.MaxPoolSize {
		return 0, fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, nb2medium.MaxPoolSize)
	}
	if n == 0 {
		return min(env.Workers, nb2medium.MaxPoolSize), nil
	}
	return n, nil
}
