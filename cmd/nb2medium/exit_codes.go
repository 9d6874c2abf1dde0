package main

import (
	"errors"
	"os"

	nb2medium "github.com/alnah/go-nb2medium"
	"github.com/alnah/go-nb2medium/internal/config"
)

// Exit codes for nb2medium CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
	ExitRemote  = 5 // GitHub or Medium errors, missing tokens
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, nb2medium.ErrBrowserNotFound) ||
		errors.Is(err, nb2medium.ErrBrowserConnect) {
		return ExitBrowser
	}

	// Remote service errors (exit 5)
	if errors.Is(err, nb2medium.ErrGistify) ||
		errors.Is(err, nb2medium.ErrGistTokenMissing) ||
		errors.Is(err, nb2medium.ErrMediumTokenMissing) ||
		errors.Is(err, nb2medium.ErrAuthor) ||
		errors.Is(err, nb2medium.ErrPublicationNotFound) ||
		errors.Is(err, nb2medium.ErrImageUpload) ||
		errors.Is(err, nb2medium.ErrPost) {
		return ExitRemote
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, nb2medium.ErrNotebookRead) ||
		errors.Is(err, nb2medium.ErrImageRead) ||
		errors.Is(err, nb2medium.ErrSaveMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoNotebooks) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidFontSize) ||
		errors.Is(err, config.ErrInvalidURL) ||
		errors.Is(err, nb2medium.ErrEmptyNotebook) ||
		errors.Is(err, nb2medium.ErrNotebookParse) ||
		errors.Is(err, nb2medium.ErrInvalidTableConversion) ||
		errors.Is(err, nb2medium.ErrInvalidGistThreshold) ||
		errors.Is(err, nb2medium.ErrInvalidGistOutput) ||
		errors.Is(err, nb2medium.ErrInvalidLicense) ||
		errors.Is(err, nb2medium.ErrInvalidPublishStatus) ||
		errors.Is(err, nb2medium.ErrInvalidTags) ||
		errors.Is(err, nb2medium.ErrStyleNotFound) ||
		errors.Is(err, nb2medium.ErrTemplateNotFound) ||
		errors.Is(err, nb2medium.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}
