package main

import (
	"context"
	"errors"

	nb2medium "github.com/alnah/go-nb2medium"
	"github.com/alnah/go-nb2medium/internal/hints"
)

// Token files read when neither the flag nor the variable is set.
const (
	mediumTokenFile = "~/.jupyter_to_medium/integration_token"
	githubTokenFile = "~/.jupyter_to_medium/github_token"
)

// hintFor returns an actionable suggestion for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, nb2medium.ErrBrowserNotFound):
		return hints.ForBrowserNotFound()
	case errors.Is(err, nb2medium.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, nb2medium.ErrMediumTokenMissing):
		return hints.ForMissingToken("integration-token", "MEDIUM_INTEGRATION_TOKEN", mediumTokenFile)
	case errors.Is(err, nb2medium.ErrGistTokenMissing):
		return hints.ForMissingToken("github-token", "GITHUB_TOKEN", githubTokenFile)
	case errors.Is(err, nb2medium.ErrInvalidLicense):
		return hints.ForLicense(nb2medium.Licenses)
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, ErrWriteOutput), errors.Is(err, nb2medium.ErrSaveMarkdown):
		return hints.ForOutputDirectory()
	}
	return ""
}
