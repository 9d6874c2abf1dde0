// Package hints appends actionable suggestions to CLI error messages.
// Every hint renders as "\n  hint: <text>".
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-nb2medium/internal/fileutil"
)

// IsInContainer reports whether the process runs inside Docker.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserNotFound suggests how to point the screenshot converter at a browser.
func ForBrowserNotFound() string {
	var hints []string
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "pass --chrome-path or set ROD_BROWSER_BIN")
	}
	hints = append(hints, "or use --table-conversion plot")
	return formatHints(hints)
}

// ForBrowserConnect returns hints for browser launch failures.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use a custom Chrome")
	}
	return formatHints(hints)
}

// ForMissingToken names the places a token is read from.
func ForMissingToken(flag, env, file string) string {
	return format("pass --" + flag + ", set " + env + ", or write it to " + file)
}

// ForTimeout returns a hint about raising the per-table timeout.
func ForTimeout() string {
	return format("for wide tables, use --timeout")
}

// ForConfigNotFound suggests --config and the first user config path tried.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-nb2medium") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForLicense lists the accepted license values.
func ForLicense(valid []string) string {
	if len(valid) == 0 {
		return ""
	}
	return format("valid licenses: " + strings.Join(valid, ", "))
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
