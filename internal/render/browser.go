package render

import (
	"fmt"
	"os"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-nb2medium/internal/fileutil"
)

// lookPath is rod's own browser lookup, replaced in tests.
var lookPath = launcher.LookPath

// FindBrowser locates a Chromium-family executable.
//
// Lookup order: the explicit path (which must exist), ROD_BROWSER_BIN, the
// platform's well-known locations, then rod's default lookup.
func FindBrowser(explicit string) (string, error) {
	if explicit != "" {
		if fileutil.FileExists(explicit) {
			return explicit, nil
		}
		return "", fmt.Errorf("%w: %s", ErrBrowserNotFound, explicit)
	}
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" && fileutil.FileExists(bin) {
		return bin, nil
	}
	if path, ok := platformBrowser(); ok {
		return path, nil
	}
	if path, ok := lookPath(); ok {
		return path, nil
	}
	return "", ErrBrowserNotFound
}
