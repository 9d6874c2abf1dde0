//go:build !darwin && !windows

package render

import (
	"os"
	"path/filepath"

	"github.com/alnah/go-nb2medium/internal/fileutil"
)

var (
	unixBrowserDirs = []string{
		"/usr/local/sbin",
		"/usr/local/bin",
		"/usr/sbin",
		"/usr/bin",
		"/sbin",
		"/bin",
		"/opt/google/chrome",
	}
	unixBrowserNames = []string{
		"google-chrome",
		"chrome",
		"chromium",
		"chromium-browser",
		"brave-browser",
	}
)

// platformBrowser searches $PATH first, then the fixed directories, for each
// candidate name.
func platformBrowser() (string, bool) {
	dirs := append(filepath.SplitList(os.Getenv("PATH")), unixBrowserDirs...)
	return searchDirs(dirs, unixBrowserNames)
}

func searchDirs(dirs, names []string) (string, bool) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, name := range names {
			p := filepath.Join(dir, name)
			if fileutil.FileExists(p) && isExecutable(p) {
				return p, true
			}
		}
	}
	return "", false
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode()&0o111 != 0
}
