//go:build darwin

package render

import "github.com/alnah/go-nb2medium/internal/fileutil"

var darwinBrowsers = []string{
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser",
}

func platformBrowser() (string, bool) {
	for _, p := range darwinBrowsers {
		if fileutil.FileExists(p) {
			return p, true
		}
	}
	return "", false
}
