//go:build windows

package render

import (
	"golang.org/x/sys/windows/registry"

	"github.com/alnah/go-nb2medium/internal/fileutil"
)

var appPathKeys = []string{
	`SOFTWARE\Microsoft\Windows\CurrentVersion\App Paths\chrome.exe`,
	`SOFTWARE\Microsoft\Windows\CurrentVersion\App Paths\brave.exe`,
}

// platformBrowser reads the default value of the App Paths registry keys,
// machine-wide first, then per user.
func platformBrowser() (string, bool) {
	for _, root := range []registry.Key{registry.LOCAL_MACHINE, registry.CURRENT_USER} {
		for _, path := range appPathKeys {
			if exe, ok := readDefaultValue(root, path); ok {
				return exe, true
			}
		}
	}
	return "", false
}

func readDefaultValue(root registry.Key, path string) (string, bool) {
	k, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer k.Close()

	exe, _, err := k.GetStringValue("")
	if err != nil || exe == "" || !fileutil.FileExists(exe) {
		return "", false
	}
	return exe, true
}
