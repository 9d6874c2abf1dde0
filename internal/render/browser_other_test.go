//go:build !darwin && !windows

package render

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSearchDirs(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()

	notExec := filepath.Join(first, "chromium")
	if err := os.WriteFile(notExec, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(second, "google-chrome")
	if err := os.WriteFile(want, []byte("x"), 0o700); err != nil {
		t.Fatal(err)
	}

	got, ok := searchDirs([]string{"", first, second}, unixBrowserNames)
	if !ok || got != want {
		t.Errorf("searchDirs() = %q, %v; want %q", got, ok, want)
	}

	if _, ok := searchDirs([]string{first}, []string{"brave-browser"}); ok {
		t.Error("searchDirs() found a missing binary")
	}
}
