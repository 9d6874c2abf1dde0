package fileutil_test

// Notes:
// - WriteTempFile write/close failure branches are not covered: forcing disk
//   errors is platform-specific.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-nb2medium/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{"html", "html", nil},
		{"empty", "", fileutil.ErrExtensionEmpty},
		{"forward slash", "../x", fileutil.ErrExtensionPathTraversal},
		{"backslash", "..\\x", fileutil.ErrExtensionPathTraversal},
		{"null byte", "html\x00exe", fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := fileutil.ValidateExtension(tt.extension); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Temporary file creation
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	path, cleanup, err := fileutil.WriteTempFile("<table></table>", "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}
	defer cleanup()

	if !strings.HasPrefix(filepath.Base(path), fileutil.TempPrefix) {
		t.Errorf("temp name %q lacks prefix", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<table></table>" {
		t.Errorf("content = %q", got)
	}

	cleanup()
	cleanup()
	if fileutil.FileExists(path) {
		t.Error("file still exists after cleanup")
	}
}

func TestWriteTempFile_UniqueNames(t *testing.T) {
	t.Parallel()

	a, ca, err := fileutil.WriteTempFile("a", "html")
	if err != nil {
		t.Fatal(err)
	}
	defer ca()
	b, cb, err := fileutil.WriteTempFile("b", "html")
	if err != nil {
		t.Fatal(err)
	}
	defer cb()

	if a == b {
		t.Errorf("two calls returned the same path %q", a)
	}
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	t.Parallel()

	if _, _, err := fileutil.WriteTempFile("x", ""); !errors.Is(err, fileutil.ErrExtensionEmpty) {
		t.Errorf("error = %v, want ErrExtensionEmpty", err)
	}
}

// ---------------------------------------------------------------------------
// TestFileURL
// ---------------------------------------------------------------------------

func TestFileURL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got, err := fileutil.FileURL(filepath.Join(dir, "t.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "/t.html") {
		t.Errorf("FileURL() = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestPredicates
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := filepath.Join(dir, "f.png")
	if err := os.WriteFile(f, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(f) {
		t.Error("FileExists(file) = false")
	}
	if fileutil.FileExists(dir) {
		t.Error("FileExists(dir) = true")
	}
	if fileutil.FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists(missing) = true")
	}
}

func TestIsFilePathAndURL(t *testing.T) {
	t.Parallel()

	if fileutil.IsFilePath("medium") {
		t.Error("IsFilePath(name) = true")
	}
	if !fileutil.IsFilePath("./medium.yaml") {
		t.Error("IsFilePath(path) = false")
	}
	if !fileutil.IsURL("https://example.com/a.png") {
		t.Error("IsURL(https) = false")
	}
	if fileutil.IsURL("images/a.png") {
		t.Error("IsURL(relative) = true")
	}
}

func TestStemAndSlug(t *testing.T) {
	t.Parallel()

	if got := fileutil.StemPath("dir/My Post.ipynb"); got != "dir/My Post" {
		t.Errorf("StemPath() = %q", got)
	}
	if got := fileutil.Slug(" My Great Post "); got != "my_great_post" {
		t.Errorf("Slug() = %q", got)
	}
}

// ---------------------------------------------------------------------------
// TestReadFirstLine - Token file reading
// ---------------------------------------------------------------------------

func TestReadFirstLine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "single line", content: "abc123\n", want: "abc123"},
		{name: "leading blank lines", content: "\n  \n tok \nother\n", want: "tok"},
		{name: "empty file", content: "", wantErr: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+string(rune('a'+i)))
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			got, err := fileutil.ReadFirstLine(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFirstLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ReadFirstLine() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := fileutil.ReadFirstLine(filepath.Join(dir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}
}
