package nb2medium

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Saved lists the files SaveMarkdown wrote.
type Saved struct {
	Markdown string   // <stem>_medium.md
	ImageDir string   // <title>_files
	Images   []string // One path per image, in Result order
}

// SaveMarkdown writes the images of result to dir/<title>_files/ and the
// markdown, pointed at those copies, to dir/<stem>_medium.md. Image links
// are rewritten to URL-escaped paths relative to dir.
func SaveMarkdown(result *Result, dir, stem string) (*Saved, error) {
	if stem == "" {
		stem = result.Title
	}
	imageDir := result.Title + "_files"
	saved := &Saved{
		Markdown: filepath.Join(dir, stem+"_medium.md"),
		ImageDir: filepath.Join(dir, imageDir),
	}

	if err := os.MkdirAll(saved.ImageDir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveMarkdown, err)
	}

	md := result.Markdown
	for _, img := range result.Images {
		name := filepath.Base(img.Name)
		dst := filepath.Join(saved.ImageDir, name)
		if err := os.WriteFile(dst, img.Data, 0o600); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSaveMarkdown, err)
		}
		saved.Images = append(saved.Images, dst)
		md = strings.ReplaceAll(md, img.Name, escapePath(imageDir, name))
	}

	if err := os.WriteFile(saved.Markdown, []byte(md), 0o600); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSaveMarkdown, err)
	}
	return saved, nil
}

// AppendGistURLs appends the gist URLs of result, one per line, to
// dir/<title>_gist_url so the gists can be found and deleted later.
// Does nothing when no gist was created.
func AppendGistURLs(result *Result, dir string) (string, error) {
	if len(result.GistURLs) == 0 {
		return "", nil
	}
	p := filepath.Join(dir, result.Title+"_gist_url")
	f, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- derived from the notebook location
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveMarkdown, err)
	}
	defer f.Close()

	for _, u := range result.GistURLs {
		if _, err := f.WriteString(u + "\n"); err != nil {
			return "", fmt.Errorf("%w: %v", ErrSaveMarkdown, err)
		}
	}
	return p, nil
}

// escapePath joins segments with "/" and escapes each one.
func escapePath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}
