package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-nb2medium/internal/fileutil"
	"github.com/alnah/go-nb2medium/internal/notebook"
)

// remoteImageTimeout bounds one remote image download.
const remoteImageTimeout = 60 * time.Second

var (
	inlineImagePattern = regexp.MustCompile(`!\[.*?\]\((.*?\.(?:gif|png|jpg|jpeg|tiff|svg))`)
	refImagePattern    = regexp.MustCompile(`\[.*?\]:\s*(.*?\.(?:gif|png|jpg|jpeg|tiff|svg))`)
	imgTagPattern      = regexp.MustCompile(`(<img.*?[sS][rR][cC]\s*=\s*['"](.*?)['"].*?/>)`)

	// pipeTablePattern matches tables whose rows start with a pipe.
	pipeTablePattern = regexp.MustCompile(`(?m)^ *\|(.+)\n *\|( *[-:]+[-| :]*)\n((?: *\|.*(?:\n|$))*)\n*`)
	// bareTablePattern matches tables without a leading pipe.
	bareTablePattern = regexp.MustCompile(`(?m)^ *(\S.*\|.*)\n *([-:]+ *\|[-| :]*)\n((?:.*\|.*(?:\n|$))*)\n*`)
)

// MarkdownPreprocessor moves every image of a markdown cell into the
// resources image store under a synthetic name and rasterizes markdown tables.
//
// Names are markdown_<cell>_<category>_<n>.<ext>; each one replaces the
// original reference in the cell source so uploads can later swap it for a
// hosted URL by plain substring replacement.
type MarkdownPreprocessor struct {
	client *http.Client
}

var _ Preprocessor = (*MarkdownPreprocessor)(nil)

// MarkdownOption configures a MarkdownPreprocessor.
type MarkdownOption func(*MarkdownPreprocessor)

// WithHTTPClient sets the client used for remote images.
func WithHTTPClient(c *http.Client) MarkdownOption {
	return func(p *MarkdownPreprocessor) { p.client = c }
}

// NewMarkdownPreprocessor creates a MarkdownPreprocessor.
func NewMarkdownPreprocessor(opts ...MarkdownOption) *MarkdownPreprocessor {
	p := &MarkdownPreprocessor{client: &http.Client{Timeout: remoteImageTimeout}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preprocess rewrites every markdown cell of nb.
func (p *MarkdownPreprocessor) Preprocess(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	for i, cell := range nb.Cells {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cell.CellType != notebook.CellMarkdown {
			continue
		}
		if err := p.preprocessCell(ctx, cell, i, res); err != nil {
			return err
		}
	}
	return nil
}

func (p *MarkdownPreprocessor) preprocessCell(ctx context.Context, cell *notebook.Cell, index int, res *Resources) error {
	src := cell.Source.String()

	src, err := p.replaceImages(ctx, src, index, res)
	if err != nil {
		return err
	}
	if src, err = replaceAttachments(src, cell.Attachments, index, res); err != nil {
		return err
	}
	if src, err = replaceTables(ctx, src, index, res); err != nil {
		return err
	}

	cell.Source = notebook.MultilineString(src)
	return nil
}

// ImageFiles returns the distinct image paths referenced by inline and
// reference-style links, in order of appearance, without attachment links.
func ImageFiles(src string) []string {
	var files []string
	seen := make(map[string]bool)
	collect := func(re *regexp.Regexp) {
		for _, m := range re.FindAllStringSubmatch(src, -1) {
			f := strings.TrimSpace(m[1])
			if f == "" || strings.HasPrefix(f, "attachment") || seen[f] {
				continue
			}
			seen[f] = true
			files = append(files, f)
		}
	}
	collect(inlineImagePattern)
	collect(refImagePattern)
	return files
}

// imageExt returns the extension of an image path with .jpg spelled .jpeg.
func imageExt(p string) string {
	ext := path.Ext(p)
	if strings.HasPrefix(strings.ToLower(ext), ".jpg") {
		return ".jpeg"
	}
	return ext
}

// replaceImages stores the linked images and local <img> tags of src and
// rewrites both in one pass. A tag whose src is already linked reuses that
// name, so each stored image is read once and referenced at least once.
func (p *MarkdownPreprocessor) replaceImages(ctx context.Context, src string, index int, res *Resources) (string, error) {
	named := make(map[string]string)
	var pairs [][2]string
	for i, f := range ImageFiles(src) {
		name := fmt.Sprintf("markdown_%d_normal_image_%d%s", index, i, imageExt(f))

		var data []byte
		if fileutil.IsURL(f) {
			b, ok := p.fetch(ctx, f, res.log())
			if !ok {
				continue
			}
			data = b
		} else {
			b, err := readLocalImage(res.Path, f)
			if err != nil {
				return "", err
			}
			data = b
		}
		res.Images.Put(name, data)
		named[f] = name
		pairs = append(pairs, [2]string{f, name})
	}

	n := 0
	for _, t := range ImageTags(src) {
		name, ok := named[t.Src]
		if !ok {
			name = fmt.Sprintf("markdown_%d_local_image_tag_%d%s", index, n, imageExt(t.Src))
			data, err := readLocalImage(res.Path, t.Src)
			if err != nil {
				return "", err
			}
			res.Images.Put(name, data)
			named[t.Src] = name
			n++
		}
		pairs = append(pairs, [2]string{t.Tag, "![](" + name + ")"})
	}
	return replacePaths(src, pairs), nil
}

// replacePaths swaps every old text for its new one in one left-to-right
// pass, longest first at a given position, so neither a path that contains
// another nor the src inside an <img> tag is ever half rewritten.
func replacePaths(src string, pairs [][2]string) string {
	if len(pairs) == 0 {
		return src
	}
	sort.SliceStable(pairs, func(i, j int) bool { return len(pairs[i][0]) > len(pairs[j][0]) })
	args := make([]string, 0, 2*len(pairs))
	for _, pr := range pairs {
		args = append(args, pr[0], pr[1])
	}
	return strings.NewReplacer(args...).Replace(src)
}

// fetch downloads a remote image. Failures are logged and reported as !ok.
func (p *MarkdownPreprocessor) fetch(ctx context.Context, u string, log logrus.FieldLogger) ([]byte, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		log.WithField("url", u).WithError(err).Warn("skipping remote image")
		return nil, false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		log.WithField("url", u).WithError(err).Warn("skipping remote image")
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithFields(logrus.Fields{"url": u, "status": resp.StatusCode}).Warn("unsuccessful request for image")
		return nil, false
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithField("url", u).WithError(err).Warn("skipping remote image")
		return nil, false
	}
	return data, true
}

func readLocalImage(base, p string) ([]byte, error) {
	full := p
	if !filepath.IsAbs(p) {
		full = filepath.Join(base, filepath.FromSlash(p))
	}
	data, err := os.ReadFile(full) // #nosec G304 -- image referenced by the user's notebook
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageRead, err)
	}
	return data, nil
}

// ImageTag is an HTML <img> element found in markdown.
type ImageTag struct {
	Tag string
	Src string
}

// ImageTags returns the distinct local <img> tags of src in order of
// appearance. Tags must be self-closing.
func ImageTags(src string) []ImageTag {
	var tags []ImageTag
	seen := make(map[string]bool)
	for _, m := range imgTagPattern.FindAllStringSubmatch(src, -1) {
		if fileutil.IsURL(m[2]) || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		tags = append(tags, ImageTag{Tag: m[1], Src: m[2]})
	}
	return tags
}

// replaceAttachments stores drag-and-drop images. Attachments are numbered in
// document order; one the source never links to is skipped.
func replaceAttachments(src string, attachments notebook.Attachments, index int, res *Resources) (string, error) {
	for i, at := range attachments {
		ref := "attachment:" + at.Name
		if !strings.Contains(src, ref) {
			res.log().WithFields(logrus.Fields{"cell": index, "attachment": at.Name}).
				Warn("attachment not referenced, skipping")
			continue
		}
		for j, entry := range at.Bundle {
			// the first mimetype consumes the reference
			if j > 0 && !strings.Contains(src, ref) {
				break
			}
			ext := entry.MimeType[strings.LastIndex(entry.MimeType, "/")+1:]
			if ext == "jpg" {
				ext = "jpeg"
			}
			name := fmt.Sprintf("markdown_%d_attachment_%d_%d.%s", index, i, j, ext)

			data, err := decodeBase64(entry.Value.String())
			if err != nil {
				return "", fmt.Errorf("%w: %s: %v", ErrAttachmentDecode, at.Name, err)
			}
			res.Images.Put(name, data)
			src = strings.ReplaceAll(src, ref, name)
		}
	}
	return src, nil
}

// decodeBase64 decodes standard base64, ignoring embedded line breaks.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' {
			return -1
		}
		return r
	}, s)
	return base64.StdEncoding.DecodeString(s)
}

// replaceTables rasterizes markdown tables. Tables without a leading pipe
// are matched first so a pipe table is never matched twice.
func replaceTables(ctx context.Context, src string, index int, res *Resources) (string, error) {
	n := 0
	var firstErr error
	toImage := func(md string) string {
		if firstErr != nil {
			return md
		}
		h, err := TableHTML(md)
		if err != nil {
			firstErr = err
			return md
		}
		encoded, err := res.render(ctx, h)
		if err != nil {
			firstErr = err
			return md
		}
		data, err := decodeBase64(string(encoded))
		if err != nil {
			firstErr = fmt.Errorf("%w: decoding converter output: %v", ErrTableRender, err)
			return md
		}
		name := fmt.Sprintf("markdown_%d_table_%d.png", index, n)
		n++
		res.Images.Put(name, data)
		return "![](" + name + ")\n"
	}

	src = bareTablePattern.ReplaceAllStringFunc(src, toImage)
	if firstErr != nil {
		return "", firstErr
	}
	src = pipeTablePattern.ReplaceAllStringFunc(src, toImage)
	if firstErr != nil {
		return "", firstErr
	}
	return src, nil
}
