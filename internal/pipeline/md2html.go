package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/alnah/go-nb2medium/internal/assets"
	"github.com/alnah/go-nb2medium/internal/notebook"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// previewStyle is the chroma style used for code in previews.
const previewStyle = "github"

// tableMarkdown renders markdown tables found in cells to HTML fragments.
var tableMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// TableHTML renders a markdown table to an HTML fragment wrapped in a <div>,
// ready for a TableConverter.
func TableHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := tableMarkdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return "<div>" + buf.String() + "</div>", nil
}

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// PreviewConverter renders the final article markdown to a standalone HTML
// page, roughly as the publishing platform will show it.
type PreviewConverter struct {
	md     goldmark.Markdown
	page   *template.Template
	style  string
	title  string
	images *notebook.ImageStore
}

var _ HTMLConverter = (*PreviewConverter)(nil)

// PreviewOption configures a PreviewConverter.
type PreviewOption func(*PreviewConverter)

// WithPreviewTitle sets the page title.
func WithPreviewTitle(title string) PreviewOption {
	return func(c *PreviewConverter) { c.title = title }
}

// WithPreviewImages inlines images of store that the markdown references by name.
func WithPreviewImages(store *notebook.ImageStore) PreviewOption {
	return func(c *PreviewConverter) { c.images = store }
}

// NewPreviewConverter creates a PreviewConverter with GFM extensions and syntax highlighting.
func NewPreviewConverter(loader assets.AssetLoader, opts ...PreviewOption) (*PreviewConverter, error) {
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}
	style, err := loader.LoadStyle(assets.PreviewStyle)
	if err != nil {
		return nil, err
	}
	tmpl, err := loader.LoadTemplate(assets.PreviewTemplate)
	if err != nil {
		return nil, err
	}
	page, err := template.New("preview").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing preview template: %v", ErrHTMLConversion, err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(previewStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			// raw HTML left in cells (outputs, tags) is part of the article
			html.WithUnsafe(),
		),
	)

	c := &PreviewConverter{md: md, page: page, style: style, title: "Preview"}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ToHTML converts the article markdown to a standalone HTML5 document.
// Goldmark does not take a context, so conversion runs in a goroutine and
// the caller stops waiting on cancellation.
func (c *PreviewConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		body := buf.String()
		if c.images != nil && c.images.Len() > 0 {
			inlined, err := InlineImages(body, c.images)
			if err != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
				return
			}
			body = inlined
		}
		page, err := c.wrap(body)
		done <- result{html: page, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

func (c *PreviewConverter) wrap(body string) (string, error) {
	var css strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&css, styles.Get(previewStyle)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	var buf bytes.Buffer
	data := struct {
		Title          string
		Style          template.CSS
		HighlightStyle template.CSS
		Body           template.HTML
	}{
		Title:          c.title,
		Style:          template.CSS(c.style),      // #nosec G203 -- embedded or user stylesheet
		HighlightStyle: template.CSS(css.String()), // #nosec G203 -- generated by chroma
		Body:           template.HTML(body),        // #nosec G203 -- local preview of the user's own article
	}
	if err := c.page.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return buf.String(), nil
}
