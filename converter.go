package nb2medium

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-nb2medium/internal/assets"
	"github.com/alnah/go-nb2medium/internal/fileutil"
	"github.com/alnah/go-nb2medium/internal/logger"
	"github.com/alnah/go-nb2medium/internal/notebook"
	"github.com/alnah/go-nb2medium/internal/pipeline"
	"github.com/alnah/go-nb2medium/internal/render"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.TableConverter  = (*render.Screenshot)(nil)
	_ pipeline.TableConverter  = (*render.PlotTable)(nil)
	_ pipeline.FormulaRenderer = (*render.LatexRenderer)(nil)
	_ pipeline.HTMLConverter   = (*pipeline.PreviewConverter)(nil)
	_ assets.AssetLoader       = (AssetLoader)(nil)
)

// TableConverter turns an HTML fragment holding a table into a
// base64-encoded PNG.
type TableConverter interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Converter orchestrates the notebook-to-markdown pipeline.
// Create with NewConverter(), use Convert() for conversion, and Close() when done.
// A Converter is not safe for concurrent use; use a ConverterPool to convert
// several notebooks in parallel.
type Converter struct {
	cfg         converterConfig
	log         logrus.FieldLogger
	assetLoader AssetLoader
	tables      TableConverter
	latex       pipeline.FormulaRenderer
	markdown    *pipeline.MarkdownPreprocessor
	gistCreator GistCreator
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTableConversion, WithGist).
// Returns ErrBrowserNotFound when the chrome strategy is selected and no
// browser can be found; the browser itself starts on the first table.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:   defaultTimeout,
			center:    true,
			limitCrop: true,
		},
	}

	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.OrDiscard(c.log)

	if c.cfg.gistEnabled {
		if err := c.cfg.gist.Validate(); err != nil {
			return nil, err
		}
	}

	if c.assetLoader == nil {
		loader, err := NewAssetLoader(c.cfg.assetPath)
		if err != nil {
			return nil, err
		}
		c.assetLoader = loader
	}

	if c.tables == nil {
		tables, err := c.newTableConverter()
		if err != nil {
			return nil, err
		}
		c.tables = tables
	}

	if c.latex == nil {
		c.latex = render.NewLatexRenderer(render.DefaultLatexFontSize)
	}

	var mdOpts []pipeline.MarkdownOption
	if c.cfg.httpClient != nil {
		mdOpts = append(mdOpts, pipeline.WithHTTPClient(c.cfg.httpClient))
	}
	c.markdown = pipeline.NewMarkdownPreprocessor(mdOpts...)

	return c, nil
}

// newTableConverter builds the configured table strategy.
func (c *Converter) newTableConverter() (TableConverter, error) {
	strategy, err := render.ParseConversion(c.cfg.conversion)
	if err != nil {
		return nil, err
	}

	if strategy == render.ConversionPlot {
		var opts []render.PlotOption
		if c.cfg.fontSize > 0 {
			opts = append(opts, render.WithPlotFontSize(float64(c.cfg.fontSize)))
		}
		return render.NewPlotTable(opts...), nil
	}

	bin, err := render.FindBrowser(c.cfg.chromePath)
	if err != nil {
		return nil, err
	}
	c.log.WithField("browser", bin).Debug("using browser for tables")

	opts := []render.ScreenshotOption{
		render.WithCenter(c.cfg.center),
		render.WithLimitCrop(c.cfg.limitCrop),
		render.WithAssets(c.assetLoader),
		render.WithScreenshotLogger(c.log),
	}
	if c.cfg.fontSize > 0 {
		opts = append(opts, render.WithFontSize(c.cfg.fontSize))
	}
	return render.NewScreenshot(render.NewRodCapturer(bin, render.DefaultCaptureTimeout), opts...)
}

// ConvertFile reads a notebook and converts it. The title defaults to the
// file name without extension and relative images resolve against the
// notebook's directory.
func (c *Converter) ConvertFile(ctx context.Context, path, title string) (*Result, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided notebook path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotebookRead, err)
	}
	if title == "" {
		title = filepath.Base(fileutil.StemPath(path))
	}
	return c.Convert(ctx, Input{
		Notebook:  data,
		Title:     title,
		SourceDir: filepath.Dir(path),
	})
}

// Convert runs the full pipeline and returns the article markdown with its images.
// The context is used for cancellation; the converter timeout applies on top.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	nb, err := notebook.Parse(input.Notebook)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	title := resolveTitle(input.Title, nb)
	log := c.log.WithField("title", title)
	res := pipeline.NewResources(input.SourceDir, title, c.tables, log)

	// Order matters: LaTeX cells become attachments before markdown cells
	// are scanned, and table outputs become images before export.
	stages := []pipeline.Preprocessor{
		pipeline.NewLatexPreprocessor(c.latex),
		c.markdown,
		pipeline.OutputPreprocessor{},
	}
	if err := pipeline.Run(ctx, nb, res, stages...); err != nil {
		return nil, err
	}

	md, err := pipeline.MarkdownExporter{}.Export(ctx, nb, res)
	if err != nil {
		return nil, err
	}
	md = pipeline.FixJPEG(md, res.Images)

	result = &Result{Title: title}

	if c.cfg.gistEnabled {
		gistified, err := c.gistify(ctx, nb, title, md)
		if err != nil {
			return nil, err
		}
		md = gistified.Markdown
		result.GistURLs = gistified.URLs
		for _, u := range gistified.URLs {
			log.WithField("url", u).Info("created gist")
		}
	}

	result.Markdown = md
	for _, name := range res.Images.Names() {
		data, _ := res.Images.Get(name)
		result.Images = append(result.Images, Image{Name: name, Data: data})
	}
	result.Unreferenced = pipeline.UnreferencedImages(md, res.Images)
	if len(result.Unreferenced) > 0 {
		log.WithField("images", strings.Join(result.Unreferenced, ", ")).
			Warn("images are not referenced in the markdown")
	}

	return result, nil
}

// gistify externalizes long code blocks of md.
func (c *Converter) gistify(ctx context.Context, nb *notebook.Notebook, title, md string) (*pipeline.GistResult, error) {
	opts := c.cfg.gist
	if opts.Title == "" {
		opts.Title = title
	}
	if opts.Extension == "" {
		opts.Extension = pipeline.LanguageExtension(nb)
	}
	return pipeline.NewGistifier(c.gistCreator, opts, c.log).Gistify(ctx, md)
}

// Preview renders a converted article as a standalone HTML page with its
// images inlined, for checking the result before publishing.
func (c *Converter) Preview(ctx context.Context, result *Result) (string, error) {
	store := notebook.NewImageStore()
	for _, img := range result.Images {
		store.Put(img.Name, img.Data)
	}
	preview, err := pipeline.NewPreviewConverter(
		c.assetLoader,
		pipeline.WithPreviewTitle(result.Title),
		pipeline.WithPreviewImages(store),
	)
	if err != nil {
		return "", err
	}
	return preview.ToHTML(ctx, result.Markdown)
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if closer, ok := c.tables.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// resolveTitle picks the explicit title, then the notebook metadata title.
func resolveTitle(explicit string, nb *notebook.Notebook) string {
	if t := strings.TrimSpace(explicit); t != "" {
		return t
	}
	if t := strings.TrimSpace(nb.Metadata.Title); t != "" {
		return t
	}
	return defaultTitle
}
