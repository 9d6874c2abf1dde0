package nb2medium

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-nb2medium/internal/gist"
	"github.com/alnah/go-nb2medium/internal/pipeline"
	"github.com/alnah/go-nb2medium/internal/render"
)

// Table conversion strategies.
const (
	TableConversionChrome = render.ConversionChrome
	TableConversionPlot   = render.ConversionPlot
)

// Gist reference styles.
const (
	GistOutputMedium = pipeline.GistOutputMedium
	GistOutputHugo   = pipeline.GistOutputHugo
)

// DefaultGistThreshold is the line count a code block must exceed to become a gist.
const DefaultGistThreshold = pipeline.DefaultGistThreshold

// GistOptions configures code block externalization.
// Title and Extension are filled in by Convert when left empty.
type GistOptions = pipeline.GistOptions

// GistCreator creates gists. NewGistClient returns the GitHub implementation.
type GistCreator = gist.Creator

// NewGistClient returns a GistCreator for the GitHub gist API.
func NewGistClient(token string) GistCreator {
	return gist.NewClient(token)
}

// ResolveGistToken returns explicit, else $GITHUB_TOKEN, else the first line
// of ~/.jupyter_to_medium/github_token.
func ResolveGistToken(explicit string) (string, error) {
	return gist.ResolveToken(explicit)
}

// Input contains conversion parameters.
type Input struct {
	Notebook  []byte // nbformat v4 JSON (required)
	Title     string // Article title (optional, defaults to the notebook metadata title)
	SourceDir string // Directory relative image paths resolve against (optional)
}

// Image is a file the markdown references by Name.
type Image struct {
	Name string
	Data []byte
}

// Result is a converted article.
type Result struct {
	Title    string
	Markdown string
	// Images are in creation order.
	Images []Image
	// GistURLs are the gists created for this article, in creation order.
	GistURLs []string
	// Unreferenced names images the markdown does not mention.
	Unreferenced []string
}

// Image returns the bytes of the named image.
func (r *Result) Image(name string) ([]byte, bool) {
	for _, img := range r.Images {
		if img.Name == name {
			return img.Data, true
		}
	}
	return nil, false
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout     time.Duration
	conversion  string
	chromePath  string
	fontSize    int
	center      bool
	limitCrop   bool
	assetPath   string
	gistEnabled bool
	gist        GistOptions
	httpClient  *http.Client
}

// defaultTimeout bounds a whole conversion, every table capture included.
const defaultTimeout = 5 * time.Minute

// defaultTitle names articles that have neither an explicit nor a metadata title.
const defaultTitle = "notebook"

// WithTimeout sets the conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("nb2medium: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithTableConversion selects how tables become images: "chrome" (the
// default), "plot" or its alias "matplotlib". Unknown names make
// NewConverter return ErrInvalidTableConversion.
func WithTableConversion(name string) Option {
	return func(c *Converter) {
		c.cfg.conversion = name
	}
}

// WithChromePath sets the browser executable. Empty means auto-discovery.
func WithChromePath(path string) Option {
	return func(c *Converter) {
		c.cfg.chromePath = path
	}
}

// WithTableFontSize sets the table font size. Zero keeps the strategy default.
func WithTableFontSize(size int) Option {
	return func(c *Converter) {
		c.cfg.fontSize = size
	}
}

// WithCenterTables centers screenshotted tables. Enabled by default.
func WithCenterTables(center bool) Option {
	return func(c *Converter) {
		c.cfg.center = center
	}
}

// WithLimitCrop keeps cropping from removing more than 22% of a screenshot
// on either side.
func WithLimitCrop(limit bool) Option {
	return func(c *Converter) {
		c.cfg.limitCrop = limit
	}
}

// WithTableConverter replaces the table strategy. The converter receives an
// HTML fragment and returns a base64-encoded PNG.
func WithTableConverter(tc TableConverter) Option {
	return func(c *Converter) {
		c.tables = tc
	}
}

// WithAssetPath sets a directory whose styles/ and templates/ override the
// embedded table and preview assets.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithAssetLoader sets a custom asset loader. Takes precedence over WithAssetPath.
func WithAssetLoader(loader AssetLoader) Option {
	return func(c *Converter) {
		c.assetLoader = loader
	}
}

// WithGist moves long code blocks to gists created through creator.
func WithGist(creator GistCreator, opts GistOptions) Option {
	return func(c *Converter) {
		c.gistCreator = creator
		c.cfg.gist = opts
		c.cfg.gistEnabled = true
	}
}

// WithLogger sets the logger for progress and warnings.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Converter) {
		c.log = l
	}
}

// WithHTTPClient sets the client used to download remote markdown images.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Converter) {
		c.cfg.httpClient = h
	}
}
