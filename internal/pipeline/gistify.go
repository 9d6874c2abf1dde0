package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-nb2medium/internal/fileutil"
	"github.com/alnah/go-nb2medium/internal/gist"
	"github.com/alnah/go-nb2medium/internal/logger"
	"github.com/alnah/go-nb2medium/internal/notebook"
)

// Gist reference styles.
const (
	GistOutputMedium = "medium"
	GistOutputHugo   = "hugo"
)

// DefaultGistThreshold is the line count a code block must exceed to become a gist.
const DefaultGistThreshold = 5

const (
	fence = "```"

	// Placeholder markers are Private Use Area runes; nothing the pipeline
	// emits contains them.
	placeholderOpen  = "\uE010"
	placeholderClose = "\uE011"
)

// Sentinel errors for gist segmentation.
var (
	ErrGistify              = errors.New("gistify failed")
	ErrPlaceholderCollision = errors.New("markdown already contains gist placeholder markers")
	ErrInvalidGistThreshold = errors.New("invalid gist threshold")
	ErrInvalidGistOutput    = errors.New("invalid gist output type")
)

// GistOptions configures a Gistifier.
type GistOptions struct {
	// Threshold is exclusive: a block of exactly Threshold lines stays inline.
	Threshold int
	Public    bool
	// PerBlock creates one gist per block instead of one multi-file gist.
	PerBlock bool
	// Output is GistOutputMedium or GistOutputHugo.
	Output string
	// Title names the gists; it is lowercased with spaces turned into underscores.
	Title string
	// Extension, with its dot, is appended to every gist file name.
	Extension string
}

// Validate rejects a negative threshold and unknown output types. An empty
// output type is accepted and defaults to GistOutputMedium.
func (o GistOptions) Validate() error {
	if o.Threshold < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidGistThreshold, o.Threshold)
	}
	switch o.Output {
	case "", GistOutputMedium, GistOutputHugo:
		return nil
	}
	return fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidGistOutput, o.Output, GistOutputMedium, GistOutputHugo)
}

// ExternalizedBlock is a code block replaced by a gist reference.
type ExternalizedBlock struct {
	Reference string
	Filename  string
	Code      string
}

// GistResult is the rewritten markdown and what was sent to the service.
type GistResult struct {
	Markdown string
	Blocks   []ExternalizedBlock
	// URLs are the html_url of every gist created, in creation order.
	URLs []string
}

// Gistifier moves long fenced code blocks of a markdown document to gists.
type Gistifier struct {
	creator gist.Creator
	opts    GistOptions
	log     logrus.FieldLogger
	newID   func() string
}

// NewGistifier creates a Gistifier. Missing options take their defaults.
func NewGistifier(creator gist.Creator, opts GistOptions, log logrus.FieldLogger) *Gistifier {
	if opts.Threshold < 0 {
		opts.Threshold = DefaultGistThreshold
	}
	if opts.Output == "" {
		opts.Output = GistOutputMedium
	}
	if opts.Extension == "" {
		opts.Extension = ".txt"
	}
	return &Gistifier{
		creator: creator,
		opts:    opts,
		log:     logger.OrDiscard(log),
		newID:   func() string { return uuid.NewString() },
	}
}

// pendingBlock is a block waiting for its gist.
type pendingBlock struct {
	placeholder string
	code        string
}

// segment is the first pass: it copies md, swapping every qualifying block
// for a placeholder line and collecting those blocks.
//
// A block qualifies when it is closed, holds more than threshold lines
// counting blank ones, and is not whitespace only. Everything else, an
// unclosed trailing block included, is copied verbatim.
func segment(md string, threshold int) (string, []pendingBlock) {
	var (
		out     strings.Builder
		pending []pendingBlock
		inside  bool
		opening string
		buf     []string
	)

	for _, line := range strings.SplitAfter(md, "\n") {
		if line == "" {
			continue
		}
		switch {
		case !inside && strings.HasPrefix(line, fence):
			inside = true
			opening = line
			buf = buf[:0]
		case inside && strings.HasPrefix(line, fence):
			inside = false
			code := strings.Join(buf, "")
			if strings.TrimSpace(code) == "" || len(buf) <= threshold {
				out.WriteString(opening + code + line)
				continue
			}
			ph := placeholderOpen + strconv.Itoa(len(pending)+1) + placeholderClose
			pending = append(pending, pendingBlock{placeholder: ph, code: code})
			out.WriteString("\n" + ph + "\n")
		case inside:
			buf = append(buf, line)
		default:
			out.WriteString(line)
		}
	}
	if inside {
		out.WriteString(opening + strings.Join(buf, ""))
	}
	return out.String(), pending
}

// Gistify rewrites md, replacing code blocks longer than the threshold with
// gist references. Markdown without such blocks is returned unchanged and
// no gist is created. Any service failure fails the whole call.
func (g *Gistifier) Gistify(ctx context.Context, md string) (*GistResult, error) {
	text, pending := segment(md, g.opts.Threshold)
	if len(pending) == 0 {
		return &GistResult{Markdown: md}, nil
	}
	if strings.Contains(md, placeholderOpen) || strings.Contains(md, placeholderClose) {
		return nil, ErrPlaceholderCollision
	}
	if g.creator == nil {
		return nil, fmt.Errorf("%w: no gist client", ErrGistify)
	}

	var blocks []ExternalizedBlock
	var urls []string
	var err error
	if g.opts.PerBlock {
		blocks, urls, err = g.createEach(ctx, pending)
	} else {
		blocks, urls, err = g.createBatch(ctx, pending)
	}
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, 2*len(blocks))
	for i, b := range blocks {
		args = append(args, pending[i].placeholder, b.Reference)
	}
	return &GistResult{
		Markdown: strings.NewReplacer(args...).Replace(text),
		Blocks:   blocks,
		URLs:     urls,
	}, nil
}

// createBatch stores every block as part_NN<ext> of one gist.
func (g *Gistifier) createBatch(ctx context.Context, pending []pendingBlock) ([]ExternalizedBlock, []string, error) {
	files := make(map[string]gist.File, len(pending))
	names := make([]string, len(pending))
	for i, p := range pending {
		names[i] = fmt.Sprintf("part_%02d%s", i+1, g.opts.Extension)
		files[names[i]] = gist.File{Content: p.code}
	}

	created, err := g.create(ctx, &gist.Request{
		Description: fileutil.Slug(g.opts.Title),
		Public:      g.opts.Public,
		Files:       files,
	})
	if err != nil {
		return nil, nil, err
	}

	blocks := make([]ExternalizedBlock, len(pending))
	for i, p := range pending {
		blocks[i] = ExternalizedBlock{
			Reference: g.reference(created, names[i], true),
			Filename:  names[i],
			Code:      p.code,
		}
	}
	return blocks, []string{created.HTMLURL}, nil
}

// createEach stores every block in its own gist with a random file name.
func (g *Gistifier) createEach(ctx context.Context, pending []pendingBlock) ([]ExternalizedBlock, []string, error) {
	blocks := make([]ExternalizedBlock, len(pending))
	urls := make([]string, len(pending))
	for i, p := range pending {
		name := g.newID() + g.opts.Extension
		created, err := g.create(ctx, &gist.Request{
			Description: fileutil.Slug(g.opts.Title) + strconv.Itoa(i),
			Public:      g.opts.Public,
			Files:       map[string]gist.File{name: {Content: p.code}},
		})
		if err != nil {
			return nil, nil, err
		}
		blocks[i] = ExternalizedBlock{
			Reference: g.reference(created, name, false),
			Filename:  name,
			Code:      p.code,
		}
		urls[i] = created.HTMLURL
	}
	return blocks, urls, nil
}

func (g *Gistifier) create(ctx context.Context, req *gist.Request) (*gist.Gist, error) {
	created, err := g.creator.Create(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrGistify, err)
	}
	if created == nil || created.HTMLURL == "" {
		return nil, fmt.Errorf("%w: %w", ErrGistify, gist.ErrNoURL)
	}
	if g.opts.Output == GistOutputHugo && (created.ID == "" || created.Owner.Login == "") {
		return nil, fmt.Errorf("%w: response lacks id or owner for hugo output", ErrGistify)
	}
	g.log.WithFields(logrus.Fields{"url": created.HTMLURL, "files": len(req.Files)}).Debug("created gist")
	return created, nil
}

// reference is what replaces a block: the gist URL for Medium, a shortcode for Hugo.
func (g *Gistifier) reference(created *gist.Gist, file string, multiFile bool) string {
	if g.opts.Output == GistOutputHugo {
		if multiFile {
			return fmt.Sprintf("{{< gist %s %s %s >}}", created.Owner.Login, created.ID, file)
		}
		return fmt.Sprintf("{{< gist %s %s >}}", created.Owner.Login, created.ID)
	}
	if multiFile {
		return created.HTMLURL + "?file=" + file
	}
	return created.HTMLURL
}

// LanguageExtension returns the file extension, with its dot, for code of nb:
// the notebook's own metadata first, then the first file pattern chroma
// knows for the kernel language, then ".txt".
func LanguageExtension(nb *notebook.Notebook) string {
	if ext := nb.Metadata.LanguageInfo.FileExtension; ext != "" {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		return ext
	}
	if lang := nb.Language(); lang != "" {
		if lexer := lexers.Get(lang); lexer != nil {
			for _, pattern := range lexer.Config().Filenames {
				if ext := path.Ext(pattern); ext != "" && !strings.ContainsAny(ext, "*?[") {
					return ext
				}
			}
		}
	}
	return ".txt"
}
