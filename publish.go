package nb2medium

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-nb2medium/internal/fileutil"
	"github.com/alnah/go-nb2medium/internal/logger"
	"github.com/alnah/go-nb2medium/internal/medium"
)

// Publish statuses and licenses accepted by Medium.
const (
	PublishStatusDraft = medium.StatusDraft
	DefaultLicense     = medium.DefaultLicense
)

// Licenses lists the license values Medium accepts.
var Licenses = medium.Licenses

// uploadTypes are the image extensions Medium hosts. Other images (svg)
// stay referenced by their local name.
var uploadTypes = []string{"png", "gif", "jpeg", "jpg", "tiff"}

// MediumAPI is the subset of the Medium API a Publisher needs.
// NewMediumClient returns the HTTP implementation.
type MediumAPI = medium.API

// NewMediumClient returns a MediumAPI authenticated with an integration token.
func NewMediumClient(token string) MediumAPI {
	return medium.NewClient(token)
}

// ResolveMediumToken returns explicit, else $MEDIUM_INTEGRATION_TOKEN, else
// the first line of ~/.jupyter_to_medium/integration_token.
func ResolveMediumToken(explicit string) (string, error) {
	return medium.ResolveToken(explicit)
}

// PublishOptions configures the post.
type PublishOptions struct {
	Publication     string   // Publication name (empty = the author's own page)
	Title           string   // Post title (empty = the article title)
	License         string   // One of Licenses (empty = DefaultLicense)
	PublishStatus   string   // Only "draft" (empty = draft)
	NotifyFollowers bool
	Tags            []string // At most 5, each at most 25 chars
	CanonicalURL    string   // Original home of the content
}

// withDefaults fills empty license and status.
func (o PublishOptions) withDefaults() PublishOptions {
	if o.License == "" {
		o.License = DefaultLicense
	}
	if o.PublishStatus == "" {
		o.PublishStatus = PublishStatusDraft
	}
	return o
}

// Validate checks the settings Medium would reject after the images were
// uploaded. Empty license and status take their defaults.
func (o PublishOptions) Validate() error {
	o = o.withDefaults()
	return medium.ValidatePost(o.License, o.PublishStatus, o.Tags)
}

// Published is the outcome of a publication.
type Published struct {
	ID            string
	URL           string
	PublishStatus string
	// Markdown is the content sent, with hosted image URLs.
	Markdown string
	// ImageURLs maps local image names to their hosted URL.
	ImageURLs map[string]string
}

// Publisher uploads converted articles to Medium.
// Authenticate resolves the author and the publication once; Publish calls
// it when needed.
type Publisher struct {
	api           MediumAPI
	log           logrus.FieldLogger
	userID        string
	publication   string
	publicationID string
	authenticated bool
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger.
func WithPublisherLogger(l logrus.FieldLogger) PublisherOption {
	return func(p *Publisher) { p.log = l }
}

// NewPublisher creates a Publisher on top of api.
func NewPublisher(api MediumAPI, opts ...PublisherOption) *Publisher {
	p := &Publisher{api: api}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logger.OrDiscard(p.log)
	return p
}

// Authenticate looks up the author owning the token and the id of
// publication. Calling it before converting fails fast on a bad token or an
// unknown publication name.
func (p *Publisher) Authenticate(ctx context.Context, publication string) error {
	if p.authenticated && p.publication == publication {
		return nil
	}
	user, err := p.api.Me(ctx)
	if err != nil {
		return err
	}
	pubID, err := p.api.PublicationID(ctx, user.ID, publication)
	if err != nil {
		return err
	}
	p.userID = user.ID
	p.publication = publication
	p.publicationID = pubID
	p.authenticated = true
	p.log.WithFields(logrus.Fields{"author": user.Username, "publication": publication}).Debug("authenticated")
	return nil
}

// Publish uploads the images of result, points the markdown at the hosted
// copies and creates the post. result is not modified.
func (p *Publisher) Publish(ctx context.Context, result *Result, opts PublishOptions) (*Published, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := p.Authenticate(ctx, opts.Publication); err != nil {
		return nil, err
	}

	md, urls, err := p.uploadImages(ctx, result)
	if err != nil {
		return nil, err
	}

	title := opts.Title
	if title == "" {
		title = result.Title
	}
	post, err := p.api.CreatePost(ctx, p.userID, p.publicationID, &medium.Post{
		Title:           title,
		ContentFormat:   "markdown",
		Content:         md,
		License:         opts.License,
		PublishStatus:   opts.PublishStatus,
		NotifyFollowers: opts.NotifyFollowers,
		CanonicalURL:    opts.CanonicalURL,
		Tags:            opts.Tags,
	})
	if err != nil {
		return nil, err
	}
	p.log.WithField("url", post.URL).Info("posted to Medium")

	return &Published{
		ID:            post.ID,
		URL:           post.URL,
		PublishStatus: post.PublishStatus,
		Markdown:      md,
		ImageURLs:     urls,
	}, nil
}

// uploadImages hosts every uploadable image and swaps each local name in the
// markdown for its URL.
func (p *Publisher) uploadImages(ctx context.Context, result *Result) (string, map[string]string, error) {
	md := result.Markdown
	urls := make(map[string]string)
	for _, img := range result.Images {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(img.Name), "."))
		if !slices.Contains(uploadTypes, ext) {
			p.log.WithField("image", img.Name).Debug("not uploadable, kept local")
			continue
		}
		hosted, err := p.api.UploadImage(ctx, fileutil.StemPath(img.Name), "image/"+ext, img.Data)
		if err != nil {
			return "", nil, fmt.Errorf("uploading %s: %w", img.Name, err)
		}
		p.log.WithField("image", img.Name).Debug("uploaded image")
		urls[img.Name] = hosted.URL
		md = strings.ReplaceAll(md, img.Name, hosted.URL)
	}
	return md, urls, nil
}
