// Package medium is a small client for the Medium publishing API: author
// lookup, publication lookup, image upload and post creation.
package medium

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/alnah/go-nb2medium/internal/fileutil"
)

// DefaultBaseURL is the Medium API root.
const DefaultBaseURL = "https://api.medium.com/v1"

// TokenEnv is the environment variable holding an integration token.
const TokenEnv = "MEDIUM_INTEGRATION_TOKEN"

const maxBody = 1 << 20

// Post limits enforced by the service.
const (
	MaxTags      = 5
	MaxTagLength = 25
)

// Publish statuses.
const (
	StatusDraft    = "draft"
	StatusPublic   = "public"
	StatusUnlisted = "unlisted"
)

// DefaultLicense is used when none is configured.
const DefaultLicense = "all-rights-reserved"

// Licenses lists the license values the service accepts.
var Licenses = []string{
	"all-rights-reserved",
	"cc-40-by",
	"cc-40-by-sa",
	"cc-40-by-nd",
	"cc-40-by-nc",
	"cc-40-by-nc-nd",
	"cc-40-by-nc-sa",
	"cc-40-zero",
	"public-domain",
}

// ValidLicense reports whether l is one of Licenses.
func ValidLicense(l string) bool {
	return slices.Contains(Licenses, l)
}

// Sentinel errors.
var (
	ErrRequest             = errors.New("medium request failed")
	ErrAuthor              = errors.New("failed to authenticate author")
	ErrPublicationNotFound = errors.New("publication not found")
	ErrImageUpload         = errors.New("image upload failed")
	ErrPost                = errors.New("post creation failed")
	ErrTokenMissing        = errors.New("medium integration token not found")

	ErrInvalidLicense       = errors.New("invalid license")
	ErrInvalidPublishStatus = errors.New("invalid publish status")
	ErrInvalidTags          = errors.New("invalid tags")
)

// ValidatePost checks the post settings the service would otherwise reject
// after every image was already uploaded. Only drafts are accepted: the
// article is finalized on the site.
func ValidatePost(license, status string, tags []string) error {
	if !ValidLicense(license) {
		return fmt.Errorf("%w: %q", ErrInvalidLicense, license)
	}
	if status != StatusDraft {
		return fmt.Errorf("%w: %q (only %q is allowed)", ErrInvalidPublishStatus, status, StatusDraft)
	}
	if len(tags) > MaxTags {
		return fmt.Errorf("%w: %d tags (max %d)", ErrInvalidTags, len(tags), MaxTags)
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("%w: empty tag", ErrInvalidTags)
		}
		if n := len([]rune(tag)); n > MaxTagLength {
			return fmt.Errorf("%w: %q has %d chars (max %d)", ErrInvalidTags, tag, n, MaxTagLength)
		}
	}
	return nil
}

// ResponseError carries the raw body of a failed call.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", ErrRequest, e.StatusCode, e.Body)
}

// Unwrap lets callers match ErrRequest.
func (e *ResponseError) Unwrap() error { return ErrRequest }

// User is the authenticated author.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	URL      string `json:"url"`
}

// Publication is a publication the author contributes to.
type Publication struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Image is an uploaded image.
type Image struct {
	URL string `json:"url"`
	MD5 string `json:"md5"`
}

// Post is the body of a create-post call.
type Post struct {
	Title           string   `json:"title"`
	ContentFormat   string   `json:"contentFormat"`
	Content         string   `json:"content"`
	License         string   `json:"license"`
	PublishStatus   string   `json:"publishStatus"`
	NotifyFollowers bool     `json:"notifyFollowers"`
	CanonicalURL    string   `json:"canonicalUrl,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// PostResult is what the service stored.
type PostResult struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	AuthorID      string   `json:"authorId"`
	URL           string   `json:"url"`
	CanonicalURL  string   `json:"canonicalUrl"`
	PublishStatus string   `json:"publishStatus"`
	License       string   `json:"license"`
	LicenseURL    string   `json:"licenseUrl"`
	Tags          []string `json:"tags"`
	PublicationID string   `json:"publicationId"`
}

// API is the subset of the service the publisher needs.
type API interface {
	Me(ctx context.Context) (*User, error)
	PublicationID(ctx context.Context, userID, name string) (string, error)
	UploadImage(ctx context.Context, name, contentType string, data []byte) (*Image, error)
	CreatePost(ctx context.Context, userID, publicationID string, post *Post) (*PostResult, error)
}

// Client talks to the Medium API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ API = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient creates a Client authenticated with an integration token.
// Large articles take a while to be accepted, hence the generous timeout.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the {"data": ...} wrapper of every response.
type envelope[T any] struct {
	Data *T `json:"data"`
}

// Me returns the author owning the token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	u, err := call[User](ctx, c, http.MethodGet, "/me", "", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthor, err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: response has no id", ErrAuthor)
	}
	return u, nil
}

// Publications lists the publications of userID.
func (c *Client) Publications(ctx context.Context, userID string) ([]Publication, error) {
	pubs, err := call[[]Publication](ctx, c, http.MethodGet, "/users/"+userID+"/publications", "", nil)
	if err != nil {
		return nil, err
	}
	return *pubs, nil
}

// PublicationID returns the id of the publication called name. An empty
// name means no publication and returns "".
func (c *Client) PublicationID(ctx context.Context, userID, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	pubs, err := c.Publications(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, p := range pubs {
		if p.Name == name {
			return p.ID, nil
		}
	}
	names := make([]string, len(pubs))
	for i, p := range pubs {
		names[i] = p.Name
	}
	return "", fmt.Errorf("%w: %q (available: %s)", ErrPublicationNotFound, name, strings.Join(names, ", "))
}

// UploadImage sends data as a multipart "image" part.
func (c *Client) UploadImage(ctx context.Context, name, contentType string, data []byte) (*Image, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageUpload, err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageUpload, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageUpload, err)
	}

	img, err := call[Image](ctx, c, http.MethodPost, "/images", w.FormDataContentType(), &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImageUpload, name, err)
	}
	if img.URL == "" {
		return nil, fmt.Errorf("%w: %s: response has no url", ErrImageUpload, name)
	}
	return img, nil
}

// CreatePost posts under the publication when publicationID is set,
// otherwise under the user.
func (c *Client) CreatePost(ctx context.Context, userID, publicationID string, post *Post) (*PostResult, error) {
	route := "/users/" + userID + "/posts"
	if publicationID != "" {
		route = "/publications/" + publicationID + "/posts"
	}
	raw, err := json.Marshal(post)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPost, err)
	}
	res, err := call[PostResult](ctx, c, http.MethodPost, route, "application/json", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPost, err)
	}
	return res, nil
}

func call[T any](ctx context.Context, c *Client, method, route, contentType string, body io.Reader) (*T, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+route, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Charset", "utf-8")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil || env.Data == nil {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return env.Data, nil
}

// ResolveToken returns explicit, then $MEDIUM_INTEGRATION_TOKEN, then the
// first line of ~/.jupyter_to_medium/integration_token.
func ResolveToken(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if tok := strings.TrimSpace(os.Getenv(TokenEnv)); tok != "" {
		return tok, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenMissing, err)
	}
	tok, err := fileutil.ReadFirstLine(filepath.Join(home, ".jupyter_to_medium", "integration_token"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenMissing, err)
	}
	return tok, nil
}
