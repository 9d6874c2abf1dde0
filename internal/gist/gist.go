// Package gist creates GitHub gists for code blocks moved out of an article.
package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-nb2medium/internal/fileutil"
)

// DefaultBaseURL is the GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// TokenEnv is the environment variable holding a GitHub token.
const TokenEnv = "GITHUB_TOKEN"

// maxErrorBody bounds how much of a failed response is kept for diagnosis.
const maxErrorBody = 64 << 10

// Sentinel errors.
var (
	ErrCreate       = errors.New("gist creation failed")
	ErrNoURL        = errors.New("gist response has no html_url")
	ErrTokenMissing = errors.New("github token not found")
)

// File is one file of a gist.
type File struct {
	Content string `json:"content"`
}

// Request is the body of a create-gist call.
type Request struct {
	Description string          `json:"description"`
	Public      bool            `json:"public"`
	Files       map[string]File `json:"files"`
}

// Owner identifies the account owning a gist.
type Owner struct {
	Login string `json:"login"`
}

// Gist is the subset of the create-gist response the converter reads.
type Gist struct {
	ID      string `json:"id"`
	HTMLURL string `json:"html_url"`
	Owner   Owner  `json:"owner"`
}

// ResponseError carries the raw body of a failed gist call.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", ErrCreate, e.StatusCode, e.Body)
}

// Unwrap lets callers match ErrCreate.
func (e *ResponseError) Unwrap() error { return ErrCreate }

//go:generate mockgen -source=gist.go -destination=mock_gist/mock_gist.go -package=mock_gist

// Creator creates a gist and returns what the service stored.
type Creator interface {
	Create(ctx context.Context, req *Request) (*Gist, error)
}

// Client talks to the GitHub gists endpoint.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ Creator = (*Client)(nil)

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

// NewClient creates a Client authenticated with token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create posts req to /gists.
func (c *Client) Create(ctx context.Context, req *Request) (*Gist, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreate, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/gists?scope=gist", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreate, err)
	}
	httpReq.Header.Set("Authorization", "token "+c.token)
	httpReq.Header.Set("Accept", "application/vnd.github+json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreate, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreate, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var g Gist
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if g.HTMLURL == "" {
		return nil, fmt.Errorf("%w: %w: %s", ErrNoURL, ErrCreate, raw)
	}
	return &g, nil
}

// ResolveToken returns explicit, then $GITHUB_TOKEN, then the first line of
// ~/.jupyter_to_medium/github_token.
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
	return ReadTokenFile(filepath.Join(home, ".jupyter_to_medium", "github_token"))
}

// ReadTokenFile returns the first non-empty line of path.
func ReadTokenFile(path string) (string, error) {
	tok, err := fileutil.ReadFirstLine(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenMissing, err)
	}
	return tok, nil
}
