package gist_test

// Notes:
// - The real api.github.com is never contacted; every test runs against an
//   httptest server.
// - ResolveToken's home-directory fallback is not covered: it reads the
//   developer's real home.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-nb2medium/internal/gist"
)

// ---------------------------------------------------------------------------
// TestClientCreate - Request shape and response handling
// ---------------------------------------------------------------------------

func TestClientCreate(t *testing.T) {
	t.Parallel()

	var got gist.Request
	var auth, scope string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		scope = r.URL.Query().Get("scope")
		if r.Method != http.MethodPost || r.URL.Path != "/gists" {
			http.Error(w, "unexpected route", http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"abc","html_url":"https://gist.github.com/me/abc","owner":{"login":"me"}}`))
	}))
	defer srv.Close()

	c := gist.NewClient("secret", gist.WithBaseURL(srv.URL+"/"))
	g, err := c.Create(context.Background(), &gist.Request{
		Description: "my_post",
		Public:      true,
		Files:       map[string]gist.File{"part_01.py": {Content: "print(1)\n"}},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if auth != "token secret" {
		t.Errorf("Authorization = %q, want %q", auth, "token secret")
	}
	if scope != "gist" {
		t.Errorf("scope = %q, want gist", scope)
	}
	if got.Description != "my_post" || !got.Public {
		t.Errorf("request = %+v", got)
	}
	if got.Files["part_01.py"].Content != "print(1)\n" {
		t.Errorf("files = %+v", got.Files)
	}
	if g.ID != "abc" || g.HTMLURL != "https://gist.github.com/me/abc" || g.Owner.Login != "me" {
		t.Errorf("gist = %+v", g)
	}
}

func TestClientCreate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantStatus int
	}{
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"message":"Bad credentials"}`,
			wantErr:    gist.ErrCreate,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed body",
			status:     http.StatusCreated,
			body:       `not json`,
			wantErr:    gist.ErrCreate,
			wantStatus: http.StatusCreated,
		},
		{
			name:    "missing html_url",
			status:  http.StatusCreated,
			body:    `{"id":"abc"}`,
			wantErr: gist.ErrNoURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := gist.NewClient("t", gist.WithBaseURL(srv.URL)).Create(context.Background(), &gist.Request{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, gist.ErrCreate) {
				t.Errorf("error %v does not match ErrCreate", err)
			}

			var respErr *gist.ResponseError
			if tt.wantStatus != 0 {
				if !errors.As(err, &respErr) {
					t.Fatalf("error %T is not a *ResponseError", err)
				}
				if respErr.StatusCode != tt.wantStatus || respErr.Body != tt.body {
					t.Errorf("ResponseError = %+v", respErr)
				}
			}
		})
	}
}

func TestClientCreate_CanceledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gist.NewClient("t", gist.WithBaseURL(srv.URL)).Create(ctx, &gist.Request{})
	if !errors.Is(err, gist.ErrCreate) {
		t.Errorf("Create() error = %v, want ErrCreate", err)
	}
}

// ---------------------------------------------------------------------------
// TestResolveToken - Token lookup order
// ---------------------------------------------------------------------------

func TestResolveToken_Explicit(t *testing.T) {
	t.Parallel()

	tok, err := gist.ResolveToken("flag-token")
	if err != nil || tok != "flag-token" {
		t.Errorf("ResolveToken() = %q, %v", tok, err)
	}
}

func TestResolveToken_Env(t *testing.T) {
	t.Setenv(gist.TokenEnv, " env-token ")

	tok, err := gist.ResolveToken("")
	if err != nil || tok != "env-token" {
		t.Errorf("ResolveToken() = %q, %v", tok, err)
	}
}

func TestReadTokenFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "github_token")
	if err := os.WriteFile(path, []byte("ghp_x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	tok, err := gist.ReadTokenFile(path)
	if err != nil || tok != "ghp_x" {
		t.Errorf("ReadTokenFile() = %q, %v", tok, err)
	}

	_, err = gist.ReadTokenFile(filepath.Join(t.TempDir(), "none"))
	if !errors.Is(err, gist.ErrTokenMissing) {
		t.Errorf("missing file error = %v, want ErrTokenMissing", err)
	}
}
