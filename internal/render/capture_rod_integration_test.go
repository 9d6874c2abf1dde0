//go:build integration

package render

// Notes:
// - These tests drive a real headless Chromium through RodCapturer.
// - The browser is the one FindBrowser discovers; without one, rod downloads
//   its pinned Chromium on first run.
// - One capturer is shared per test function and closed via t.Cleanup().

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-rod/rod/lib/launcher"
)

const scenarioTable = `<table><tr><th>A</th></tr><tr><td>1</td></tr></table>`

func rodBrowser(t *testing.T) string {
	t.Helper()
	if path, err := FindBrowser(""); err == nil {
		return path
	}
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		t.Fatalf("no browser found and download failed: %v", err)
	}
	return path
}

func newRodCapturer(t *testing.T) *RodCapturer {
	t.Helper()
	c := NewRodCapturer(rodBrowser(t), DefaultCaptureTimeout)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	return img
}

func hasInk(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isWhite(img, x, y) {
				return true
			}
		}
	}
	return false
}

// edgeWhite counts the white entries at the start and the end of a profile.
func edgeWhite(profile []bool) (lead, trail int) {
	for lead < len(profile) && profile[lead] {
		lead++
	}
	for trail < len(profile) && profile[len(profile)-1-trail] {
		trail++
	}
	return lead, trail
}

// ---------------------------------------------------------------------------
// TestRodCapturer_Capture_Integration
// ---------------------------------------------------------------------------

func TestRodCapturer_Capture_Integration(t *testing.T) {
	c := newRodCapturer(t)

	page := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(page, []byte("<html><body>"+scenarioTable+"</body></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	data, err := c.Capture(context.Background(), page, 640, 480)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	img := decodePNG(t, data)
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 480 {
		t.Errorf("capture size = %dx%d, want the 640x480 viewport", b.Dx(), b.Dy())
	}
	if !hasInk(img) {
		t.Error("capture is blank")
	}

	// the browser is reused across captures
	if _, err := c.Capture(context.Background(), page, 320, 240); err != nil {
		t.Fatalf("second Capture() error = %v", err)
	}
}

func TestRodCapturer_Canceled_Integration(t *testing.T) {
	c := newRodCapturer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Capture(ctx, "unused.html", 100, 100); err == nil {
		t.Error("Capture() with canceled context error = nil")
	}
}

// ---------------------------------------------------------------------------
// TestScreenshot_Rod_Integration - Full table strategy
// ---------------------------------------------------------------------------

func TestScreenshot_Rod_Integration(t *testing.T) {
	tests := []struct {
		name  string
		opts  []ScreenshotOption
		tight bool
	}{
		{"default crop guard", nil, false},
		{"unlimited crop", []ScreenshotOption{WithLimitCrop(false)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]ScreenshotOption{WithBase64(false)}, tt.opts...)
			s, err := NewScreenshot(newRodCapturer(t), opts...)
			if err != nil {
				t.Fatalf("NewScreenshot() error = %v", err)
			}

			data, err := s.Render(context.Background(), scenarioTable)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if len(data) == 0 {
				t.Fatal("Render() returned no bytes")
			}

			img := decodePNG(t, data)
			w, h := s.Viewport()
			if b := img.Bounds(); b.Dx() >= w || b.Dy() >= h {
				t.Errorf("cropped size = %dx%d, want smaller than the %dx%d viewport", b.Dx(), b.Dy(), w, h)
			}
			if !hasInk(img) {
				t.Error("cropped table is blank")
			}
			if s.Attempts() != 0 {
				t.Errorf("attempts = %d, a one-cell table fits the default viewport", s.Attempts())
			}

			// rows are never limited; columns only when the guard is off
			cols, rows := whiteProfile(img)
			if top, bottom := edgeWhite(rows); top > 1 || bottom > 1 {
				t.Errorf("white border rows = %d top, %d bottom, want at most 1", top, bottom)
			}
			if tt.tight {
				if left, right := edgeWhite(cols); left > 1 || right > 1 {
					t.Errorf("white border columns = %d left, %d right, want at most 1", left, right)
				}
			}
		})
	}
}
