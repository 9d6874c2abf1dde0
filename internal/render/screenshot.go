package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-nb2medium/internal/assets"
	"github.com/alnah/go-nb2medium/internal/fileutil"
	"github.com/alnah/go-nb2medium/internal/logger"
)

// Screenshot defaults.
const (
	DefaultViewportWidth  = 1200
	DefaultViewportHeight = 900
	DefaultTableFontSize  = 14
	DefaultMaxEnlarge     = 15
	DefaultCaptureTimeout = 30 * time.Second
	enlargeFactor         = 1.2
)

// Capturer loads a local HTML file in a viewport of the given size and
// returns a PNG of the visible area.
type Capturer interface {
	Capture(ctx context.Context, htmlPath string, width, height int) ([]byte, error)
	Close() error
}

// Screenshot is the browser-based table converter.
//
// Viewport size and the enlarge counter live on the instance: a table that
// needed a bigger viewport makes later tables start from that size, and the
// enlarge budget is shared by every Render call.
type Screenshot struct {
	mu sync.Mutex

	capturer   Capturer
	page       *template.Template
	style      string
	fontSize   int
	center     bool
	limitCrop  bool
	encode     bool
	width      int
	height     int
	attempts   int
	maxEnlarge int
	log        logrus.FieldLogger
}

// ScreenshotOption configures a Screenshot.
type ScreenshotOption func(*Screenshot)

// WithFontSize sets the table font size in CSS pixels.
func WithFontSize(px int) ScreenshotOption {
	return func(s *Screenshot) { s.fontSize = px }
}

// WithCenter centers the table horizontally.
func WithCenter(center bool) ScreenshotOption {
	return func(s *Screenshot) { s.center = center }
}

// WithLimitCrop clamps left/right cropping to 22% of the width per side.
func WithLimitCrop(limit bool) ScreenshotOption {
	return func(s *Screenshot) { s.limitCrop = limit }
}

// WithBase64 controls base64 encoding of the returned PNG.
func WithBase64(encode bool) ScreenshotOption {
	return func(s *Screenshot) { s.encode = encode }
}

// WithViewport sets the initial viewport.
func WithViewport(width, height int) ScreenshotOption {
	return func(s *Screenshot) {
		if width > 0 {
			s.width = width
		}
		if height > 0 {
			s.height = height
		}
	}
}

// WithMaxEnlarge sets the enlarge budget.
func WithMaxEnlarge(n int) ScreenshotOption {
	return func(s *Screenshot) { s.maxEnlarge = n }
}

// WithAssets loads the table stylesheet and page template from loader.
func WithAssets(loader assets.AssetLoader) ScreenshotOption {
	return func(s *Screenshot) {
		if style, err := loader.LoadStyle(assets.TableStyle); err == nil {
			s.style = style
		}
		if tmpl, err := loader.LoadTemplate(assets.TableTemplate); err == nil {
			if t, err := template.New("table").Parse(tmpl); err == nil {
				s.page = t
			}
		}
	}
}

// WithScreenshotLogger sets the logger.
func WithScreenshotLogger(l logrus.FieldLogger) ScreenshotOption {
	return func(s *Screenshot) { s.log = l }
}

// NewScreenshot creates a Screenshot converter on top of capturer.
func NewScreenshot(capturer Capturer, opts ...ScreenshotOption) (*Screenshot, error) {
	s := &Screenshot{
		capturer:   capturer,
		fontSize:   DefaultTableFontSize,
		center:     true,
		limitCrop:  true,
		encode:     true,
		width:      DefaultViewportWidth,
		height:     DefaultViewportHeight,
		maxEnlarge: DefaultMaxEnlarge,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.OrDiscard(s.log)

	if s.page == nil || s.style == "" {
		def := assets.NewEmbeddedLoader()
		if s.style == "" {
			style, err := def.LoadStyle(assets.TableStyle)
			if err != nil {
				return nil, err
			}
			s.style = style
		}
		if s.page == nil {
			tmpl, err := def.LoadTemplate(assets.TableTemplate)
			if err != nil {
				return nil, err
			}
			if s.page, err = template.New("table").Parse(tmpl); err != nil {
				return nil, fmt.Errorf("parsing table template: %w", err)
			}
		}
	}
	return s, nil
}

// Viewport returns the current viewport size.
func (s *Screenshot) Viewport() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Attempts returns how many enlargements have been spent.
func (s *Screenshot) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// Render screenshots an HTML table and returns the cropped PNG.
func (s *Screenshot) Render(ctx context.Context, html string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, err := s.buildPage(html)
	if err != nil {
		return nil, err
	}
	path, cleanup, err := fileutil.WriteTempFile(page, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	img, err := s.fit(ctx, path)
	if err != nil {
		return nil, err
	}

	cropped := cropImage(img, cropBounds(img, s.limitCrop))

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if !s.encode {
		return buf.Bytes(), nil
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(buf.Len()))
	base64.StdEncoding.Encode(out, buf.Bytes())
	return out, nil
}

// Close releases the capturer.
func (s *Screenshot) Close() error {
	if s.capturer == nil {
		return nil
	}
	return s.capturer.Close()
}

func (s *Screenshot) buildPage(html string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Style    template.CSS
		FontSize int
		Center   bool
		Body     template.HTML
	}{
		Style:    template.CSS(s.style), // #nosec G203 -- embedded or user stylesheet
		FontSize: s.fontSize,
		Center:   s.center,
		Body:     template.HTML(html), // #nosec G203 -- notebook output rendered locally
	}
	if err := s.page.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering table page: %w", err)
	}
	return buf.String(), nil
}

// fit captures until the trailing 30 columns and rows are blank or the
// enlarge budget is spent. Over budget, the last capture is used as is.
func (s *Screenshot) fit(ctx context.Context, path string) (image.Image, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := s.capturer.Capture(ctx, path, s.width, s.height)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCapture, err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}

		cols, rows := whiteProfile(img)
		growWidth := !trailingBlank(cols)
		growHeight := !trailingBlank(rows)
		if !growWidth && !growHeight {
			return img, nil
		}
		if s.attempts >= s.maxEnlarge {
			s.log.WithFields(logrus.Fields{
				"width":  s.width,
				"height": s.height,
			}).Warn("table still touches the viewport edge, enlarge budget spent")
			return img, nil
		}

		s.attempts++
		if growWidth {
			s.width = int(float64(s.width) * enlargeFactor)
		}
		if growHeight {
			s.height = int(float64(s.height) * enlargeFactor)
		}
		s.log.WithFields(logrus.Fields{
			"width":   s.width,
			"height":  s.height,
			"attempt": s.attempts,
		}).Debug("enlarging viewport")
	}
}
