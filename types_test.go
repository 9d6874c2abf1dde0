package nb2medium

import (
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestResult_Image(t *testing.T) {
	t.Parallel()

	r := &Result{Images: []Image{{Name: "a.png", Data: []byte("A")}, {Name: "b.svg", Data: []byte("B")}}}

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"a.png", "A", true},
		{"b.svg", "B", true},
		{"c.png", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := r.Image(tt.name)
			if ok != tt.wantOK || string(got) != tt.want {
				t.Errorf("Image(%q) = %q, %v, want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()

	client := &http.Client{Timeout: time.Second}
	log := logrus.New()

	c := &Converter{}
	for _, opt := range []Option{
		WithTableConversion("plot"),
		WithChromePath("/opt/chrome"),
		WithTableFontSize(18),
		WithCenterTables(false),
		WithLimitCrop(false),
		WithAssetPath("/assets"),
		WithGist(nil, GistOptions{Threshold: 3, PerBlock: true}),
		WithLogger(log),
		WithHTTPClient(client),
	} {
		opt(c)
	}

	cfg := c.cfg
	if cfg.conversion != "plot" || cfg.chromePath != "/opt/chrome" || cfg.fontSize != 18 {
		t.Errorf("table options = %+v", cfg)
	}
	if cfg.center || cfg.limitCrop {
		t.Error("center and limitCrop should be disabled")
	}
	if cfg.assetPath != "/assets" || cfg.httpClient != client || c.log != log {
		t.Error("asset path, http client or logger not set")
	}
	if !cfg.gistEnabled || cfg.gist.Threshold != 3 || !cfg.gist.PerBlock {
		t.Errorf("gist options = %+v", cfg.gist)
	}
}
