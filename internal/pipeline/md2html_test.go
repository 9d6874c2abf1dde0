package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-nb2medium/internal/notebook"
)

// ---------------------------------------------------------------------------
// TestTableHTML - Table fragment rendering
// ---------------------------------------------------------------------------

func TestTableHTML(t *testing.T) {
	t.Parallel()

	got, err := TableHTML("| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("TableHTML() error = %v", err)
	}
	if !strings.HasPrefix(got, "<div>") || !strings.HasSuffix(got, "</div>") {
		t.Errorf("TableHTML() = %q, want <div> wrapper", got)
	}
	for _, want := range []string{"<table>", "<th>a</th>", "<td>2</td>"} {
		if !strings.Contains(got, want) {
			t.Errorf("TableHTML() missing %q in %q", want, got)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPreviewConverter - Standalone preview page
// ---------------------------------------------------------------------------

func TestPreviewConverter_ToHTML(t *testing.T) {
	t.Parallel()

	store := notebook.NewImageStore()
	store.Put("output_1_0.png", []byte("PNG"))

	c, err := NewPreviewConverter(nil, WithPreviewTitle("My <Post>"), WithPreviewImages(store))
	if err != nil {
		t.Fatalf("NewPreviewConverter() error = %v", err)
	}

	md := "# Intro\n\n```python\nprint(1)\n```\n\n![png](output_1_0.png)\n"
	got, err := c.ToHTML(context.Background(), md)
	if err != nil {
		t.Fatalf("ToHTML() error = %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>My &lt;Post&gt;</title>",
		`<h1 id="intro">Intro</h1>`,
		`class="chroma"`,
		".chroma",
		"data:image/png;base64," + b64("PNG"),
	} {
		if !strings.Contains(got, want) {
			t.Errorf("ToHTML() missing %q", want)
		}
	}
}

func TestPreviewConverter_Canceled(t *testing.T) {
	t.Parallel()

	c, err := NewPreviewConverter(nil)
	if err != nil {
		t.Fatalf("NewPreviewConverter() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.ToHTML(ctx, "# x"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

// ---------------------------------------------------------------------------
// TestInlineImages - data: URI rewrite
// ---------------------------------------------------------------------------

func TestInlineImages(t *testing.T) {
	t.Parallel()

	store := notebook.NewImageStore()
	store.Put("a.png", []byte("A"))
	store.Put("my img.jpeg", []byte("J"))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare name", `<p><img src="a.png" alt="x"/></p>`, "data:image/png;base64," + b64("A")},
		{"escaped saved path", `<img src="post_files/my%20img.jpeg"/>`, "data:image/jpeg;base64," + b64("J")},
		{"remote untouched", `<img src="https://cdn.example.com/a.png"/>`, `src="https://cdn.example.com/a.png"`},
		{"unknown untouched", `<img src="b.png"/>`, `src="b.png"`},
		{"full document", `<!DOCTYPE html><html><body><img src="a.png"/></body></html>`, "data:image/png;base64," + b64("A")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := InlineImages(tt.in, store)
			if err != nil {
				t.Fatalf("InlineImages() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("InlineImages() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestInlineImages_EmptyStore(t *testing.T) {
	t.Parallel()

	in := `<img src="a.png">`
	if got, _ := InlineImages(in, notebook.NewImageStore()); got != in {
		t.Errorf("InlineImages() = %q, want input unchanged", got)
	}
}
