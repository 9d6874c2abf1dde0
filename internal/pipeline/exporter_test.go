package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"slices"
	"testing"

	"github.com/alnah/go-nb2medium/internal/notebook"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// ---------------------------------------------------------------------------
// TestMarkdownExporter - Document layout
// ---------------------------------------------------------------------------

func TestMarkdownExporter(t *testing.T) {
	t.Parallel()

	nb := &notebook.Notebook{
		Metadata: notebook.Metadata{LanguageInfo: notebook.LanguageInfo{Name: "python"}},
		Cells: []*notebook.Cell{
			mdCell("# Title\n"),
			codeCell(&notebook.Output{OutputType: notebook.OutputStream, Name: "stdout", Text: "a\n\nb\n"}),
			codeCell(&notebook.Output{
				OutputType: notebook.OutputExecuteResult,
				Data:       bundle("text/plain", "42"),
			}),
			codeCell(&notebook.Output{
				OutputType: notebook.OutputDisplayData,
				Data:       bundle("text/plain", "<Figure>", "image/png", b64("PNG")),
			}),
			codeCell(&notebook.Output{
				OutputType: notebook.OutputError,
				Traceback:  []string{"\x1b[0;31mValueError\x1b[0m", "bad"},
			}),
		},
	}
	res := NewResources("", "post", nil, nil)
	res.Images = notebook.NewImageStore()

	got, err := (MarkdownExporter{}).Export(context.Background(), nb, res)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	want := "# Title\n\n" +
		"```python\nx\n```\n\n    a\n\n    b\n\n" +
		"```python\nx\n```\n\n    42\n\n" +
		"```python\nx\n```\n\n![png](output_3_0.png)\n\n" +
		"```python\nx\n```\n\n    ValueError\n    bad\n"
	if got != want {
		t.Errorf("Export() =\n%q\nwant\n%q", got, want)
	}
	if data, ok := res.Images.Get("output_3_0.png"); !ok || string(data) != "PNG" {
		t.Errorf("image store = %v", res.Images.Names())
	}
}

func TestMarkdownExporter_ImageNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     notebook.MimeBundle
		wantLink string
		wantFile string
		wantData string
	}{
		{"jpeg keeps jpg", bundle("image/jpeg", b64("J")), "![jpeg](output_0_0.jpg)", "output_0_0.jpg", "J"},
		{"svg stored raw", bundle("image/svg+xml", "<svg/>"), "![svg+xml](output_0_0.svg)", "output_0_0.svg", "<svg/>"},
		{"gif by prefix", bundle("image/gif", b64("G")), "![gif](output_0_0.gif)", "output_0_0.gif", "G"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nb := &notebook.Notebook{Cells: []*notebook.Cell{
				codeCell(&notebook.Output{OutputType: notebook.OutputDisplayData, Data: tt.data}),
			}}
			res := NewResources("", "", nil, nil)
			res.Images = notebook.NewImageStore()

			got, err := (MarkdownExporter{}).Export(context.Background(), nb, res)
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			if want := "```\nx\n```\n\n" + tt.wantLink + "\n"; got != want {
				t.Errorf("Export() = %q, want %q", got, want)
			}
			if data, ok := res.Images.Get(tt.wantFile); !ok || string(data) != tt.wantData {
				t.Errorf("image %s = %q (present %v)", tt.wantFile, data, ok)
			}
		})
	}
}

func TestMarkdownExporter_Errors(t *testing.T) {
	t.Parallel()

	t.Run("bad base64", func(t *testing.T) {
		t.Parallel()
		nb := &notebook.Notebook{Cells: []*notebook.Cell{
			codeCell(&notebook.Output{Data: bundle("image/png", "!!not base64!!")}),
		}}
		res := NewResources("", "", nil, nil)
		res.Images = notebook.NewImageStore()
		_, err := (MarkdownExporter{}).Export(context.Background(), nb, res)
		if !errors.Is(err, ErrOutputDecode) {
			t.Errorf("error = %v, want ErrOutputDecode", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		nb := &notebook.Notebook{Cells: []*notebook.Cell{mdCell("x")}}
		_, err := (MarkdownExporter{}).Export(ctx, nb, NewResources("", "", nil, nil))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestFixJPEG - Extension rewrite
// ---------------------------------------------------------------------------

func TestFixJPEG(t *testing.T) {
	t.Parallel()

	store := notebook.NewImageStore()
	store.Put("output_1_0.jpg", []byte("J"))
	store.Put("output_2_0.png", []byte("P"))
	store.Put("output_3_0.jpg", []byte("K"))

	md := "![jpeg](output_1_0.jpg) text ![jpeg](output_3_0.jpg)\n![photo](keep.jpg)"
	got := FixJPEG(md, store)

	want := "![jpeg](output_1_0.jpeg) text ![jpeg](output_3_0.jpeg)\n![photo](keep.jpg)"
	if got != want {
		t.Errorf("FixJPEG() = %q, want %q", got, want)
	}
	wantNames := []string{"output_1_0.jpeg", "output_2_0.png", "output_3_0.jpeg"}
	if names := store.Names(); !slices.Equal(names, wantNames) {
		t.Errorf("names = %v, want %v", names, wantNames)
	}
	if data, _ := store.Get("output_3_0.jpeg"); string(data) != "K" {
		t.Errorf("renamed payload = %q", data)
	}
}

func TestUnreferencedImages(t *testing.T) {
	t.Parallel()

	store := notebook.NewImageStore()
	store.Put("a.png", nil)
	store.Put("b.png", nil)

	got := UnreferencedImages("![](a.png)", store)
	if !slices.Equal(got, []string{"b.png"}) {
		t.Errorf("UnreferencedImages() = %v", got)
	}
}
