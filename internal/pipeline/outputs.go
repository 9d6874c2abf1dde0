package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-nb2medium/internal/notebook"
)

// OutputPreprocessor reduces rich code outputs to what the markdown export
// can show: a single image mimetype, with styled HTML tables rasterized.
type OutputPreprocessor struct{}

var _ Preprocessor = (*OutputPreprocessor)(nil)

// Preprocess rewrites the outputs of every code cell of nb.
func (OutputPreprocessor) Preprocess(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	for i, cell := range nb.Cells {
		if cell.CellType != notebook.CellCode {
			continue
		}
		for j, out := range cell.Outputs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !out.HasData() {
				continue
			}
			if err := collapseOutput(ctx, out, res); err != nil {
				return fmt.Errorf("cell %d output %d: %w", i, j, err)
			}
		}
	}
	return nil
}

func collapseOutput(ctx context.Context, out *notebook.Output, res *Resources) error {
	if img, ok := out.Data.FirstWithPrefix("image"); ok {
		if img.MimeType == "image/gif" {
			img.MimeType = "image/png"
		}
		out.Data = notebook.MimeBundle{img}
		return nil
	}

	h, ok := out.Data.Get("text/html")
	if !ok || !IsStyledTable(h) {
		return nil
	}
	encoded, err := res.render(ctx, h)
	if err != nil {
		return err
	}
	out.Data = notebook.MimeBundle{{MimeType: "image/png", Value: notebook.MultilineString(encoded)}}
	return nil
}

// IsStyledTable reports whether an HTML output looks like a rendered
// dataframe: it closes both a table and a style element.
func IsStyledTable(h string) bool {
	return strings.Contains(h, "</table>") && strings.Contains(h, "</style>")
}
