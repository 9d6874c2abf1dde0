package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-nb2medium/internal/notebook"
)

// displayPriority is the order in which a rich output picks its representation.
var displayPriority = []string{
	"text/html",
	"text/latex",
	"image/svg+xml",
	"image/png",
	"image/jpeg",
	"text/markdown",
	"text/plain",
}

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// MarkdownExporter renders a preprocessed notebook as one markdown document.
// Image outputs are written to the resources image store as
// output_<cell>_<n>.<ext> and linked from the markdown.
type MarkdownExporter struct{}

// Export renders nb. Cells are separated by a blank line.
func (MarkdownExporter) Export(ctx context.Context, nb *notebook.Notebook, res *Resources) (string, error) {
	lang := nb.Language()
	var parts []string
	for i, cell := range nb.Cells {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		switch cell.CellType {
		case notebook.CellCode:
			block, err := exportCode(cell, i, lang, res)
			if err != nil {
				return "", err
			}
			parts = append(parts, block)
		default:
			parts = append(parts, strings.TrimRight(cell.Source.String(), "\n"))
		}
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}

func exportCode(cell *notebook.Cell, index int, lang string, res *Resources) (string, error) {
	var b strings.Builder
	b.WriteString("```" + lang + "\n")
	if src := strings.TrimRight(cell.Source.String(), "\n"); src != "" {
		b.WriteString(src + "\n")
	}
	b.WriteString("```")

	for j, out := range cell.Outputs {
		text, err := exportOutput(out, index, j, res)
		if err != nil {
			return "", err
		}
		if text != "" {
			b.WriteString("\n\n" + text)
		}
	}
	return b.String(), nil
}

func exportOutput(out *notebook.Output, cell, index int, res *Resources) (string, error) {
	switch out.OutputType {
	case notebook.OutputStream:
		return indent(out.Text.String()), nil
	case notebook.OutputError:
		return indent(ansiEscape.ReplaceAllString(strings.Join(out.Traceback, "\n"), "")), nil
	}
	if !out.HasData() {
		return "", nil
	}

	mime, value := pickRepresentation(out.Data)
	switch {
	case mime == "":
		return "", nil
	case strings.HasPrefix(mime, "image/"):
		return exportImage(mime, value, cell, index, res)
	case mime == "text/plain":
		return indent(value), nil
	default:
		return strings.TrimRight(value, "\n"), nil
	}
}

// pickRepresentation returns the highest-priority entry, or the first image
// entry of any other subtype.
func pickRepresentation(data notebook.MimeBundle) (string, string) {
	for _, mt := range displayPriority {
		if v, ok := data.Get(mt); ok {
			return mt, v
		}
	}
	if e, ok := data.FirstWithPrefix("image/"); ok {
		return e.MimeType, e.Value.String()
	}
	return "", ""
}

// exportImage stores an image output and links it. JPEG outputs keep the
// .jpg suffix here; FixJPEG renames them once the markdown is complete.
func exportImage(mime, value string, cell, index int, res *Resources) (string, error) {
	subtype := strings.TrimPrefix(mime, "image/")
	ext := subtype
	var data []byte
	switch subtype {
	case "svg+xml":
		ext = "svg"
		data = []byte(value)
	case "jpeg":
		ext = "jpg"
		fallthrough
	default:
		b, err := decodeBase64(value)
		if err != nil {
			return "", fmt.Errorf("%w: output %d of cell %d: %v", ErrOutputDecode, index, cell, err)
		}
		data = b
	}

	name := fmt.Sprintf("output_%d_%d.%s", cell, index, ext)
	res.Images.Put(name, data)
	return fmt.Sprintf("![%s](%s)", subtype, name), nil
}

func indent(text string) string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = "    " + l
		}
	}
	return strings.Join(lines, "\n")
}
