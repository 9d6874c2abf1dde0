package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-nb2medium/internal/notebook"
)

// alignSpread maps a source column to rendered width.
const alignSpread = 1.35

// FormulaRenderer rasterizes a formatted formula to PNG bytes.
type FormulaRenderer interface {
	Render(formula string) ([]byte, error)
}

// LatexPreprocessor replaces markdown cells made of a single display formula
// with an attached image of that formula.
type LatexPreprocessor struct {
	renderer FormulaRenderer
}

var _ Preprocessor = (*LatexPreprocessor)(nil)

// NewLatexPreprocessor creates a LatexPreprocessor.
func NewLatexPreprocessor(r FormulaRenderer) *LatexPreprocessor {
	return &LatexPreprocessor{renderer: r}
}

// Preprocess converts every LaTeX-only cell of nb.
func (p *LatexPreprocessor) Preprocess(ctx context.Context, nb *notebook.Notebook, res *Resources) error {
	for i, cell := range nb.Cells {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !IsLatexCell(cell) {
			continue
		}

		img, err := p.renderer.Render(FormatLatex(cell.Source.String()))
		if err != nil {
			return fmt.Errorf("%w: cell %d: %v", ErrLatexRender, i, err)
		}

		name := cell.CellID(i) + ".png"
		cell.Attachments = notebook.Attachments{{
			Name:   name,
			Bundle: notebook.MimeBundle{{MimeType: "image/png", Value: notebook.MultilineString(base64.StdEncoding.EncodeToString(img))}},
		}}
		cell.Source = notebook.MultilineString(fmt.Sprintf("![%s](attachment:%s)", name, name))
		res.log().WithField("cell", i).Debug("rendered latex cell")
	}
	return nil
}

// IsLatexCell reports whether a markdown cell is exactly one $$ display block.
// A single line must be longer than four characters and start and end with
// $$. Several lines need $$ at the start of the first and the end of the last.
func IsLatexCell(c *notebook.Cell) bool {
	if c == nil || c.CellType != notebook.CellMarkdown {
		return false
	}
	src := strings.TrimRight(c.Source.String(), "\n")
	if src == "" {
		return false
	}
	lines := strings.Split(src, "\n")
	if len(lines) == 1 {
		return len(src) > 4 && strings.HasPrefix(src, "$$") && strings.HasSuffix(src, "$$")
	}
	first, last := lines[0], lines[len(lines)-1]
	return len(first) > 1 && strings.HasPrefix(first, "$$") &&
		len(last) > 1 && strings.HasSuffix(last, "$$")
}

// FormatLatex strips the display delimiters from a LaTeX cell source.
func FormatLatex(src string) string {
	src = strings.TrimRight(src, "\n")
	if strings.Contains(src, "\n") {
		return FormatMultilineLatex(strings.Split(src, "\n"))
	}
	return FormatSingleLineLatex(src)
}

// FormatSingleLineLatex removes the enclosing $$ and at most one space on
// each side.
func FormatSingleLineLatex(s string) string {
	if len(s) < 4 {
		return s
	}
	s = s[2 : len(s)-2]
	s = strings.TrimPrefix(s, " ")
	return strings.TrimSuffix(s, " ")
}

// FormatMultilineLatex flattens a multi-line display block into lines that
// are each wrapped in inline math delimiters.
//
// Line continuations and bare $$ lines are dropped. Inside an align
// environment the wrapper tokens go away and every later "&=" line is
// indented to sit under the first one. Other environments are left as is.
func FormatMultilineLatex(lines []string) string {
	var lt []string
	for _, l := range lines {
		l = strings.TrimRight(l, "\r")
		l = strings.TrimSuffix(l, `\\`)
		if strings.TrimSpace(l) == "$$" {
			continue
		}
		lt = append(lt, l)
	}
	if len(lt) == 0 {
		return ""
	}
	lt[0] = strings.TrimPrefix(lt[0], "$$")
	lt[len(lt)-1] = strings.TrimSuffix(lt[len(lt)-1], "$$")

	if hasAlignEnvironment(lt) {
		lt = dropAlignWrappers(lt)
		if len(lt) == 0 {
			return ""
		}
		lt = alignEquals(lt)
	}

	if len(lt) == 1 {
		return lt[0]
	}
	out := make([]string, len(lt))
	for i, l := range lt {
		switch i {
		case 0:
			out[i] = l + "$"
		case len(lt) - 1:
			out[i] = "$" + l
		default:
			out[i] = "$" + l + "$"
		}
	}
	return strings.Join(out, "\n")
}

// alignWrapperPattern matches the opening or closing token of an
// align-style environment.
var alignWrapperPattern = regexp.MustCompile(`\\(?:begin|end)\{(?:align|aligned|alignat|eqnarray)\*?\}(?:\{\d+\})?`)

func hasAlignEnvironment(lines []string) bool {
	for _, l := range lines {
		if alignWrapperPattern.MatchString(l) {
			return true
		}
	}
	return false
}

// dropAlignWrappers removes the align wrapper tokens. Content sharing a line
// with a token is kept; a line left empty goes away.
func dropAlignWrappers(lines []string) []string {
	var out []string
	for _, l := range lines {
		if !alignWrapperPattern.MatchString(l) {
			out = append(out, l)
			continue
		}
		if rest := strings.TrimSpace(alignWrapperPattern.ReplaceAllString(l, "")); rest != "" {
			out = append(out, rest)
		}
	}
	return out
}

// alignEquals turns "&=" into "=" and pads each line after the first "&="
// line with floor(1.35 * column) spaces, column being the byte offset of
// that first "&=".
func alignEquals(lines []string) []string {
	col := -1
	out := make([]string, len(lines))
	for i, l := range lines {
		idx := strings.Index(l, "&=")
		switch {
		case idx < 0:
			out[i] = l
		case col < 0:
			col = idx
			out[i] = strings.Replace(l, "&=", "=", -1)
		default:
			pad := strings.Repeat(" ", AlignOffset(col))
			out[i] = pad + strings.TrimSpace(strings.Replace(l, "&=", "=", -1))
		}
	}
	return out
}

// AlignOffset is the indent given to continuation "&=" lines when the first
// one sits at column col.
func AlignOffset(col int) int {
	return int(float64(col) * alignSpread)
}
