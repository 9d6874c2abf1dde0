//go:build bench

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// BenchmarkPreviewToHTML benchmarks the article preview rendering.
func BenchmarkPreviewToHTML(b *testing.B) {
	converter, err := NewPreviewConverter(nil)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	inputs := []struct {
		name    string
		content string
	}{
		{"single_cell", "# Analysis\n\nLoading the data."},
		{"short_article", articleMarkdown(10, 4)},
		{"long_cells", articleMarkdown(10, 40)},
		{"long_article", articleMarkdown(200, 4)},
	}

	for _, input := range inputs {
		b.Run(input.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for range b.N {
				if _, err := converter.ToHTML(ctx, input.content); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkPreviewSyntaxHighlighting benchmarks chroma highlighting for
// common notebook kernels.
func BenchmarkPreviewSyntaxHighlighting(b *testing.B) {
	converter, err := NewPreviewConverter(nil)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	for _, lang := range []string{"python", "r", "julia", "scala"} {
		content := fencedCode(lang, 50)
		b.Run(lang, func(b *testing.B) {
			b.ReportAllocs()
			for range b.N {
				if _, err := converter.ToHTML(ctx, content); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkTableHTML benchmarks the table fragment fed to table converters.
func BenchmarkTableHTML(b *testing.B) {
	table := dataFrameMarkdown(20, 6)
	b.ReportAllocs()
	for range b.N {
		if _, err := TableHTML(table); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSegment benchmarks the gist segmentation pass by cell count.
func BenchmarkSegment(b *testing.B) {
	for _, cells := range []int{10, 100, 500} {
		md := articleMarkdown(cells, 12)
		b.Run(fmt.Sprintf("cells_%d", cells), func(b *testing.B) {
			b.ReportAllocs()
			for range b.N {
				segment(md, DefaultGistThreshold)
			}
		})
	}
}

// fencedCode returns a fenced block of lines statements.
func fencedCode(lang string, lines int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "```%s\n", lang)
	for i := range lines {
		fmt.Fprintf(&sb, "x%d = compute(df, step=%d)\n", i, i)
	}
	sb.WriteString("```\n")
	return sb.String()
}

// dataFrameMarkdown returns a pipe table shaped like a printed data frame.
func dataFrameMarkdown(rows, cols int) string {
	var sb strings.Builder
	sb.WriteString("| |")
	for c := range cols {
		fmt.Fprintf(&sb, " col_%d |", c)
	}
	sb.WriteString("\n|---|")
	sb.WriteString(strings.Repeat("---:|", cols))
	sb.WriteString("\n")
	for r := range rows {
		fmt.Fprintf(&sb, "| %d |", r)
		for c := range cols {
			fmt.Fprintf(&sb, " %.3f |", float64(r*cols+c)/7)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// articleMarkdown mimics an exported notebook: alternating prose, code
// cells of codeLines lines, indented stream output and an occasional image.
func articleMarkdown(cells, codeLines int) string {
	var sb strings.Builder
	sb.WriteString("# Notebook\n\n")
	for i := range cells {
		fmt.Fprintf(&sb, "Step %d fits the model on a new sample.\n\n", i+1)
		sb.WriteString(fencedCode("python", codeLines))
		sb.WriteString("\n    loss: 0.0123\n    accuracy: 0.98\n\n")
		if i%4 == 0 {
			fmt.Fprintf(&sb, "![png](output_%d_0.png)\n\n", i)
		}
	}
	return sb.String()
}
