package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"unicode/utf8"
)

// Plot table defaults.
const (
	DefaultPlotFontSize = 22
	DefaultPlotWidth    = 2000

	plotPadX     = 14
	plotPadY     = 10
	plotMargin   = 40
	minColWeight = 7
	decimals     = 5
)

var (
	bandColor  = color.RGBA{0xf5, 0xf5, 0xf5, 0xff}
	plotInk    = color.RGBA{0x00, 0x00, 0x00, 0xff}
	plotPaper  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	headerRule = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// PlotTable paints HTML tables in-process, in the manner of a static
// plotting-library table: banded rows, bold header, right-aligned cells.
type PlotTable struct {
	fontSize float64
	width    int
	encode   bool
}

// PlotOption configures a PlotTable.
type PlotOption func(*PlotTable)

// WithPlotFontSize sets the base font size in points.
func WithPlotFontSize(pt float64) PlotOption {
	return func(p *PlotTable) { p.fontSize = pt }
}

// WithPlotWidth sets the canvas width in pixels.
func WithPlotWidth(px int) PlotOption {
	return func(p *PlotTable) { p.width = px }
}

// WithPlotBase64 controls base64 encoding of the returned PNG.
func WithPlotBase64(encode bool) PlotOption {
	return func(p *PlotTable) { p.encode = encode }
}

// NewPlotTable creates a PlotTable.
func NewPlotTable(opts ...PlotOption) *PlotTable {
	p := &PlotTable{fontSize: DefaultPlotFontSize, width: DefaultPlotWidth, encode: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render implements the table converter contract.
func (p *PlotTable) Render(ctx context.Context, src string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := parseHTMLTable(src)
	if err != nil {
		return nil, err
	}

	img, err := p.paint(t)
	if err != nil {
		return nil, err
	}
	cropped := cropImage(img, plotCropBounds(img))

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if !p.encode {
		return buf.Bytes(), nil
	}
	return []byte(base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

// Close is a no-op; PlotTable holds no external resources.
func (p *PlotTable) Close() error { return nil }

type plotLayout struct {
	left     int
	width    int
	fontSize float64
	wrap     int
}

func (p *PlotTable) layout(ncols int) plotLayout {
	frac := min(float64(ncols)*0.13, 1)
	left := (1-frac)/2 + 0.03
	size := p.fontSize
	if left+frac > 0.9 {
		left, frac = 0.05, 0.95
		if ncols > 7 {
			size = 18
		} else {
			size = 20
		}
	}
	return plotLayout{
		left:     int(left * float64(p.width)),
		width:    int(frac * float64(p.width)),
		fontSize: size,
		wrap:     12 + max(0, 10-ncols)/2,
	}
}

// plotCell is one painted cell: its wrapped lines and whether it is bold.
type plotCell struct {
	lines []string
	bold  bool
}

func (p *PlotTable) paint(t *tableData) (*image.RGBA, error) {
	ncols := len(t.columns)
	lay := p.layout(ncols)

	regular, err := loadRegular(lay.fontSize)
	if err != nil {
		return nil, err
	}
	bold, err := loadBold(lay.fontSize)
	if err != nil {
		return nil, err
	}

	withIndex := t.hasIndex()
	withHeader := t.hasHeader() || t.indexName != ""

	// Column order: optional index column, then data columns.
	var weights []int
	if withIndex {
		w := max(minColWeight, utf8.RuneCountInString(t.indexName))
		for _, v := range t.index {
			w = max(w, utf8.RuneCountInString(v))
		}
		weights = append(weights, w)
	}
	numeric := make([]bool, ncols)
	for c := 0; c < ncols; c++ {
		numeric[c] = t.numericColumn(c)
		w := max(minColWeight, utf8.RuneCountInString(t.columns[c]))
		for _, row := range t.rows {
			w = max(w, utf8.RuneCountInString(row[c]))
		}
		weights = append(weights, w)
	}

	var grid [][]plotCell
	if withHeader {
		var hdr []plotCell
		if withIndex {
			hdr = append(hdr, plotCell{lines: wrapLabel(t.indexName, lay.wrap), bold: true})
		}
		for _, c := range t.columns {
			hdr = append(hdr, plotCell{lines: wrapLabel(c, lay.wrap), bold: true})
		}
		grid = append(grid, hdr)
	}
	for r, row := range t.rows {
		var cells []plotCell
		if withIndex {
			cells = append(cells, plotCell{lines: wrapText(t.index[r], lay.wrap)})
		}
		for c, v := range row {
			if numeric[c] {
				cells = append(cells, plotCell{lines: []string{truncateDecimals(v)}})
			} else {
				cells = append(cells, plotCell{lines: wrapText(v, lay.wrap)})
			}
		}
		grid = append(grid, cells)
	}

	colX := columnEdges(lay.left, lay.width, weights)
	lineH := regular.px() * 13 / 10
	rowH := make([]int, len(grid))
	height := 2 * plotMargin
	for i, cells := range grid {
		lines := 1
		for _, c := range cells {
			lines = max(lines, len(c.lines))
		}
		rowH[i] = lines*lineH + 2*plotPadY
		height += rowH[i]
	}

	img := image.NewRGBA(image.Rect(0, 0, p.width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(plotPaper), image.Point{}, draw.Src)

	y := plotMargin
	for i, cells := range grid {
		bodyRow := i
		if withHeader {
			bodyRow = i - 1
		}
		if bodyRow >= 0 && bodyRow%2 == 0 {
			band := image.Rect(colX[0], y, colX[len(colX)-1], y+rowH[i])
			draw.Draw(img, band, image.NewUniform(bandColor), image.Point{}, draw.Src)
		}

		for c, cell := range cells {
			face := regular
			if cell.bold {
				face = bold
			}
			fc := newContext(img, face, plotInk)
			baseline := y + plotPadY + face.ascent()
			for _, line := range cell.lines {
				x := colX[c+1] - plotPadX - face.width(line)
				x = max(x, colX[c]+plotPadX)
				if _, err := drawString(fc, line, x, baseline); err != nil {
					return nil, fmt.Errorf("drawing cell: %w", err)
				}
				baseline += lineH
			}
		}

		y += rowH[i]
		if withHeader && i == 0 {
			rule := image.Rect(colX[0], y-1, colX[len(colX)-1], y)
			draw.Draw(img, rule, image.NewUniform(headerRule), image.Point{}, draw.Src)
		}
	}
	return img, nil
}

// columnEdges splits width into len(weights) columns proportional to weights.
// It returns len(weights)+1 x positions.
func columnEdges(left, width int, weights []int) []int {
	total := 0
	for _, w := range weights {
		total += w
	}
	edges := make([]int, len(weights)+1)
	edges[0] = left
	acc := 0
	for i, w := range weights {
		acc += w
		edges[i+1] = left + width*acc/total
	}
	return edges
}

// plotCropBounds finds the bounding box of ink darker than light gray, keeps
// at least the central 90% of the width, then pads 20px before and 10px after.
func plotCropBounds(img *image.RGBA) image.Rectangle {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	x0, y0, x1, y1 := w, h, 0, 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.RGBAAt(x, y)
			gray := (299*int(c.R) + 587*int(c.G) + 114*int(c.B)) / 1000
			if (255-gray)*2-100 > 0 {
				x0, y0 = min(x0, x), min(y0, y)
				x1, y1 = max(x1, x+1), max(y1, y+1)
			}
		}
	}
	if x1 <= x0 || y1 <= y0 {
		return b
	}

	x0 = min(x0, w*5/100)
	x1 = max(x1, w*95/100)
	x0 = max(0, x0-20)
	x1 = min(w, x1+10)
	y0 = max(0, y0-20)
	y1 = min(h, y1+10)
	return image.Rect(x0, y0, x1, y1)
}

// truncateDecimals keeps at most five digits after the first decimal point.
func truncateDecimals(s string) string {
	parts := strings.Split(s, ".")
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts[1]) > decimals {
		parts[1] = parts[1][:decimals]
	}
	return strings.Join(parts, ".")
}

// wrapText wraps on word boundaries at width runes without breaking words.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(w) <= width {
			line += " " + w
			continue
		}
		lines = append(lines, line)
		line = w
	}
	return append(lines, line)
}

// wrapLabel wraps every level of a multi-level label.
func wrapLabel(s string, width int) []string {
	var out []string
	for _, level := range strings.Split(s, "\n") {
		out = append(out, wrapText(level, width)...)
	}
	return out
}
