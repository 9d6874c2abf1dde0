package render

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"reflect"
	"testing"
)

const pandasTable = `<table border="1" class="dataframe">
  <thead>
    <tr style="text-align: right;">
      <th></th>
      <th colspan="2">price</th>
    </tr>
    <tr>
      <th>ticker</th>
      <th>open</th>
      <th>close</th>
    </tr>
  </thead>
  <tbody>
    <tr><th>AAPL</th><td>1.1234567</td><td>2</td></tr>
    <tr><th>MSFT</th><td>3.5</td><td>4</td></tr>
  </tbody>
</table>`

// ---------------------------------------------------------------------------
// TestParseHTMLTable
// ---------------------------------------------------------------------------

func TestParseHTMLTable_MultiLevelHeader(t *testing.T) {
	t.Parallel()

	tbl, err := parseHTMLTable(pandasTable)
	if err != nil {
		t.Fatalf("parseHTMLTable() error = %v", err)
	}

	if want := []string{"price\nopen", "price\nclose"}; !reflect.DeepEqual(tbl.columns, want) {
		t.Errorf("columns = %q, want %q", tbl.columns, want)
	}
	if tbl.indexName != "ticker" {
		t.Errorf("indexName = %q", tbl.indexName)
	}
	if want := []string{"AAPL", "MSFT"}; !reflect.DeepEqual(tbl.index, want) {
		t.Errorf("index = %q, want %q", tbl.index, want)
	}
	if want := [][]string{{"1.1234567", "2"}, {"3.5", "4"}}; !reflect.DeepEqual(tbl.rows, want) {
		t.Errorf("rows = %q, want %q", tbl.rows, want)
	}
	if !tbl.numericColumn(0) || !tbl.hasIndex() || !tbl.hasHeader() {
		t.Error("expected numeric column, index and header")
	}
}

func TestParseHTMLTable_PlainRows(t *testing.T) {
	t.Parallel()

	tbl, err := parseHTMLTable(`<table><tr><th>A</th><th>B</th></tr><tr><td>x y</td><td>1</td></tr></table>`)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"A", "B"}; !reflect.DeepEqual(tbl.columns, want) {
		t.Errorf("columns = %q", tbl.columns)
	}
	if tbl.hasIndex() {
		t.Error("hasIndex() = true for table without row headers")
	}
	if tbl.numericColumn(0) {
		t.Error("text column reported numeric")
	}
}

func TestParseHTMLTable_NoTable(t *testing.T) {
	t.Parallel()

	if _, err := parseHTMLTable("<p>nothing</p>"); !errors.Is(err, ErrNoTable) {
		t.Errorf("error = %v, want ErrNoTable", err)
	}
	if ContainsTable("<p>nothing</p>") {
		t.Error("ContainsTable() = true")
	}
	if !ContainsTable(pandasTable) {
		t.Error("ContainsTable() = false")
	}
}

// ---------------------------------------------------------------------------
// TestPlotTable_Render
// ---------------------------------------------------------------------------

func TestPlotTable_Render(t *testing.T) {
	t.Parallel()

	p := NewPlotTable()
	out, err := p.Render(context.Background(), pandasTable)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	img := decodeBase64PNG(t, out)
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dx() > DefaultPlotWidth {
		t.Errorf("width = %d, want within (0,%d]", b.Dx(), DefaultPlotWidth)
	}
	// The crop keeps at least the central 90% of the canvas.
	if b.Dx() < DefaultPlotWidth*90/100 {
		t.Errorf("width = %d, want >= 90%% of canvas", b.Dx())
	}
	if b.Dy() <= 0 {
		t.Error("empty height")
	}
}

func TestPlotTable_RawPNGAndErrors(t *testing.T) {
	t.Parallel()

	p := NewPlotTable(WithPlotBase64(false), WithPlotWidth(800), WithPlotFontSize(12))
	out, err := p.Render(context.Background(), `<table><tr><td>only</td></tr></table>`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Errorf("raw output is not a PNG: %v", err)
	}

	if _, err := p.Render(context.Background(), "<div></div>"); !errors.Is(err, ErrNoTable) {
		t.Errorf("error = %v, want ErrNoTable", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Render(ctx, pandasTable); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if err := p.Close(); err != nil {
		t.Error(err)
	}
}

func TestPlotTable_Layout(t *testing.T) {
	t.Parallel()

	p := NewPlotTable()
	tests := []struct {
		ncols    int
		wantSize float64
		wantWrap int
	}{
		{2, DefaultPlotFontSize, 16},
		{6, 20, 14},
		{9, 18, 12},
		{12, 18, 12},
	}
	for _, tt := range tests {
		lay := p.layout(tt.ncols)
		if lay.fontSize != tt.wantSize || lay.wrap != tt.wantWrap {
			t.Errorf("layout(%d) = size %v wrap %d, want %v/%d", tt.ncols, lay.fontSize, lay.wrap, tt.wantSize, tt.wantWrap)
		}
	}
}

// ---------------------------------------------------------------------------
// TestTextHelpers
// ---------------------------------------------------------------------------

func TestTruncateDecimals(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"1.1234567": "1.12345",
		"3.5":       "3.5",
		"42":        "42",
		"-0.000001": "-0.00000",
	}
	for in, want := range tests {
		if got := truncateDecimals(in); got != want {
			t.Errorf("truncateDecimals(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWrapText(t *testing.T) {
	t.Parallel()

	got := wrapText("the quick brown fox jumps", 10)
	want := []string{"the quick", "brown fox", "jumps"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("wrapText() = %q, want %q", got, want)
	}

	if got := wrapText("supercalifragilistic", 5); len(got) != 1 {
		t.Errorf("long word was broken: %q", got)
	}
	if got := wrapText("", 5); !reflect.DeepEqual(got, []string{""}) {
		t.Errorf("wrapText(empty) = %q", got)
	}
	if got := wrapLabel("price\nopen", 12); !reflect.DeepEqual(got, []string{"price", "open"}) {
		t.Errorf("wrapLabel() = %q", got)
	}
}

func TestColumnEdges(t *testing.T) {
	t.Parallel()

	got := columnEdges(100, 300, []int{1, 2})
	if want := []int{100, 200, 400}; !reflect.DeepEqual(got, want) {
		t.Errorf("columnEdges() = %v, want %v", got, want)
	}
}
