package render

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tableData is an HTML table flattened into labels and string cells.
type tableData struct {
	indexName string
	columns   []string
	index     []string
	rows      [][]string
}

type htmlCell struct {
	text   string
	header bool
}

type htmlRow struct {
	cells []htmlCell
	thead bool
}

// parseHTMLTable reads the first <table> of src.
//
// Header rows are the rows of <thead>, or without one the leading rows made
// only of <th>. Leading <th> cells of body rows form the row index, as in
// pandas' to_html output. Multi-level headers are joined with a newline.
func parseHTMLTable(src string) (*tableData, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	table := findFirst(doc, atom.Table)
	if table == nil {
		return nil, ErrNoTable
	}

	var rows []htmlRow
	collectRows(table, false, &rows)
	if len(rows) == 0 {
		return nil, ErrNoTable
	}

	nHeader := 0
	for _, r := range rows {
		if !r.thead && !allHeader(r.cells) {
			break
		}
		nHeader++
	}
	header, body := rows[:nHeader], rows[nHeader:]

	nIndex := 0
	if len(body) > 0 {
		for _, c := range body[0].cells {
			if !c.header {
				break
			}
			nIndex++
		}
	}

	ncols := 0
	for _, r := range rows {
		ncols = max(ncols, len(r.cells)-nIndex)
	}
	if ncols <= 0 {
		return nil, ErrNoTable
	}

	t := &tableData{columns: make([]string, ncols)}
	var indexParts []string
	for _, r := range header {
		for i, c := range r.cells {
			if c.text == "" {
				continue
			}
			if i < nIndex {
				indexParts = append(indexParts, c.text)
				continue
			}
			col := i - nIndex
			if t.columns[col] == "" {
				t.columns[col] = c.text
			} else {
				t.columns[col] += "\n" + c.text
			}
		}
	}
	t.indexName = strings.Join(indexParts, " / ")

	for _, r := range body {
		var idx []string
		values := make([]string, ncols)
		for i, c := range r.cells {
			if i < nIndex {
				idx = append(idx, c.text)
				continue
			}
			values[i-nIndex] = c.text
		}
		t.index = append(t.index, strings.Join(idx, " "))
		t.rows = append(t.rows, values)
	}
	return t, nil
}

func (t *tableData) hasIndex() bool {
	for _, v := range t.index {
		if v != "" {
			return true
		}
	}
	return t.indexName != ""
}

func (t *tableData) hasHeader() bool {
	for _, c := range t.columns {
		if c != "" {
			return true
		}
	}
	return false
}

// numericColumn reports whether every non-empty value of column c parses as a number.
func (t *tableData) numericColumn(c int) bool {
	seen := false
	for _, row := range t.rows {
		v := strings.TrimSpace(row[c])
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func collectRows(n *html.Node, inHead bool, out *[]htmlRow) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Thead:
			collectRows(c, true, out)
		case atom.Tbody, atom.Tfoot:
			collectRows(c, false, out)
		case atom.Tr:
			*out = append(*out, htmlRow{cells: rowCells(c), thead: inHead})
		}
	}
}

func rowCells(tr *html.Node) []htmlCell {
	var cells []htmlCell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		cell := htmlCell{text: textContent(c), header: c.DataAtom == atom.Th}
		span := 1
		for _, a := range c.Attr {
			if a.Key == "colspan" {
				if n, err := strconv.Atoi(strings.TrimSpace(a.Val)); err == nil && n > 1 {
					span = n
				}
			}
		}
		for i := 0; i < span; i++ {
			cells = append(cells, cell)
		}
	}
	return cells
}

func allHeader(cells []htmlCell) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !c.header {
			return false
		}
	}
	return true
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Br {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// ContainsTable reports whether src has a <table> element.
func ContainsTable(src string) bool {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return false
	}
	return findFirst(doc, atom.Table) != nil
}
