// Package notebook models the nbformat v4 document consumed by the conversion pipeline.
//
// Only the fields the pipeline reads or mutates are modeled. Text fields accept both
// JSON encodings allowed by nbformat (a single string or a list of line strings),
// and mime bundles and attachments keep the key order of the source file.
package notebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Cell types.
const (
	CellMarkdown = "markdown"
	CellCode     = "code"
	CellRaw      = "raw"
)

// Output types.
const (
	OutputStream        = "stream"
	OutputDisplayData   = "display_data"
	OutputExecuteResult = "execute_result"
	OutputError         = "error"
)

// Sentinel errors for notebook loading.
var (
	ErrEmptyDocument = errors.New("notebook document is empty")
	ErrParse         = errors.New("failed to parse notebook")
	ErrRead          = errors.New("failed to read notebook")
)

// Notebook is an ordered sequence of cells plus document metadata.
type Notebook struct {
	Cells         []*Cell  `json:"cells"`
	Metadata      Metadata `json:"metadata"`
	NBFormat      int      `json:"nbformat"`
	NBFormatMinor int      `json:"nbformat_minor"`
}

// Metadata holds the notebook-level metadata used by the pipeline.
type Metadata struct {
	LanguageInfo LanguageInfo `json:"language_info"`
	KernelSpec   KernelSpec   `json:"kernelspec"`
	Title        string       `json:"title,omitempty"`
}

// LanguageInfo describes the kernel language.
type LanguageInfo struct {
	Name          string `json:"name"`
	FileExtension string `json:"file_extension"`
}

// KernelSpec describes the kernel that produced the outputs.
type KernelSpec struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

// Cell is one unit of the notebook.
type Cell struct {
	ID          string          `json:"id,omitempty"`
	CellType    string          `json:"cell_type"`
	Source      MultilineString `json:"source"`
	Attachments Attachments     `json:"attachments,omitempty"`
	Outputs     []*Output       `json:"outputs,omitempty"`
}

// Output is a single code cell output.
type Output struct {
	OutputType string          `json:"output_type"`
	Name       string          `json:"name,omitempty"`
	Text       MultilineString `json:"text,omitempty"`
	Data       MimeBundle      `json:"data,omitempty"`
	Ename      string          `json:"ename,omitempty"`
	Evalue     string          `json:"evalue,omitempty"`
	Traceback  []string        `json:"traceback,omitempty"`
}

// HasData reports whether the output carries a mime bundle.
func (o *Output) HasData() bool {
	return o != nil && o.Data != nil
}

// MultilineString is nbformat's "string or list of strings" text encoding.
// Values that are neither (e.g. application/json payloads) keep their raw JSON text.
type MultilineString string

// UnmarshalJSON accepts a string, a list of strings, or any other JSON value.
func (m *MultilineString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = MultilineString(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err == nil {
		*m = MultilineString(strings.Join(lines, ""))
		return nil
	}
	*m = MultilineString(strings.TrimSpace(string(data)))
	return nil
}

// String returns the joined text.
func (m MultilineString) String() string {
	return string(m)
}

// Load reads and parses a notebook file.
func Load(path string) (*Notebook, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided notebook path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return Parse(data)
}

// Parse decodes notebook JSON.
func Parse(data []byte) (*Notebook, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyDocument
	}
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	for i, c := range nb.Cells {
		if c == nil {
			return nil, fmt.Errorf("%w: cell %d is null", ErrParse, i)
		}
	}
	return &nb, nil
}

// Language returns the best known kernel language name.
func (nb *Notebook) Language() string {
	if nb.Metadata.LanguageInfo.Name != "" {
		return nb.Metadata.LanguageInfo.Name
	}
	return nb.Metadata.KernelSpec.Language
}

// CellID returns the nbformat 4.5 cell id, or a positional fallback.
func (c *Cell) CellID(index int) string {
	if c.ID != "" {
		return c.ID
	}
	return fmt.Sprintf("cell-%d", index)
}
