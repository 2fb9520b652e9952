// Package notebook models the Jupyter notebook (ipynb v4) document format
// and the pure transformations the agent performs on it. No I/O happens here.
package notebook

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	CellMarkdown = "markdown"
	CellCode     = "code"
	CellRaw      = "raw"

	nbFormat      = 4
	nbFormatMinor = 5
)

// CellOutput is a captured execution output on a code cell. The agent never
// fabricates outputs, but the type round-trips documents that already have them.
type CellOutput struct {
	OutputType     string                 `json:"output_type"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
	Text           interface{}            `json:"text,omitempty"`
	ExecutionCount *int                   `json:"execution_count,omitempty"`
	Name           string                 `json:"name,omitempty"`
	EName          string                 `json:"ename,omitempty"`
	EValue         string                 `json:"evalue,omitempty"`
	Traceback      []string               `json:"traceback,omitempty"`
}

// Cell is one notebook cell. Source is held as a single string internally and
// serialized as the nbformat line list.
type Cell struct {
	Type           string
	Source         string
	Metadata       map[string]interface{}
	Outputs        []CellOutput
	ExecutionCount *int
}

// NotebookMetadata is the top-level metadata block viewers expect.
type NotebookMetadata struct {
	Kernelspec   map[string]interface{} `json:"kernelspec,omitempty"`
	LanguageInfo map[string]interface{} `json:"language_info,omitempty"`
}

// Notebook is a complete ipynb document.
type Notebook struct {
	Cells         []Cell           `json:"cells"`
	Metadata      NotebookMetadata `json:"metadata"`
	NBFormat      int              `json:"nbformat"`
	NBFormatMinor int              `json:"nbformat_minor"`
}

// New returns an empty notebook with the standard python3 kernel metadata.
func New() *Notebook {
	return &Notebook{
		Cells: []Cell{},
		Metadata: NotebookMetadata{
			Kernelspec: map[string]interface{}{
				"display_name": "Python 3",
				"language":     "python",
				"name":         "python3",
			},
			LanguageInfo: map[string]interface{}{
				"codemirror_mode": map[string]interface{}{
					"name":    "ipython",
					"version": 3,
				},
				"file_extension":     ".py",
				"mimetype":           "text/x-python",
				"name":               "python",
				"nbconvert_exporter": "python",
				"pygments_lexer":     "ipython3",
				"version":            "3.8.0",
			},
		},
		NBFormat:      nbFormat,
		NBFormatMinor: nbFormatMinor,
	}
}

// splitSource converts a source string into the nbformat line list, each line
// keeping its trailing newline except the last.
func splitSource(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// joinSource accepts either wire form of source (string or line list).
func joinSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}
	var asLines []string
	if err := json.Unmarshal(raw, &asLines); err == nil {
		return strings.Join(asLines, ""), nil
	}
	return "", fmt.Errorf("cell source is neither string nor string list")
}

// markdownWire and codeWire keep the conditional fields straight: code cells
// must carry outputs and execution_count, markdown/raw cells must not.
type markdownWire struct {
	CellType string                 `json:"cell_type"`
	Metadata map[string]interface{} `json:"metadata"`
	Source   []string               `json:"source"`
}

type codeWire struct {
	CellType       string                 `json:"cell_type"`
	Metadata       map[string]interface{} `json:"metadata"`
	Source         []string               `json:"source"`
	Outputs        []CellOutput           `json:"outputs"`
	ExecutionCount *int                   `json:"execution_count"`
}

func (c Cell) MarshalJSON() ([]byte, error) {
	meta := c.Metadata
	if meta == nil {
		meta = map[string]interface{}{}
	}
	if c.Type == CellCode {
		outputs := c.Outputs
		if outputs == nil {
			outputs = []CellOutput{}
		}
		return json.Marshal(codeWire{
			CellType:       c.Type,
			Metadata:       meta,
			Source:         splitSource(c.Source),
			Outputs:        outputs,
			ExecutionCount: c.ExecutionCount,
		})
	}
	return json.Marshal(markdownWire{
		CellType: c.Type,
		Metadata: meta,
		Source:   splitSource(c.Source),
	})
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var aux struct {
		CellType       string                 `json:"cell_type"`
		Metadata       map[string]interface{} `json:"metadata"`
		Source         json.RawMessage        `json:"source"`
		Outputs        []CellOutput           `json:"outputs"`
		ExecutionCount *int                   `json:"execution_count"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	source, err := joinSource(aux.Source)
	if err != nil {
		return err
	}
	c.Type = aux.CellType
	c.Source = source
	c.Metadata = aux.Metadata
	c.Outputs = aux.Outputs
	c.ExecutionCount = aux.ExecutionCount
	return nil
}

// ToJSON serializes the notebook with indent=1, the same layout the original
// tooling wrote, so diffs against prior runs stay small.
func ToJSON(nb *Notebook) (string, error) {
	b, err := json.MarshalIndent(nb, "", " ")
	if err != nil {
		return "", fmt.Errorf("marshal notebook: %w", err)
	}
	return string(b), nil
}

// FromJSON parses an ipynb document.
func FromJSON(data string) (*Notebook, error) {
	var nb Notebook
	if err := json.Unmarshal([]byte(data), &nb); err != nil {
		return nil, fmt.Errorf("parse notebook json: %w", err)
	}
	if nb.NBFormat == 0 {
		return nil, fmt.Errorf("notebook json missing nbformat")
	}
	return &nb, nil
}
