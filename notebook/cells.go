package notebook

import (
	"fmt"
	"regexp"
	"strings"
)

// Cell manipulation helpers. These mutate the document in place and validate
// indices and cell types the same way downstream viewers would.

func validCellType(t string) bool {
	return t == CellCode || t == CellMarkdown || t == CellRaw
}

func (nb *Notebook) checkIndex(i int) error {
	if i < 0 || i >= len(nb.Cells) {
		return fmt.Errorf("cell index %d out of range, notebook has %d cells", i, len(nb.Cells))
	}
	return nil
}

// EditCell replaces the content of the cell at index, optionally changing its
// type. Switching away from code drops outputs and execution count.
func (nb *Notebook) EditCell(index int, content string, newType string) error {
	if err := nb.checkIndex(index); err != nil {
		return err
	}
	nb.Cells[index].Source = content
	if newType == "" {
		return nil
	}
	if !validCellType(newType) {
		return fmt.Errorf("invalid cell type %q", newType)
	}
	nb.Cells[index].Type = newType
	if newType != CellCode {
		nb.Cells[index].Outputs = nil
		nb.Cells[index].ExecutionCount = nil
	}
	return nil
}

// AppendCell adds a new cell at the end of the notebook.
func (nb *Notebook) AppendCell(content, cellType string, metadata map[string]interface{}) error {
	return nb.InsertCell(len(nb.Cells), content, cellType, metadata)
}

// InsertCell adds a new cell at position (0-based, may equal len for append).
func (nb *Notebook) InsertCell(position int, content, cellType string, metadata map[string]interface{}) error {
	if !validCellType(cellType) {
		return fmt.Errorf("invalid cell type %q", cellType)
	}
	if position < 0 || position > len(nb.Cells) {
		return fmt.Errorf("position %d out of range, valid range is 0 to %d", position, len(nb.Cells))
	}
	cell := Cell{Type: cellType, Source: content, Metadata: metadata}
	nb.Cells = append(nb.Cells, Cell{})
	copy(nb.Cells[position+1:], nb.Cells[position:])
	nb.Cells[position] = cell
	return nil
}

// MergeCells collapses the inclusive range [start, end] into a single cell of
// the first cell's type, joining sources with a newline.
func (nb *Notebook) MergeCells(start, end int) error {
	if err := nb.checkIndex(start); err != nil {
		return err
	}
	if end < start {
		return fmt.Errorf("end index %d is before start index %d", end, start)
	}
	if err := nb.checkIndex(end); err != nil {
		return err
	}

	parts := make([]string, 0, end-start+1)
	for _, cell := range nb.Cells[start : end+1] {
		if cell.Source != "" {
			parts = append(parts, cell.Source)
		}
	}
	merged := Cell{
		Type:     nb.Cells[start].Type,
		Source:   strings.Join(parts, "\n"),
		Metadata: nb.Cells[start].Metadata,
	}

	nb.Cells = append(nb.Cells[:start+1], nb.Cells[end+1:]...)
	nb.Cells[start] = merged
	return nil
}

// SwapCells exchanges the cells at the two indices.
func (nb *Notebook) SwapCells(i, j int) error {
	if err := nb.checkIndex(i); err != nil {
		return err
	}
	if err := nb.checkIndex(j); err != nil {
		return err
	}
	nb.Cells[i], nb.Cells[j] = nb.Cells[j], nb.Cells[i]
	return nil
}

// ExtractCode returns the source of every code cell in document order.
func (nb *Notebook) ExtractCode() []string {
	var code []string
	for _, cell := range nb.Cells {
		if cell.Type == CellCode {
			code = append(code, cell.Source)
		}
	}
	return code
}

var markdownHeaderRe = regexp.MustCompile(`(?m)^#+\s`)

// FromMarkdown builds a notebook of markdown cells by splitting the content
// at headers. Content without headers becomes a single cell.
func FromMarkdown(content string) *Notebook {
	nb := New()
	if strings.TrimSpace(content) == "" {
		return nb
	}

	locs := markdownHeaderRe.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		nb.Cells = append(nb.Cells, Cell{Type: CellMarkdown, Source: content})
		return nb
	}

	// Leading text before the first header is its own cell.
	if locs[0][0] > 0 {
		if lead := strings.TrimSpace(content[:locs[0][0]]); lead != "" {
			nb.Cells = append(nb.Cells, Cell{Type: CellMarkdown, Source: lead})
		}
	}
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		section := strings.TrimRight(content[loc[0]:end], "\n")
		nb.Cells = append(nb.Cells, Cell{Type: CellMarkdown, Source: section})
	}
	return nb
}
