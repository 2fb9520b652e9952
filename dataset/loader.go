package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "notebook-agent/errors"
)

// Table is a CSV file loaded into memory. Header names are taken verbatim
// from the first row; cells stay as raw strings until a column is classified.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
}

// Load reads a header-row CSV file into a Table.
// A missing or unreadable file maps to ErrDataAccess, unparsable or empty
// content maps to ErrFormat.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrDataAccess, "open %s: %v", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Keep the default FieldsPerRecord check: ragged rows are a format error.

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.WrapErrorf(apperrors.ErrFormat, "%s is empty", path)
	}
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrFormat, "read header of %s: %v", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrFormat, "read row %d of %s: %v", len(rows)+2, path, err)
		}
		rows = append(rows, record)
	}

	return &Table{Path: path, Header: header, Rows: rows}, nil
}

// RowCount returns the number of data rows (header excluded).
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// Column returns the raw cells of the named column.
func (t *Table) Column(name string) ([]string, bool) {
	idx := -1
	for i, h := range t.Header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	col := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			col = append(col, row[idx])
		} else {
			col = append(col, "")
		}
	}
	return col, true
}

// numericColumn parses a raw column into floats, counting missing cells.
// A column qualifies as numeric when every non-empty cell parses.
func numericColumn(raw []string) (values []float64, missing int, ok bool) {
	values = make([]float64, 0, len(raw))
	for _, cell := range raw {
		cell = strings.TrimSpace(cell)
		if cell == "" || strings.EqualFold(cell, "na") || strings.EqualFold(cell, "nan") {
			missing++
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, 0, false
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, 0, false
	}
	return values, missing, true
}
