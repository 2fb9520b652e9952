package dataset

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "notebook-agent/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "people.csv", "name,age,city\nalice,34,berlin\nbob,28,paris\n")

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := len(table.Header), 3; got != want {
		t.Errorf("len(Header) = %d, want %d", got, want)
	}
	if got, want := table.RowCount(), 2; got != want {
		t.Errorf("RowCount() = %d, want %d", got, want)
	}

	col, ok := table.Column("age")
	if !ok {
		t.Fatal("Column(age) not found")
	}
	if col[0] != "34" || col[1] != "28" {
		t.Errorf("Column(age) = %v, want [34 28]", col)
	}

	if _, ok := table.Column("missing"); ok {
		t.Error("Column(missing) should not be found")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr func(error) bool
		errName string
	}{
		{
			name:    "missing_file",
			path:    filepath.Join(dir, "nope.csv"),
			wantErr: apperrors.IsDataAccess,
			errName: "ErrDataAccess",
		},
		{
			name:    "empty_file",
			path:    writeFile(t, dir, "empty.csv", ""),
			wantErr: apperrors.IsFormat,
			errName: "ErrFormat",
		},
		{
			name:    "ragged_rows",
			path:    writeFile(t, dir, "ragged.csv", "a,b\n1,2\n3,4,5\n"),
			wantErr: apperrors.IsFormat,
			errName: "ErrFormat",
		},
		{
			name:    "bare_quote",
			path:    writeFile(t, dir, "quote.csv", "a,b\n\"unterminated,2\n"),
			wantErr: apperrors.IsFormat,
			errName: "ErrFormat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !tt.wantErr(err) {
				t.Errorf("Load() error = %v, want %s", err, tt.errName)
			}
		})
	}
}
