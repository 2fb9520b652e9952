package tools

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"notebook-agent/config"
	"notebook-agent/dataset"
	apperrors "notebook-agent/errors"
)

// CSVPreviewTool returns the header and the first few rows of a CSV file so
// the model can ground generated code in exact column names.
type CSVPreviewTool struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewCSVPreviewTool(cfg *config.Config, logger *zap.Logger) *CSVPreviewTool {
	return &CSVPreviewTool{cfg: cfg, logger: logger}
}

func (t *CSVPreviewTool) Name() string { return "csv_preview" }

func (t *CSVPreviewTool) Description() string {
	return "Return the header row and the first rows of a CSV file verbatim. Use it to confirm exact column names and value formats before writing analysis code."
}

func (t *CSVPreviewTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"file_path": {
				"type": "string",
				"description": "CSV filename, relative to the data directory"
			}
		},
		"required": ["file_path"]
	}`)
}

func (t *CSVPreviewTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a fileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "csv_preview arguments: %v", err)
	}

	table, err := dataset.Load(resolveDataPath(t.cfg, a.FilePath))
	if err != nil {
		return "", err
	}

	limit := t.cfg.PreviewRows
	if limit <= 0 {
		limit = 5
	}
	if limit > table.RowCount() {
		limit = table.RowCount()
	}

	var b strings.Builder
	b.WriteString(strings.Join(table.Header, ","))
	b.WriteString("\n")
	for _, row := range table.Rows[:limit] {
		b.WriteString(strings.Join(row, ","))
		b.WriteString("\n")
	}

	t.logger.Debug("Previewed dataset",
		zap.String("file", a.FilePath),
		zap.Int("rows_shown", limit))

	return b.String(), nil
}
