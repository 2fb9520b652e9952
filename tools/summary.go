package tools

import (
	"context"
	"encoding/json"
	"path/filepath"

	"go.uber.org/zap"

	"notebook-agent/config"
	"notebook-agent/dataset"
	apperrors "notebook-agent/errors"
)

// CSVSummaryTool computes per-column descriptive statistics for a CSV file.
// Read-only: no side effects beyond opening the file.
type CSVSummaryTool struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewCSVSummaryTool(cfg *config.Config, logger *zap.Logger) *CSVSummaryTool {
	return &CSVSummaryTool{cfg: cfg, logger: logger}
}

func (t *CSVSummaryTool) Name() string { return "csv_summary" }

func (t *CSVSummaryTool) Description() string {
	return "Read a CSV file and return per-column summary statistics (count, mean, std, min, quartiles, max for numeric columns; value counts for categorical columns) plus distribution markers. Apply this before deciding which analyses or hypothesis tests belong in the notebook."
}

func (t *CSVSummaryTool) Parameters() json.RawMessage {
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

type fileArgs struct {
	FilePath string `json:"file_path"`
}

// resolveDataPath keeps relative paths inside the configured data directory.
func resolveDataPath(cfg *config.Config, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.DataDir, p)
}

func (t *CSVSummaryTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a fileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "csv_summary arguments: %v", err)
	}

	path := resolveDataPath(t.cfg, a.FilePath)
	table, err := dataset.Load(path)
	if err != nil {
		return "", err
	}

	summary, err := dataset.Summarize(table)
	if err != nil {
		return "", err
	}

	t.logger.Info("Summarized dataset",
		zap.String("file", summary.File),
		zap.Int("rows", summary.Rows),
		zap.Int("numeric_columns", len(summary.Numeric)),
		zap.Int("categorical_columns", len(summary.Categorical)))

	return summary.MarshalIndent()
}
