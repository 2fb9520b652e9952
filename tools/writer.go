package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notebook-agent/config"
	apperrors "notebook-agent/errors"
	"notebook-agent/notebook"
)

// Writer persists assembled notebooks under the output directory. Filenames
// carry the unix timestamp plus a uuid fragment, so two runs started within
// the same clock tick still get distinct names.
type Writer struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewWriter(cfg *config.Config, logger *zap.Logger) *Writer {
	return &Writer{cfg: cfg, logger: logger}
}

func notebookFileName(now time.Time) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("notebook_%d_%s.ipynb", now.Unix(), suffix)
}

// Write serializes the notebook and writes it to disk, returning the path.
// Permission and disk failures map to ErrWrite.
func (w *Writer) Write(nb *notebook.Notebook) (string, error) {
	data, err := notebook.ToJSON(nb)
	if err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrWrite, "serialize notebook: %v", err)
	}

	if err := os.MkdirAll(w.cfg.OutputDir, 0o755); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrWrite, "create output dir %s: %v", w.cfg.OutputDir, err)
	}

	path := filepath.Join(w.cfg.OutputDir, notebookFileName(time.Now()))
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrWrite, "write %s: %v", path, err)
	}

	w.logger.Info("Notebook saved",
		zap.String("path", path),
		zap.Int("cells", len(nb.Cells)))

	return path, nil
}
