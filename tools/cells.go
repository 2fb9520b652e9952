package tools

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	apperrors "notebook-agent/errors"
	"notebook-agent/notebook"
)

// Cell manipulation tools. Each takes an ipynb JSON document, applies one
// edit, and returns the updated document as JSON, so the model can refine a
// draft notebook before committing to the final plan. The document never
// touches disk here; persistence stays with Writer.

func parseNotebookArg(tool, raw string) (*notebook.Notebook, error) {
	nb, err := notebook.FromJSON(raw)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrModel, "%s notebook_json: %v", tool, err)
	}
	return nb, nil
}

func renderNotebook(nb *notebook.Notebook) (string, error) {
	out, err := notebook.ToJSON(nb)
	if err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "serialize notebook: %v", err)
	}
	return out, nil
}

const notebookJSONParam = `"notebook_json": {
			"type": "string",
			"description": "The ipynb formatted JSON string"
		}`

type EditCellTool struct {
	logger *zap.Logger
}

func NewEditCellTool(logger *zap.Logger) *EditCellTool {
	return &EditCellTool{logger: logger}
}

func (t *EditCellTool) Name() string { return "edit_cell" }

func (t *EditCellTool) Description() string {
	return "Edit a cell of a Jupyter notebook: replace its content and optionally change its type. Returns the updated ipynb JSON."
}

func (t *EditCellTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			` + notebookJSONParam + `,
			"cell_index": {"type": "integer", "description": "0-based index of the cell to edit"},
			"new_content": {"type": "string", "description": "New content for the cell"},
			"cell_type": {"type": "string", "description": "Optional new cell type: code, markdown or raw"}
		},
		"required": ["notebook_json", "cell_index", "new_content"]
	}`)
}

func (t *EditCellTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a struct {
		NotebookJSON string `json:"notebook_json"`
		CellIndex    int    `json:"cell_index"`
		NewContent   string `json:"new_content"`
		CellType     string `json:"cell_type"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "edit_cell arguments: %v", err)
	}
	nb, err := parseNotebookArg(t.Name(), a.NotebookJSON)
	if err != nil {
		return "", err
	}
	if err := nb.EditCell(a.CellIndex, a.NewContent, a.CellType); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "edit_cell: %v", err)
	}
	t.logger.Debug("Edited notebook cell", zap.Int("index", a.CellIndex))
	return renderNotebook(nb)
}

type InsertCellTool struct {
	logger *zap.Logger
}

func NewInsertCellTool(logger *zap.Logger) *InsertCellTool {
	return &InsertCellTool{logger: logger}
}

func (t *InsertCellTool) Name() string { return "insert_cell" }

func (t *InsertCellTool) Description() string {
	return "Insert a new cell at a position in a Jupyter notebook (position may equal the cell count to append). Returns the updated ipynb JSON."
}

func (t *InsertCellTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			` + notebookJSONParam + `,
			"position": {"type": "integer", "description": "0-based position for the new cell"},
			"content": {"type": "string", "description": "Content for the new cell"},
			"cell_type": {"type": "string", "description": "Cell type: code, markdown or raw (default code)"}
		},
		"required": ["notebook_json", "position", "content"]
	}`)
}

func (t *InsertCellTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a struct {
		NotebookJSON string `json:"notebook_json"`
		Position     int    `json:"position"`
		Content      string `json:"content"`
		CellType     string `json:"cell_type"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "insert_cell arguments: %v", err)
	}
	if a.CellType == "" {
		a.CellType = notebook.CellCode
	}
	nb, err := parseNotebookArg(t.Name(), a.NotebookJSON)
	if err != nil {
		return "", err
	}
	if err := nb.InsertCell(a.Position, a.Content, a.CellType, nil); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "insert_cell: %v", err)
	}
	t.logger.Debug("Inserted notebook cell", zap.Int("position", a.Position))
	return renderNotebook(nb)
}

type AppendCellTool struct {
	logger *zap.Logger
}

func NewAppendCellTool(logger *zap.Logger) *AppendCellTool {
	return &AppendCellTool{logger: logger}
}

func (t *AppendCellTool) Name() string { return "append_cell" }

func (t *AppendCellTool) Description() string {
	return "Append a new cell to the end of a Jupyter notebook. Returns the updated ipynb JSON."
}

func (t *AppendCellTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			` + notebookJSONParam + `,
			"content": {"type": "string", "description": "Content for the new cell"},
			"cell_type": {"type": "string", "description": "Cell type: code, markdown or raw (default code)"}
		},
		"required": ["notebook_json", "content"]
	}`)
}

func (t *AppendCellTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a struct {
		NotebookJSON string `json:"notebook_json"`
		Content      string `json:"content"`
		CellType     string `json:"cell_type"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "append_cell arguments: %v", err)
	}
	if a.CellType == "" {
		a.CellType = notebook.CellCode
	}
	nb, err := parseNotebookArg(t.Name(), a.NotebookJSON)
	if err != nil {
		return "", err
	}
	if err := nb.AppendCell(a.Content, a.CellType, nil); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "append_cell: %v", err)
	}
	return renderNotebook(nb)
}

type MergeCellsTool struct {
	logger *zap.Logger
}

func NewMergeCellsTool(logger *zap.Logger) *MergeCellsTool {
	return &MergeCellsTool{logger: logger}
}

func (t *MergeCellsTool) Name() string { return "merge_cells" }

func (t *MergeCellsTool) Description() string {
	return "Merge a consecutive range of cells of a Jupyter notebook into one cell of the first cell's type. Returns the updated ipynb JSON."
}

func (t *MergeCellsTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			` + notebookJSONParam + `,
			"start_index": {"type": "integer", "description": "Index of the first cell to merge (inclusive)"},
			"end_index": {"type": "integer", "description": "Index of the last cell to merge (inclusive)"}
		},
		"required": ["notebook_json", "start_index", "end_index"]
	}`)
}

func (t *MergeCellsTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a struct {
		NotebookJSON string `json:"notebook_json"`
		StartIndex   int    `json:"start_index"`
		EndIndex     int    `json:"end_index"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "merge_cells arguments: %v", err)
	}
	nb, err := parseNotebookArg(t.Name(), a.NotebookJSON)
	if err != nil {
		return "", err
	}
	if err := nb.MergeCells(a.StartIndex, a.EndIndex); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "merge_cells: %v", err)
	}
	t.logger.Debug("Merged notebook cells",
		zap.Int("start", a.StartIndex),
		zap.Int("end", a.EndIndex))
	return renderNotebook(nb)
}

type SwapCellsTool struct {
	logger *zap.Logger
}

func NewSwapCellsTool(logger *zap.Logger) *SwapCellsTool {
	return &SwapCellsTool{logger: logger}
}

func (t *SwapCellsTool) Name() string { return "swap_cells" }

func (t *SwapCellsTool) Description() string {
	return "Swap the positions of two cells in a Jupyter notebook. Returns the updated ipynb JSON."
}

func (t *SwapCellsTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			` + notebookJSONParam + `,
			"index1": {"type": "integer", "description": "Index of the first cell"},
			"index2": {"type": "integer", "description": "Index of the second cell"}
		},
		"required": ["notebook_json", "index1", "index2"]
	}`)
}

func (t *SwapCellsTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a struct {
		NotebookJSON string `json:"notebook_json"`
		Index1       int    `json:"index1"`
		Index2       int    `json:"index2"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "swap_cells arguments: %v", err)
	}
	nb, err := parseNotebookArg(t.Name(), a.NotebookJSON)
	if err != nil {
		return "", err
	}
	if err := nb.SwapCells(a.Index1, a.Index2); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "swap_cells: %v", err)
	}
	return renderNotebook(nb)
}

type NotebookFromMarkdownTool struct {
	logger *zap.Logger
}

func NewNotebookFromMarkdownTool(logger *zap.Logger) *NotebookFromMarkdownTool {
	return &NotebookFromMarkdownTool{logger: logger}
}

func (t *NotebookFromMarkdownTool) Name() string { return "notebook_from_markdown" }

func (t *NotebookFromMarkdownTool) Description() string {
	return "Create a Jupyter notebook of markdown cells from markdown content, splitting at headers. Returns the notebook as ipynb JSON."
}

func (t *NotebookFromMarkdownTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"markdown_content": {"type": "string", "description": "Markdown content to convert"}
		},
		"required": ["markdown_content"]
	}`)
}

func (t *NotebookFromMarkdownTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a struct {
		MarkdownContent string `json:"markdown_content"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "notebook_from_markdown arguments: %v", err)
	}
	nb := notebook.FromMarkdown(a.MarkdownContent)
	t.logger.Debug("Built notebook from markdown", zap.Int("cells", len(nb.Cells)))
	return renderNotebook(nb)
}

type ExtractCodeTool struct {
	logger *zap.Logger
}

func NewExtractCodeTool(logger *zap.Logger) *ExtractCodeTool {
	return &ExtractCodeTool{logger: logger}
}

func (t *ExtractCodeTool) Name() string { return "extract_code_from_notebook" }

func (t *ExtractCodeTool) Description() string {
	return "Extract the source of every code cell of a Jupyter notebook, in document order."
}

func (t *ExtractCodeTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			` + notebookJSONParam + `
		},
		"required": ["notebook_json"]
	}`)
}

func (t *ExtractCodeTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var a struct {
		NotebookJSON string `json:"notebook_json"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return "", apperrors.WrapErrorf(apperrors.ErrModel, "extract_code_from_notebook arguments: %v", err)
	}
	nb, err := parseNotebookArg(t.Name(), a.NotebookJSON)
	if err != nil {
		return "", err
	}
	return strings.Join(nb.ExtractCode(), "\n\n"), nil
}
