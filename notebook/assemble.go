package notebook

import (
	"fmt"
	"strings"
)

// PlanCell is one cell of a notebook plan as produced by the model.
type PlanCell struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Plan is the structured final answer of the reasoning loop: an ordered list
// of cell specifications plus an optional title.
type Plan struct {
	Title string     `json:"title"`
	Cells []PlanCell `json:"cells"`
}

// Validate checks that the plan can be assembled into a notebook.
func (p *Plan) Validate() error {
	if len(p.Cells) == 0 {
		return fmt.Errorf("plan has no cells")
	}
	for i, cell := range p.Cells {
		switch cell.Type {
		case CellMarkdown, CellCode:
		default:
			return fmt.Errorf("cell %d has invalid type %q", i, cell.Type)
		}
		if strings.TrimSpace(cell.Content) == "" {
			return fmt.Errorf("cell %d has empty content", i)
		}
	}
	return nil
}

// Assemble converts a plan into a notebook document. Pure transformation:
// cell order is preserved, no I/O.
func Assemble(plan *Plan) (*Notebook, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	nb := New()
	if title := strings.TrimSpace(plan.Title); title != "" {
		nb.Cells = append(nb.Cells, Cell{Type: CellMarkdown, Source: "# " + title})
	}
	for _, cell := range plan.Cells {
		nb.Cells = append(nb.Cells, Cell{Type: cell.Type, Source: cell.Content})
	}
	return nb, nil
}
