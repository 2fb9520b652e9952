package dataset

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	apperrors "notebook-agent/errors"
)

// ColumnStats holds descriptive statistics for one numeric column.
// Std is the sample standard deviation (ddof=1), matching pandas describe().
type ColumnStats struct {
	Name    string              `json:"name"`
	Count   int                 `json:"count"`
	Missing int                 `json:"missing"`
	Mean    float64             `json:"mean"`
	Std     float64             `json:"std"`
	Min     float64             `json:"min"`
	Q25     float64             `json:"q25"`
	Median  float64             `json:"median"`
	Q75     float64             `json:"q75"`
	Max     float64             `json:"max"`
	Markers DistributionMarkers `json:"distribution"`
}

// ValueCount is one category level with its frequency.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CategoricalStats describes a non-numeric column.
type CategoricalStats struct {
	Name     string       `json:"name"`
	Count    int          `json:"count"`
	Missing  int          `json:"missing"`
	Distinct int          `json:"distinct"`
	Top      []ValueCount `json:"top"`
}

// Summary is the immutable per-run description of a dataset, produced once
// and handed to the reasoning loop.
type Summary struct {
	File        string             `json:"file"`
	Rows        int                `json:"rows"`
	Columns     []string           `json:"columns"`
	Numeric     []ColumnStats      `json:"numeric"`
	Categorical []CategoricalStats `json:"categorical"`
}

const topCategories = 10

// Summarize computes descriptive statistics for every column of the table.
func Summarize(t *Table) (*Summary, error) {
	if len(t.Header) == 0 {
		return nil, apperrors.WrapError(apperrors.ErrFormat, "table has no columns")
	}

	summary := &Summary{
		File:    filepath.Base(t.Path),
		Rows:    t.RowCount(),
		Columns: append([]string(nil), t.Header...),
	}

	for _, name := range t.Header {
		raw, _ := t.Column(name)
		if values, missing, ok := numericColumn(raw); ok {
			cs, err := describeNumeric(name, values, missing)
			if err != nil {
				return nil, apperrors.WrapErrorf(apperrors.ErrFormat, "describe column %s: %v", name, err)
			}
			summary.Numeric = append(summary.Numeric, cs)
			continue
		}
		summary.Categorical = append(summary.Categorical, describeCategorical(name, raw))
	}

	return summary, nil
}

func describeNumeric(name string, values []float64, missing int) (ColumnStats, error) {
	data := stats.Float64Data(values)

	mean, err := data.Mean()
	if err != nil {
		return ColumnStats{}, err
	}
	min, err := data.Min()
	if err != nil {
		return ColumnStats{}, err
	}
	max, err := data.Max()
	if err != nil {
		return ColumnStats{}, err
	}
	median, err := data.Median()
	if err != nil {
		return ColumnStats{}, err
	}

	// Sample std is undefined for a single observation; report 0 like a
	// spreadsheet would rather than failing the whole summary.
	std := 0.0
	if len(values) > 1 {
		std, err = stats.StandardDeviationSample(data)
		if err != nil {
			return ColumnStats{}, err
		}
	}

	q25, err := stats.Percentile(data, 25)
	if err != nil {
		q25 = median
	}
	q75, err := stats.Percentile(data, 75)
	if err != nil {
		q75 = median
	}

	return ColumnStats{
		Name:    name,
		Count:   len(values),
		Missing: missing,
		Mean:    mean,
		Std:     std,
		Min:     min,
		Q25:     q25,
		Median:  median,
		Q75:     q75,
		Max:     max,
		Markers: AnalyzeDistribution(values, mean, std),
	}, nil
}

func describeCategorical(name string, raw []string) CategoricalStats {
	counts := make(map[string]int)
	missing := 0
	for _, cell := range raw {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			missing++
			continue
		}
		counts[cell]++
	}

	top := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		top = append(top, ValueCount{Value: v, Count: c})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Value < top[j].Value
	})
	if len(top) > topCategories {
		top = top[:topCategories]
	}

	return CategoricalStats{
		Name:     name,
		Count:    len(raw) - missing,
		Missing:  missing,
		Distinct: len(counts),
		Top:      top,
	}
}

// MarshalIndent renders the summary as indented JSON for the model context.
func (s *Summary) MarshalIndent() (string, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrFormat, "marshal summary")
	}
	return string(b), nil
}
