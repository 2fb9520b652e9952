package dataset

import (
	"math"
	"strings"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func loadFixture(t *testing.T, content string) *Table {
	t.Helper()
	dir := t.TempDir()
	path := writeFile(t, dir, "fixture.csv", content)
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return table
}

func TestSummarizeNumeric(t *testing.T) {
	table := loadFixture(t, "age,score\n10,1.5\n20,2.5\n30,3.5\n40,4.5\n")

	summary, err := Summarize(table)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if summary.Rows != 4 {
		t.Errorf("Rows = %d, want 4", summary.Rows)
	}
	if len(summary.Numeric) != 2 {
		t.Fatalf("len(Numeric) = %d, want 2", len(summary.Numeric))
	}

	// Reference values computed by hand: mean 25, sample std sqrt(500/3).
	age := summary.Numeric[0]
	if age.Name != "age" {
		t.Fatalf("Numeric[0].Name = %q, want age", age.Name)
	}
	if age.Count != 4 || age.Missing != 0 {
		t.Errorf("age count/missing = %d/%d, want 4/0", age.Count, age.Missing)
	}
	if !almostEqual(age.Mean, 25) {
		t.Errorf("age.Mean = %v, want 25", age.Mean)
	}
	if !almostEqual(age.Std, math.Sqrt(500.0/3.0)) {
		t.Errorf("age.Std = %v, want %v", age.Std, math.Sqrt(500.0/3.0))
	}
	if !almostEqual(age.Min, 10) || !almostEqual(age.Max, 40) {
		t.Errorf("age min/max = %v/%v, want 10/40", age.Min, age.Max)
	}
	if !almostEqual(age.Median, 25) {
		t.Errorf("age.Median = %v, want 25", age.Median)
	}
	// Quartile method details vary between libraries; only the ordering is pinned.
	if !(age.Min <= age.Q25 && age.Q25 <= age.Median && age.Median <= age.Q75 && age.Q75 <= age.Max) {
		t.Errorf("quartiles out of order: min=%v q25=%v median=%v q75=%v max=%v",
			age.Min, age.Q25, age.Median, age.Q75, age.Max)
	}
}

func TestSummarizeMissingValues(t *testing.T) {
	table := loadFixture(t, "x\n1\n\n3\nNA\n5\n")

	summary, err := Summarize(table)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(summary.Numeric) != 1 {
		t.Fatalf("len(Numeric) = %d, want 1", len(summary.Numeric))
	}
	x := summary.Numeric[0]
	if x.Count != 3 || x.Missing != 2 {
		t.Errorf("count/missing = %d/%d, want 3/2", x.Count, x.Missing)
	}
	if !almostEqual(x.Mean, 3) {
		t.Errorf("Mean = %v, want 3", x.Mean)
	}
}

func TestSummarizeCategorical(t *testing.T) {
	table := loadFixture(t, "city\nberlin\nparis\nberlin\nberlin\nparis\nrome\n")

	summary, err := Summarize(table)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(summary.Categorical) != 1 {
		t.Fatalf("len(Categorical) = %d, want 1", len(summary.Categorical))
	}
	city := summary.Categorical[0]
	if city.Distinct != 3 {
		t.Errorf("Distinct = %d, want 3", city.Distinct)
	}
	if len(city.Top) == 0 || city.Top[0].Value != "berlin" || city.Top[0].Count != 3 {
		t.Errorf("Top[0] = %+v, want {berlin 3}", city.Top)
	}
}

func TestSummarizeMixedColumnIsCategorical(t *testing.T) {
	// A column with any non-numeric cell must not be treated as numeric.
	table := loadFixture(t, "v\n1\n2\nthree\n")

	summary, err := Summarize(table)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(summary.Numeric) != 0 {
		t.Errorf("len(Numeric) = %d, want 0", len(summary.Numeric))
	}
	if len(summary.Categorical) != 1 {
		t.Errorf("len(Categorical) = %d, want 1", len(summary.Categorical))
	}
}

func TestSummaryMarshalIndent(t *testing.T) {
	table := loadFixture(t, "a\n1\n2\n")

	summary, err := Summarize(table)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	rendered, err := summary.MarshalIndent()
	if err != nil {
		t.Fatalf("MarshalIndent() error = %v", err)
	}
	for _, want := range []string{`"rows": 2`, `"name": "a"`, `"mean": 1.5`} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered summary missing %q:\n%s", want, rendered)
		}
	}
}
