// Package preprocess applies the baseline cleaning a generated pipeline
// prescribes, as a preview: median imputation for numeric columns, mode
// imputation for categorical columns, duplicate-row removal. The input
// table is never mutated; every operation is recorded in a step log.
package preprocess

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"autopipe/domain/dataset"
)

// Step records one applied operation.
type Step struct {
	Column    string `json:"column,omitempty"`
	Operation string `json:"operation"`
	Detail    string `json:"detail"`
}

// Result is the cleaned table plus the log of what was done to it.
type Result struct {
	Table *dataset.Table `json:"-"`
	Rows  int            `json:"rows"`
	Steps []Step         `json:"steps"`
}

// Apply produces a cleaned copy of the table.
func Apply(t *dataset.Table) (*Result, error) {
	result := &Result{Steps: []Step{}}

	columns := make([]dataset.Column, 0, t.Cols())
	for _, col := range t.Columns() {
		cleaned, step := imputeColumn(col)
		if step != nil {
			result.Steps = append(result.Steps, *step)
		}
		columns = append(columns, cleaned)
	}

	imputed, err := dataset.NewTable(columns)
	if err != nil {
		return nil, err
	}

	deduped, removed, err := removeDuplicateRows(imputed)
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		result.Steps = append(result.Steps, Step{
			Operation: "remove_duplicates",
			Detail:    fmt.Sprintf("Removed %d duplicate rows", removed),
		})
	}

	result.Table = deduped
	result.Rows = deduped.Rows()
	return result, nil
}

// imputeColumn fills missing cells: median for numeric columns, mode for
// categorical ones. A column with no present values is returned untouched.
func imputeColumn(col dataset.Column) (dataset.Column, *Step) {
	missing := col.MissingCount()
	if missing == 0 {
		return col, nil
	}

	var fill dataset.Value
	var detail string
	if col.Kind == dataset.KindNumeric {
		values := col.Floats()
		if len(values) == 0 {
			return col, nil
		}
		median, err := stats.Median(values)
		if err != nil {
			return col, nil
		}
		fill = dataset.NumericValue(median)
		detail = fmt.Sprintf("Filled %d missing values with median %g", missing, median)
	} else {
		mode, ok := columnMode(col)
		if !ok {
			return col, nil
		}
		fill = dataset.CategoricalValue(mode)
		detail = fmt.Sprintf("Filled %d missing values with mode %q", missing, mode)
	}

	out := dataset.Column{Name: col.Name, Kind: col.Kind, Values: make([]dataset.Value, len(col.Values))}
	for i, v := range col.Values {
		if v.Missing {
			out.Values[i] = fill
		} else {
			out.Values[i] = v
		}
	}
	return out, &Step{Column: col.Name, Operation: "impute", Detail: detail}
}

// columnMode returns the most frequent non-missing value, ties broken on
// the value itself.
func columnMode(col dataset.Column) (string, bool) {
	counts := make(map[string]int)
	for _, v := range col.Values {
		if !v.Missing {
			counts[v.Raw]++
		}
	}
	if len(counts) == 0 {
		return "", false
	}
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)

	best := values[0]
	for _, v := range values[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, true
}

// removeDuplicateRows keeps the first occurrence of each row.
func removeDuplicateRows(t *dataset.Table) (*dataset.Table, int, error) {
	seen := make(map[string]struct{}, t.Rows())
	keep := make([]int, 0, t.Rows())
	for i := 0; i < t.Rows(); i++ {
		key := t.RowKey(i)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}

	removed := t.Rows() - len(keep)
	if removed == 0 {
		return t, 0, nil
	}

	columns := make([]dataset.Column, 0, t.Cols())
	for _, col := range t.Columns() {
		out := dataset.Column{Name: col.Name, Kind: col.Kind, Values: make([]dataset.Value, len(keep))}
		for j, i := range keep {
			out.Values[j] = col.Values[i]
		}
		columns = append(columns, out)
	}
	table, err := dataset.NewTable(columns)
	if err != nil {
		return nil, 0, err
	}
	return table, removed, nil
}
