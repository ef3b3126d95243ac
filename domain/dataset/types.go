package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnKind is the declared storage type of a column after coercion.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
)

// Value is a single cell. Raw always holds the original string form;
// Num is only meaningful for numeric columns with Missing == false.
type Value struct {
	Missing bool
	Num     float64
	Raw     string
}

// NumericValue builds a present numeric cell.
func NumericValue(v float64) Value {
	return Value{Num: v, Raw: strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")}
}

// CategoricalValue builds a present categorical cell.
func CategoricalValue(s string) Value {
	return Value{Raw: s}
}

// MissingValue builds a missing cell.
func MissingValue() Value {
	return Value{Missing: true}
}

// Identity returns the canonical form used for distinct-value counting
// and duplicate detection. Numeric cells render from the parsed number,
// so "1", "1.0" and "1.00" are one value; categorical cells use the raw
// text.
func (v Value) Identity(kind ColumnKind) string {
	if kind == KindNumeric && !v.Missing {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Raw
}

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string
	Kind   ColumnKind
	Values []Value
}

// Len returns the number of cells including missing ones.
func (c Column) Len() int {
	return len(c.Values)
}

// MissingCount returns the number of missing cells.
func (c Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.Missing {
			n++
		}
	}
	return n
}

// Floats returns the non-missing numeric values in row order.
// For categorical columns it returns nil.
func (c Column) Floats() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Missing {
			out = append(out, v.Num)
		}
	}
	return out
}

// Strings returns the non-missing raw values in row order.
func (c Column) Strings() []string {
	out := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Missing {
			out = append(out, v.Raw)
		}
	}
	return out
}

// UniqueCount returns the number of distinct non-missing values.
func (c Column) UniqueCount() int {
	seen := make(map[string]struct{}, len(c.Values))
	for _, v := range c.Values {
		if v.Missing {
			continue
		}
		seen[v.Identity(c.Kind)] = struct{}{}
	}
	return len(seen)
}

// Table is an immutable-by-convention tabular dataset: ordered rows,
// named typed columns. Profiling treats it as read-only input.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewTable builds a table from columns. All columns must have equal length
// and unique names.
func NewTable(columns []Column) (*Table, error) {
	t := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		t.index[col.Name] = i
		if i == 0 {
			t.rows = len(col.Values)
		} else if len(col.Values) != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, len(col.Values), t.rows)
		}
	}
	return t, nil
}

// Rows returns the row count.
func (t *Table) Rows() int {
	return t.rows
}

// Cols returns the column count.
func (t *Table) Cols() int {
	return len(t.columns)
}

// Columns returns the columns in declaration order.
func (t *Table) Columns() []Column {
	return t.columns
}

// ColumnNames returns names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// RowKey renders row i into a canonical string, used for duplicate detection.
// Each cell carries a presence flag after the unit separator, so a missing
// cell can never collide with any literal value.
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for _, col := range t.columns {
		v := col.Values[i]
		if v.Missing {
			b.WriteString("\x1f0")
		} else {
			b.WriteString("\x1f1")
			b.WriteString(v.Identity(col.Kind))
		}
	}
	return b.String()
}
