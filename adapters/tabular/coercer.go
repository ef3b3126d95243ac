package tabular

import (
	"fmt"
	"strconv"
	"strings"

	"autopipe/domain/dataset"
)

// NumericThreshold is the share of non-missing values that must parse as
// numbers for a column to get numeric storage.
const NumericThreshold = 0.8

// missingMarkers are the raw strings treated as missing cells,
// case-insensitively, after trimming.
var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"none": true,
	"nan":  true,
}

// TypeCoercer converts raw string columns into typed dataset columns with
// deterministic rules.
type TypeCoercer struct{}

// NewTypeCoercer creates a coercer.
func NewTypeCoercer() *TypeCoercer {
	return &TypeCoercer{}
}

// CoerceColumns turns header names plus row-major raw cells into typed
// columns. A column becomes numeric when more than NumericThreshold of its
// non-missing values parse as numbers; unparseable stragglers in a numeric
// column become missing cells.
func (c *TypeCoercer) CoerceColumns(headers []string, rows [][]string) []dataset.Column {
	headers = cleanHeaders(headers)
	columns := make([]dataset.Column, len(headers))

	for colIdx, name := range headers {
		raw := make([]string, len(rows))
		for rowIdx, row := range rows {
			if colIdx < len(row) {
				raw[rowIdx] = strings.TrimSpace(row[colIdx])
			}
		}
		columns[colIdx] = c.coerceColumn(name, raw)
	}
	return columns
}

// coerceColumn decides a single column's storage type and builds its cells.
func (c *TypeCoercer) coerceColumn(name string, raw []string) dataset.Column {
	present, numeric := 0, 0
	for _, s := range raw {
		if IsMissing(s) {
			continue
		}
		present++
		if _, ok := ParseNumeric(s); ok {
			numeric++
		}
	}

	kind := dataset.KindCategorical
	if present > 0 && float64(numeric)/float64(present) > NumericThreshold {
		kind = dataset.KindNumeric
	}

	values := make([]dataset.Value, len(raw))
	for i, s := range raw {
		switch {
		case IsMissing(s):
			values[i] = dataset.MissingValue()
		case kind == dataset.KindNumeric:
			if v, ok := ParseNumeric(s); ok {
				values[i] = dataset.Value{Num: v, Raw: s}
			} else {
				values[i] = dataset.MissingValue()
			}
		default:
			values[i] = dataset.CategoricalValue(s)
		}
	}

	return dataset.Column{Name: name, Kind: kind, Values: values}
}

// IsMissing reports whether a trimmed raw cell counts as missing.
func IsMissing(s string) bool {
	return missingMarkers[strings.ToLower(s)]
}

// ParseNumeric parses a raw cell as a float, tolerating currency symbols,
// thousands separators and percent signs.
func ParseNumeric(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// cleanHeaders normalizes column names: trims whitespace, replaces control
// characters, names blanks, and suffixes duplicates.
func cleanHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))

	for i, h := range headers {
		name := strings.TrimSpace(h)
		for _, bad := range []string{"\n", "\r", "\t"} {
			name = strings.ReplaceAll(name, bad, "_")
		}
		if name == "" || strings.EqualFold(name, "unnamed") {
			name = "Column"
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n)
		}
		if _, ok := seen[name]; !ok {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}
