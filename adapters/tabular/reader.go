package tabular

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"autopipe/domain/dataset"
	"autopipe/internal/errors"
)

// DataReader loads CSV and Excel files into typed tables. The same parser
// backs file-path and in-memory ingestion so uploads and local files behave
// identically.
type DataReader struct {
	coercer *TypeCoercer
}

// NewDataReader creates a reader.
func NewDataReader() *DataReader {
	return &DataReader{coercer: NewTypeCoercer()}
}

// ReadFile loads a table from disk, dispatching on the file extension.
func (r *DataReader) ReadFile(path string) (*dataset.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return r.ReadTable(data, filepath.Base(path))
}

// ReadTable parses raw bytes as CSV or XLSX depending on the filename
// extension. Excel input that fails to parse is retried as CSV, matching
// how mislabelled uploads arrive in practice.
func (r *DataReader) ReadTable(data []byte, filename string) (*dataset.Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xls":
		table, err := r.readExcel(data)
		if err == nil {
			return table, nil
		}
		return r.readCSV(data)
	case ".csv", "":
		return r.readCSV(data)
	default:
		return nil, errors.New(errors.CodeIngestionError,
			"unsupported file format: upload CSV or Excel files")
	}
}

func (r *DataReader) readCSV(data []byte) (*dataset.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeIngestionError,
			errors.Wrap(err, "failed to parse CSV"))
	}
	return r.buildTable(rows)
}

func (r *DataReader) readExcel(data []byte) (*dataset.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithCode(errors.CodeIngestionError,
			errors.Wrap(err, "failed to open Excel data"))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(errors.CodeIngestionError, "Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.WithCode(errors.CodeIngestionError,
			errors.Wrapf(err, "failed to read sheet %s", sheets[0]))
	}
	return r.buildTable(rows)
}

// buildTable turns raw rows into a typed table: header row first, then
// all-empty rows and columns removed, then type coercion.
func (r *DataReader) buildTable(rows [][]string) (*dataset.Table, error) {
	if len(rows) < 2 {
		return nil, errors.New(errors.CodeIngestionError,
			"dataset must have a header row and at least one data row")
	}

	headers := rows[0]
	body := dropEmptyRows(rows[1:])
	headers, body = dropEmptyColumns(headers, body)
	if len(headers) < 2 {
		return nil, errors.New(errors.CodeIngestionError,
			"dataset must have at least two columns (target plus one feature)")
	}

	columns := r.coercer.CoerceColumns(headers, body)
	table, err := dataset.NewTable(columns)
	if err != nil {
		return nil, errors.WithCode(errors.CodeIngestionError, err)
	}
	return table, nil
}

func dropEmptyRows(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if !IsMissing(strings.TrimSpace(cell)) {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, row)
		}
	}
	return out
}

func dropEmptyColumns(headers []string, rows [][]string) ([]string, [][]string) {
	keep := make([]bool, len(headers))
	for i := range headers {
		for _, row := range rows {
			if i < len(row) && !IsMissing(strings.TrimSpace(row[i])) {
				keep[i] = true
				break
			}
		}
	}

	outHeaders := []string{}
	for i, h := range headers {
		if keep[i] {
			outHeaders = append(outHeaders, h)
		}
	}
	outRows := make([][]string, len(rows))
	for rowIdx, row := range rows {
		outRow := make([]string, 0, len(outHeaders))
		for i := range headers {
			if !keep[i] {
				continue
			}
			if i < len(row) {
				outRow = append(outRow, row[i])
			} else {
				outRow = append(outRow, "")
			}
		}
		outRows[rowIdx] = outRow
	}
	return outHeaders, outRows
}
