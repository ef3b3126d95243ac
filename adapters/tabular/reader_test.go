package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"autopipe/domain/dataset"
	apperrors "autopipe/internal/errors"
)

const sampleCSV = `age,income,city,target
25,50000,Austin,yes
31,62000,Boston,no
47,,Austin,yes
52,88000,Chicago,no
`

func TestReadTableCSV(t *testing.T) {
	r := NewDataReader()
	table, err := r.ReadTable([]byte(sampleCSV), "sample.csv")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}

	if table.Rows() != 4 || table.Cols() != 4 {
		t.Fatalf("got %dx%d, want 4x4", table.Rows(), table.Cols())
	}
	income, ok := table.Column("income")
	if !ok {
		t.Fatal("income column missing")
	}
	if income.Kind != dataset.KindNumeric {
		t.Errorf("income kind = %s, want numeric", income.Kind)
	}
	if income.MissingCount() != 1 {
		t.Errorf("income missing = %d, want 1", income.MissingCount())
	}
	city, _ := table.Column("city")
	if city.Kind != dataset.KindCategorical {
		t.Errorf("city kind = %s, want categorical", city.Kind)
	}
}

func TestReadTableDropsEmptyRowsAndColumns(t *testing.T) {
	csv := "a,b,empty\n1,x,\n,,\n2,y,\n"
	r := NewDataReader()
	table, err := r.ReadTable([]byte(csv), "data.csv")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if table.Rows() != 2 {
		t.Errorf("rows = %d, want 2 (all-missing row dropped)", table.Rows())
	}
	if table.Cols() != 2 {
		t.Errorf("cols = %d, want 2 (empty column dropped)", table.Cols())
	}
	if _, ok := table.Column("empty"); ok {
		t.Error("empty column was retained")
	}
}

func TestReadTableRejectsTinyInput(t *testing.T) {
	r := NewDataReader()
	cases := map[string]string{
		"header only":   "a,b\n",
		"single column": "a\n1\n2\n",
		"empty":         "",
	}
	for name, csv := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.ReadTable([]byte(csv), "x.csv")
			if err == nil {
				t.Fatal("expected error")
			}
			if apperrors.GetCode(err) != apperrors.CodeIngestionError {
				t.Errorf("code = %s, want %s", apperrors.GetCode(err), apperrors.CodeIngestionError)
			}
		})
	}
}

func TestReadTableUnsupportedExtension(t *testing.T) {
	r := NewDataReader()
	_, err := r.ReadTable([]byte("x"), "data.parquet")
	if err == nil || !strings.Contains(err.Error(), "unsupported file format") {
		t.Fatalf("err = %v, want unsupported format", err)
	}
}

func TestReadTableExcel(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"score", "grade"},
		{90, "A"},
		{75, "B"},
		{60, "C"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	r := NewDataReader()
	table, err := r.ReadTable(buf.Bytes(), "grades.xlsx")
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if table.Rows() != 3 || table.Cols() != 2 {
		t.Fatalf("got %dx%d, want 3x2", table.Rows(), table.Cols())
	}
	score, _ := table.Column("score")
	if score.Kind != dataset.KindNumeric {
		t.Errorf("score kind = %s, want numeric", score.Kind)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewDataReader()
	table, err := r.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if table.Rows() != 4 {
		t.Errorf("rows = %d, want 4", table.Rows())
	}
}
