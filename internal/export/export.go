// Package export flattens persisted answers into delimited-text and
// spreadsheet tables. Both writers overwrite any prior file at the target
// path.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"robora/internal/question"
	"robora/internal/schema"
)

// Table is a flattened answer set: a header and one row per answer.
type Table struct {
	Header []string
	Rows   [][]string
}

// Flatten turns answers into a table. bindingCols selects which question
// bindings lead the row (in that order); the schema's own fields follow,
// and a trailing citations column is appended when includeCitations is set.
// All answers must share one schema kind.
func Flatten(answers []question.Answer, bindingCols []string, includeCitations bool) (*Table, error) {
	t := &Table{}
	for i, ans := range answers {
		value, err := schema.Decode(schema.Kind(ans.Question.Schema), ans.Payload)
		if err != nil {
			return nil, fmt.Errorf("flatten answer %d: %w", i, err)
		}
		fields := value.Flatten()

		if t.Header == nil {
			t.Header = append(t.Header, bindingCols...)
			for _, f := range fields {
				t.Header = append(t.Header, f.Name)
			}
			if includeCitations {
				t.Header = append(t.Header, "citations")
			}
		}

		row := make([]string, 0, len(t.Header))
		for _, col := range bindingCols {
			row = append(row, ans.Question.Bindings[col])
		}
		for _, f := range fields {
			row = append(row, f.Value)
		}
		if includeCitations {
			row = append(row, strings.Join(ans.Citations, "; "))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteCSV writes the table as comma-delimited text, overwriting path.
func WriteCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

// WriteXLSX writes the table as a single-sheet spreadsheet, overwriting
// path.
func WriteXLSX(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := writeSheetRow(f, sheet, 1, t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := writeSheetRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("xlsx cell name: %w", err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write xlsx row %d: %w", rowNum, err)
	}
	return nil
}
