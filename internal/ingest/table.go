package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a raw tabular upload: one header row plus data records. Both
// CSV and spreadsheet uploads normalize to this before any typing happens.
type Table struct {
	Header  []string
	Records [][]string
}

// ReadTable parses an uploaded file into a Table, choosing the decoder by
// file extension (.csv, or .xlsx/.xls via the first sheet).
func ReadTable(r io.Reader, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return readExcelTable(r)
	default:
		return readCSVTable(r)
	}
}

func readCSVTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	// Uploads are frequently ragged; short records are handled per-cell.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	table := &Table{Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		table.Records = append(table.Records, record)
	}

	return table, nil
}

// readExcelTable reads the first sheet of a workbook row by row, the same
// shape the CSV path produces. Cells are read raw: date-typed cells come
// through as Excel serial numbers instead of their display format, which
// parsePODate knows how to convert.
func readExcelTable(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	table := &Table{}
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read spreadsheet row: %w", err)
		}
		if table.Header == nil {
			table.Header = record
			continue
		}
		table.Records = append(table.Records, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating spreadsheet rows: %w", err)
	}

	if table.Header == nil {
		return nil, fmt.Errorf("spreadsheet sheet %s is empty", sheets[0])
	}

	return table, nil
}

// columnIndex maps trimmed header names to their positions.
func (t *Table) columnIndex() map[string]int {
	colMap := make(map[string]int, len(t.Header))
	for i, col := range t.Header {
		colMap[strings.TrimSpace(col)] = i
	}
	return colMap
}

// SchemaError reports required columns absent from an upload. It is fatal
// for the whole file; nothing is partially processed.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// requireColumns returns a SchemaError naming every absent column.
func requireColumns(colMap map[string]int, required []string) error {
	var missing []string
	for _, col := range required {
		if _, ok := colMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}
