package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/sohwatch/internal/domain"
)

const sheetName = "Inventory Status"

// WriteExcel serializes the display table as a styled workbook: each row's
// background encodes its status, the header row is frozen, and column
// widths are sized to the longest cell.
func WriteExcel(w io.Writer, rows []domain.InventoryRow, hasPO bool) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	header := displayHeader(hasPO)
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	widths := make([]int, len(header))
	for i, col := range header {
		widths[i] = len(col)
	}

	// One style per status, shared by every row with that status.
	styles := make(map[domain.Status]int, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		styleID, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{status.FillColor()}, Pattern: 1},
			Font: &excelize.Font{Color: "000000"},
		})
		if err != nil {
			return fmt.Errorf("failed to create style for %s: %w", status, err)
		}
		styles[status] = styleID
	}

	for i := range rows {
		record := displayRecord(&rows[i], hasPO)
		rowNum := i + 2

		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return fmt.Errorf("failed to resolve cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}

		last, err := excelize.CoordinatesToCellName(len(record), rowNum)
		if err != nil {
			return fmt.Errorf("failed to resolve cell name: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, last, styles[rows[i].Status]); err != nil {
			return fmt.Errorf("failed to style row %d: %w", rowNum, err)
		}

		for c, value := range record {
			if len(value) > widths[c] {
				widths[c] = len(value)
			}
		}
	}

	// Freeze the header row.
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to resolve column name: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, float64(width+2)); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
