package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/andresuchdata/sohwatch/internal/domain"
)

// WriteCSV serializes the display table as delimited text. The PO columns
// appear only when hasPO is set.
func WriteCSV(w io.Writer, rows []domain.InventoryRow, hasPO bool) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(displayHeader(hasPO)); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range rows {
		if err := writer.Write(displayRecord(&rows[i], hasPO)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
