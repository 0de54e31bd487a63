package ingest

import (
	"strings"

	"github.com/andresuchdata/sohwatch/internal/domain"
)

// RequiredInventoryColumns are the exact header names an inventory snapshot
// must carry. Forecast columns are discovered separately by suffix.
var RequiredInventoryColumns = []string{
	"SKU Code", "SKU Description", "SKU Category", "Site", "Source",
	"SOH", "Safety Stock", "Min Qty", "Max Qty",
	"MOQ", "Max Order Qty", "Minor Order Multiple", "Major Order Multiple",
}

// ReadInventory types an uploaded snapshot into inventory rows. It returns
// the rows plus the forecast column names in period order. A missing
// required column rejects the whole file with a *SchemaError; bad cell
// values degrade to the missing sentinel instead.
func ReadInventory(table *Table, forecastSuffix string) ([]domain.InventoryRow, []string, error) {
	colMap := table.columnIndex()
	if err := requireColumns(colMap, RequiredInventoryColumns); err != nil {
		return nil, nil, err
	}

	// Column position encodes the period index: leftmost is period 0.
	var forecastCols []string
	var forecastIdx []int
	for i, col := range table.Header {
		name := strings.TrimSpace(col)
		if forecastSuffix != "" && strings.HasSuffix(name, forecastSuffix) {
			forecastCols = append(forecastCols, name)
			forecastIdx = append(forecastIdx, i)
		}
	}

	rows := make([]domain.InventoryRow, 0, len(table.Records))
	for _, record := range table.Records {
		getValue := func(colName string) string {
			if idx, ok := colMap[colName]; ok && idx < len(record) {
				return strings.TrimSpace(record[idx])
			}
			return ""
		}

		getQty := func(colName string) domain.Quantity {
			return domain.ParseQuantity(getValue(colName))
		}

		row := domain.InventoryRow{
			SKUCode:            getValue("SKU Code"),
			Description:        getValue("SKU Description"),
			Category:           getValue("SKU Category"),
			Site:               getValue("Site"),
			Source:             getValue("Source"),
			SOH:                getQty("SOH"),
			SafetyStock:        getQty("Safety Stock"),
			MinQty:             getQty("Min Qty"),
			MaxQty:             getQty("Max Qty"),
			MOQ:                getQty("MOQ"),
			MaxOrderQty:        getQty("Max Order Qty"),
			MinorOrderMultiple: getQty("Minor Order Multiple"),
			MajorOrderMultiple: getQty("Major Order Multiple"),
		}

		row.Forecast = make([]domain.Quantity, len(forecastIdx))
		for p, idx := range forecastIdx {
			if idx < len(record) {
				row.Forecast[p] = domain.ParseQuantity(record[idx])
			}
		}

		rows = append(rows, row)
	}

	return rows, forecastCols, nil
}
