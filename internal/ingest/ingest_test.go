package ingest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/sohwatch/internal/domain"
)

const inventoryHeader = "SKU Code,SKU Description,SKU Category,Site,Source,SOH,Safety Stock,Min Qty,Max Qty,MOQ,Max Order Qty,Minor Order Multiple,Major Order Multiple"

func readCSV(t *testing.T, content string) *Table {
	t.Helper()
	table, err := ReadTable(strings.NewReader(content), "upload.csv")
	require.NoError(t, err)
	return table
}

func TestReadInventory(t *testing.T) {
	csv := inventoryHeader + ",W01-25,W02-25\n" +
		"SKU001, Widget ,Category A,Site 1,Supplier 1,100,20,50,200,10,500,5,20,40,40\n" +
		"SKU002,Gadget,Category B,Site 2,Supplier 2,not-a-number,10,30,100,10,200,5,20,,15\n"

	rows, forecastCols, err := ReadInventory(readCSV(t, csv), "-25")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"W01-25", "W02-25"}, forecastCols)

	first := rows[0]
	assert.Equal(t, "SKU001", first.SKUCode)
	assert.Equal(t, "Widget", first.Description, "strings must be trimmed")
	assert.Equal(t, domain.Qty(100), first.SOH)
	assert.Equal(t, domain.Qty(5), first.MinorOrderMultiple)
	assert.Equal(t, []domain.Quantity{domain.Qty(40), domain.Qty(40)}, first.Forecast)

	second := rows[1]
	assert.False(t, second.SOH.Valid, "non-numeric SOH coerces to missing, not zero")
	assert.False(t, second.Forecast[0].Valid, "blank forecast cell is missing")
	assert.Equal(t, domain.Qty(15), second.Forecast[1])
}

func TestReadInventoryMissingColumnRejectsFile(t *testing.T) {
	csv := "SKU Code,SOH\nSKU001,100\n"

	_, _, err := ReadInventory(readCSV(t, csv), "-25")
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Missing, "Min Qty")
	assert.Contains(t, schemaErr.Missing, "Major Order Multiple")
}

func TestReadInventoryNoForecastColumns(t *testing.T) {
	csv := inventoryHeader + "\nSKU001,Widget,Cat,Site,Src,100,20,50,200,10,500,5,20\n"

	rows, forecastCols, err := ReadInventory(readCSV(t, csv), "-25")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, forecastCols)
	assert.Empty(t, rows[0].Forecast)
}

func TestReadInventoryForecastOrderFollowsColumns(t *testing.T) {
	csv := inventoryHeader + ",Z-25,A-25\nSKU001,Widget,Cat,Site,Src,100,20,50,200,10,500,5,20,1,2\n"

	rows, forecastCols, err := ReadInventory(readCSV(t, csv), "-25")
	require.NoError(t, err)
	// Position, not name, encodes the period index.
	assert.Equal(t, []string{"Z-25", "A-25"}, forecastCols)
	assert.Equal(t, domain.Qty(1), rows[0].Forecast[0])
	assert.Equal(t, domain.Qty(2), rows[0].Forecast[1])
}

func TestReadInventoryShortRecord(t *testing.T) {
	csv := inventoryHeader + ",W01-25\nSKU001,Widget,Cat\n"

	rows, _, err := ReadInventory(readCSV(t, csv), "-25")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Cat", rows[0].Category)
	assert.False(t, rows[0].SOH.Valid)
	assert.False(t, rows[0].Forecast[0].Valid)
}

func TestReadPurchaseOrders(t *testing.T) {
	csv := "SKU Code,Order Qty,Expected Delivery Date\n" +
		"SKU001,50,15/04/2025\n" +
		"SKU001,30,2025-04-01\n" +
		",10,15/04/2025\n" +
		"SKU002,20,soon\n" +
		"SKU003,,01/05/2025\n"

	lines, dropped, err := ReadPurchaseOrders(readCSV(t, csv))
	require.NoError(t, err)
	assert.Equal(t, 2, dropped, "blank SKU and junk date are dropped")
	require.Len(t, lines, 3)

	assert.Equal(t, "SKU001", lines[0].SKUCode)
	assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), lines[0].ExpectedDate)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), lines[1].ExpectedDate, "generic date fallback")
	assert.False(t, lines[2].OrderQty.Valid, "missing qty kept, line not dropped")
}

func TestReadPurchaseOrdersFromWorkbookDateCells(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"SKU Code", "Order Qty", "Expected Delivery Date"}))
	// A real date-typed cell, the way spreadsheet tools store dates.
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"SKU001", 50, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)}))
	// A text date in the same column.
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"SKU002", 30, "15/04/2025"}))
	// A number that is no plausible date serial.
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"SKU003", 10, 42}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	table, err := ReadTable(bytes.NewReader(buf.Bytes()), "po_report.xlsx")
	require.NoError(t, err)

	lines, dropped, err := ReadPurchaseOrders(table)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped, "only the junk serial is dropped")
	require.Len(t, lines, 2)

	assert.Equal(t, "SKU001", lines[0].SKUCode)
	assert.WithinDuration(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), lines[0].ExpectedDate, time.Second)
	assert.Equal(t, domain.Qty(50), lines[0].OrderQty)

	assert.Equal(t, "SKU002", lines[1].SKUCode)
	assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), lines[1].ExpectedDate)
}

func TestReadPurchaseOrdersMissingColumn(t *testing.T) {
	csv := "SKU Code,Order Qty\nSKU001,50\n"

	_, _, err := ReadPurchaseOrders(readCSV(t, csv))
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"Expected Delivery Date"}, schemaErr.Missing)
}

func TestReadPurchaseOrdersTrimsHeaderNames(t *testing.T) {
	csv := " SKU Code ,Order Qty, Expected Delivery Date \nSKU001,50,15/04/2025\n"

	lines, dropped, err := ReadPurchaseOrders(readCSV(t, csv))
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, lines, 1)
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw      string
		expected domain.Quantity
	}{
		{"100", domain.Qty(100)},
		{" 42.5 ", domain.Qty(42.5)},
		{"1,250", domain.Qty(1250)},
		{"-3", domain.Qty(-3)},
		{"", domain.NoQty},
		{"n/a", domain.NoQty},
		{"12x", domain.NoQty},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, domain.ParseQuantity(tt.raw), "raw=%q", tt.raw)
	}
}
