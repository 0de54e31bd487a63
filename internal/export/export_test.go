package export

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

func sampleRows() []domain.InventoryRow {
	arrival := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	qty := 20
	return []domain.InventoryRow{
		{
			SKUCode: "SKU001", Description: "Widget", Category: "Cat A",
			Site: "Site 1", Source: "Supplier 1",
			SOH: domain.Qty(30), Status: domain.StatusCriticalBelowMin,
			SuggestedReorderQty: &qty,
			NextPOArrival:       &arrival, POMitigation: domain.MitigationYes,
		},
		{
			SKUCode: "SKU002", Description: "Gadget", Category: "Cat B",
			Site: "Site 2", Source: "Supplier 2",
			SOH: domain.Qty(160), Status: domain.StatusHealthy,
			POMitigation: domain.MitigationUnknown,
		},
	}
}

func TestWriteCSVWithPO(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows(), true))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "SKU Code,SKU Description,SKU Category,Site,Source,SOH,Status,Suggested Reorder Qty,Next PO Arrival,PO Mitigates OOS?", lines[0])
	assert.Equal(t, "SKU001,Widget,Cat A,Site 1,Supplier 1,30,Critical - Below Min Qty,20,15/04/2025,Yes", lines[1])
	assert.Equal(t, "SKU002,Gadget,Cat B,Site 2,Supplier 2,160,Healthy,,,N/A", lines[2])
}

func TestWriteCSVWithoutPO(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows(), false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "SKU Code,SKU Description,SKU Category,Site,Source,SOH,Status,Suggested Reorder Qty", lines[0])
	assert.NotContains(t, lines[1], "15/04/2025", "po columns only when a po file was supplied")
}

func TestWriteCSVMissingSOHIsBlank(t *testing.T) {
	rows := []domain.InventoryRow{{SKUCode: "SKU003", Status: domain.StatusMissingSOH}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows, false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "SKU003,,,,,,Missing SOH,", lines[1])
}

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, sampleRows(), true))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "SKU Code", rows[0][0])
	assert.Equal(t, "PO Mitigates OOS?", rows[0][9])
	assert.Equal(t, "SKU001", rows[1][0])
	assert.Equal(t, "Critical - Below Min Qty", rows[1][6])
	assert.Equal(t, "Yes", rows[1][9])

	// Header row is frozen below A2.
	panes, err := f.GetPanes(sheetName)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
	assert.Equal(t, "A2", panes.TopLeftCell)

	// Status rows carry distinct fills.
	criticalStyle, err := f.GetCellStyle(sheetName, "A2")
	require.NoError(t, err)
	healthyStyle, err := f.GetCellStyle(sheetName, "A3")
	require.NoError(t, err)
	assert.NotEqual(t, criticalStyle, healthyStyle)

	// Columns are sized past their default width.
	width, err := f.GetColWidth(sheetName, "A")
	require.NoError(t, err)
	assert.Greater(t, width, 8.0)
}

func TestWriteExcelEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, nil, false))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

func TestFormatMitigation(t *testing.T) {
	assert.Equal(t, "Yes", formatMitigation(domain.MitigationYes))
	assert.Equal(t, "No", formatMitigation(domain.MitigationNo))
	assert.Equal(t, "N/A", formatMitigation(domain.MitigationUnknown))
	assert.Equal(t, "N/A", formatMitigation(domain.Mitigation("")))
}
