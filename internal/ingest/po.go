package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/sohwatch/internal/domain"
)

// RequiredPOColumns are the exact header names a purchase-order report must
// carry.
var RequiredPOColumns = []string{"SKU Code", "Order Qty", "Expected Delivery Date"}

// Day/month/year is the preferred delivery-date format; the rest are
// fallbacks for whatever the ERP exported.
var poDateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"02-01-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ReadPurchaseOrders types an uploaded purchase-order report. Lines with a
// blank SKU code or an unparseable delivery date are dropped silently; the
// dropped count is returned for reporting. A missing required column
// rejects the whole file with a *SchemaError.
func ReadPurchaseOrders(table *Table) ([]domain.PurchaseOrderLine, int, error) {
	colMap := table.columnIndex()
	if err := requireColumns(colMap, RequiredPOColumns); err != nil {
		return nil, 0, err
	}

	var lines []domain.PurchaseOrderLine
	dropped := 0
	for _, record := range table.Records {
		getValue := func(colName string) string {
			if idx, ok := colMap[colName]; ok && idx < len(record) {
				return strings.TrimSpace(record[idx])
			}
			return ""
		}

		sku := getValue("SKU Code")
		date, ok := parsePODate(getValue("Expected Delivery Date"))
		if sku == "" || !ok {
			dropped++
			log.Debug().Str("sku", sku).Str("date", getValue("Expected Delivery Date")).Msg("dropping purchase-order line")
			continue
		}

		lines = append(lines, domain.PurchaseOrderLine{
			SKUCode:      sku,
			OrderQty:     domain.ParseQuantity(getValue("Order Qty")),
			ExpectedDate: date,
		})
	}

	return lines, dropped, nil
}

func parsePODate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range poDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return serialToDate(raw)
}

// serialToDate converts an Excel date serial. Spreadsheets store date-typed
// cells as day counts since 1900, which is what the raw xlsx read hands us.
// Serials outside 1970-2100 are treated as junk, not dates.
func serialToDate(raw string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	if t.Year() < 1970 || t.Year() > 2100 {
		return time.Time{}, false
	}
	return t, true
}
