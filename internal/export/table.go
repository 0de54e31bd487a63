package export

import (
	"strconv"

	"github.com/andresuchdata/sohwatch/internal/domain"
)

// arrivalDateLayout matches the day/month/year convention of the PO report.
const arrivalDateLayout = "02/01/2006"

// baseColumns are the display columns of the main table. The two PO
// columns are appended only when the session had a purchase-order file.
var baseColumns = []string{
	"SKU Code", "SKU Description", "SKU Category", "Site", "Source",
	"SOH", "Status", "Suggested Reorder Qty",
}

var poColumns = []string{"Next PO Arrival", "PO Mitigates OOS?"}

func displayHeader(hasPO bool) []string {
	header := make([]string, 0, len(baseColumns)+len(poColumns))
	header = append(header, baseColumns...)
	if hasPO {
		header = append(header, poColumns...)
	}
	return header
}

func displayRecord(row *domain.InventoryRow, hasPO bool) []string {
	record := []string{
		row.SKUCode,
		row.Description,
		row.Category,
		row.Site,
		row.Source,
		formatQuantity(row.SOH),
		row.Status.Label(),
		formatSuggestion(row.SuggestedReorderQty),
	}
	if hasPO {
		arrival := ""
		if row.NextPOArrival != nil {
			arrival = row.NextPOArrival.Format(arrivalDateLayout)
		}
		record = append(record, arrival, formatMitigation(row.POMitigation))
	}
	return record
}

func formatQuantity(q domain.Quantity) string {
	if !q.Valid {
		return ""
	}
	return strconv.FormatFloat(q.Value, 'f', -1, 64)
}

func formatSuggestion(qty *int) string {
	if qty == nil {
		return ""
	}
	return strconv.Itoa(*qty)
}

func formatMitigation(m domain.Mitigation) string {
	switch m {
	case domain.MitigationYes:
		return "Yes"
	case domain.MitigationNo:
		return "No"
	default:
		return "N/A"
	}
}
