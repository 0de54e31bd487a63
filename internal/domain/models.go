package domain

import "time"

// InventoryRow represents one SKU at one site/source combination, as read
// from an uploaded snapshot, plus the fields derived for it during
// enrichment. Derived fields depend only on the row's own inputs (and, for
// the PO fields, the PO-by-SKU index).
type InventoryRow struct {
	// Identity
	SKUCode     string `json:"sku_code"`
	Description string `json:"sku_description"`
	Category    string `json:"sku_category"`
	Site        string `json:"site"`
	Source      string `json:"source"`

	// Quantities
	SOH                Quantity `json:"soh"`
	SafetyStock        Quantity `json:"safety_stock"`
	MinQty             Quantity `json:"min_qty"`
	MaxQty             Quantity `json:"max_qty"`
	MOQ                Quantity `json:"moq"`
	MaxOrderQty        Quantity `json:"max_order_qty"`
	MinorOrderMultiple Quantity `json:"minor_order_multiple"`
	MajorOrderMultiple Quantity `json:"major_order_multiple"`

	// Forecast usage per future period, in column order. Period 0 is the
	// nearest period.
	Forecast []Quantity `json:"forecast"`

	// Derived
	Status              Status     `json:"status"`
	SuggestedReorderQty *int       `json:"suggested_reorder_qty"`
	RunoutPeriod        *float64   `json:"runout_period"`
	NextPOArrival       *time.Time `json:"next_po_arrival"`
	NextPOQty           *float64   `json:"next_po_qty"`
	POMitigation        Mitigation `json:"po_mitigates_oos"`
}

// PurchaseOrderLine is one expected delivery from the purchase-order report.
type PurchaseOrderLine struct {
	SKUCode      string    `json:"sku_code"`
	OrderQty     Quantity  `json:"order_qty"`
	ExpectedDate time.Time `json:"expected_delivery_date"`
}

// POSummary aggregates all purchase-order lines for one SKU: the earliest
// expected arrival and the total quantity on order.
type POSummary struct {
	NextArrival time.Time `json:"next_arrival"`
	TotalQty    float64   `json:"total_qty"`
}

// RowFilter narrows a snapshot's rows by site, category and source. Empty
// slices match everything.
type RowFilter struct {
	Sites      []string `json:"sites"`
	Categories []string `json:"categories"`
	Sources    []string `json:"sources"`
}

// Match reports whether a row passes the filter.
func (f RowFilter) Match(row *InventoryRow) bool {
	return matchAny(f.Sites, row.Site) &&
		matchAny(f.Categories, row.Category) &&
		matchAny(f.Sources, row.Source)
}

// IsZero reports whether the filter matches every row.
func (f RowFilter) IsZero() bool {
	return len(f.Sites) == 0 && len(f.Categories) == 0 && len(f.Sources) == 0
}

func matchAny(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}

// StatusCount is one slice of the status distribution chart.
type StatusCount struct {
	Status Status `json:"status"`
	Label  string `json:"label"`
	Color  string `json:"color"`
	Count  int    `json:"count"`
}

// StatusSummary is the status distribution over a set of rows. Every status
// appears, zero counts included, in display order.
type StatusSummary struct {
	Total  int           `json:"total"`
	Counts []StatusCount `json:"counts"`
}

// CoverageRow carries the per-period coverage marks for one row.
type CoverageRow struct {
	SKUCode string   `json:"sku_code"`
	SOH     Quantity `json:"soh"`
	Covered []bool   `json:"covered"`
}

// CoverageTable is the second rendered table: one mark per row per forecast
// period. Columns holds the forecast column names in period order.
type CoverageTable struct {
	Columns []string      `json:"columns"`
	Rows    []CoverageRow `json:"rows"`
}
