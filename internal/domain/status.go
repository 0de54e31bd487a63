package domain

// Status classifies one inventory row's health. Exactly one of the five
// values applies to every row; rows with unusable inputs fall through to
// StatusMissingSOH instead of erroring.
type Status string

const (
	StatusCriticalBelowMin Status = "CRITICAL_BELOW_MIN"
	StatusReorderLevel     Status = "REORDER_LEVEL"
	StatusOverstocked      Status = "OVERSTOCKED"
	StatusHealthy          Status = "HEALTHY"
	StatusMissingSOH       Status = "MISSING_SOH"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{
	StatusCriticalBelowMin,
	StatusReorderLevel,
	StatusOverstocked,
	StatusHealthy,
	StatusMissingSOH,
}

var statusLabels = map[Status]string{
	StatusCriticalBelowMin: "Critical - Below Min Qty",
	StatusReorderLevel:     "Reorder Level",
	StatusOverstocked:      "Overstocked",
	StatusHealthy:          "Healthy",
	StatusMissingSOH:       "Missing SOH",
}

// Row fill colors used by the styled spreadsheet export.
var statusFillColors = map[Status]string{
	StatusCriticalBelowMin: "#FFCCCC",
	StatusReorderLevel:     "#FFE4B3",
	StatusOverstocked:      "#FFCCFF",
	StatusHealthy:          "#CCFFCC",
	StatusMissingSOH:       "#E0E0E0",
}

// Stronger colors for the status distribution chart.
var statusChartColors = map[Status]string{
	StatusCriticalBelowMin: "#D44444",
	StatusReorderLevel:     "#FF9148",
	StatusOverstocked:      "#7B4FB6",
	StatusHealthy:          "#8CDF8C",
	StatusMissingSOH:       "#B0B0B0",
}

// Label returns a human-readable label for a status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// FillColor returns the spreadsheet row background for a status.
func (s Status) FillColor() string {
	if c, ok := statusFillColors[s]; ok {
		return c
	}
	return "#FFFFFF"
}

// ChartColor returns the chart segment color for a status.
func (s Status) ChartColor() string {
	if c, ok := statusChartColors[s]; ok {
		return c
	}
	return "#FFFFFF"
}

// Mitigation reports whether an open purchase order lands before the
// projected stockout. Unknown means one of the inputs was unavailable.
type Mitigation string

const (
	MitigationYes     Mitigation = "MITIGATES"
	MitigationNo      Mitigation = "DOES_NOT_MITIGATE"
	MitigationUnknown Mitigation = "UNKNOWN"
)
