package rules

import (
	"math"
	"time"

	"github.com/andresuchdata/sohwatch/internal/domain"
)

// Engine applies the inventory health rules to one row at a time. All
// methods are pure functions of their inputs; the only ambient input is the
// clock, which is injected so tests can pin it.
type Engine struct {
	// PeriodLength is how much wall time one forecast period represents.
	// The mitigation check multiplies the runout period by it.
	PeriodLength time.Duration

	now func() time.Time
}

// DefaultPeriodLength assumes one forecast column per week.
const DefaultPeriodLength = 7 * 24 * time.Hour

// NewEngine creates an engine. A nil clock falls back to time.Now.
func NewEngine(periodLength time.Duration, now func() time.Time) *Engine {
	if periodLength <= 0 {
		periodLength = DefaultPeriodLength
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{PeriodLength: periodLength, now: now}
}

// reorderThreshold is the boundary below which a reorder is advised. Not
// validated: min > max propagates as-is.
func reorderThreshold(minQty, maxQty float64) float64 {
	return maxQty - (maxQty-minQty)/3
}

// Classify returns the health status for one row's on-hand, min and max
// quantities. Missing inputs degrade to StatusMissingSOH, never an error.
func (e *Engine) Classify(soh, minQty, maxQty domain.Quantity) domain.Status {
	if !soh.Valid {
		return domain.StatusMissingSOH
	}
	if !minQty.Valid || !maxQty.Valid {
		return domain.StatusMissingSOH
	}

	threshold := reorderThreshold(minQty.Value, maxQty.Value)
	switch {
	case soh.Value < minQty.Value:
		return domain.StatusCriticalBelowMin
	case soh.Value < threshold:
		return domain.StatusReorderLevel
	case soh.Value > maxQty.Value:
		return domain.StatusOverstocked
	default:
		return domain.StatusHealthy
	}
}

// SuggestReorder returns the suggested reorder quantity for a row below its
// reorder threshold, rounded up to the minor order multiple when one is
// set, or nil when no reorder is needed or the inputs are incomplete.
//
// Max Order Qty and Major Order Multiple are carried on the row but never
// consulted here; that asymmetry is intentional.
func (e *Engine) SuggestReorder(soh, minQty, maxQty, moq, minorMult domain.Quantity) *int {
	if !soh.Valid || !minQty.Valid || !maxQty.Valid || !moq.Valid {
		return nil
	}

	threshold := reorderThreshold(minQty.Value, maxQty.Value)
	if soh.Value >= threshold {
		return nil
	}

	base := math.Max(moq.Value, minQty.Value-soh.Value)
	if minorMult.Valid && minorMult.Value > 0 {
		base = math.Ceil(base/minorMult.Value) * minorMult.Value
	}

	qty := int(base)
	if qty < 0 {
		qty = 0
	}
	return &qty
}

// RunoutPeriod walks the forecast in period order, draining on-hand stock
// by each period's usage, and returns the index of the period where stock
// runs out. Nil means no runout within the horizon: on-hand missing or
// non-positive, no forecast columns, or stock outlasting the forecast.
// Periods with a missing usage are skipped, not treated as exhaustion.
func (e *Engine) RunoutPeriod(soh domain.Quantity, forecast []domain.Quantity) *float64 {
	if !soh.Valid || soh.Value <= 0 || len(forecast) == 0 {
		return nil
	}

	remaining := soh.Value
	for i, usage := range forecast {
		if !usage.Valid {
			continue
		}
		remaining -= usage.Value
		if remaining <= 0 {
			period := float64(i)
			return &period
		}
	}
	return nil
}

// Coverage marks, per forecast period, whether remaining stock fully covers
// that period's usage. The scan is strictly sequential: the first period
// that fails (missing usage, missing on-hand, or usage exceeding remaining
// stock) ends it, leaving that period and every later one unmarked.
func (e *Engine) Coverage(soh domain.Quantity, forecast []domain.Quantity) []bool {
	covered := make([]bool, len(forecast))
	if !soh.Valid {
		return covered
	}

	remaining := soh.Value
	for i, usage := range forecast {
		if !usage.Valid || remaining < usage.Value {
			break
		}
		covered[i] = true
		remaining -= usage.Value
	}
	return covered
}

// Mitigation decides whether the next purchase order arrives on or before
// the projected stockout date. Today is normalized to midnight before the
// runout offset is added.
func (e *Engine) Mitigation(runoutPeriod *float64, nextArrival *time.Time) domain.Mitigation {
	if runoutPeriod == nil || nextArrival == nil {
		return domain.MitigationUnknown
	}

	now := e.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	runoutDate := today.Add(time.Duration(*runoutPeriod * float64(e.PeriodLength)))

	if !nextArrival.After(runoutDate) {
		return domain.MitigationYes
	}
	return domain.MitigationNo
}

// Enrich computes every derived field for one row. po carries the SKU's
// aggregated purchase-order data, nil when there is none.
func (e *Engine) Enrich(row *domain.InventoryRow, po *domain.POSummary) {
	row.Status = e.Classify(row.SOH, row.MinQty, row.MaxQty)
	row.SuggestedReorderQty = e.SuggestReorder(row.SOH, row.MinQty, row.MaxQty, row.MOQ, row.MinorOrderMultiple)
	row.RunoutPeriod = e.RunoutPeriod(row.SOH, row.Forecast)

	if po != nil {
		arrival := po.NextArrival
		qty := po.TotalQty
		row.NextPOArrival = &arrival
		row.NextPOQty = &qty
	}
	row.POMitigation = e.Mitigation(row.RunoutPeriod, row.NextPOArrival)
}
