package enrich

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/sohwatch/internal/domain"
	"github.com/andresuchdata/sohwatch/internal/rules"
)

// BuildPOIndex aggregates purchase-order lines by SKU: earliest expected
// arrival plus total quantity on order. The index must be complete before
// any row is enriched; EnrichAll only ever reads it.
func BuildPOIndex(lines []domain.PurchaseOrderLine) map[string]domain.POSummary {
	index := make(map[string]domain.POSummary, len(lines))
	for _, line := range lines {
		summary, ok := index[line.SKUCode]
		if !ok || line.ExpectedDate.Before(summary.NextArrival) {
			summary.NextArrival = line.ExpectedDate
		}
		if line.OrderQty.Valid {
			summary.TotalQty += line.OrderQty.Value
		}
		index[line.SKUCode] = summary
	}
	return index
}

// Enricher runs the rule engine across a snapshot.
type Enricher struct {
	engine  *rules.Engine
	workers int
}

// NewEnricher creates an enricher with a bounded worker count; zero or
// negative means one worker per CPU.
func NewEnricher(engine *rules.Engine, workers int) *Enricher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Enricher{engine: engine, workers: workers}
}

// EnrichAll computes the derived fields for every row in place. Rows are
// independent of each other, so they are processed in parallel; output
// order is untouched because each goroutine works on its own index.
func (e *Enricher) EnrichAll(ctx context.Context, rows []domain.InventoryRow, poIndex map[string]domain.POSummary) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range rows {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var po *domain.POSummary
			if poIndex != nil {
				if summary, ok := poIndex[rows[i].SKUCode]; ok {
					po = &summary
				}
			}
			e.engine.Enrich(&rows[i], po)
			return nil
		})
	}

	return g.Wait()
}

// Apply returns the rows passing the filter, preserving order.
func Apply(rows []domain.InventoryRow, filter domain.RowFilter) []domain.InventoryRow {
	if filter.IsZero() {
		return rows
	}
	filtered := make([]domain.InventoryRow, 0, len(rows))
	for i := range rows {
		if filter.Match(&rows[i]) {
			filtered = append(filtered, rows[i])
		}
	}
	return filtered
}

// Summarize counts rows per status for the distribution chart. Every
// status appears in display order, zero counts included.
func Summarize(rows []domain.InventoryRow) domain.StatusSummary {
	byStatus := make(map[domain.Status]int, len(domain.AllStatuses))
	for i := range rows {
		byStatus[rows[i].Status]++
	}

	summary := domain.StatusSummary{Total: len(rows)}
	for _, status := range domain.AllStatuses {
		summary.Counts = append(summary.Counts, domain.StatusCount{
			Status: status,
			Label:  status.Label(),
			Color:  status.ChartColor(),
			Count:  byStatus[status],
		})
	}
	return summary
}

// CoverageTable builds the per-row, per-period coverage marks for the
// second rendered table. The caller should skip rendering when columns is
// empty.
func CoverageTable(engine *rules.Engine, rows []domain.InventoryRow, columns []string) domain.CoverageTable {
	table := domain.CoverageTable{Columns: columns}
	if len(columns) == 0 {
		return table
	}

	table.Rows = make([]domain.CoverageRow, 0, len(rows))
	for i := range rows {
		table.Rows = append(table.Rows, domain.CoverageRow{
			SKUCode: rows[i].SKUCode,
			SOH:     rows[i].SOH,
			Covered: engine.Coverage(rows[i].SOH, rows[i].Forecast),
		})
	}
	return table
}
