package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/sohwatch/internal/domain"
	"github.com/andresuchdata/sohwatch/internal/enrich"
	"github.com/andresuchdata/sohwatch/internal/export"
	"github.com/andresuchdata/sohwatch/internal/ingest"
	"github.com/andresuchdata/sohwatch/internal/rules"
	"github.com/andresuchdata/sohwatch/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "sohwatch",
		Usage: "Analyze an inventory snapshot without running the server",
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "Classify a snapshot and write the enriched table",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "inventory",
						Usage:    "Inventory snapshot file (csv or xlsx)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "po",
						Usage: "Purchase-order report file (optional)",
					},
					&cli.StringFlag{
						Name:  "out-csv",
						Usage: "Write the enriched table as CSV to this path",
					},
					&cli.StringFlag{
						Name:  "out-xlsx",
						Usage: "Write the color-coded workbook to this path",
					},
					&cli.StringFlag{
						Name:    "suffix",
						Usage:   "Forecast column name suffix",
						Value:   "-25",
						EnvVars: []string{"RULES_FORECAST_SUFFIX"},
					},
					&cli.IntFlag{
						Name:    "period-days",
						Usage:   "Days of wall time one forecast period represents",
						Value:   7,
						EnvVars: []string{"RULES_PERIOD_DAYS"},
					},
					&cli.StringSliceFlag{
						Name:  "site",
						Usage: "Only include rows for these sites",
					},
					&cli.StringSliceFlag{
						Name:  "category",
						Usage: "Only include rows for these SKU categories",
					},
					&cli.StringSliceFlag{
						Name:  "source",
						Usage: "Only include rows for these sources",
					},
				},
				Action: runAnalyze,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func runAnalyze(c *cli.Context) error {
	rows, forecastCols, err := loadInventory(c.String("inventory"), c.String("suffix"))
	if err != nil {
		return err
	}

	var poIndex map[string]domain.POSummary
	hasPO := false
	if path := c.String("po"); path != "" {
		lines, dropped, err := loadPurchaseOrders(path)
		if err != nil {
			return err
		}
		if dropped > 0 {
			logger.Log.Warn().Int("dropped", dropped).Msg("purchase-order lines dropped")
		}
		poIndex = enrich.BuildPOIndex(lines)
		hasPO = true
	}

	engine := rules.NewEngine(time.Duration(c.Int("period-days"))*24*time.Hour, nil)
	enricher := enrich.NewEnricher(engine, 0)
	if err := enricher.EnrichAll(c.Context, rows, poIndex); err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}

	rows = enrich.Apply(rows, domain.RowFilter{
		Sites:      c.StringSlice("site"),
		Categories: c.StringSlice("category"),
		Sources:    c.StringSlice("source"),
	})

	printSummary(c, rows, forecastCols)

	if path := c.String("out-csv"); path != "" {
		if err := writeFile(path, func(f *os.File) error {
			return export.WriteCSV(f, rows, hasPO)
		}); err != nil {
			return err
		}
		logger.Log.Info().Str("path", path).Msg("wrote csv")
	}

	if path := c.String("out-xlsx"); path != "" {
		if err := writeFile(path, func(f *os.File) error {
			return export.WriteExcel(f, rows, hasPO)
		}); err != nil {
			return err
		}
		logger.Log.Info().Str("path", path).Msg("wrote workbook")
	}

	return nil
}

func loadInventory(path, suffix string) ([]domain.InventoryRow, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open inventory file: %w", err)
	}
	defer f.Close()

	table, err := ingest.ReadTable(f, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse inventory file: %w", err)
	}

	return ingest.ReadInventory(table, suffix)
}

func loadPurchaseOrders(path string) ([]domain.PurchaseOrderLine, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open purchase-order file: %w", err)
	}
	defer f.Close()

	table, err := ingest.ReadTable(f, path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse purchase-order file: %w", err)
	}

	return ingest.ReadPurchaseOrders(table)
}

func printSummary(c *cli.Context, rows []domain.InventoryRow, forecastCols []string) {
	summary := enrich.Summarize(rows)

	fmt.Fprintf(c.App.Writer, "%d rows analyzed\n", summary.Total)
	for _, count := range summary.Counts {
		fmt.Fprintf(c.App.Writer, "  %-26s %d\n", count.Label, count.Count)
	}
	if len(forecastCols) == 0 {
		fmt.Fprintln(c.App.Writer, "no forecast columns found; runout simulation skipped")
	} else {
		fmt.Fprintf(c.App.Writer, "forecast horizon: %d periods\n", len(forecastCols))
	}
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
