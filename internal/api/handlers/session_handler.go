package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/sohwatch/internal/cache"
	"github.com/andresuchdata/sohwatch/internal/domain"
	"github.com/andresuchdata/sohwatch/internal/enrich"
	"github.com/andresuchdata/sohwatch/internal/export"
	"github.com/andresuchdata/sohwatch/internal/ingest"
	"github.com/andresuchdata/sohwatch/internal/rules"
	"github.com/andresuchdata/sohwatch/internal/session"
)

// SessionHandler serves the upload-and-analyze flow: one upload creates a
// session whose enriched table backs every later read and download.
type SessionHandler struct {
	forecastSuffix string
	engine         *rules.Engine
	enricher       *enrich.Enricher
	store          *session.Store
	summaryCache   cache.SummaryCache
}

func NewSessionHandler(forecastSuffix string, engine *rules.Engine, enricher *enrich.Enricher, store *session.Store, summaryCache cache.SummaryCache) *SessionHandler {
	return &SessionHandler{
		forecastSuffix: forecastSuffix,
		engine:         engine,
		enricher:       enricher,
		store:          store,
		summaryCache:   summaryCache,
	}
}

// CreateSession ingests an inventory snapshot (required) plus an optional
// purchase-order report, runs the full enrichment, and stores the result.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	inventoryFile, err := c.FormFile("inventory")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inventory file is required"})
		return
	}

	inventoryTable, err := readUpload(inventoryFile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to parse inventory file: %v", err)})
		return
	}

	rows, forecastCols, err := ingest.ReadInventory(inventoryTable, h.forecastSuffix)
	if err != nil {
		respondIngestError(c, "inventory", err)
		return
	}

	// Phase 1: the PO index must be complete before any row is enriched.
	var poIndex map[string]domain.POSummary
	hasPO := false
	droppedPOLines := 0
	poFile, err := c.FormFile("po")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("malformed purchase-order upload: %v", err)})
		return
	}
	if poFile != nil {
		poTable, err := readUpload(poFile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to parse purchase-order file: %v", err)})
			return
		}

		lines, dropped, err := ingest.ReadPurchaseOrders(poTable)
		if err != nil {
			respondIngestError(c, "purchase-order", err)
			return
		}

		poIndex = enrich.BuildPOIndex(lines)
		hasPO = true
		droppedPOLines = dropped
	}

	// Phase 2: per-row enrichment.
	if err := h.enricher.EnrichAll(c.Request.Context(), rows, poIndex); err != nil {
		log.Error().Err(err).Msg("failed to enrich inventory rows")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process inventory"})
		return
	}

	id := h.store.Put(&session.Snapshot{
		Rows:            rows,
		ForecastColumns: forecastCols,
		HasPO:           hasPO,
		DroppedPOLines:  droppedPOLines,
	})

	resp := gin.H{
		"session_id":       id,
		"row_count":        len(rows),
		"has_po":           hasPO,
		"forecast_columns": forecastCols,
		"summary":          enrich.Summarize(rows),
	}
	if hasPO {
		resp["dropped_po_lines"] = droppedPOLines
	}
	if len(forecastCols) == 0 {
		resp["warning"] = fmt.Sprintf("no forecast columns found ending with %q; forecast simulation is skipped", h.forecastSuffix)
	}

	c.JSON(http.StatusCreated, resp)
}

// GetRows returns the enriched table, optionally filtered.
func (h *SessionHandler) GetRows(c *gin.Context) {
	snap, ok := h.lookup(c)
	if !ok {
		return
	}

	filter := parseRowFilter(c)
	rows := enrich.Apply(snap.Rows, filter)

	c.JSON(http.StatusOK, gin.H{
		"session_id":       snap.ID,
		"has_po":           snap.HasPO,
		"forecast_columns": snap.ForecastColumns,
		"rows":             rows,
	})
}

// GetSummary returns the status distribution for the chart.
func (h *SessionHandler) GetSummary(c *gin.Context) {
	snap, ok := h.lookup(c)
	if !ok {
		return
	}
	filter := parseRowFilter(c)

	if cached, hit, err := h.summaryCache.Get(c.Request.Context(), snap.ID, filter); err != nil {
		log.Warn().Err(err).Msg("summary cache read failed")
	} else if hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	summary := enrich.Summarize(enrich.Apply(snap.Rows, filter))
	if err := h.summaryCache.Set(c.Request.Context(), snap.ID, filter, &summary); err != nil {
		log.Warn().Err(err).Msg("summary cache write failed")
	}

	c.JSON(http.StatusOK, summary)
}

// GetCoverage returns the per-row, per-period coverage marks.
func (h *SessionHandler) GetCoverage(c *gin.Context) {
	snap, ok := h.lookup(c)
	if !ok {
		return
	}

	if len(snap.ForecastColumns) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"coverage": domain.CoverageTable{},
			"message":  "no forecast columns in this snapshot; coverage simulation skipped",
		})
		return
	}

	rows := enrich.Apply(snap.Rows, parseRowFilter(c))
	c.JSON(http.StatusOK, gin.H{
		"coverage": enrich.CoverageTable(h.engine, rows, snap.ForecastColumns),
	})
}

// ExportCSV streams the display table as delimited text.
func (h *SessionHandler) ExportCSV(c *gin.Context) {
	snap, ok := h.lookup(c)
	if !ok {
		return
	}
	rows := enrich.Apply(snap.Rows, parseRowFilter(c))

	c.Header("Content-Disposition", `attachment; filename="inventory_status.csv"`)
	c.Header("Content-Type", "text/csv")
	if err := export.WriteCSV(c.Writer, rows, snap.HasPO); err != nil {
		log.Error().Err(err).Msg("csv export failed")
	}
}

// ExportExcel streams the display table as a styled workbook.
func (h *SessionHandler) ExportExcel(c *gin.Context) {
	snap, ok := h.lookup(c)
	if !ok {
		return
	}
	rows := enrich.Apply(snap.Rows, parseRowFilter(c))

	c.Header("Content-Disposition", `attachment; filename="inventory_status_colored.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := export.WriteExcel(c.Writer, rows, snap.HasPO); err != nil {
		log.Error().Err(err).Msg("excel export failed")
	}
}

func (h *SessionHandler) lookup(c *gin.Context) (*session.Snapshot, bool) {
	snap, err := h.store.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return snap, true
}

func readUpload(fh *multipart.FileHeader) (*ingest.Table, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	return ingest.ReadTable(f, fh.Filename)
}

func respondIngestError(c *gin.Context, file string, err error) {
	var schemaErr *ingest.SchemaError
	if errors.As(err, &schemaErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           fmt.Sprintf("%s file is missing required columns", file),
			"missing_columns": schemaErr.Missing,
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// parseRowFilter reads the site/category/source filters. Both repeated
// params and comma-separated values are supported:
//
//	?site=A&site=B
//	?site=A,B
func parseRowFilter(c *gin.Context) domain.RowFilter {
	return domain.RowFilter{
		Sites:      queryList(c, "site"),
		Categories: queryList(c, "category"),
		Sources:    queryList(c, "source"),
	}
}

func queryList(c *gin.Context, param string) []string {
	raw := c.QueryArray(param)
	if len(raw) == 0 {
		if single := strings.TrimSpace(c.Query(param)); single != "" {
			raw = []string{single}
		}
	}

	var flattened []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				flattened = append(flattened, part)
			}
		}
	}
	return flattened
}
