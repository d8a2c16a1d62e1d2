package handler

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/johnsondatabase/tender-sub001/internal/tender/grid"
	"github.com/johnsondatabase/tender-sub001/internal/tender/service"
)

// GridHandler serves the spreadsheet-style line-item grid.
type GridHandler struct {
	svc      *service.GridService
	settings *service.SettingsService
}

func NewGridHandler(svc *service.GridService, settings *service.SettingsService) *GridHandler {
	return &GridHandler{svc: svc, settings: settings}
}

// Query evaluates search + column filters + sort and returns the visible
// rows with the footer aggregates recomputed from them.
// POST /api/v1/grid/query
func (h *GridHandler) Query(c *gin.Context) {
	var q grid.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		BadRequest(c, "invalid query: "+err.Error())
		return
	}
	Success(c, h.svc.Query(c.Request.Context(), q))
}

// Refresh forces a line-item cache refetch.
// POST /api/v1/grid/refresh
func (h *GridHandler) Refresh(c *gin.Context) {
	if err := h.svc.Refresh(c.Request.Context()); err != nil {
		InternalError(c, "refresh failed: "+err.Error())
		return
	}
	Success(c, nil)
}

// SelectionStats recomputes count/sum/min/max for a cell-range selection.
// POST /api/v1/grid/selection-stats
func (h *GridHandler) SelectionStats(c *gin.Context) {
	var req struct {
		Values []float64 `json:"values"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	Success(c, grid.Selection(req.Values))
}

// Export streams an xlsx of the grid: visible columns in display order,
// rows per scope (filtered view or full dataset).
// POST /api/v1/grid/export?scope=filtered|all
func (h *GridHandler) Export(c *gin.Context) {
	var q grid.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		BadRequest(c, "invalid query: "+err.Error())
		return
	}
	scope := c.DefaultQuery("scope", service.ExportFiltered)
	view := c.DefaultQuery("view", "line_items")
	settings := h.settings.Load(c.Request.Context(), GetUserID(c), view)

	f, filename, err := h.svc.Export(c.Request.Context(), q, scope, settings)
	if err != nil {
		InternalError(c, "export failed: "+err.Error())
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+url.PathEscape(filename)+`"`)
	if err := f.Write(c.Writer); err != nil {
		// Headers are gone at this point; just log via gin's error list.
		c.Error(err) //nolint:errcheck
	}
}
