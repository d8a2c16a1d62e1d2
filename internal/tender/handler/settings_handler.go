package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/johnsondatabase/tender-sub001/internal/tender/grid"
	"github.com/johnsondatabase/tender-sub001/internal/tender/service"
)

// SettingsHandler persists the grid's column chrome per user+view.
type SettingsHandler struct {
	svc *service.SettingsService
}

func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// GetSettings loads the caller's settings for a view, reconciled against
// the canonical column catalogue.
// GET /api/v1/grid/settings/:view
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	Success(c, h.svc.Load(c.Request.Context(), GetUserID(c), c.Param("view")))
}

// SaveSettings stores the settings blob. Called on every resize, sort,
// pin/hide toggle or alignment change.
// PUT /api/v1/grid/settings/:view
func (h *SettingsHandler) SaveSettings(c *gin.Context) {
	var st grid.Settings
	if err := c.ShouldBindJSON(&st); err != nil {
		BadRequest(c, "invalid settings: "+err.Error())
		return
	}
	if err := h.svc.Save(c.Request.Context(), GetUserID(c), c.Param("view"), st); err != nil {
		InternalError(c, "save settings failed: "+err.Error())
		return
	}
	Success(c, nil)
}

// ResetSettings drops the stored blob so defaults apply again.
// DELETE /api/v1/grid/settings/:view
func (h *SettingsHandler) ResetSettings(c *gin.Context) {
	if err := h.svc.Reset(c.Request.Context(), GetUserID(c), c.Param("view")); err != nil {
		InternalError(c, "reset settings failed: "+err.Error())
		return
	}
	Success(c, nil)
}
