package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/johnsondatabase/tender-sub001/internal/tender/filter"
	"github.com/johnsondatabase/tender-sub001/internal/tender/service"
)

// BoardHandler serves the kanban board and its cascading filter options.
type BoardHandler struct {
	svc *service.BoardService
}

func NewBoardHandler(svc *service.BoardService) *BoardHandler {
	return &BoardHandler{svc: svc}
}

// stateFromQuery builds the filter state from repeated query params.
func stateFromQuery(c *gin.Context) filter.State {
	return filter.State{
		Keyword:      c.Query("keyword"),
		DateRanges:   c.QueryArray("date_range"),
		Hospitals:    c.QueryArray("hospital"),
		Distributors: c.QueryArray("distributor"),
		Regions:      c.QueryArray("region"),
		Industries:   c.QueryArray("industry"),
	}
}

// GetBoard renders the three lanes plus the per-field available options for
// the current filter state.
// GET /api/v1/board?keyword=&hospital=A&hospital=B&date_range=today...
func (h *BoardHandler) GetBoard(c *gin.Context) {
	Success(c, h.svc.View(c.Request.Context(), stateFromQuery(c)))
}

// Refresh forces a listing cache refetch; collaborators call this after an
// externally-initiated save.
// POST /api/v1/board/refresh
func (h *BoardHandler) Refresh(c *gin.Context) {
	if err := h.svc.Refresh(c.Request.Context()); err != nil {
		InternalError(c, "refresh failed: "+err.Error())
		return
	}
	Success(c, nil)
}
