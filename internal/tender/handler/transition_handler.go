package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/johnsondatabase/tender-sub001/internal/tender/repository"
	"github.com/johnsondatabase/tender-sub001/internal/tender/service"
)

// TransitionHandler commits lane moves. The drag library has already moved
// the card optimistically by the time these endpoints run; a non-2xx reply
// tells the client to revert the card and refetch.
type TransitionHandler struct {
	svc *service.TransitionService
}

func NewTransitionHandler(svc *service.TransitionService) *TransitionHandler {
	return &TransitionHandler{svc: svc}
}

// MarkWin confirms a Waiting->Win transition sub-form.
// POST /api/v1/tenders/:code/win
func (h *TransitionHandler) MarkWin(c *gin.Context) {
	code := c.Param("code")
	var req service.WinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	err := h.svc.MarkWin(c.Request.Context(), GetUserID(c), GetUserName(c), code, &req)
	if err != nil {
		h.transitionError(c, code, err)
		return
	}
	Success(c, nil)
}

// MarkFail commits an Any->Fail transition, zeroing fulfillment data.
// POST /api/v1/tenders/:code/fail
func (h *TransitionHandler) MarkFail(c *gin.Context) {
	code := c.Param("code")
	err := h.svc.MarkFail(c.Request.Context(), GetUserID(c), GetUserName(c), code)
	if err != nil {
		h.transitionError(c, code, err)
		return
	}
	Success(c, nil)
}

// MarkWaiting reverts a tender to the pending baseline.
// POST /api/v1/tenders/:code/waiting
func (h *TransitionHandler) MarkWaiting(c *gin.Context) {
	code := c.Param("code")
	err := h.svc.MarkWaiting(c.Request.Context(), GetUserID(c), GetUserName(c), code)
	if err != nil {
		h.transitionError(c, code, err)
		return
	}
	Success(c, nil)
}

func (h *TransitionHandler) transitionError(c *gin.Context, code string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		NotFound(c, "tender not found: "+code)
		return
	}
	Conflict(c, "transition failed: "+err.Error())
}
