package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/johnsondatabase/tender-sub001/internal/tender/repository"
	"github.com/johnsondatabase/tender-sub001/internal/tender/service"
)

// ListingHandler exposes the editor workflow and the audit-trail read path.
type ListingHandler struct {
	svc *service.ListingService
}

func NewListingHandler(svc *service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

// GetListing returns one tender with its line items for the editor, plus
// the open-time snapshot backing the unsaved-changes check.
// GET /api/v1/tenders/:code
func (h *ListingHandler) GetListing(c *gin.Context) {
	code := c.Param("code")
	listing, items, err := h.svc.Get(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "tender not found: "+code)
			return
		}
		InternalError(c, "load tender failed: "+err.Error())
		return
	}
	Success(c, gin.H{
		"listing":    listing,
		"line_items": items,
		"snapshot":   service.SnapshotFor(listing, items),
	})
}

// SaveListing runs the editor save (create or update by code).
// POST /api/v1/tenders
func (h *ListingHandler) SaveListing(c *gin.Context) {
	var req service.SaveListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	listing, err := h.svc.Save(c.Request.Context(), GetUserID(c), GetUserName(c), &req)
	if err != nil {
		InternalError(c, "save tender failed: "+err.Error())
		return
	}
	Success(c, listing)
}

// DeleteListing removes a tender. Only valid from the fail lane.
// DELETE /api/v1/tenders/:code
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	code := c.Param("code")
	err := h.svc.Delete(c.Request.Context(), GetUserID(c), GetUserName(c), code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "tender not found: "+code)
			return
		}
		Conflict(c, "delete tender failed: "+err.Error())
		return
	}
	Success(c, nil)
}

// History returns the audit trail of one tender, newest first.
// GET /api/v1/tenders/:code/history?page=1&page_size=20
func (h *ListingHandler) History(c *gin.Context) {
	code := c.Param("code")
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.History(c.Request.Context(), code, page, pageSize)
	if err != nil {
		InternalError(c, "load history failed: "+err.Error())
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// PreviewCode returns the auto-generated tender code for the editor's
// derived-field behavior. The user can still override it before saving.
// GET /api/v1/tenders/code-preview?created_date=2026-01-31&hospital=...
func (h *ListingHandler) PreviewCode(c *gin.Context) {
	hospital := c.Query("hospital")
	createdDate, err := time.ParseInLocation("2006-01-02", c.Query("created_date"), time.Local)
	if err != nil || hospital == "" {
		BadRequest(c, "created_date and hospital are required")
		return
	}
	Success(c, gin.H{"code": service.GenerateCode(createdDate, hospital)})
}
