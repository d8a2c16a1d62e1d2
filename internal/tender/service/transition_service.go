package service

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
	"github.com/johnsondatabase/tender-sub001/internal/tender/repository"
	"github.com/johnsondatabase/tender-sub001/internal/tender/sse"
	"github.com/johnsondatabase/tender-sub001/internal/tender/store"
)

// Transition events. Drag-and-drop between lanes and the card action
// buttons both funnel into these.
const (
	EventWin  = "win"
	EventFail = "fail"
	EventWait = "wait"
)

// Win quantity resolution modes.
const (
	WinModeFull    = "full"    // every line item wins its full quota
	WinModePartial = "partial" // per-item quantities, defaulting to quota
)

// newStatusFSM builds the tender lifecycle machine seeded with the current
// status. Waiting->Win is the only path into win; fail and waiting are
// reachable from anywhere else.
func newStatusFSM(current string) *fsm.FSM {
	return fsm.NewFSM(
		current,
		fsm.Events{
			{Name: EventWin, Src: []string{entity.StatusWaiting}, Dst: entity.StatusWin},
			{Name: EventFail, Src: []string{entity.StatusWaiting, entity.StatusWin}, Dst: entity.StatusFail},
			{Name: EventWait, Src: []string{entity.StatusWin, entity.StatusFail}, Dst: entity.StatusWaiting},
		},
		fsm.Callbacks{},
	)
}

// TransitionService commits lane moves: it enforces the status machine,
// writes the parent first, then bulk-rewrites the children's status and won
// quantities. A parent failure aborts the children entirely; the caller's
// refetch (triggered here via store refresh) discards any optimistic UI
// state.
type TransitionService struct {
	repos *repository.Repositories
	store *store.Store
	hub   *sse.Hub
	log   *zap.Logger
}

func NewTransitionService(repos *repository.Repositories, st *store.Store, hub *sse.Hub, log *zap.Logger) *TransitionService {
	return &TransitionService{repos: repos, store: st, hub: hub, log: log}
}

// WinRequest is the transition sub-form confirmed on a Waiting->Win drop.
type WinRequest struct {
	SignedDate time.Time          `json:"signed_date" binding:"required"`
	EndDate    time.Time          `json:"end_date" binding:"required"`
	Mode       string             `json:"mode" binding:"required"` // full|partial
	Quantities map[string]float64 `json:"quantities"`              // material code -> won quantity, partial mode
}

func (s *TransitionService) fire(ctx context.Context, code, event string) (from, to string, err error) {
	listing, err := s.repos.Listing.FindByCode(ctx, code)
	if err != nil {
		return "", "", err
	}
	machine := newStatusFSM(listing.Status)
	if err := machine.Event(ctx, event); err != nil {
		return "", "", fmt.Errorf("transition %s from %s: %w", event, listing.Status, err)
	}
	return listing.Status, machine.Current(), nil
}

// MarkWin commits a confirmed Waiting->Win transition. Cancelling the
// sub-form never reaches this method; the UI reverts the drag on its own.
func (s *TransitionService) MarkWin(ctx context.Context, operatorID, operatorName, code string, req *WinRequest) error {
	if req.Mode != WinModeFull && req.Mode != WinModePartial {
		return fmt.Errorf("unknown win mode %q", req.Mode)
	}

	from, to, err := s.fire(ctx, code, EventWin)
	if err != nil {
		return err
	}

	err = s.repos.Listing.UpdateStatus(ctx, code, to, map[string]interface{}{
		"signed_date": req.SignedDate,
		"end_date":    req.EndDate,
	})
	if err != nil {
		s.refresh(ctx)
		return fmt.Errorf("update listing status: %w", err)
	}

	quantities := req.Quantities
	if req.Mode == WinModeFull {
		quantities = nil // every item defaults to its quota
	}
	if err := s.repos.LineItem.ApplyWin(ctx, code, quantities, req.SignedDate, req.EndDate); err != nil {
		s.log.Warn("Win quantities rewrite failed after parent update",
			zap.String("code", code), zap.Error(err))
	}

	s.commit(ctx, code, from, to, operatorID, operatorName)
	return nil
}

// MarkFail zeroes every line item's won quantity. Destructive and
// immediate.
func (s *TransitionService) MarkFail(ctx context.Context, operatorID, operatorName, code string) error {
	from, to, err := s.fire(ctx, code, EventFail)
	if err != nil {
		return err
	}

	if err := s.repos.Listing.UpdateStatus(ctx, code, to, nil); err != nil {
		s.refresh(ctx)
		return fmt.Errorf("update listing status: %w", err)
	}
	if err := s.repos.LineItem.ZeroForFail(ctx, code); err != nil {
		s.log.Warn("Fail rewrite failed after parent update",
			zap.String("code", code), zap.Error(err))
	}

	s.commit(ctx, code, from, to, operatorID, operatorName)
	return nil
}

// MarkWaiting reverts a tender to the fully-pending baseline: every line
// item's won quantity mirrors its quota again.
func (s *TransitionService) MarkWaiting(ctx context.Context, operatorID, operatorName, code string) error {
	from, to, err := s.fire(ctx, code, EventWait)
	if err != nil {
		return err
	}

	if err := s.repos.Listing.UpdateStatus(ctx, code, to, nil); err != nil {
		s.refresh(ctx)
		return fmt.Errorf("update listing status: %w", err)
	}
	if err := s.repos.LineItem.RestoreForWaiting(ctx, code); err != nil {
		s.log.Warn("Waiting rewrite failed after parent update",
			zap.String("code", code), zap.Error(err))
	}

	s.commit(ctx, code, from, to, operatorID, operatorName)
	return nil
}

func (s *TransitionService) commit(ctx context.Context, code, from, to, operatorID, operatorName string) {
	audit := &entity.AuditLog{
		Code:         code,
		Action:       "status_change",
		FromStatus:   from,
		ToStatus:     to,
		Content:      fmt.Sprintf("status: %s -> %s", from, to),
		OperatorID:   operatorID,
		OperatorName: operatorName,
		CreatedAt:    time.Now(),
	}
	if err := s.repos.AuditLog.Create(ctx, audit); err != nil {
		s.log.Warn("Audit write failed", zap.String("code", code), zap.Error(err))
	}

	s.hub.PublishListingUpdate(code, "status_change")
	s.hub.PublishLineItemUpdate(code)
	s.refresh(ctx)
}

func (s *TransitionService) refresh(ctx context.Context) {
	if err := s.store.RefreshListings(ctx); err != nil {
		s.log.Warn("Listing cache refresh failed", zap.Error(err))
	}
	if err := s.store.RefreshLineItems(ctx); err != nil {
		s.log.Warn("Line item cache refresh failed", zap.Error(err))
	}
}
