package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/johnsondatabase/tender-sub001/internal/tender/board"
	"github.com/johnsondatabase/tender-sub001/internal/tender/filter"
	"github.com/johnsondatabase/tender-sub001/internal/tender/store"
)

// BoardService evaluates one board render: the filter engine over the
// listing cache, the lane projection, and the cascading option lists.
type BoardService struct {
	store *store.Store
	log   *zap.Logger
}

func NewBoardService(st *store.Store, log *zap.Logger) *BoardService {
	return &BoardService{store: st, log: log}
}

// BoardResult is one full board response.
type BoardResult struct {
	Board   board.View     `json:"board"`
	Options filter.Options `json:"options"`
}

// View renders the board for a filter state against the current cache.
func (s *BoardService) View(ctx context.Context, st filter.State) *BoardResult {
	now := time.Now()
	records := s.store.Listings()
	visible := filter.Visible(records, st, now)

	return &BoardResult{
		Board:   board.Build(visible, s.store.ItemStats(), now),
		Options: filter.AvailableOptions(records, st, now),
	}
}

// Refresh is the externally triggerable cache refresh entry point
// (fetchListings in the collaborator contract).
func (s *BoardService) Refresh(ctx context.Context) error {
	return s.store.RefreshListings(ctx)
}
