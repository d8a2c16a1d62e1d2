// Package store is the explicit in-memory state container behind the board
// and the detail grid. Each cache is refreshed wholesale by its own fetch
// method and read through typed accessors; nothing patches the caches in
// place. Staleness after any write is resolved by refetch-and-replace.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/johnsondatabase/tender-sub001/internal/tender/board"
	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
	"github.com/johnsondatabase/tender-sub001/internal/tender/repository"
)

type Store struct {
	repos *repository.Repositories
	log   *zap.Logger

	mu sync.RWMutex

	listings     []entity.TenderListing
	stats        map[string]board.ItemStats
	listingSeq   uint64 // issued to each RefreshListings call
	listingAppl  uint64 // seq of the snapshot currently applied
	lineItems    []entity.LineItem
	lineItemSeq  uint64
	lineItemAppl uint64
}

func New(repos *repository.Repositories, log *zap.Logger) *Store {
	return &Store{
		repos: repos,
		log:   log,
		stats: make(map[string]board.ItemStats),
	}
}

// RefreshListings reloads the parent cache and the per-code line-item
// totals. Overlapping refreshes are sequenced: a slow older fetch can no
// longer overwrite the result of a newer one.
func (s *Store) RefreshListings(ctx context.Context) error {
	s.mu.Lock()
	s.listingSeq++
	seq := s.listingSeq
	s.mu.Unlock()

	listings, err := s.repos.Listing.List(ctx)
	if err != nil {
		return err
	}
	totals, err := s.repos.LineItem.TotalsByCode(ctx)
	if err != nil {
		return err
	}
	stats := make(map[string]board.ItemStats, len(totals))
	for code, t := range totals {
		stats[code] = board.ItemStats{QuotaSum: t.QuotaSum, WonSum: t.WonSum}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.listingAppl {
		s.log.Debug("Discarding stale listing refresh", zap.Uint64("seq", seq))
		return nil
	}
	s.listings = listings
	s.stats = stats
	s.listingAppl = seq
	return nil
}

// RefreshLineItems reloads the full line-item cache.
func (s *Store) RefreshLineItems(ctx context.Context) error {
	s.mu.Lock()
	s.lineItemSeq++
	seq := s.lineItemSeq
	s.mu.Unlock()

	items, err := s.repos.LineItem.ListAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.lineItemAppl {
		s.log.Debug("Discarding stale line-item refresh", zap.Uint64("seq", seq))
		return nil
	}
	s.lineItems = items
	s.lineItemAppl = seq
	return nil
}

// Listings returns a copy of the current parent cache.
func (s *Store) Listings() []entity.TenderListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.TenderListing, len(s.listings))
	copy(out, s.listings)
	return out
}

// ItemStats returns a copy of the per-code aggregated line-item stats.
func (s *Store) ItemStats() map[string]board.ItemStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]board.ItemStats, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out
}

// LineItems returns a copy of the current line-item cache.
func (s *Store) LineItems() []entity.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.LineItem, len(s.lineItems))
	copy(out, s.lineItems)
	return out
}
