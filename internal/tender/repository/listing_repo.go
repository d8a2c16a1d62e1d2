package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
)

// ListingRepository persists TenderListing rows. All lookups go through the
// business key (code), not the surrogate id.
type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// List returns every listing, newest created date first.
func (r *ListingRepository) List(ctx context.Context) ([]entity.TenderListing, error) {
	var items []entity.TenderListing
	err := r.db.WithContext(ctx).
		Order("created_date DESC NULLS LAST, code").
		Find(&items).Error
	return items, err
}

func (r *ListingRepository) FindByCode(ctx context.Context, code string) (*entity.TenderListing, error) {
	var item entity.TenderListing
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert inserts a new listing or updates the existing row with the same
// code. Returns whether the row was created.
func (r *ListingRepository) Upsert(ctx context.Context, listing *entity.TenderListing) (created bool, err error) {
	existing, err := r.FindByCode(ctx, listing.Code)
	if errors.Is(err, ErrNotFound) {
		if listing.ID == "" {
			listing.ID = uuid.New().String()[:32]
		}
		listing.CreatedAt = time.Now()
		listing.UpdatedAt = listing.CreatedAt
		return true, r.db.WithContext(ctx).Create(listing).Error
	}
	if err != nil {
		return false, err
	}

	listing.ID = existing.ID
	listing.CreatedBy = existing.CreatedBy
	listing.CreatedAt = existing.CreatedAt
	listing.UpdatedAt = time.Now()
	return false, r.db.WithContext(ctx).Save(listing).Error
}

// UpdateStatus writes a lane transition onto the parent row. Fields beyond
// status (signed/end dates on a win) ride along in extra.
func (r *ListingRepository) UpdateStatus(ctx context.Context, code, status string, extra map[string]interface{}) error {
	values := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		values[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&entity.TenderListing{}).
		Where("code = ?", code).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ListingRepository) DeleteByCode(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Where("code = ?", code).Delete(&entity.TenderListing{}).Error
}
