package repository

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Repositories bundles every tender repository.
type Repositories struct {
	Listing  *ListingRepository
	LineItem *LineItemRepository
	AuditLog *AuditLogRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Listing:  NewListingRepository(db),
		LineItem: NewLineItemRepository(db),
		AuditLog: NewAuditLogRepository(db),
	}
}
