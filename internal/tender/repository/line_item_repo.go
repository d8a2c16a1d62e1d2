package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnsondatabase/tender-sub001/internal/tender/entity"
)

// LineItemRepository persists the child material rows of a tender. Children
// are always rewritten wholesale: the editor replaces the full set per code,
// and lane transitions bulk-update status/quantities per code.
type LineItemRepository struct {
	db *gorm.DB
}

func NewLineItemRepository(db *gorm.DB) *LineItemRepository {
	return &LineItemRepository{db: db}
}

func (r *LineItemRepository) ListAll(ctx context.Context) ([]entity.LineItem, error) {
	var items []entity.LineItem
	err := r.db.WithContext(ctx).Order("code, material_code").Find(&items).Error
	return items, err
}

func (r *LineItemRepository) ListByCode(ctx context.Context, code string) ([]entity.LineItem, error) {
	var items []entity.LineItem
	err := r.db.WithContext(ctx).Where("code = ?", code).Order("material_code").Find(&items).Error
	return items, err
}

// ReplaceForCode deletes every line item of the tender and reinserts the
// given set with fresh ids. Full replacement is the storage contract; the
// audit diff is computed elsewhere, never here.
func (r *LineItemRepository) ReplaceForCode(ctx context.Context, code string, items []entity.LineItem) error {
	if err := r.db.WithContext(ctx).Where("code = ?", code).Delete(&entity.LineItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	now := time.Now()
	for i := range items {
		items[i].ID = uuid.New().String()[:32]
		items[i].Code = code
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 200).Error
}

// ZeroForFail sets every child of the tender to status=fail with won
// quantity 0. Fulfillment data is intentionally discarded.
func (r *LineItemRepository) ZeroForFail(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Model(&entity.LineItem{}).
		Where("code = ?", code).
		Updates(map[string]interface{}{
			"status":       entity.StatusFail,
			"won_quantity": 0,
			"updated_at":   time.Now(),
		}).Error
}

// RestoreForWaiting reverts every child to the fully-pending baseline:
// won quantity mirrors quota again.
func (r *LineItemRepository) RestoreForWaiting(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).
		Exec("UPDATE tender_line_items SET status = ?, won_quantity = quota, updated_at = ? WHERE code = ?",
			entity.StatusWaiting, time.Now(), code).Error
}

// ApplyWin writes a win transition onto the children: status=win, won
// quantity per the resolved quantities map (keyed by material code, missing
// entries default to quota), and the denormalized contract dates.
func (r *LineItemRepository) ApplyWin(ctx context.Context, code string, quantities map[string]float64, signed, end time.Time) error {
	items, err := r.ListByCode(ctx, code)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, item := range items {
		won := item.Quota
		if q, ok := quantities[item.MaterialCode]; ok {
			won = q
		}
		err := r.db.WithContext(ctx).
			Model(&entity.LineItem{}).
			Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"status":       entity.StatusWin,
				"won_quantity": won,
				"signed_date":  signed,
				"end_date":     end,
				"updated_at":   now,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// CodeTotals aggregates quota and won sums per tender code for the board's
// fulfillment rings.
type CodeTotals struct {
	Code     string
	QuotaSum float64
	WonSum   float64
}

func (r *LineItemRepository) TotalsByCode(ctx context.Context) (map[string]CodeTotals, error) {
	var rows []CodeTotals
	err := r.db.WithContext(ctx).
		Model(&entity.LineItem{}).
		Select("code, COALESCE(SUM(quota), 0) AS quota_sum, COALESCE(SUM(won_quantity), 0) AS won_sum").
		Group("code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]CodeTotals, len(rows))
	for _, row := range rows {
		out[row.Code] = row
	}
	return out, nil
}

func (r *LineItemRepository) DeleteByCode(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Where("code = ?", code).Delete(&entity.LineItem{}).Error
}
