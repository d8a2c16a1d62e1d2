package entity

import "time"

// LineItem is one material line inside a tender. Fully owned by its parent:
// every editor save deletes and reinserts the whole set for a code, so IDs
// are not stable across saves. Status and several parent attributes are
// denormalized for reporting.
type LineItem struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	Code         string  `json:"code" gorm:"size:64;not null;index"` // parent tender code
	MaterialCode string  `json:"material_code" gorm:"size:64;not null"`
	MaterialName string  `json:"material_name" gorm:"size:256"`
	Unit         string  `json:"unit" gorm:"size:20"`
	UnitPrice    float64 `json:"unit_price"`
	Quota        float64 `json:"quota"`        // requested quantity
	WonQuantity  float64 `json:"won_quantity"` // fulfilled quantity
	Status       string  `json:"status" gorm:"size:20;index"`

	// Denormalized parent attributes
	HospitalName string     `json:"hospital_name" gorm:"size:256"`
	Province     string     `json:"province" gorm:"size:100"`
	Region       string     `json:"region" gorm:"size:50"`
	CreatedDate  *time.Time `json:"created_date"`
	SignedDate   *time.Time `json:"signed_date"`
	EndDate      *time.Time `json:"end_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LineItem) TableName() string {
	return "tender_line_items"
}
