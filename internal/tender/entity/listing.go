package entity

import "time"

// Tender status values. The board renders one lane per status; anything
// unrecognized is treated as waiting.
const (
	StatusWaiting = "waiting"
	StatusWin     = "win"
	StatusFail    = "fail"
)

// TenderListing is the parent tender/bid record.
// Code is the business key: all line items join on it, there is no
// surrogate-id join anywhere in the system.
type TenderListing struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Code         string     `json:"code" gorm:"size:64;uniqueIndex;not null"`
	Year         int        `json:"year"`
	HospitalName string     `json:"hospital_name" gorm:"size:256"`
	Province     string     `json:"province" gorm:"size:100"`
	Region       string     `json:"region" gorm:"size:50"`
	Type         string     `json:"type" gorm:"size:50"`
	Distributor  string     `json:"distributor" gorm:"size:200"`
	Industry     string     `json:"industry" gorm:"size:100"`
	SalesRep     string     `json:"sales_rep" gorm:"size:100"`
	Manager      string     `json:"manager" gorm:"size:100"`
	Status       string     `json:"status" gorm:"size:20;not null;default:waiting;index"`
	CreatedDate  *time.Time `json:"created_date"`
	SignedDate   *time.Time `json:"signed_date"`
	EndDate      *time.Time `json:"end_date"`

	AttachedFiles JSONBArray `json:"attached_files" gorm:"type:jsonb"` // [{name, url, type, size}]

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TenderListing) TableName() string {
	return "tender_listings"
}

// AttachedFile is one uploaded attachment reference on a listing.
type AttachedFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}
