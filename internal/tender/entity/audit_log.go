package entity

import "time"

// AuditLog records one line per committed mutation of a tender: creation,
// editor saves (with the field/line-item diff in Content), status
// transitions and deletes.
type AuditLog struct {
	ID   string `json:"id" gorm:"primaryKey;size:32"`
	Code string `json:"code" gorm:"size:64;not null;index"`

	Action     string `json:"action" gorm:"size:50;not null"` // create/update/status_change/delete
	FromStatus string `json:"from_status" gorm:"size:20"`
	ToStatus   string `json:"to_status" gorm:"size:20"`
	Content    string `json:"content" gorm:"type:text"`
	Metadata   JSONB  `json:"metadata" gorm:"type:jsonb"`

	OperatorID   string    `json:"operator_id" gorm:"size:32"`
	OperatorName string    `json:"operator_name" gorm:"size:100"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "tender_audit_logs"
}
