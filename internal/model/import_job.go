package model

import (
	"time"

	"gorm.io/datatypes"
)

// Import job lifecycle states.
const (
	ImportStatusPending   = "pending"
	ImportStatusRunning   = "running"
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
)

// ImportJob tracks a single CSV import run: where the file came from, how
// many records it held and how the batch summary came out.
type ImportJob struct {
	ID          string         `json:"id" gorm:"primaryKey;type:text"`
	Source      string         `json:"source" gorm:"type:text"`
	Filename    string         `json:"filename" gorm:"type:text"`
	RecordCount int            `json:"record_count"`
	Created     int            `json:"created"`
	Updated     int            `json:"updated"`
	Failed      int            `json:"failed"`
	Errors      datatypes.JSON `json:"errors,omitempty" gorm:"type:jsonb"`
	Status      string         `json:"status" gorm:"type:text;default:pending"`
	Environment string         `json:"environment" gorm:"index;type:text"`
	ImportedAt  time.Time      `json:"imported_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the ImportJob model.
func (ImportJob) TableName() string {
	return "import_jobs"
}
