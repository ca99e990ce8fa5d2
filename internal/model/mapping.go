package model

import (
	"time"
)

// Well-known system names used as mapping endpoints.
const (
	SystemHubspot  = "hubspot"
	SystemFwdCRM   = "fwd_crm"
	SystemNetsuite = "netsuite"
)

// IDMapping records that an id in one system corresponds to an id in another
// system. At most one mapping exists per (SourceSystem, SourceID,
// TargetSystem); repeated writes overwrite the target id, never duplicate.
type IDMapping struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text"`
	SourceSystem string    `json:"source_system" gorm:"uniqueIndex:idx_id_mappings_lookup;type:text" validate:"required"`
	SourceID     string    `json:"source_id" gorm:"uniqueIndex:idx_id_mappings_lookup;type:text" validate:"required"`
	TargetSystem string    `json:"target_system" gorm:"uniqueIndex:idx_id_mappings_lookup;type:text" validate:"required"`
	TargetID     string    `json:"target_id" gorm:"type:text" validate:"required"`
	CreatedAt    time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the IDMapping model.
func (IDMapping) TableName() string {
	return "id_mappings"
}
