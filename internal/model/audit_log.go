package model

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions recorded for entity mutations.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
)

// DefaultActor identifies writes performed by the migration engine itself.
const DefaultActor = "migration_engine"

// AuditLog is an append-only record of a single entity mutation. An entry is
// written in the same transaction as the entity row it describes; entries are
// never updated or deleted.
type AuditLog struct {
	ID         string         `json:"id" gorm:"primaryKey;type:text"`
	EntityType string         `json:"entity_type" gorm:"index:idx_audit_logs_entity;type:text" validate:"required"`
	EntityID   string         `json:"entity_id" gorm:"index:idx_audit_logs_entity;type:text" validate:"required"`
	Action     string         `json:"action" gorm:"type:text" validate:"required,oneof=create update"`
	Details    datatypes.JSON `json:"details,omitempty" gorm:"type:jsonb"`
	ChangedAt  time.Time      `json:"changed_at" gorm:"autoCreateTime"`
	ChangedBy  string         `json:"changed_by" gorm:"type:text"`
}

// TableName specifies the table name for the AuditLog model.
func (AuditLog) TableName() string {
	return "audit_logs"
}
