package model

import (
	"time"

	"gorm.io/datatypes"
)

// Customer represents a canonical customer entity in the FWD CRM identity
// store. The ID is generated at creation and never changes; (Email,
// Environment) is the natural key under which incoming records are matched.
type Customer struct {
	ID             string         `json:"id" gorm:"primaryKey;type:text"`
	HubspotID      string         `json:"hubspot_id,omitempty" gorm:"column:hubspot_id;index;type:text"`
	NetsuiteID     string         `json:"netsuite_id,omitempty" gorm:"column:netsuite_id;type:text"`
	SourceSystem   string         `json:"source_system,omitempty" gorm:"type:text"` // Originating system, nullable for natively created rows
	FirstName      string         `json:"first_name,omitempty" gorm:"type:text"`
	LastName       string         `json:"last_name,omitempty" gorm:"type:text"`
	Email          string         `json:"email" gorm:"uniqueIndex:idx_customers_email_environment;type:text" validate:"required,email"`
	Phone          string         `json:"phone,omitempty" gorm:"type:text"`
	Company        string         `json:"company,omitempty" gorm:"type:text"`
	Brand          string         `json:"brand,omitempty" gorm:"type:text"`
	LifecycleStage string         `json:"lifecycle_stage,omitempty" gorm:"type:text;default:Lead"`
	PipelineStage  string         `json:"pipeline_stage,omitempty" gorm:"type:text;default:Lead"`
	CustomerType   string         `json:"customer_type,omitempty" gorm:"type:text;default:Retail"` // Retail or Wholesale
	Address        string         `json:"address,omitempty" gorm:"type:text"`
	City           string         `json:"city,omitempty" gorm:"type:text"`
	State          string         `json:"state,omitempty" gorm:"type:text"`
	Zip            string         `json:"zip,omitempty" gorm:"type:text"`
	Country        string         `json:"country,omitempty" gorm:"type:text"`
	Notes          string         `json:"notes,omitempty" gorm:"type:text"`
	SourceData     datatypes.JSON `json:"source_data,omitempty" gorm:"type:jsonb;column:source_data"` // Raw source payload snapshot
	CreatedAt      time.Time      `json:"created_at,omitempty" gorm:"autoCreateTime"`
	LastSyncedAt   time.Time      `json:"last_synced_at,omitempty" gorm:"column:last_synced_at"`
	Environment    string         `json:"environment" gorm:"uniqueIndex:idx_customers_email_environment;type:text" validate:"required,oneof=sandbox live"`
}

// TableName specifies the table name for the Customer model.
func (Customer) TableName() string {
	return "customers"
}

// CustomerUpdateColumns lists the mutable columns written on every resolved
// update. ID, CreatedAt and Environment are immutable once assigned.
func CustomerUpdateColumns() []string {
	return []string{
		"hubspot_id",
		"netsuite_id",
		"source_system",
		"first_name",
		"last_name",
		"phone",
		"company",
		"brand",
		"lifecycle_stage",
		"pipeline_stage",
		"customer_type",
		"address",
		"city",
		"state",
		"zip",
		"country",
		"notes",
		"source_data",
		"last_synced_at",
	}
}
