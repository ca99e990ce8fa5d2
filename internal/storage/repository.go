package storage

import (
	"context"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
)

// CustomerRepo defines customer storage operations
type CustomerRepo interface {
	Resolve(ctx context.Context, customer model.Customer, dryRun bool) (*model.ResolveResult, error)
	FindByEmail(ctx context.Context, email string) (*model.Customer, error)
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)
	Close(ctx context.Context) error
}

// MappingRepo defines cross-reference storage operations
type MappingRepo interface {
	Put(ctx context.Context, mapping model.IDMapping) error
	Get(ctx context.Context, sourceSystem, sourceID, targetSystem string) (*model.IDMapping, error)
	ListBySource(ctx context.Context, sourceSystem, sourceID string) ([]model.IDMapping, error)
	Close(ctx context.Context) error
}

// AuditLogRepo defines audit trail storage operations
type AuditLogRepo interface {
	Save(ctx context.Context, entry model.AuditLog) error
	FindByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditLog, error)
	Close(ctx context.Context) error
}

// ImportJobRepo defines import job storage operations
type ImportJobRepo interface {
	Save(ctx context.Context, job *model.ImportJob) error
	Update(ctx context.Context, job *model.ImportJob) error
	FindByID(ctx context.Context, id string) (*model.ImportJob, error)
	Close(ctx context.Context) error
}
