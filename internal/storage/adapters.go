package storage

import (
	"context"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
)

// CustomerRepoAdapter adapts the PostgresRepo to the CustomerRepo interface
type CustomerRepoAdapter struct {
	postgres *PostgresRepo
}

// NewCustomerRepoAdapter creates a new customer repository adapter
func NewCustomerRepoAdapter(postgres *PostgresRepo) CustomerRepo {
	return &CustomerRepoAdapter{postgres: postgres}
}

// Resolve upserts a customer by its natural key
func (a *CustomerRepoAdapter) Resolve(ctx context.Context, customer model.Customer, dryRun bool) (*model.ResolveResult, error) {
	return a.postgres.ResolveCustomer(ctx, customer, dryRun)
}

// FindByEmail finds a customer by email
func (a *CustomerRepoAdapter) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	return a.postgres.FindCustomerByEmail(ctx, email)
}

// FindByID finds a customer by generated id
func (a *CustomerRepoAdapter) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	return a.postgres.FindCustomerByID(ctx, id)
}

// List lists customers in the current environment
func (a *CustomerRepoAdapter) List(ctx context.Context) ([]model.Customer, error) {
	return a.postgres.ListCustomers(ctx)
}

func (a *CustomerRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// MappingRepoAdapter adapts the PostgresRepo to the MappingRepo interface
type MappingRepoAdapter struct {
	postgres *PostgresRepo
}

// NewMappingRepoAdapter creates a new mapping repository adapter
func NewMappingRepoAdapter(postgres *PostgresRepo) MappingRepo {
	return &MappingRepoAdapter{postgres: postgres}
}

// Put records or overwrites a cross-reference
func (a *MappingRepoAdapter) Put(ctx context.Context, mapping model.IDMapping) error {
	return a.postgres.PutMapping(ctx, mapping)
}

// Get looks up a cross-reference
func (a *MappingRepoAdapter) Get(ctx context.Context, sourceSystem, sourceID, targetSystem string) (*model.IDMapping, error) {
	return a.postgres.GetMapping(ctx, sourceSystem, sourceID, targetSystem)
}

// ListBySource lists all cross-references for a source record
func (a *MappingRepoAdapter) ListBySource(ctx context.Context, sourceSystem, sourceID string) ([]model.IDMapping, error) {
	return a.postgres.ListMappingsBySource(ctx, sourceSystem, sourceID)
}

func (a *MappingRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// AuditLogRepoAdapter adapts the PostgresRepo to the AuditLogRepo interface
type AuditLogRepoAdapter struct {
	postgres *PostgresRepo
}

// NewAuditLogRepoAdapter creates a new audit log repository adapter
func NewAuditLogRepoAdapter(postgres *PostgresRepo) AuditLogRepo {
	return &AuditLogRepoAdapter{postgres: postgres}
}

// Save appends an audit entry
func (a *AuditLogRepoAdapter) Save(ctx context.Context, entry model.AuditLog) error {
	return a.postgres.SaveAuditLog(ctx, entry)
}

// FindByEntity returns the audit trail of an entity
func (a *AuditLogRepoAdapter) FindByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditLog, error) {
	return a.postgres.FindAuditLogsByEntity(ctx, entityType, entityID)
}

func (a *AuditLogRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// ImportJobRepoAdapter adapts the PostgresRepo to the ImportJobRepo interface
type ImportJobRepoAdapter struct {
	postgres *PostgresRepo
}

// NewImportJobRepoAdapter creates a new import job repository adapter
func NewImportJobRepoAdapter(postgres *PostgresRepo) ImportJobRepo {
	return &ImportJobRepoAdapter{postgres: postgres}
}

// Save inserts an import job record
func (a *ImportJobRepoAdapter) Save(ctx context.Context, job *model.ImportJob) error {
	return a.postgres.SaveImportJob(ctx, job)
}

// Update persists the current state of an import job
func (a *ImportJobRepoAdapter) Update(ctx context.Context, job *model.ImportJob) error {
	return a.postgres.UpdateImportJob(ctx, job)
}

// FindByID fetches one import job record
func (a *ImportJobRepoAdapter) FindByID(ctx context.Context, id string) (*model.ImportJob, error) {
	return a.postgres.FindImportJobByID(ctx, id)
}

func (a *ImportJobRepoAdapter) Close(ctx context.Context) error {
	return a.postgres.Close(ctx)
}

// Ensure adapters implement the interfaces
var _ CustomerRepo = (*CustomerRepoAdapter)(nil)
var _ MappingRepo = (*MappingRepoAdapter)(nil)
var _ AuditLogRepo = (*AuditLogRepoAdapter)(nil)
var _ ImportJobRepo = (*ImportJobRepoAdapter)(nil)
