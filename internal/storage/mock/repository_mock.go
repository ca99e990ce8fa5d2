package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
)

// --- CustomerRepo Mock ---

// CustomerRepoMock mocks the CustomerRepo interface
type CustomerRepoMock struct {
	mock.Mock
}

// Resolve mocks the Resolve method
func (m *CustomerRepoMock) Resolve(ctx context.Context, customer model.Customer, dryRun bool) (*model.ResolveResult, error) {
	args := m.Called(ctx, customer, dryRun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResolveResult), args.Error(1)
}

// FindByEmail mocks the FindByEmail method
func (m *CustomerRepoMock) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

// FindByID mocks the FindByID method
func (m *CustomerRepoMock) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

// List mocks the List method
func (m *CustomerRepoMock) List(ctx context.Context) ([]model.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Customer), args.Error(1)
}

// Close mocks the Close method
func (m *CustomerRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MappingRepo Mock ---

// MappingRepoMock mocks the MappingRepo interface
type MappingRepoMock struct {
	mock.Mock
}

// Put mocks the Put method
func (m *MappingRepoMock) Put(ctx context.Context, mapping model.IDMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

// Get mocks the Get method
func (m *MappingRepoMock) Get(ctx context.Context, sourceSystem, sourceID, targetSystem string) (*model.IDMapping, error) {
	args := m.Called(ctx, sourceSystem, sourceID, targetSystem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IDMapping), args.Error(1)
}

// ListBySource mocks the ListBySource method
func (m *MappingRepoMock) ListBySource(ctx context.Context, sourceSystem, sourceID string) ([]model.IDMapping, error) {
	args := m.Called(ctx, sourceSystem, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.IDMapping), args.Error(1)
}

// Close mocks the Close method
func (m *MappingRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- AuditLogRepo Mock ---

// AuditLogRepoMock mocks the AuditLogRepo interface
type AuditLogRepoMock struct {
	mock.Mock
}

// Save mocks the Save method
func (m *AuditLogRepoMock) Save(ctx context.Context, entry model.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// FindByEntity mocks the FindByEntity method
func (m *AuditLogRepoMock) FindByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditLog, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditLog), args.Error(1)
}

// Close mocks the Close method
func (m *AuditLogRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- ImportJobRepo Mock ---

// ImportJobRepoMock mocks the ImportJobRepo interface
type ImportJobRepoMock struct {
	mock.Mock
}

// Save mocks the Save method
func (m *ImportJobRepoMock) Save(ctx context.Context, job *model.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// Update mocks the Update method
func (m *ImportJobRepoMock) Update(ctx context.Context, job *model.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// FindByID mocks the FindByID method
func (m *ImportJobRepoMock) FindByID(ctx context.Context, id string) (*model.ImportJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ImportJob), args.Error(1)
}

// Close mocks the Close method
func (m *ImportJobRepoMock) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
