package usecase

import (
	"context"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/storage"
)

// SummaryNotifier publishes batch run summaries for downstream consumers.
// A nil notifier disables publishing.
type SummaryNotifier interface {
	PublishRunSummary(ctx context.Context, event model.RunSummaryEvent) error
}

// MigrationService implements the reconcile and push workflows between the
// source CRM, the FWD CRM identity store and NetSuite.
type MigrationService struct {
	customerRepo  storage.CustomerRepo
	mappingRepo   storage.MappingRepo
	auditRepo     storage.AuditLogRepo
	importJobRepo storage.ImportJobRepo
	notifier      SummaryNotifier
	source        string
}

// NewMigrationService creates a new migration service
func NewMigrationService(
	customerRepo storage.CustomerRepo,
	mappingRepo storage.MappingRepo,
	auditRepo storage.AuditLogRepo,
	importJobRepo storage.ImportJobRepo,
	notifier SummaryNotifier,
	source string,
) *MigrationService {
	if source == "" {
		source = model.SystemHubspot
	}
	return &MigrationService{
		customerRepo:  customerRepo,
		mappingRepo:   mappingRepo,
		auditRepo:     auditRepo,
		importJobRepo: importJobRepo,
		notifier:      notifier,
		source:        source,
	}
}
