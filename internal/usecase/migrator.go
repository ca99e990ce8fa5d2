package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/apperrors"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/observer"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/tenant"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/validator"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

const stageMigrate = "migrate"

// MigrateContacts reconciles a batch of source contacts against the FWD CRM
// identity store. Records are processed in input order; a failed record is
// reported in the summary and never aborts the rest of the batch. With
// dryRun set the store is left untouched and the summary reports what a real
// run would have done.
func (s *MigrationService) MigrateContacts(ctx context.Context, contacts []model.ContactPayload, dryRun bool) (model.Summary, error) {
	log := logger.FromContext(ctx)
	start := utils.Now()
	var summary model.Summary

	environment, err := tenant.FromContext(ctx)
	if err != nil || environment == "" {
		log.Error("Failed to get environment from context", zap.Error(err))
		return summary, apperrors.NewFatal(err, "failed to get environment from context")
	}

	if len(contacts) == 0 {
		log.Warn("No contacts to migrate in batch")
		return summary, nil
	}

	for i, payload := range contacts {
		action, migrateErr := s.migrateOne(ctx, payload, environment, dryRun)
		if migrateErr != nil {
			log.Warn("Record failed during migration",
				zap.Int("index", i),
				zap.String("email", payload.Email),
				zap.Error(migrateErr),
			)
			summary.AddError(payload.Email, migrateErr.Error())
			observer.IncRecordFailure(stageMigrate, environment, observer.SanitizeErrorType(migrateErr.Error()))
			continue
		}
		switch action {
		case model.ActionCreate:
			summary.Created++
		case model.ActionUpdate:
			summary.Updated++
		}
		observer.IncRecordProcessed(stageMigrate, action, environment, s.source)
	}

	observer.ObserveBatchRunDuration(stageMigrate, environment, time.Since(start))
	log.Info("Finished contact migration batch",
		zap.Int("total", summary.Total()),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
		zap.Bool("dry_run", dryRun),
		zap.Duration("duration", time.Since(start)),
	)

	if !dryRun {
		s.publishSummary(ctx, stageMigrate, s.source, model.SystemFwdCRM, environment, summary)
	}
	return summary, nil
}

// migrateOne validates, resolves and cross-references a single record.
func (s *MigrationService) migrateOne(ctx context.Context, payload model.ContactPayload, environment string, dryRun bool) (string, error) {
	if err := validator.Validate(payload); err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrInvalidRecord, err)
	}

	customer := canonicalCustomer(payload, s.source, environment)
	result, err := s.customerRepo.Resolve(ctx, customer, dryRun)
	if err != nil {
		return "", err
	}

	// Cross-reference the source id; skipped on dry runs and for records
	// that carry no source id.
	if !dryRun && payload.HubspotID != "" {
		mapping := model.IDMapping{
			SourceSystem: s.source,
			SourceID:     payload.HubspotID,
			TargetSystem: model.SystemFwdCRM,
			TargetID:     result.ID,
		}
		if err := s.mappingRepo.Put(ctx, mapping); err != nil {
			return "", fmt.Errorf("failed to record id mapping: %w", err)
		}
	}
	return result.Action, nil
}

// publishSummary sends the run summary event when a notifier is configured.
// Publish failures are logged, never surfaced to the caller.
func (s *MigrationService) publishSummary(ctx context.Context, stage, source, target, environment string, summary model.Summary) {
	if s.notifier == nil {
		return
	}
	event := model.RunSummaryEvent{
		RunID:       uuid.NewString(),
		Stage:       stage,
		Source:      source,
		Target:      target,
		Environment: environment,
		Summary:     summary,
		CompletedAt: utils.Now(),
	}
	err := s.notifier.PublishRunSummary(ctx, event)
	observer.IncSummaryPublished(stage, environment, err)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to publish run summary",
			zap.String("run_id", event.RunID),
			zap.String("stage", stage),
			zap.Error(err),
		)
	}
}
