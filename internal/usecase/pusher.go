package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/apperrors"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/netsuite"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/observer"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/tenant"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

const stagePush = "push"

// PushToNetSuite forwards already-migrated contacts into NetSuite. A record
// whose source id has no FWD CRM cross-reference has not been through the
// migration yet and fails individually; the rest of the batch proceeds.
// With dryRun set, mappings are read and decisions made but no API call or
// mapping write happens.
func (s *MigrationService) PushToNetSuite(ctx context.Context, contacts []model.ContactPayload, api netsuite.Client, dryRun bool) (model.Summary, error) {
	log := logger.FromContext(ctx)
	start := utils.Now()
	var summary model.Summary

	environment, err := tenant.FromContext(ctx)
	if err != nil || environment == "" {
		log.Error("Failed to get environment from context", zap.Error(err))
		return summary, apperrors.NewFatal(err, "failed to get environment from context")
	}
	if api == nil {
		return summary, apperrors.NewFatal(apperrors.ErrBadRequest, "netsuite client is required")
	}

	if len(contacts) == 0 {
		log.Warn("No contacts to push in batch")
		return summary, nil
	}

	for i, payload := range contacts {
		action, pushErr := s.pushOne(ctx, payload, api, dryRun)
		if pushErr != nil {
			log.Warn("Record failed during push",
				zap.Int("index", i),
				zap.String("email", payload.Email),
				zap.Error(pushErr),
			)
			summary.AddError(payload.Email, pushErr.Error())
			observer.IncRecordFailure(stagePush, environment, observer.SanitizeErrorType(pushErr.Error()))
			continue
		}
		switch action {
		case model.ActionCreate:
			summary.Created++
		case model.ActionUpdate:
			summary.Updated++
		}
		observer.IncRecordProcessed(stagePush, action, environment, model.SystemFwdCRM)
	}

	observer.ObserveBatchRunDuration(stagePush, environment, time.Since(start))
	log.Info("Finished NetSuite push batch",
		zap.Int("total", summary.Total()),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
		zap.Bool("dry_run", dryRun),
		zap.Duration("duration", time.Since(start)),
	)

	if !dryRun {
		s.publishSummary(ctx, stagePush, model.SystemFwdCRM, model.SystemNetsuite, environment, summary)
	}
	return summary, nil
}

// pushOne forwards a single record. The FWD CRM cross-reference is the
// precondition; the netsuite cross-reference decides create versus update.
func (s *MigrationService) pushOne(ctx context.Context, payload model.ContactPayload, api netsuite.Client, dryRun bool) (string, error) {
	if payload.HubspotID == "" {
		return "", fmt.Errorf("%w: record has no source id", apperrors.ErrInvalidRecord)
	}

	fwdMapping, err := s.mappingRepo.Get(ctx, s.source, payload.HubspotID, model.SystemFwdCRM)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: run the FWD CRM migration first", apperrors.ErrNotYetMigrated)
		}
		return "", err
	}
	fwdID := fwdMapping.TargetID

	nsMapping, err := s.mappingRepo.Get(ctx, model.SystemFwdCRM, fwdID, model.SystemNetsuite)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}

	if nsMapping != nil {
		if dryRun {
			return model.ActionUpdate, nil
		}
		if err := api.UpdateCustomer(ctx, nsMapping.TargetID, payload); err != nil {
			return "", fmt.Errorf("%w: update customer %s: %w", apperrors.ErrUpstreamAPI, nsMapping.TargetID, err)
		}
		return model.ActionUpdate, nil
	}

	if dryRun {
		return model.ActionCreate, nil
	}
	netsuiteID, err := api.CreateCustomer(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("%w: create customer: %w", apperrors.ErrUpstreamAPI, err)
	}
	mapping := model.IDMapping{
		SourceSystem: model.SystemFwdCRM,
		SourceID:     fwdID,
		TargetSystem: model.SystemNetsuite,
		TargetID:     netsuiteID,
	}
	if err := s.mappingRepo.Put(ctx, mapping); err != nil {
		return "", fmt.Errorf("failed to record netsuite id mapping: %w", err)
	}
	return model.ActionCreate, nil
}
