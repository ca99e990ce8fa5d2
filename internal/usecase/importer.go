package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	apperrors "gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/apperrors"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/tenant"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

// csvSetters maps recognised header names to payload field setters. Unknown
// columns are ignored, missing ones leave the field empty.
var csvSetters = map[string]func(*model.ContactPayload, string){
	"first_name":      func(p *model.ContactPayload, v string) { p.FirstName = v },
	"last_name":       func(p *model.ContactPayload, v string) { p.LastName = v },
	"email":           func(p *model.ContactPayload, v string) { p.Email = v },
	"phone":           func(p *model.ContactPayload, v string) { p.Phone = v },
	"company":         func(p *model.ContactPayload, v string) { p.Company = v },
	"brand":           func(p *model.ContactPayload, v string) { p.Brand = v },
	"customer_type":   func(p *model.ContactPayload, v string) { p.CustomerType = v },
	"address":         func(p *model.ContactPayload, v string) { p.Address = v },
	"city":            func(p *model.ContactPayload, v string) { p.City = v },
	"state":           func(p *model.ContactPayload, v string) { p.State = v },
	"zip":             func(p *model.ContactPayload, v string) { p.Zip = v },
	"country":         func(p *model.ContactPayload, v string) { p.Country = v },
	"notes":           func(p *model.ContactPayload, v string) { p.Notes = v },
	"pipeline_stage":  func(p *model.ContactPayload, v string) { p.PipelineStage = v },
	"lifecycle_stage": func(p *model.ContactPayload, v string) { p.LifecycleStage = v },
	"hubspot_id":      func(p *model.ContactPayload, v string) { p.HubspotID = v },
	"netsuite_id":     func(p *model.ContactPayload, v string) { p.NetsuiteID = v },
}

// ParseContactsCSV reads contact payloads from CSV. The first row is the
// header; column order is free and unrecognised columns are skipped.
func ParseContactsCSV(r io.Reader) ([]model.ContactPayload, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: csv file is empty", apperrors.ErrBadRequest)
		}
		return nil, fmt.Errorf("%w: failed to read csv header: %w", apperrors.ErrBadRequest, err)
	}

	setters := make([]func(*model.ContactPayload, string), len(header))
	for i, name := range header {
		setters[i] = csvSetters[strings.ToLower(strings.TrimSpace(name))]
	}

	var contacts []model.ContactPayload
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read csv row: %w", apperrors.ErrBadRequest, err)
		}
		var payload model.ContactPayload
		for i, value := range record {
			if i >= len(setters) || setters[i] == nil {
				continue
			}
			setters[i](&payload, strings.TrimSpace(value))
		}
		contacts = append(contacts, payload)
	}
	return contacts, nil
}

// ImportFromCSV migrates the contacts held in a CSV stream. A non-dry run
// records an ImportJob for the dashboard plus an audit entry; the migration
// itself goes through MigrateContacts with its usual per-record isolation.
func (s *MigrationService) ImportFromCSV(ctx context.Context, filename string, r io.Reader, dryRun bool) (model.Summary, error) {
	log := logger.FromContext(ctx)
	var summary model.Summary

	environment, err := tenant.FromContext(ctx)
	if err != nil || environment == "" {
		log.Error("Failed to get environment from context", zap.Error(err))
		return summary, apperrors.NewFatal(err, "failed to get environment from context")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return summary, apperrors.NewFatal(err, "failed to read csv stream")
	}
	log.Info("Read CSV import file",
		zap.String("filename", filename),
		zap.String("size", utils.ByteCountSI(len(data))),
	)

	contacts, err := ParseContactsCSV(bytes.NewReader(data))
	if err != nil {
		return summary, err
	}

	var job *model.ImportJob
	if !dryRun {
		job = &model.ImportJob{
			Source:      "csv",
			Filename:    filename,
			RecordCount: len(contacts),
			Status:      model.ImportStatusRunning,
			Environment: environment,
		}
		if err := s.importJobRepo.Save(ctx, job); err != nil {
			return summary, err
		}
	}

	summary, err = s.MigrateContacts(ctx, contacts, dryRun)
	if err != nil {
		if job != nil {
			job.Status = model.ImportStatusFailed
			if updateErr := s.importJobRepo.Update(ctx, job); updateErr != nil {
				log.Error("Failed to mark import job failed", zap.String("job_id", job.ID), zap.Error(updateErr))
			}
		}
		return summary, err
	}

	if job != nil {
		job.Created = summary.Created
		job.Updated = summary.Updated
		job.Failed = summary.Failed
		job.Status = model.ImportStatusCompleted
		if len(summary.Errors) > 0 {
			job.Errors = utils.MustMarshalJSON(summary.Errors)
		}
		if err := s.importJobRepo.Update(ctx, job); err != nil {
			log.Error("Failed to finalize import job", zap.String("job_id", job.ID), zap.Error(err))
		}

		entry := model.AuditLog{
			EntityType: "import_job",
			EntityID:   job.ID,
			Action:     model.ActionCreate,
			Details: utils.MustMarshalJSON(map[string]interface{}{
				"filename": filename,
				"records":  len(contacts),
				"created":  summary.Created,
				"updated":  summary.Updated,
				"failed":   summary.Failed,
			}),
		}
		if err := s.auditRepo.Save(ctx, entry); err != nil {
			log.Error("Failed to write import job audit entry", zap.String("job_id", job.ID), zap.Error(err))
		}
	}

	return summary, nil
}
