package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/apperrors"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/observer"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

// --- ImportJob Repository Methods ---

// SaveImportJob inserts a new import job record and fills in its id when the
// caller left it empty.
func (r *PostgresRepo) SaveImportJob(ctx context.Context, job *model.ImportJob) error {
	loggerCtx := logger.FromContext(ctx)

	if job.ID == "" {
		job.ID = generateID("JOB")
	}
	if job.Status == "" {
		job.Status = model.ImportStatusPending
	}
	if job.ImportedAt.IsZero() {
		job.ImportedAt = utils.Now()
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Create(job)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	saveErr := retryableOperation(ctx, commitPolicy, "SaveImportJob Commit", operation)
	observer.ObserveDbOperationDuration("save", "import_job", job.Environment, time.Since(startTime), saveErr)
	if saveErr != nil {
		loggerCtx.Error("Failed to save import job after retries",
			zap.String("job_id", job.ID),
			zap.String("filename", job.Filename),
			zap.Error(saveErr))
		return saveErr
	}
	return nil
}

// UpdateImportJob persists the current state of an existing import job.
func (r *PostgresRepo) UpdateImportJob(ctx context.Context, job *model.ImportJob) error {
	loggerCtx := logger.FromContext(ctx)

	if job.ID == "" {
		return fmt.Errorf("%w: import job has no id", apperrors.ErrBadRequest)
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Model(&model.ImportJob{}).
			Where("id = ?", job.ID).
			Updates(map[string]interface{}{
				"record_count": job.RecordCount,
				"created":      job.Created,
				"updated":      job.Updated,
				"failed":       job.Failed,
				"errors":       job.Errors,
				"status":       job.Status,
			})
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: import job %s: no rows updated", apperrors.ErrNotFound, job.ID)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	saveErr := retryableOperation(ctx, commitPolicy, "UpdateImportJob Commit", operation)
	observer.ObserveDbOperationDuration("update", "import_job", job.Environment, time.Since(startTime), saveErr)
	if saveErr != nil {
		loggerCtx.Error("Failed to update import job after retries",
			zap.String("job_id", job.ID),
			zap.String("status", job.Status),
			zap.Error(saveErr))
		return saveErr
	}
	return nil
}

// FindImportJobByID fetches one import job record.
func (r *PostgresRepo) FindImportJobByID(ctx context.Context, id string) (*model.ImportJob, error) {
	var job model.ImportJob

	operation := func() error {
		result := r.db.WithContext(ctx).Where("id = ?", id).First(&job)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: import job %s: %w", apperrors.ErrNotFound, id, result.Error)
			}
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindImportJobByID", operation)
	observer.ObserveDbOperationDuration("find_by_id", "import_job", "", time.Since(startTime), findErr)
	if findErr != nil {
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return nil, findErr
		}
		logger.FromContext(ctx).Error("Failed to find import job after retries",
			zap.String("job_id", id),
			zap.Error(findErr))
		return nil, findErr
	}
	return &job, nil
}
