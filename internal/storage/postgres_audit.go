package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/apperrors"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/observer"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

// --- AuditLog Repository Methods ---

// SaveAuditLog appends one audit entry. Entity writes produced by
// ResolveCustomer carry their own entry inside the resolve transaction; this
// method is for standalone events such as import job completion.
func (r *PostgresRepo) SaveAuditLog(ctx context.Context, entry model.AuditLog) error {
	loggerCtx := logger.FromContext(ctx)

	if entry.ID == "" {
		entry.ID = generateID("AUD")
	}
	if entry.ChangedBy == "" {
		entry.ChangedBy = r.actor
	}
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = utils.Now()
	}

	operation := func() error {
		result := r.db.WithContext(ctx).Create(&entry)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: audit entry %s was not inserted", apperrors.ErrDatabase, entry.ID)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	saveErr := retryableOperation(ctx, commitPolicy, "SaveAuditLog Commit", operation)
	observer.ObserveDbOperationDuration("save", "audit_log", "", time.Since(startTime), saveErr)
	if saveErr != nil {
		loggerCtx.Error("Failed to save audit entry after retries",
			zap.String("entity_type", entry.EntityType),
			zap.String("entity_id", entry.EntityID),
			zap.Error(saveErr))
		return saveErr
	}
	return nil
}

// FindAuditLogsByEntity returns the audit trail of one entity, oldest first.
func (r *PostgresRepo) FindAuditLogsByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditLog, error) {
	var entries []model.AuditLog

	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("entity_type = ? AND entity_id = ?", entityType, entityID).
			Order("changed_at").
			Find(&entries)
		if result.Error != nil {
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindAuditLogsByEntity", operation)
	observer.ObserveDbOperationDuration("find_by_entity", "audit_log", "", time.Since(startTime), findErr)
	if findErr != nil {
		logger.FromContext(ctx).Error("Failed to find audit entries after retries",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(findErr))
		return nil, findErr
	}
	return entries, nil
}
