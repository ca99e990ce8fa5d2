package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/apperrors"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/observer"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

// --- IDMapping Repository Methods ---

// PutMapping records that sourceID in sourceSystem corresponds to targetID in
// targetSystem. Writing the same triple again overwrites the target id,
// last write wins.
func (r *PostgresRepo) PutMapping(ctx context.Context, mapping model.IDMapping) error {
	loggerCtx := logger.FromContext(ctx)

	if mapping.SourceSystem == "" || mapping.SourceID == "" || mapping.TargetSystem == "" || mapping.TargetID == "" {
		return fmt.Errorf("%w: mapping fields must be non-empty", apperrors.ErrBadRequest)
	}
	if mapping.ID == "" {
		mapping.ID = generateID("MAP")
	}
	now := utils.Now()
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = now
	}
	mapping.UpdatedAt = now

	operation := func() error {
		result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "source_system"},
				{Name: "source_id"},
				{Name: "target_system"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"target_id", "updated_at"}),
		}).Create(&mapping)
		if result.Error != nil {
			return checkConstraintViolation(result.Error)
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	saveErr := retryableOperation(ctx, commitPolicy, "PutMapping Commit", operation)
	observer.ObserveDbOperationDuration("put", "id_mapping", "", time.Since(startTime), saveErr)
	if saveErr != nil {
		loggerCtx.Error("Failed to save id mapping after retries",
			zap.String("source_system", mapping.SourceSystem),
			zap.String("source_id", mapping.SourceID),
			zap.String("target_system", mapping.TargetSystem),
			zap.Error(saveErr))
		return saveErr
	}
	return nil
}

// GetMapping looks up the target id recorded for (sourceSystem, sourceID,
// targetSystem). Returns ErrNotFound when no mapping exists.
func (r *PostgresRepo) GetMapping(ctx context.Context, sourceSystem, sourceID, targetSystem string) (*model.IDMapping, error) {
	var mapping model.IDMapping

	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("source_system = ? AND source_id = ? AND target_system = ?", sourceSystem, sourceID, targetSystem).
			First(&mapping)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no mapping for %s/%s -> %s: %w", apperrors.ErrNotFound, sourceSystem, sourceID, targetSystem, result.Error)
			}
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "GetMapping", operation)
	observer.ObserveDbOperationDuration("get", "id_mapping", "", time.Since(startTime), findErr)
	if findErr != nil {
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return nil, findErr
		}
		logger.FromContext(ctx).Error("Failed to get id mapping after retries",
			zap.String("source_system", sourceSystem),
			zap.String("source_id", sourceID),
			zap.String("target_system", targetSystem),
			zap.Error(findErr))
		return nil, findErr
	}
	return &mapping, nil
}

// ListMappingsBySource returns every mapping recorded for a source system
// record, across all target systems.
func (r *PostgresRepo) ListMappingsBySource(ctx context.Context, sourceSystem, sourceID string) ([]model.IDMapping, error) {
	var mappings []model.IDMapping

	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("source_system = ? AND source_id = ?", sourceSystem, sourceID).
			Order("target_system").
			Find(&mappings)
		if result.Error != nil {
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "ListMappingsBySource", operation)
	observer.ObserveDbOperationDuration("list_by_source", "id_mapping", "", time.Since(startTime), findErr)
	if findErr != nil {
		logger.FromContext(ctx).Error("Failed to list id mappings after retries",
			zap.String("source_system", sourceSystem),
			zap.String("source_id", sourceID),
			zap.Error(findErr))
		return nil, findErr
	}
	return mappings, nil
}
