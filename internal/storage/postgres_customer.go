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
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/tenant"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
)

// --- Customer Repository Methods ---

// ResolveCustomer decides create-vs-update for the given customer against the
// identity store and, unless dryRun is set, applies the write together with
// an audit entry in one transaction. The returned id is stable across
// repeated calls for the same (email, environment).
func (r *PostgresRepo) ResolveCustomer(ctx context.Context, customer model.Customer, dryRun bool) (*model.ResolveResult, error) {
	environment, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get environment from context: %w", apperrors.ErrUnauthorized, err)
	}
	if customer.Environment != environment {
		return nil, fmt.Errorf("%w: customer environment %s does not match scope %s", apperrors.ErrBadRequest, customer.Environment, environment)
	}
	if customer.Email == "" {
		return nil, fmt.Errorf("%w: customer has no email", apperrors.ErrInvalidRecord)
	}

	if dryRun {
		return r.resolveDryRun(ctx, customer.Email, environment)
	}

	var result model.ResolveResult

	operation := func() error {
		tx := r.db.WithContext(ctx).Begin()
		if tx.Error != nil {
			return fmt.Errorf("%w: failed to begin transaction: %w", apperrors.ErrDatabase, tx.Error)
		}
		var txErr error
		defer func() {
			if p := recover(); p != nil {
				tx.Rollback()
				panic(p)
			} else if txErr != nil {
				if rbErr := tx.Rollback().Error; rbErr != nil {
					logger.FromContext(ctx).Error("Failed to rollback transaction after error", zap.Error(rbErr), zap.NamedError("originalTxError", txErr))
				}
			}
		}()

		var existing model.Customer
		findErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ? AND environment = ?", customer.Email, environment).
			First(&existing).Error

		now := utils.Now()

		if findErr != nil {
			if !errors.Is(findErr, gorm.ErrRecordNotFound) {
				txErr = fmt.Errorf("%w: failed to lock customer row: %w", apperrors.ErrDatabase, findErr)
				return txErr
			}
			// No match on the natural key, create a new entity
			customer.ID = generateID("CUST")
			customer.CreatedAt = now
			customer.LastSyncedAt = now
			if createErr := tx.Create(&customer).Error; createErr != nil {
				txErr = checkConstraintViolation(createErr)
				return txErr
			}
			result = model.ResolveResult{ID: customer.ID, Action: model.ActionCreate}
		} else {
			// Known entity, overwrite mutable fields; id and created_at stay
			customer.LastSyncedAt = now
			updateErr := tx.Model(&existing).
				Select(model.CustomerUpdateColumns()).
				Updates(customer).Error
			if updateErr != nil {
				txErr = checkConstraintViolation(updateErr)
				return txErr
			}
			result = model.ResolveResult{ID: existing.ID, Action: model.ActionUpdate}
		}

		// Audit entry rides the same transaction: row and trail commit or
		// roll back together.
		entry := model.AuditLog{
			ID:         generateID("AUD"),
			EntityType: "customer",
			EntityID:   result.ID,
			Action:     result.Action,
			Details:    utils.MustMarshalJSON(map[string]interface{}{"email": customer.Email, "source_system": customer.SourceSystem}),
			ChangedAt:  now,
			ChangedBy:  r.actor,
		}
		if auditErr := tx.Create(&entry).Error; auditErr != nil {
			txErr = checkConstraintViolation(auditErr)
			return txErr
		}

		if commitErr := tx.Commit().Error; commitErr != nil {
			txErr = fmt.Errorf("%w: failed to commit resolve transaction: %w", apperrors.ErrDatabase, commitErr)
			return txErr
		}
		return nil
	}

	commitPolicy := newRetryPolicy(ctx, commitRetryMaxElapsedTime)
	startTime := utils.Now()
	commitErr := retryableOperation(ctx, commitPolicy, "ResolveCustomer Commit", operation)
	observer.ObserveDbOperationDuration("resolve", "customer", environment, time.Since(startTime), commitErr)
	if commitErr != nil {
		logger.FromContext(ctx).Error("Failed to resolve customer after retries",
			zap.String("email", customer.Email),
			zap.Error(commitErr))
		return nil, commitErr
	}
	return &result, nil
}

// resolveDryRun computes the id and action a resolve would produce without
// touching any row. A would-be create returns a freshly generated id that is
// discarded afterwards.
func (r *PostgresRepo) resolveDryRun(ctx context.Context, email, environment string) (*model.ResolveResult, error) {
	var existing model.Customer
	var result model.ResolveResult

	operation := func() error {
		findErr := r.db.WithContext(ctx).
			Where("email = ? AND environment = ?", email, environment).
			First(&existing).Error
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				result = model.ResolveResult{ID: generateID("CUST"), Action: model.ActionCreate}
				return nil
			}
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, findErr)
		}
		result = model.ResolveResult{ID: existing.ID, Action: model.ActionUpdate}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "ResolveCustomer DryRun", operation)
	observer.ObserveDbOperationDuration("resolve_dry_run", "customer", environment, time.Since(startTime), findErr)
	if findErr != nil {
		logger.FromContext(ctx).Error("Failed to resolve customer (dry run)",
			zap.String("email", email),
			zap.Error(findErr))
		return nil, findErr
	}
	return &result, nil
}

// FindCustomerByEmail finds a customer by its natural key within the
// environment scope from the context.
func (r *PostgresRepo) FindCustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	environment, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get environment from context: %w", apperrors.ErrUnauthorized, err)
	}
	loggerCtx := logger.FromContext(ctx)

	var customer model.Customer
	operation := func() error {
		result := r.db.WithContext(ctx).Where("email = ? AND environment = ?", email, environment).First(&customer)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: email %s: %w", apperrors.ErrNotFound, email, result.Error)
			}
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindCustomerByEmail", operation)
	observer.ObserveDbOperationDuration("find_by_email", "customer", environment, time.Since(startTime), findErr)
	if findErr != nil {
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return nil, findErr
		}
		loggerCtx.Error("Failed to find customer by email after retries",
			zap.String("email", email),
			zap.Error(findErr))
		return nil, findErr
	}
	return &customer, nil
}

// FindCustomerByID finds a customer by its generated identifier within the
// environment scope from the context.
func (r *PostgresRepo) FindCustomerByID(ctx context.Context, id string) (*model.Customer, error) {
	environment, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get environment from context: %w", apperrors.ErrUnauthorized, err)
	}
	loggerCtx := logger.FromContext(ctx)

	var customer model.Customer
	operation := func() error {
		result := r.db.WithContext(ctx).Where("id = ? AND environment = ?", id, environment).First(&customer)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: customer_id %s: %w", apperrors.ErrNotFound, id, result.Error)
			}
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "FindCustomerByID", operation)
	observer.ObserveDbOperationDuration("find_by_id", "customer", environment, time.Since(startTime), findErr)
	if findErr != nil {
		if errors.Is(findErr, apperrors.ErrNotFound) {
			return nil, findErr
		}
		loggerCtx.Error("Failed to find customer by id after retries",
			zap.String("customer_id", id),
			zap.Error(findErr))
		return nil, findErr
	}
	return &customer, nil
}

// ListCustomers returns all customers within the environment scope from the
// context, ordered by creation time.
func (r *PostgresRepo) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	environment, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get environment from context: %w", apperrors.ErrUnauthorized, err)
	}

	var customers []model.Customer
	operation := func() error {
		result := r.db.WithContext(ctx).
			Where("environment = ?", environment).
			Order("created_at").
			Find(&customers)
		if result.Error != nil {
			return fmt.Errorf("%w: query failed: %w", apperrors.ErrDatabase, result.Error)
		}
		return nil
	}

	readPolicy := newRetryPolicy(ctx, readRetryMaxElapsedTime)
	startTime := utils.Now()
	findErr := retryableOperation(ctx, readPolicy, "ListCustomers", operation)
	observer.ObserveDbOperationDuration("list", "customer", environment, time.Since(startTime), findErr)
	if findErr != nil {
		logger.FromContext(ctx).Error("Failed to list customers after retries", zap.Error(findErr))
		return nil, findErr
	}
	return customers, nil
}
