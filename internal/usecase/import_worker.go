package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/config"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/observer"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/tenant"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
)

// ImportJobData holds the necessary data for a queued CSV import.
type ImportJobData struct {
	Ctx         context.Context // Context derived for the job, NOT the original request context
	Environment string
	Filename    string
	Data        []byte
	DryRun      bool
}

// IImportWorker defines the interface for the CSV import worker pool.
type IImportWorker interface {
	SubmitJob(jobData ImportJobData) error
	Stop()
}

// ImportWorker manages the worker pool that drains queued CSV imports.
type ImportWorker struct {
	pool       *ants.PoolWithFunc
	service    *MigrationService
	cfg        config.ImportWorkerPoolConfig
	baseLogger *zap.Logger
}

// Ensure ImportWorker implements IImportWorker
var _ IImportWorker = (*ImportWorker)(nil)

// NewImportWorker creates and initializes a new import worker pool.
func NewImportWorker(
	cfg config.ImportWorkerPoolConfig,
	service *MigrationService,
	baseLogger *zap.Logger,
) (*ImportWorker, error) {
	worker := &ImportWorker{
		service:    service,
		cfg:        cfg,
		baseLogger: baseLogger.Named("import_worker"),
	}

	pool, err := ants.NewPoolWithFunc(cfg.PoolSize, func(i interface{}) {
		jobData, ok := i.(ImportJobData)
		if !ok {
			worker.baseLogger.Error("Invalid job data type received", zap.Any("data", i))
			return
		}
		worker.processImportJob(jobData)
	},
		ants.WithExpiryDuration(cfg.ExpiryTime),
		ants.WithNonblocking(false),
		ants.WithMaxBlockingTasks(cfg.QueueSize),
		ants.WithPanicHandler(func(err interface{}) {
			worker.baseLogger.Error("Panic recovered in import worker", zap.Any("panic_error", err), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create import worker pool: %w", err)
	}
	worker.pool = pool
	worker.baseLogger.Info("Import worker pool initialized",
		zap.Int("pool_size", cfg.PoolSize),
		zap.Int("queue_size", cfg.QueueSize),
		zap.Duration("expiry_time", cfg.ExpiryTime),
	)
	return worker, nil
}

// SubmitJob submits a queued CSV import to the worker pool.
func (w *ImportWorker) SubmitJob(jobData ImportJobData) error {
	start := time.Now()
	observer.IncImportJobsSubmitted(jobData.Environment)
	observer.SetImportQueueLength(w.pool.Waiting())

	err := w.pool.Invoke(jobData)
	duration := time.Since(start)

	if err != nil {
		w.baseLogger.Warn("Failed to submit import job to pool",
			zap.String("filename", jobData.Filename),
			zap.String("environment", jobData.Environment),
			zap.Duration("submit_duration", duration),
			zap.Error(err),
		)
		observer.IncImportJobsProcessed(jobData.Environment, "submit_error")
		if errors.Is(err, ants.ErrPoolOverload) {
			return fmt.Errorf("import pool overload: %w", err)
		}
		return fmt.Errorf("failed to invoke import job: %w", err)
	}

	w.baseLogger.Debug("Successfully submitted import job",
		zap.String("filename", jobData.Filename),
		zap.Duration("submit_duration", duration),
	)
	return nil
}

// processImportJob runs inside a worker goroutine.
func (w *ImportWorker) processImportJob(jobData ImportJobData) {
	log := logger.FromContextOr(jobData.Ctx, w.baseLogger).With(
		zap.String("filename", jobData.Filename),
		zap.String("environment", jobData.Environment),
	)

	jobCtx := tenant.WithEnvironment(jobData.Ctx, jobData.Environment)

	summary, err := w.service.ImportFromCSV(jobCtx, jobData.Filename, bytes.NewReader(jobData.Data), jobData.DryRun)
	if err != nil {
		log.Error("Queued CSV import failed", zap.Error(err))
		observer.IncImportJobsProcessed(jobData.Environment, "error")
		return
	}

	log.Info("Queued CSV import finished",
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
	)
	observer.IncImportJobsProcessed(jobData.Environment, "success")
}

// Stop gracefully shuts down the worker pool, waiting for running jobs.
func (w *ImportWorker) Stop() {
	w.baseLogger.Info("Stopping import worker pool")
	w.pool.Release()
}
