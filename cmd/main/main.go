package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/config"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/healthcheck"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/jetstream"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/observer"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/storage"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/tenant"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/usecase"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/utils"
	"go.uber.org/zap"
)

// maxImportBodyBytes caps a single CSV upload at 32 MiB.
const maxImportBodyBytes = 32 << 20

func main() {
	// Set timezone to UTC
	time.Local = time.UTC

	// Load configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := tenant.Validate(cfg.Environment); err != nil {
		logger.Log.Fatal("Invalid environment configured", zap.Error(err))
	}

	// Refuse to touch live data unless the operator explicitly confirmed it
	if cfg.Environment == tenant.EnvLive && !cfg.Migration.DryRun && !cfg.Migration.ConfirmLive {
		logger.Log.Fatal("Refusing to run non-dry migration against live environment without migration.confirmLive=true")
	}

	// Initialize Metrics conditionally
	metricsEnabled := cfg.Metrics.Enabled
	observer.InitMetrics(metricsEnabled)

	// Log startup information
	logger.Log.Info("Starting FWD CRM Migrator",
		zap.String("environment", cfg.Environment),
		zap.String("source", cfg.Migration.Source),
		zap.Bool("dry_run", cfg.Migration.DryRun),
	)

	// Initialize repositories
	postgresRepo, err := initPostgresRepo(cfg.Database.PostgresDSN, cfg.Database.PostgresAutoMigrate, cfg.Migration.Actor)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Postgres repository", zap.Error(err))
	}

	// Create repository adapters for the service
	customerRepo := storage.NewCustomerRepoAdapter(postgresRepo)
	mappingRepo := storage.NewMappingRepoAdapter(postgresRepo)
	auditRepo := storage.NewAuditLogRepoAdapter(postgresRepo)
	importJobRepo := storage.NewImportJobRepoAdapter(postgresRepo)

	// Run summary publishing is optional; a nil notifier disables it
	var jsClient *jetstream.Client
	var notifier usecase.SummaryNotifier
	if cfg.NATS.Enabled {
		jsClient, err = initJetStreamClient(cfg.NATS.URL)
		if err != nil {
			logger.Log.Fatal("Failed to initialize JetStream client", zap.Error(err))
		}
		summaryNotifier := jetstream.NewRunSummaryNotifier(jsClient, cfg.NATS.SummaryStream, cfg.NATS.SummarySubject)
		if err := summaryNotifier.Setup(context.Background()); err != nil {
			logger.Log.Fatal("Failed to set up run summary stream", zap.Error(err))
		}
		notifier = summaryNotifier
	}

	// Create service
	service := usecase.NewMigrationService(customerRepo, mappingRepo, auditRepo, importJobRepo, notifier, cfg.Migration.Source)

	// Create import worker pool
	importWorker, err := usecase.NewImportWorker(cfg.WorkerPools.Import, service, logger.Log)
	if err != nil {
		logger.Log.Fatal("Failed to initialize import worker pool", zap.Error(err))
	}

	// Create health check server, readiness gated on the database
	healthServer := healthcheck.NewServer(strconv.Itoa(cfg.Server.Port), postgresRepo, logger.Log)

	// Register metrics handler if enabled BEFORE starting the server
	if metricsEnabled {
		healthServer.RegisterMetricsHandler(promhttp.Handler())
		logger.Log.Info("Metrics endpoint enabled", zap.String("path", "/metrics"), zap.Int("port", cfg.Server.Port))
	} else {
		logger.Log.Info("Metrics endpoint disabled for environment", zap.String("environment", cfg.Environment))
	}

	// CSV uploads are queued onto the worker pool and processed asynchronously
	healthServer.RegisterHandler("/import", importHandler(importWorker, cfg.Environment, cfg.Migration.DryRun, cfg.Migration.ConfirmLive))

	healthServer.Start()

	logger.Log.Info("Health check endpoints available",
		zap.String("health", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port)),
		zap.String("readiness", fmt.Sprintf("http://localhost:%d/ready", cfg.Server.Port)),
	)

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Log.Info("Received termination signal", zap.String("signal", sig.String()))

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Log.Info("Starting graceful shutdown", zap.Duration("timeout", 30*time.Second))

	// Use WaitGroup to track shutdown of all components
	var wg sync.WaitGroup
	wg.Add(3)

	// Shutdown import worker pool
	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Stopping import worker pool")
		start := time.Now()
		importWorker.Stop()
		logger.Log.Info("[shutdown] Import worker pool stopped",
			zap.Duration("duration", time.Since(start)))
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while stopping import worker pool",
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
		wg.Done()
	})

	// Shutdown health check server (includes metrics if enabled)
	utils.SafeGo(func() {
		defer wg.Done()
		logger.Log.Info("[shutdown] Stopping health check server")
		start := time.Now()
		if err := healthServer.Stop(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Error stopping health check server", zap.Error(err))
		} else {
			logger.Log.Info("[shutdown] Health check server stopped",
				zap.Duration("duration", time.Since(start)))
		}
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while stopping health check server",
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
		wg.Done()
	})

	// Close database and NATS connections
	utils.SafeGo(func() {
		defer wg.Done()

		logger.Log.Info("[shutdown] Closing PostgreSQL connection")
		pgStart := time.Now()
		if err := postgresRepo.Close(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Failed to close PostgreSQL connection", zap.Error(err))
		} else {
			logger.Log.Info("[shutdown] PostgreSQL connection closed",
				zap.Duration("duration", time.Since(pgStart)))
		}

		if jsClient != nil {
			logger.Log.Info("[shutdown] Closing JetStream connection")
			jsStart := time.Now()
			jsClient.Close()
			logger.Log.Info("[shutdown] JetStream connection closed",
				zap.Duration("duration", time.Since(jsStart)))
		}
	}, func(r interface{}, stack []byte) {
		logger.Log.Error("[shutdown] Panic while closing connections",
			zap.Any("panic", r),
			zap.ByteString("stack", stack),
		)
		wg.Done()
	})

	// Wait with a timeout for all components to shut down
	waitCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Log.Info("[shutdown] All components stopped gracefully")
	case <-shutdownCtx.Done():
		logger.Log.Warn("[shutdown] Graceful shutdown timed out, forcing exit")
	}

	logger.Log.Info("FWD CRM Migrator shutdown complete")
}

// importHandler accepts a CSV body and queues it for asynchronous import.
// Responds 202 on acceptance; the run outcome lands in import_jobs. The
// live-confirmation gate applies per request, so ?dryRun=false cannot write
// to live unless the deployment carries migration.confirmLive.
func importHandler(worker usecase.IImportWorker, environment string, defaultDryRun, confirmLive bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBodyBytes))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		if len(data) == 0 {
			http.Error(w, "empty request body", http.StatusBadRequest)
			return
		}

		filename := r.URL.Query().Get("filename")
		if filename == "" {
			filename = "upload.csv"
		}

		dryRun := defaultDryRun
		if v := r.URL.Query().Get("dryRun"); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "invalid dryRun value", http.StatusBadRequest)
				return
			}
			dryRun = parsed
		}

		if environment == tenant.EnvLive && !dryRun && !confirmLive {
			http.Error(w, "non-dry imports against live require migration.confirmLive", http.StatusForbidden)
			return
		}

		requestID := uuid.NewString()
		job := usecase.ImportJobData{
			Ctx:         tenant.WithRequestID(context.Background(), requestID),
			Environment: environment,
			Filename:    filename,
			Data:        data,
			DryRun:      dryRun,
		}
		if err := worker.SubmitJob(job); err != nil {
			if errors.Is(err, ants.ErrPoolOverload) {
				http.Error(w, "import queue is full, retry later", http.StatusServiceUnavailable)
				return
			}
			http.Error(w, "failed to queue import", http.StatusInternalServerError)
			return
		}

		utils.WriteJSONResponse(w, http.StatusAccepted, map[string]interface{}{
			"status":     "accepted",
			"request_id": requestID,
			"filename":   filename,
			"dry_run":    dryRun,
		})
	})
}

// Initialize PostgreSQL repository
func initPostgresRepo(dsn string, autoMigrate bool, actor string) (*storage.PostgresRepo, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	repo, err := storage.NewPostgresRepo(dsn, autoMigrate, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres repository: %w", err)
	}

	logger.Log.Info("Initialized PostgreSQL repository")
	return repo, nil
}

// initJetStreamClient initializes the JetStream client
func initJetStreamClient(url string) (*jetstream.Client, error) {
	client, err := jetstream.NewClient(url)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream client: %w", err)
	}
	return client, nil
}
