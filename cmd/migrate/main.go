package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/config"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/hubspot"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/jetstream"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/model"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/netsuite"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/observer"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/storage"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/tenant"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/internal/usecase"
	"gitlab.com/fwdlabs/api/fwd-crm-migrator/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Set timezone to UTC
	time.Local = time.UTC

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	csvPath := flag.String("csv", "", "Path to a CSV file to import instead of pulling from HubSpot")
	environment := flag.String("env", cfg.Environment, "Target environment (sandbox or live)")
	dryRun := flag.Bool("dry-run", cfg.Migration.DryRun, "Compute outcomes without writing")
	push := flag.Bool("push", false, "Push migrated contacts on to NetSuite")
	batchSize := flag.Int("batch-size", cfg.Migration.BatchSize, "Max records per HubSpot pull")
	confirmLive := flag.Bool("confirm-live", cfg.Migration.ConfirmLive, "Required to run non-dry against live")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "FWD CRM migration runner\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Migrates HubSpot contacts (or a CSV export) into the FWD CRM identity\n")
		fmt.Fprintf(os.Stderr, "store, and optionally pushes migrated contacts on to NetSuite.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if err := logger.Initialize(*logLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := tenant.Validate(*environment); err != nil {
		logger.Log.Fatal("Invalid environment", zap.Error(err))
	}

	// Refuse to touch live data unless the operator explicitly confirmed it
	if *environment == tenant.EnvLive && !*dryRun && !*confirmLive {
		logger.Log.Fatal("Refusing to run non-dry migration against live environment without -confirm-live")
	}

	// One-shot runs don't expose a metrics endpoint
	observer.InitMetrics(false)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = tenant.WithEnvironment(ctx, *environment)

	postgresRepo, err := storage.NewPostgresRepo(cfg.Database.PostgresDSN, cfg.Database.PostgresAutoMigrate, cfg.Migration.Actor)
	if err != nil {
		logger.Log.Fatal("Failed to initialize postgres repository", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := postgresRepo.Close(closeCtx); err != nil {
			logger.Log.Error("Failed to close postgres connection", zap.Error(err))
		}
	}()

	var notifier usecase.SummaryNotifier
	if cfg.NATS.Enabled {
		jsClient, err := jetstream.NewClient(cfg.NATS.URL)
		if err != nil {
			logger.Log.Fatal("Failed to initialize JetStream client", zap.Error(err))
		}
		defer jsClient.Close()
		summaryNotifier := jetstream.NewRunSummaryNotifier(jsClient, cfg.NATS.SummaryStream, cfg.NATS.SummarySubject)
		if err := summaryNotifier.Setup(ctx); err != nil {
			logger.Log.Fatal("Failed to set up run summary stream", zap.Error(err))
		}
		notifier = summaryNotifier
	}

	service := usecase.NewMigrationService(
		storage.NewCustomerRepoAdapter(postgresRepo),
		storage.NewMappingRepoAdapter(postgresRepo),
		storage.NewAuditLogRepoAdapter(postgresRepo),
		storage.NewImportJobRepoAdapter(postgresRepo),
		notifier,
		cfg.Migration.Source,
	)

	logger.Log.Info("Starting migration run",
		zap.String("environment", *environment),
		zap.Bool("dry_run", *dryRun),
		zap.Bool("push", *push),
		zap.String("csv", *csvPath),
	)

	summary, err := runMigration(ctx, service, *csvPath, *batchSize, *dryRun)
	if err != nil {
		logger.Log.Error("Migration run failed", zap.Error(err))
		os.Exit(1)
	}
	printSummary("migrate", summary)

	if *push {
		pushSummary, err := runPush(ctx, service, cfg, *batchSize, *dryRun)
		if err != nil {
			logger.Log.Error("NetSuite push failed", zap.Error(err))
			os.Exit(1)
		}
		printSummary("push", pushSummary)
	}
}

// runMigration imports a CSV file when a path is given, otherwise pulls
// contacts from the HubSpot sandbox.
func runMigration(ctx context.Context, service *usecase.MigrationService, csvPath string, batchSize int, dryRun bool) (model.Summary, error) {
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return model.Summary{}, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer f.Close()
		return service.ImportFromCSV(ctx, filepath.Base(csvPath), f, dryRun)
	}

	contacts, err := fetchContacts(ctx, batchSize)
	if err != nil {
		return model.Summary{}, err
	}
	return service.MigrateContacts(ctx, contacts, dryRun)
}

// runPush re-reads the source contacts and pushes the already-migrated ones
// on to NetSuite.
func runPush(ctx context.Context, service *usecase.MigrationService, cfg *config.Config, batchSize int, dryRun bool) (model.Summary, error) {
	contacts, err := fetchContacts(ctx, batchSize)
	if err != nil {
		return model.Summary{}, err
	}
	api := netsuite.NewSandboxClient(cfg.NetSuite.AccountID)
	return service.PushToNetSuite(ctx, contacts, api, dryRun)
}

func fetchContacts(ctx context.Context, batchSize int) ([]model.ContactPayload, error) {
	source := hubspot.NewSandboxClient(batchSize)
	contacts, err := source.FetchContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts from hubspot: %w", err)
	}
	return contacts, nil
}

func printSummary(stage string, summary model.Summary) {
	out, err := json.MarshalIndent(struct {
		Stage string `json:"stage"`
		model.Summary
	}{Stage: stage, Summary: summary}, "", "  ")
	if err != nil {
		logger.Log.Error("Failed to render summary", zap.Error(err))
		return
	}
	fmt.Println(string(out))
}
