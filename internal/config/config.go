package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Environment string `mapstructure:"environment"` // sandbox or live
	LogLevel    string `mapstructure:"logLevel"`
	Server      struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	Database struct {
		PostgresDSN         string `mapstructure:"postgresDSN"`
		PostgresAutoMigrate bool   `mapstructure:"postgresAutoMigrate"`
	} `mapstructure:"database"`
	Migration struct {
		Source      string `mapstructure:"source"`      // Source system name, defaults to hubspot
		BatchSize   int    `mapstructure:"batchSize"`   // Max records fetched per source pull
		DryRun      bool   `mapstructure:"dryRun"`      // Compute outcomes without writing
		ConfirmLive bool   `mapstructure:"confirmLive"` // Required to run non-dry against live
		Actor       string `mapstructure:"actor"`       // Recorded in audit entries
	} `mapstructure:"migration"`
	HubSpot struct {
		BaseURL string `mapstructure:"baseURL"`
		APIKey  string `mapstructure:"apiKey"`
	} `mapstructure:"hubspot"`
	NetSuite struct {
		BaseURL   string `mapstructure:"baseURL"`
		AccountID string `mapstructure:"accountId"`
		Token     string `mapstructure:"token"`
	} `mapstructure:"netsuite"`
	NATS struct {
		Enabled        bool   `mapstructure:"enabled"`
		URL            string `mapstructure:"url"`
		SummaryStream  string `mapstructure:"summaryStream"`  // Stream holding run summary events
		SummarySubject string `mapstructure:"summarySubject"` // Base subject for run summaries
	} `mapstructure:"nats"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
	WorkerPools struct {
		Import ImportWorkerPoolConfig `mapstructure:"import"`
	} `mapstructure:"workerPools"`
}

// ImportWorkerPoolConfig holds configuration for the CSV import worker pool
type ImportWorkerPoolConfig struct {
	PoolSize   int           `mapstructure:"poolSize"`   // Number of workers
	QueueSize  int           `mapstructure:"queueSize"`  // Task queue buffer size
	ExpiryTime time.Duration `mapstructure:"expiryTime"` // Idle worker expiry time
}

// LoadConfig reads configuration from file or environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("environment", "sandbox")
	v.SetDefault("logLevel", "info")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.postgresAutoMigrate", true)
	v.SetDefault("migration.source", "hubspot")
	v.SetDefault("migration.batchSize", 50)
	v.SetDefault("migration.dryRun", true)
	v.SetDefault("migration.confirmLive", false)
	v.SetDefault("migration.actor", "migration_engine")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.summaryStream", "fwd_crm_runs")
	v.SetDefault("nats.summarySubject", "v1.migration.summary")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("workerPools.import.poolSize", 2)
	v.SetDefault("workerPools.import.queueSize", 64)
	v.SetDefault("workerPools.import.expiryTime", time.Minute)

	// Config file settings
	v.SetConfigName("default")
	v.SetConfigType("yaml")

	// Add lookup paths
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath("$HOME/.fwd-crm-migrator")
	v.AddConfigPath("/etc/fwd-crm-migrator")

	// Try to read from config file
	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine, env vars cover it
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map environment variables to config fields
	bindEnvs(v, Config{})

	// Read directly from ENV for critical values
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		v.Set("database.postgresDSN", dsn)
	}
	if lgLevel := os.Getenv("LOG_LEVEL"); lgLevel != "" {
		v.Set("logLevel", lgLevel)
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		v.Set("environment", env)
	}
	if url := os.Getenv("NATS_URL"); url != "" {
		v.Set("nats.url", url)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &config, nil
}

// bindEnvs recursively binds environment variables to config struct fields
func bindEnvs(v *viper.Viper, cfg interface{}, parts ...string) {
	ifv := reflect.ValueOf(cfg)
	ift := reflect.TypeOf(cfg)
	for i := 0; i < ift.NumField(); i++ {
		fieldVal := ifv.Field(i)
		fieldType := ift.Field(i)

		tag := fieldType.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}

		path := append(parts, tag)
		key := strings.Join(path, ".")

		if fieldType.Type.Kind() == reflect.Struct {
			bindEnvs(v, fieldVal.Interface(), path...)
			continue
		}

		_ = v.BindEnv(key)
	}
}
