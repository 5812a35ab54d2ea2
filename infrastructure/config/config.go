package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	domainconfig "metadata-scanner/domain/config"
	"metadata-scanner/pkg/utils"
)

// Store and metrics backends.
const (
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"

	MetricsCloudWatch = "cloudwatch"
	MetricsPrometheus = "prometheus"
	MetricsNone       = "none"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"serverAddress"`
	Environment   string `yaml:"environment" validate:"required,oneof=development staging production test"`

	// AWS configuration
	AWSRegion     string `yaml:"awsRegion" validate:"required"`
	MetadataTable string `yaml:"metadataTable" validate:"required_if=StoreBackend dynamodb"`
	EventBusName  string `yaml:"eventBusName"`

	// Catalog
	ProjectID      string        `yaml:"projectId" validate:"required"`
	WarehouseDSN   string        `yaml:"warehouseDsn" validate:"required"`
	WarehouseConns int32         `yaml:"warehouseConns" validate:"min=1"`
	StoreBackend   string        `yaml:"storeBackend" validate:"oneof=dynamodb memory"`
	BatchSize      int           `yaml:"batchSize" validate:"min=1,max=25"`
	CatalogVersion string        `yaml:"catalogVersion" validate:"required"`
	ScanLockTTL    time.Duration `yaml:"scanLockTtl" validate:"min=1s"`

	// Observability
	LogLevel         string `yaml:"logLevel" validate:"oneof=debug info warn error"`
	MetricsBackend   string `yaml:"metricsBackend" validate:"oneof=cloudwatch prometheus none"`
	MetricsNamespace string `yaml:"metricsNamespace"`
	EnableTracing    bool   `yaml:"enableTracing"`

	// HTTP API
	JWTSecret   string   `yaml:"jwtSecret"`
	JWTIssuer   string   `yaml:"jwtIssuer"`
	CORSOrigins []string `yaml:"corsOrigins" validate:"dive,url"`
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// named by CONFIG_FILE, then environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.loadEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		ServerAddress:    ":8080",
		Environment:      "development",
		AWSRegion:        "us-east-1",
		MetadataTable:    "metadata",
		WarehouseConns:   4,
		StoreBackend:     StoreDynamoDB,
		BatchSize:        domainconfig.DefaultBatchSize,
		CatalogVersion:   domainconfig.DefaultCatalogVersion,
		ScanLockTTL:      15 * time.Minute,
		LogLevel:         "info",
		MetricsBackend:   MetricsNone,
		MetricsNamespace: "MetadataScanner",
	}
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnvironment() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.MetadataTable = getEnv("METADATA_TABLE_NAME", c.MetadataTable)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.ProjectID = getEnv("PROJECT_ID", c.ProjectID)
	c.WarehouseDSN = getEnv("WAREHOUSE_DSN", c.WarehouseDSN)
	c.WarehouseConns = int32(getEnvInt("WAREHOUSE_MAX_CONNS", int(c.WarehouseConns)))
	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.BatchSize = getEnvInt("BATCH_SIZE", c.BatchSize)
	c.CatalogVersion = getEnv("CATALOG_VERSION", c.CatalogVersion)
	c.ScanLockTTL = getEnvDuration("SCAN_LOCK_TTL", c.ScanLockTTL)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.MetricsBackend = getEnv("METRICS_BACKEND", c.MetricsBackend)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	c.EnableTracing = getEnvBool("TRACING_ENABLED", c.EnableTracing)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.CORSOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.CORSOrigins)
}

// Validate checks the configuration against its validation tags
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DomainConfig returns the catalog limits with the configured overrides.
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig().WithOverrides(c.BatchSize, c.CatalogVersion)
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated environment variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
