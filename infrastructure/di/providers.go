package di

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"metadata-scanner/application/commands"
	"metadata-scanner/application/commands/bus"
	"metadata-scanner/application/commands/handlers"
	"metadata-scanner/application/ports"
	"metadata-scanner/application/queries"
	querybus "metadata-scanner/application/queries/bus"
	queryhandlers "metadata-scanner/application/queries/handlers"
	"metadata-scanner/application/services"
	domainconfig "metadata-scanner/domain/config"
	"metadata-scanner/infrastructure/config"
	"metadata-scanner/infrastructure/messaging/eventbridge"
	"metadata-scanner/infrastructure/persistence/dynamodb"
	"metadata-scanner/infrastructure/persistence/memory"
	"metadata-scanner/infrastructure/schema"
	"metadata-scanner/infrastructure/warehouse"
	"metadata-scanner/interfaces/http/rest"
	"metadata-scanner/interfaces/http/rest/middleware"
	"metadata-scanner/pkg/auth"
	"metadata-scanner/pkg/observability"
	"metadata-scanner/pkg/utils"
)

const serviceName = "metadata-scanner"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName)), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.DomainConfig()
}

func ProvideClock() utils.Clock {
	return utils.SystemClock{}
}

// ProvideWarehousePool opens the warehouse connection pool. The cleanup
// closes it.
func ProvideWarehousePool(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, func(), error) {
	pool, err := warehouse.NewPool(ctx, cfg.WarehouseDSN, cfg.WarehouseConns)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		logger.Info("Closing warehouse pool")
		pool.Close()
	}
	return pool, cleanup, nil
}

func ProvideQuerySource(pool *pgxpool.Pool, dc *domainconfig.DomainConfig, logger *zap.Logger) ports.QuerySource {
	return warehouse.NewQuerySource(pool, dc, logger)
}

// ProvideSliceStore selects the catalog store backend
func ProvideSliceStore(client *awsdynamodb.Client, cfg *config.Config, dc *domainconfig.DomainConfig, logger *zap.Logger) ports.SliceStore {
	if cfg.StoreBackend == config.StoreMemory {
		logger.Warn("Using in-memory catalog store; slices are lost on exit")
		return memory.NewSliceStore()
	}
	return dynamodb.NewSliceStore(client, cfg.MetadataTable, dc, logger)
}

// ProvideScanLock selects the lock matching the store backend
func ProvideScanLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ScanLock {
	if cfg.StoreBackend == config.StoreMemory {
		return memory.NewScanLock()
	}
	return dynamodb.NewScanLock(client, cfg.MetadataTable, logger)
}

func ProvideSchemaRegistry(logger *zap.Logger) ports.SchemaRegistry {
	return schema.NewRegistry(logger)
}

// ProvideEventPublisher creates the EventBridge publisher, or none when no
// bus is configured.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideCollector creates the Prometheus collector when that backend is
// selected.
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if cfg.MetricsBackend != config.MetricsPrometheus {
		return nil
	}
	return observability.NewCollector("metadata_scanner")
}

// ProvideMetrics selects the metrics backend
func ProvideMetrics(client *awscloudwatch.Client, collector *observability.Collector, cfg *config.Config, logger *zap.Logger) ports.Metrics {
	switch cfg.MetricsBackend {
	case config.MetricsCloudWatch:
		return observability.NewCloudWatchMetrics(cfg.MetricsNamespace, client, logger)
	case config.MetricsPrometheus:
		return collector
	default:
		return observability.NopMetrics{}
	}
}

func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(serviceName, cfg.EnableTracing)
}

// ProvideScanService creates the scan orchestrator
func ProvideScanService(
	source ports.QuerySource,
	store ports.SliceStore,
	registry ports.SchemaRegistry,
	lock ports.ScanLock,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	dc *domainconfig.DomainConfig,
	cfg *config.Config,
	clock utils.Clock,
	logger *zap.Logger,
) *services.ScanService {
	return services.NewScanService(
		source,
		store,
		registry,
		lock,
		publisher,
		metrics,
		dc,
		services.ScanOptions{
			ProjectID: cfg.ProjectID,
			LockTTL:   cfg.ScanLockTTL,
		},
		clock,
		logger,
	)
}

// ProvideCommandBus creates the command bus with all handlers registered
func ProvideCommandBus(scan *services.ScanService, tracer *observability.Tracer, logger *zap.Logger) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.RecoveryMiddleware(logger),
		bus.LoggingMiddleware(logger),
	)

	if err := commandBus.Register(
		&commands.StoreMetadataCommand{},
		handlers.NewStoreMetadataHandler(scan, tracer, logger),
	); err != nil {
		return nil, fmt.Errorf("failed to register StoreMetadataCommand handler: %w", err)
	}

	return commandBus, nil
}

// ProvideQueryBus creates the query bus with the catalog read handlers
func ProvideQueryBus(store ports.SliceStore, cfg *config.Config, logger *zap.Logger) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(querybus.LoggingMiddleware(logger))

	if err := queryBus.Register(
		&queries.GetCatalogEntryQuery{},
		queryhandlers.NewGetCatalogEntryHandler(store, cfg.ProjectID),
	); err != nil {
		return nil, fmt.Errorf("failed to register GetCatalogEntryQuery handler: %w", err)
	}

	return queryBus, nil
}

// ProvideTokenValidator creates the bearer token validator. Without a JWT
// secret the HTTP API is unauthenticated.
func ProvideTokenValidator(cfg *config.Config, logger *zap.Logger) (middleware.TokenValidator, error) {
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			logger.Warn("JWT_SECRET not set; scan API is unauthenticated")
		}
		return nil, nil
	}
	validator, err := auth.NewValidator(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return nil, err
	}
	return validator, nil
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	pool *pgxpool.Pool,
	collector *observability.Collector,
	tracer *observability.Tracer,
	validator middleware.TokenValidator,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	var metricsHandler http.Handler
	if collector != nil {
		metricsHandler = collector.Handler()
	}
	return rest.NewRouter(commandBus, queryBus, pool, metricsHandler, tracer, validator, rest.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		Debug:       cfg.IsDevelopment(),
	}, logger)
}
