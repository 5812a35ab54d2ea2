package di

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"metadata-scanner/application/commands/bus"
	"metadata-scanner/application/ports"
	querybus "metadata-scanner/application/queries/bus"
	"metadata-scanner/application/services"
	"metadata-scanner/infrastructure/config"
	"metadata-scanner/interfaces/http/rest"
	"metadata-scanner/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Pool        *pgxpool.Pool
	Store       ports.SliceStore
	ScanService *services.ScanService
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Collector   *observability.Collector
	Tracer      *observability.Tracer
	Router      *rest.Router
}
