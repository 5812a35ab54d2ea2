package ports

import (
	"context"
	"time"

	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
	"metadata-scanner/domain/events"
)

// SliceStore is the durable catalog keyed by (id, month).
type SliceStore interface {
	// GetLatest returns the slice stored under (id, "latest"), or nil when
	// the entity has no latest slice.
	GetLatest(ctx context.Context, id string) (*entities.MonthSlice, error)

	// QueryByOriginMonth returns every slice of id whose originMonth matches,
	// whichever month key it is stored under.
	QueryByOriginMonth(ctx context.Context, id, originMonth string) ([]*entities.MonthSlice, error)

	// PutSlice writes a single slice immediately.
	PutSlice(ctx context.Context, slice *entities.MonthSlice) error

	// BatchPut writes up to MaxStoreBatchSize slices in one request. Any
	// item the store leaves unprocessed fails the call.
	BatchPut(ctx context.Context, slices []*entities.MonthSlice) error
}

// QuerySource reads pre-aggregated metadata tables for one app.
type QuerySource interface {
	DistinctIDMonths(ctx context.Context, appID string, domain vo.CatalogDomain) ([]entities.IDMonth, error)
	EventRows(ctx context.Context, appID string) ([]entities.EventRow, error)
	ParameterRows(ctx context.Context, appID string) ([]entities.ParameterRow, error)
	UserAttributeRows(ctx context.Context, appID string) ([]entities.UserAttributeRow, error)
	DistinctEventNames(ctx context.Context, appID string) ([]string, error)
	DistinctPlatforms(ctx context.Context, appID string) ([]string, error)
}

// SchemaRegistry lists the properties the warehouse schema declares.
type SchemaRegistry interface {
	ListDeclaredProperties(domain vo.CatalogDomain) ([]entities.DeclaredProperty, error)
}

// EventPublisher publishes domain events to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// Metrics records scan outcomes.
type Metrics interface {
	RecordScan(ctx context.Context, appID, outcome string, duration time.Duration)
	RecordSlices(ctx context.Context, appID string, domain vo.CatalogDomain, count int)
}

// ScanLock serialises runs for the same app.
type ScanLock interface {
	Acquire(ctx context.Context, appID, owner string, ttl time.Duration) (ScanLease, error)
}

// ScanLease is a held scan lock.
type ScanLease interface {
	Release(ctx context.Context) error
}
