package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"metadata-scanner/application/ports"
	"metadata-scanner/domain/config"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
	"metadata-scanner/domain/events"
	"metadata-scanner/pkg/observability"
	"metadata-scanner/pkg/utils"
)

const (
	StatusSucceeded = "SUCCEED"
	StatusFailed    = "FAILED"
)

// ScanResult describes one finished run.
type ScanResult struct {
	RunID        string         `json:"runId"`
	AppID        string         `json:"appId"`
	Status       string         `json:"status"`
	Message      string         `json:"message"`
	Stage        string         `json:"stage,omitempty"`
	Slices       map[string]int `json:"slices"`
	Placeholders int            `json:"placeholders"`
	Demotions    int            `json:"demotions"`
	Written      int            `json:"written"`
	DurationMs   int64          `json:"durationMs"`
}

// ScanOptions are the per-deployment settings of a scan.
type ScanOptions struct {
	ProjectID string
	LockTTL   time.Duration
}

// ScanService runs one metadata scan for an app: load, merge, summarize,
// generate placeholders and persist, for parameters, events and user
// attributes in that order.
type ScanService struct {
	source       ports.QuerySource
	store        ports.SliceStore
	loader       *SliceLoader
	placeholders *PlaceholderGenerator
	persister    *BatchPersister
	lock         ports.ScanLock
	publisher    ports.EventPublisher
	metrics      ports.Metrics
	cfg          *config.DomainConfig
	opts         ScanOptions
	clock        utils.Clock
	logger       *zap.Logger
}

func NewScanService(
	source ports.QuerySource,
	store ports.SliceStore,
	registry ports.SchemaRegistry,
	lock ports.ScanLock,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	cfg *config.DomainConfig,
	opts ScanOptions,
	clock utils.Clock,
	logger *zap.Logger,
) *ScanService {
	return &ScanService{
		source:       source,
		store:        store,
		loader:       NewSliceLoader(source, store, logger),
		placeholders: NewPlaceholderGenerator(registry, cfg, clock, logger),
		persister:    NewBatchPersister(store, cfg.BatchSize, logger),
		lock:         lock,
		publisher:    publisher,
		metrics:      metrics,
		cfg:          cfg,
		opts:         opts,
		clock:        clock,
		logger:       logger,
	}
}

// scanRun is the state of one invocation. Nothing in it outlives Run.
type scanRun struct {
	id       string
	appID    string
	resolver *LatestResolver
	engine   *MergeEngine
	result   *ScanResult

	parameters      *entities.SliceSet
	paramHolders    []*entities.MonthSlice
	events          *entities.SliceSet
	users           *entities.SliceSet
	userHolders     []*entities.MonthSlice
	allEventNames   []string
	allPlatformList []string
}

// Run scans appID. A failed run returns a result with StatusFailed along
// with the error that stopped it.
func (s *ScanService) Run(ctx context.Context, appID string) (*ScanResult, error) {
	start := s.clock.Now()
	run := &scanRun{
		id:    uuid.NewString(),
		appID: appID,
		result: &ScanResult{
			AppID:  appID,
			Slices: make(map[string]int),
		},
	}
	run.result.RunID = run.id
	run.resolver = NewLatestResolver(s.store, s.clock, s.cfg.CatalogVersion, s.logger.With(zap.String("runID", run.id)))
	run.engine = NewMergeEngine(run.resolver, s.cfg, s.clock, s.logger.With(zap.String("runID", run.id)))

	logger := s.logger.With(zap.String("runID", run.id), zap.String("appID", appID))
	logger.Info("Starting metadata scan")

	if s.lock != nil {
		lease, err := s.lock.Acquire(ctx, appID, run.id, s.opts.LockTTL)
		if err != nil {
			return s.fail(ctx, run, start, "lock", err)
		}
		defer func() {
			if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("Failed to release scan lock", zap.Error(err))
			}
		}()
	}

	stages := []struct {
		name string
		fn   func(context.Context, *scanRun) error
	}{
		{"event_parameter", s.scanParameters},
		{"event", s.scanEvents},
		{"user_attribute", s.scanUserAttributes},
		{"persist", s.persist},
	}
	for _, stage := range stages {
		if err := stage.fn(ctx, run); err != nil {
			return s.fail(ctx, run, start, stage.name, err)
		}
	}

	duration := s.clock.Now().Sub(start)
	run.result.Status = StatusSucceeded
	run.result.Message = "store metadata into ddb successfully"
	run.result.Demotions = run.resolver.Demotions()
	run.result.DurationMs = duration.Milliseconds()

	s.recordMetrics(ctx, run, observability.OutcomeSucceeded, duration)
	s.publish(ctx, events.NewScanCompleted(run.id, s.opts.ProjectID, appID, run.result.Slices, run.result.Placeholders, duration, s.clock.Now()))

	logger.Info("Metadata scan completed",
		zap.Any("slices", run.result.Slices),
		zap.Int("placeholders", run.result.Placeholders),
		zap.Int("demotions", run.result.Demotions),
		zap.Int("written", run.result.Written),
		zap.Duration("duration", duration),
	)
	return run.result, nil
}

func (s *ScanService) scanParameters(ctx context.Context, run *scanRun) error {
	slices, err := s.loader.Load(ctx, run.appID, vo.DomainEventParameter)
	if err != nil {
		return err
	}
	rows, err := s.source.ParameterRows(ctx, run.appID)
	if err != nil {
		return fmt.Errorf("failed to read event parameter rows: %w", err)
	}
	if err := run.engine.MergeParameters(ctx, slices, rows); err != nil {
		return err
	}

	run.allEventNames, err = s.source.DistinctEventNames(ctx, run.appID)
	if err != nil {
		return fmt.Errorf("failed to read distinct event names: %w", err)
	}
	run.allPlatformList, err = s.source.DistinctPlatforms(ctx, run.appID)
	if err != nil {
		return fmt.Errorf("failed to read distinct platforms: %w", err)
	}

	declared, err := s.placeholders.DeclaredNames(vo.DomainEventParameter)
	if err != nil {
		return err
	}
	run.engine.SummarizeParameters(slices, declared, run.allEventNames, run.allPlatformList)

	run.paramHolders, err = s.placeholders.EventParameters(s.opts.ProjectID, run.appID, run.allEventNames, run.allPlatformList)
	if err != nil {
		return err
	}
	run.parameters = slices
	run.result.Slices[vo.DomainEventParameter.String()] = slices.Len()
	run.result.Placeholders += len(run.paramHolders)
	return nil
}

func (s *ScanService) scanEvents(ctx context.Context, run *scanRun) error {
	slices, err := s.loader.Load(ctx, run.appID, vo.DomainEvent)
	if err != nil {
		return err
	}
	rows, err := s.source.EventRows(ctx, run.appID)
	if err != nil {
		return fmt.Errorf("failed to read event rows: %w", err)
	}
	if err := run.engine.MergeEvents(ctx, slices, rows); err != nil {
		return err
	}
	run.engine.SummarizeEvents(slices)

	parameters := append(run.parameters.Slices(), run.paramHolders...)
	run.engine.LinkEventParameters(slices, parameters)

	run.events = slices
	run.result.Slices[vo.DomainEvent.String()] = slices.Len()
	return nil
}

func (s *ScanService) scanUserAttributes(ctx context.Context, run *scanRun) error {
	slices, err := s.loader.Load(ctx, run.appID, vo.DomainUserAttribute)
	if err != nil {
		return err
	}
	rows, err := s.source.UserAttributeRows(ctx, run.appID)
	if err != nil {
		return fmt.Errorf("failed to read user attribute rows: %w", err)
	}
	if err := run.engine.MergeUserAttributes(ctx, slices, rows); err != nil {
		return err
	}
	run.engine.SummarizeUserAttributes(slices)

	run.userHolders, err = s.placeholders.UserAttributes(s.opts.ProjectID, run.appID)
	if err != nil {
		return err
	}
	run.users = slices
	run.result.Slices[vo.DomainUserAttribute.String()] = slices.Len()
	run.result.Placeholders += len(run.userHolders)
	return nil
}

func (s *ScanService) persist(ctx context.Context, run *scanRun) error {
	var ordered []*entities.MonthSlice
	ordered = append(ordered, run.parameters.Slices()...)
	ordered = append(ordered, run.paramHolders...)
	ordered = append(ordered, run.events.Slices()...)
	ordered = append(ordered, run.users.Slices()...)
	ordered = append(ordered, run.userHolders...)

	written, err := s.persister.Persist(ctx, ordered)
	run.result.Written = written
	return err
}

func (s *ScanService) fail(ctx context.Context, run *scanRun, start time.Time, stage string, err error) (*ScanResult, error) {
	duration := s.clock.Now().Sub(start)
	run.result.Status = StatusFailed
	run.result.Message = "store metadata into ddb failed"
	run.result.Stage = stage
	run.result.Demotions = run.resolver.Demotions()
	run.result.DurationMs = duration.Milliseconds()

	s.logger.Error("Metadata scan failed",
		zap.String("runID", run.id),
		zap.String("appID", run.appID),
		zap.String("stage", stage),
		zap.Error(err),
	)
	s.recordMetrics(ctx, run, observability.OutcomeFailed, duration)
	s.publish(ctx, events.NewScanFailed(run.id, s.opts.ProjectID, run.appID, stage, err, s.clock.Now()))
	return run.result, err
}

func (s *ScanService) recordMetrics(ctx context.Context, run *scanRun, outcome string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordScan(ctx, run.appID, outcome, duration)
	for _, domain := range vo.AllDomains {
		if n, ok := run.result.Slices[domain.String()]; ok {
			s.metrics.RecordSlices(ctx, run.appID, domain, n)
		}
	}
}

func (s *ScanService) publish(ctx context.Context, event events.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("Failed to publish scan event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
