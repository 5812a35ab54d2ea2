package services

import (
	"fmt"

	"go.uber.org/zap"
	"metadata-scanner/application/ports"
	"metadata-scanner/domain/config"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
	"metadata-scanner/pkg/utils"
)

// PlaceholderGenerator emits latest entries for declared properties whose
// values are never scanned, so they stay discoverable in the catalog.
type PlaceholderGenerator struct {
	registry ports.SchemaRegistry
	cfg      *config.DomainConfig
	clock    utils.Clock
	logger   *zap.Logger
}

func NewPlaceholderGenerator(registry ports.SchemaRegistry, cfg *config.DomainConfig, clock utils.Clock, logger *zap.Logger) *PlaceholderGenerator {
	return &PlaceholderGenerator{
		registry: registry,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
	}
}

// DeclaredNames returns the names of every property declared for domain.
func (g *PlaceholderGenerator) DeclaredNames(domain vo.CatalogDomain) (*vo.BoundedSet[string], error) {
	props, err := g.registry.ListDeclaredProperties(domain)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s schema properties: %w", domain, err)
	}
	names := vo.NewBoundedSet[string](0)
	for _, p := range props {
		names.Add(p.Name)
	}
	return names, nil
}

// EventParameters returns placeholders for unscanned event parameters,
// linked to every event and platform of the app.
func (g *PlaceholderGenerator) EventParameters(projectID, appID string, allEvents, allPlatforms []string) ([]*entities.MonthSlice, error) {
	return g.generate(vo.DomainEventParameter, projectID, appID, func(s *entities.MonthSlice) {
		s.Summary = entities.Summary{
			HasData:          true,
			Platform:         vo.NewBoundedSet(g.cfg.MaxIdentifierSet, allPlatforms...),
			ValueEnum:        vo.NewValueEnum(g.cfg.MaxSummaryValues),
			AssociatedEvents: vo.NewBoundedSet(g.cfg.MaxIdentifierSet, allEvents...),
		}
	})
}

// UserAttributes returns placeholders for unscanned user attributes.
func (g *PlaceholderGenerator) UserAttributes(projectID, appID string) ([]*entities.MonthSlice, error) {
	return g.generate(vo.DomainUserAttribute, projectID, appID, func(s *entities.MonthSlice) {
		s.Summary = entities.Summary{HasData: true}
	})
}

func (g *PlaceholderGenerator) generate(domain vo.CatalogDomain, projectID, appID string, fill func(*entities.MonthSlice)) ([]*entities.MonthSlice, error) {
	props, err := g.registry.ListDeclaredProperties(domain)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s schema properties: %w", domain, err)
	}

	now := g.clock.Now()
	millis := utils.EpochMillis(now)
	prefix := vo.CatalogPrefix(domain, projectID, appID, g.cfg.CatalogVersion)

	var out []*entities.MonthSlice
	for _, p := range props {
		if p.ScanValue {
			continue
		}
		id := vo.PropertyEntityID(projectID, appID, p.Category, p.Name, p.DataType)
		slice := entities.NewMonthSlice(domain, id, vo.MonthOf(now), millis)
		slice.Month = vo.LatestMonth
		slice.Prefix = prefix
		slice.ProjectID = projectID
		slice.AppID = appID
		slice.Name = p.Name
		slice.Category = p.Category
		slice.ValueType = p.DataType
		fill(slice)
		out = append(out, slice)
	}

	g.logger.Debug("Generated placeholders",
		zap.String("domain", domain.String()),
		zap.String("appID", appID),
		zap.Int("count", len(out)),
	)
	return out, nil
}
