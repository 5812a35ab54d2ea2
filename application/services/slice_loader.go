package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"metadata-scanner/application/ports"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
)

// SliceLoader reads the slices a scan is about to touch. The source names
// the (id, month) pairs present in its metadata table; each pair is looked
// up in the catalog by origin month.
type SliceLoader struct {
	source ports.QuerySource
	store  ports.SliceStore
	logger *zap.Logger
}

func NewSliceLoader(source ports.QuerySource, store ports.SliceStore, logger *zap.Logger) *SliceLoader {
	return &SliceLoader{
		source: source,
		store:  store,
		logger: logger,
	}
}

// Load returns the existing slices for appID in domain keyed by
// id + originMonth.
func (l *SliceLoader) Load(ctx context.Context, appID string, domain vo.CatalogDomain) (*entities.SliceSet, error) {
	pairs, err := l.source.DistinctIDMonths(ctx, appID, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s id months: %w", domain, err)
	}

	set := entities.NewSliceSet()
	for _, pair := range pairs {
		found, err := l.store.QueryByOriginMonth(ctx, pair.ID, pair.Month)
		if err != nil {
			return nil, fmt.Errorf("failed to load slices for %s%s: %w", pair.ID, pair.Month, err)
		}

		var chosen *entities.MonthSlice
		for _, slice := range found {
			if preferSlice(slice, chosen) {
				chosen = slice
			}
		}
		if chosen == nil {
			continue
		}
		if len(found) > 1 {
			l.logger.Debug("Multiple stored slices share an origin month",
				zap.String("id", pair.ID),
				zap.String("originMonth", pair.Month),
				zap.Int("count", len(found)),
				zap.String("kept", chosen.Month),
			)
		}
		chosen.Domain = domain
		set.Put(chosen)
	}

	l.logger.Info("Loaded existing slices",
		zap.String("appID", appID),
		zap.String("domain", domain.String()),
		zap.Int("pairs", len(pairs)),
		zap.Int("slices", set.Len()),
	)
	return set, nil
}

// preferSlice reports whether candidate should replace current: the most
// recently updated slice wins, and the latest-tagged one wins ties.
func preferSlice(candidate, current *entities.MonthSlice) bool {
	if current == nil {
		return true
	}
	if candidate.UpdateTimestamp != current.UpdateTimestamp {
		return candidate.UpdateTimestamp > current.UpdateTimestamp
	}
	return candidate.IsLatest() && !current.IsLatest()
}
