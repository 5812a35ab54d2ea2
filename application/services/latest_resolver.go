package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"metadata-scanner/application/ports"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
	"metadata-scanner/pkg/utils"
)

// SliceLookup finds a slice held in memory by the current run.
type SliceLookup interface {
	Get(id, originMonth string) (*entities.MonthSlice, bool)
}

// LatestResolver decides the month key of each slice a run writes so that
// every id keeps exactly one latest slice, the one with the greatest origin
// month. It remembers the latest origin month per id for the lifetime of
// one run and must not be shared between runs.
type LatestResolver struct {
	store     ports.SliceStore
	clock     utils.Clock
	version   string
	logger    *zap.Logger
	marked    map[string]string
	demotions int
}

func NewLatestResolver(store ports.SliceStore, clock utils.Clock, version string, logger *zap.Logger) *LatestResolver {
	return &LatestResolver{
		store:   store,
		clock:   clock,
		version: version,
		logger:  logger,
		marked:  make(map[string]string),
	}
}

// Resolve returns vo.LatestMonth when candidate is the newest origin month
// seen for id, or candidate itself when a newer month is already latest.
// Moving latest forward demotes the previous latest slice back to its
// literal month with an immediate write.
func (r *LatestResolver) Resolve(ctx context.Context, held SliceLookup, id, candidate string) (string, error) {
	var stored *entities.MonthSlice
	marked, ok := r.marked[id]
	if !ok {
		var err error
		stored, err = r.store.GetLatest(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to read latest slice of %s: %w", id, err)
		}
		if stored == nil {
			r.marked[id] = candidate
			return vo.LatestMonth, nil
		}
		marked = stored.OriginMonth
		r.marked[id] = marked
	}

	switch {
	case candidate < marked:
		return candidate, nil
	case candidate > marked:
		if err := r.demote(ctx, held, id, marked, stored); err != nil {
			return "", err
		}
		r.marked[id] = candidate
	}
	return vo.LatestMonth, nil
}

// Demotions returns how many slices this resolver moved off latest.
func (r *LatestResolver) Demotions() int {
	return r.demotions
}

func (r *LatestResolver) demote(ctx context.Context, held SliceLookup, id, month string, stored *entities.MonthSlice) error {
	slice, ok := held.Get(id, month)
	if !ok {
		slice = stored
	}
	if slice == nil {
		latest, err := r.store.GetLatest(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to read latest slice of %s: %w", id, err)
		}
		if latest == nil || latest.OriginMonth != month {
			r.logger.Debug("No latest slice to demote",
				zap.String("id", id),
				zap.String("month", month),
			)
			return nil
		}
		slice = latest
	}

	slice.Month = month
	slice.Prefix = vo.VersionedPrefix(slice.Prefix, r.version)
	slice.Touch(utils.EpochMillis(r.clock.Now()))
	if err := r.store.PutSlice(ctx, slice); err != nil {
		return fmt.Errorf("failed to demote %s%s: %w", id, month, err)
	}
	r.demotions++

	r.logger.Debug("Demoted latest slice",
		zap.String("id", id),
		zap.String("month", month),
	)
	return nil
}
