package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"metadata-scanner/domain/config"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
	"metadata-scanner/pkg/utils"
)

// MergeEngine folds decoded source rows into a run's slice sets.
//
// The source delivers one pre-aggregated row per (entity, month, day) and
// value. Events and user attributes: the first row a run applies to a day
// replaces that day's stored slot, later rows of the run merge into it.
// Parameters keep the stored day: platforms are unioned, and the first row
// of a run for a value sets that value's count while later ones add to it.
// Replaying a run therefore produces the same slices.
type MergeEngine struct {
	resolver *LatestResolver
	cfg      *config.DomainConfig
	clock    utils.Clock
	logger   *zap.Logger
	touched  map[string]struct{}
}

func NewMergeEngine(resolver *LatestResolver, cfg *config.DomainConfig, clock utils.Clock, logger *zap.Logger) *MergeEngine {
	return &MergeEngine{
		resolver: resolver,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
		touched:  make(map[string]struct{}),
	}
}

func (m *MergeEngine) nowMillis() int64 {
	return utils.EpochMillis(m.clock.Now())
}

// sliceFor returns the slice addressed by key, creating it when the run
// does not hold one, and stamps month, prefix and update time.
func (m *MergeEngine) sliceFor(ctx context.Context, slices *entities.SliceSet, domain vo.CatalogDomain, key entities.RowKey) (*entities.MonthSlice, bool, error) {
	month, err := m.resolver.Resolve(ctx, slices, key.ID, key.Month)
	if err != nil {
		return nil, false, err
	}

	now := m.nowMillis()
	slice, ok := slices.Get(key.ID, key.Month)
	if !ok {
		slice = entities.NewMonthSlice(domain, key.ID, key.Month, now)
		slice.ProjectID = key.ProjectID
		slice.AppID = key.AppID
		slices.Put(slice)
	}
	slice.Month = month
	slice.Prefix = vo.VersionedPrefix(key.Prefix, m.cfg.CatalogVersion)
	slice.Touch(now)
	return slice, !ok, nil
}

// firstTouch reports whether this is the first row of the run for the
// slice's day and records it.
func (m *MergeEngine) firstTouch(slice *entities.MonthSlice, day int) bool {
	k := fmt.Sprintf("%s|%s|%d", slice.Domain, slice.Key(), day)
	if _, ok := m.touched[k]; ok {
		return false
	}
	m.touched[k] = struct{}{}
	return true
}

// firstValueTouch reports whether this is the first row of the run for
// value on the slice's day and records it.
func (m *MergeEngine) firstValueTouch(slice *entities.MonthSlice, day int, value string) bool {
	k := fmt.Sprintf("%s|%s|%d|%s", slice.Domain, slice.Key(), day, value)
	if _, ok := m.touched[k]; ok {
		return false
	}
	m.touched[k] = struct{}{}
	return true
}

func (m *MergeEngine) identifierSet(values ...string) *vo.BoundedSet[string] {
	return vo.NewBoundedSet(m.cfg.MaxIdentifierSet, values...)
}

// unionInto adds src to *dst, creating *dst when absent.
func (m *MergeEngine) unionInto(dst **vo.BoundedSet[string], src *vo.BoundedSet[string]) {
	if *dst == nil {
		*dst = m.identifierSet()
	}
	(*dst).Union(src)
}
