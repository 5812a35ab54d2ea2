package services

import (
	"context"

	"go.uber.org/zap"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
)

// MergeParameters applies event parameter rows to slices. Each row carries
// one observed value and the events it was seen on.
func (m *MergeEngine) MergeParameters(ctx context.Context, slices *entities.SliceSet, rows []entities.ParameterRow) error {
	created := 0
	for i := range rows {
		row := &rows[i]
		slice, isNew, err := m.sliceFor(ctx, slices, vo.DomainEventParameter, row.RowKey)
		if err != nil {
			return err
		}
		slice.Name = row.PropertyName
		slice.Category = row.Category
		slice.ValueType = row.ValueType

		day, ok := slice.Day(row.Day)
		if !ok {
			day = &entities.DaySlot{}
			slice.SetDay(row.Day, day)
		}
		day.HasData = true
		m.unionInto(&day.Platform, row.Platform)
		if day.ValueEnum == nil {
			day.ValueEnum = vo.NewValueEnum(m.cfg.MaxDayValues)
		}
		if m.firstValueTouch(slice, row.Day, row.PropertyValue) {
			day.ValueEnum.Set(row.PropertyValue, row.Count)
		} else {
			day.ValueEnum.Add(row.PropertyValue, row.Count)
		}

		if isNew {
			created++
			slice.Summary = entities.Summary{
				HasData:          true,
				Platform:         m.identifierSet(row.Platform.Values()...),
				ValueEnum:        vo.NewValueEnum(m.cfg.MaxSummaryValues, vo.ValueCount{Value: row.PropertyValue, Count: row.Count}),
				AssociatedEvents: m.identifierSet(row.EventNames.Values()...),
			}
			continue
		}
		m.unionInto(&slice.Summary.AssociatedEvents, row.EventNames)
	}

	m.logger.Debug("Merged event parameter rows",
		zap.Int("rows", len(rows)),
		zap.Int("created", created),
	)
	return nil
}

// SummarizeParameters rebuilds every parameter summary from its day slots.
// Parameters the schema declares are attached to every event and platform
// of the app, in the summary and in each day slot.
func (m *MergeEngine) SummarizeParameters(slices *entities.SliceSet, declared *vo.BoundedSet[string], allEvents, allPlatforms []string) {
	overridden := 0
	for _, slice := range slices.Slices() {
		platform := m.identifierSet()
		values := vo.NewValueEnum(m.cfg.MaxSummaryValues)
		isDeclared := declared.Contains(slice.Name)

		for _, n := range slice.DayNumbers() {
			day := slice.Days[n]
			platform.Union(day.Platform)
			if isDeclared {
				day.Platform = m.identifierSet(allPlatforms...)
			}
			values.Merge(day.ValueEnum.List())
		}

		slice.Summary.HasData = true
		slice.Summary.Platform = platform
		slice.Summary.ValueEnum = values
		if slice.Summary.AssociatedEvents == nil {
			slice.Summary.AssociatedEvents = m.identifierSet()
		}

		if isDeclared {
			overridden++
			slice.Summary.AssociatedEvents = m.identifierSet(allEvents...)
			slice.Summary.Platform = m.identifierSet(allPlatforms...)
		}
	}

	m.logger.Debug("Summarized event parameters",
		zap.Int("slices", slices.Len()),
		zap.Int("declared", overridden),
	)
}
