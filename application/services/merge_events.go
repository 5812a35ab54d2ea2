package services

import (
	"context"

	"go.uber.org/zap"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
)

// MergeEvents applies event rows to slices.
func (m *MergeEngine) MergeEvents(ctx context.Context, slices *entities.SliceSet, rows []entities.EventRow) error {
	created := 0
	for i := range rows {
		row := &rows[i]
		slice, isNew, err := m.sliceFor(ctx, slices, vo.DomainEvent, row.RowKey)
		if err != nil {
			return err
		}
		slice.Name = row.EventName

		fresh := m.firstTouch(slice, row.Day)
		if day, ok := slice.Day(row.Day); ok && !fresh {
			count := row.Count
			if day.Count != nil {
				count += *day.Count
			}
			day.Count = &count
			m.unionInto(&day.Platform, row.Platform)
			m.unionInto(&day.SDKVersion, row.SDKVersion)
			m.unionInto(&day.SDKName, row.SDKName)
		} else {
			count := row.Count
			slice.SetDay(row.Day, &entities.DaySlot{
				HasData:    true,
				Count:      &count,
				Platform:   m.identifierSet(row.Platform.Values()...),
				SDKVersion: m.identifierSet(row.SDKVersion.Values()...),
				SDKName:    m.identifierSet(row.SDKName.Values()...),
			})
		}

		if isNew {
			created++
			slice.Summary = entities.Summary{
				HasData:              true,
				Platform:             m.identifierSet(row.Platform.Values()...),
				SDKVersion:           m.identifierSet(row.SDKVersion.Values()...),
				SDKName:              m.identifierSet(row.SDKName.Values()...),
				AssociatedParameters: vo.NewBoundedSet[entities.ParameterRef](m.cfg.MaxAssociatedParams),
			}
		}
	}

	m.logger.Debug("Merged event rows",
		zap.Int("rows", len(rows)),
		zap.Int("created", created),
	)
	return nil
}

// SummarizeEvents rebuilds every event summary from its day slots.
func (m *MergeEngine) SummarizeEvents(slices *entities.SliceSet) {
	for _, slice := range slices.Slices() {
		platform := m.identifierSet()
		sdkVersion := m.identifierSet()
		sdkName := m.identifierSet()

		days := slice.DayNumbers()
		for _, n := range days {
			day := slice.Days[n]
			platform.Union(day.Platform)
			sdkVersion.Union(day.SDKVersion)
			sdkName.Union(day.SDKName)
		}

		slice.Summary.HasData = true
		slice.Summary.Platform = platform
		slice.Summary.SDKVersion = sdkVersion
		slice.Summary.SDKName = sdkName
		slice.Summary.LatestCount = nil
		if len(days) > 0 {
			if last := slice.Days[days[len(days)-1]]; last.Count != nil {
				c := *last.Count
				slice.Summary.LatestCount = &c
			}
		}
		if slice.Summary.AssociatedParameters == nil {
			slice.Summary.AssociatedParameters = vo.NewBoundedSet[entities.ParameterRef](m.cfg.MaxAssociatedParams)
		}
	}
}

// LinkEventParameters adds to each event summary every parameter whose
// associated events include the event's name. Existing links are kept.
func (m *MergeEngine) LinkEventParameters(events *entities.SliceSet, parameters []*entities.MonthSlice) {
	linked := 0
	for _, event := range events.Slices() {
		refs := event.Summary.AssociatedParameters
		if refs == nil {
			refs = vo.NewBoundedSet[entities.ParameterRef](m.cfg.MaxAssociatedParams)
			event.Summary.AssociatedParameters = refs
		}
		for _, param := range parameters {
			if !param.Summary.AssociatedEvents.Contains(event.Name) {
				continue
			}
			if refs.Add(entities.ParameterRef{
				Name:      param.Name,
				Category:  param.Category,
				ValueType: param.ValueType,
			}) {
				linked++
			}
		}
	}

	m.logger.Debug("Linked parameters to events",
		zap.Int("events", events.Len()),
		zap.Int("parameters", len(parameters)),
		zap.Int("links", linked),
	)
}
