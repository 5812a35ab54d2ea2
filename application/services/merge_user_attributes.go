package services

import (
	"context"

	"go.uber.org/zap"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
)

// MergeUserAttributes applies user attribute rows to slices.
func (m *MergeEngine) MergeUserAttributes(ctx context.Context, slices *entities.SliceSet, rows []entities.UserAttributeRow) error {
	created := 0
	for i := range rows {
		row := &rows[i]
		slice, isNew, err := m.sliceFor(ctx, slices, vo.DomainUserAttribute, row.RowKey)
		if err != nil {
			return err
		}
		slice.Name = row.PropertyName
		slice.Category = row.Category
		slice.ValueType = row.ValueType

		fresh := m.firstTouch(slice, row.Day)
		if day, ok := slice.Day(row.Day); ok && !fresh {
			if day.ValueEnum == nil {
				day.ValueEnum = vo.NewValueEnum(m.cfg.MaxDayValues)
			}
			day.ValueEnum.Merge(row.ValueEnum)
		} else {
			slice.SetDay(row.Day, &entities.DaySlot{
				HasData:   true,
				ValueEnum: vo.NewValueEnum(m.cfg.MaxDayValues, row.ValueEnum...),
			})
		}

		if isNew {
			created++
			slice.Summary = entities.Summary{
				HasData:   true,
				ValueEnum: vo.NewValueEnum(m.cfg.MaxSummaryValues, row.ValueEnum...),
			}
		}
	}

	m.logger.Debug("Merged user attribute rows",
		zap.Int("rows", len(rows)),
		zap.Int("created", created),
	)
	return nil
}

// SummarizeUserAttributes rebuilds every user attribute summary.
func (m *MergeEngine) SummarizeUserAttributes(slices *entities.SliceSet) {
	for _, slice := range slices.Slices() {
		values := vo.NewValueEnum(m.cfg.MaxSummaryValues)
		for _, n := range slice.DayNumbers() {
			values.Merge(slice.Days[n].ValueEnum.List())
		}
		slice.Summary = entities.Summary{
			HasData:   true,
			ValueEnum: values,
		}
	}
}
