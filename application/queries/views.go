package queries

import (
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
)

// SliceView is the read model of a month slice.
type SliceView struct {
	ID              string          `json:"id"`
	Month           string          `json:"month"`
	OriginMonth     string          `json:"originMonth"`
	Domain          string          `json:"domain"`
	Prefix          string          `json:"prefix"`
	ProjectID       string          `json:"projectId"`
	AppID           string          `json:"appId"`
	Name            string          `json:"name"`
	Category        string          `json:"category,omitempty"`
	ValueType       string          `json:"valueType,omitempty"`
	CreateTimestamp int64           `json:"createTimestamp"`
	UpdateTimestamp int64           `json:"updateTimestamp"`
	Days            map[int]DayView `json:"days"`
	Summary         SummaryView     `json:"summary"`
}

type DayView struct {
	HasData    bool            `json:"hasData"`
	Count      *int64          `json:"count,omitempty"`
	Platform   []string        `json:"platform,omitempty"`
	SDKVersion []string        `json:"sdkVersion,omitempty"`
	SDKName    []string        `json:"sdkName,omitempty"`
	ValueEnum  []vo.ValueCount `json:"valueEnum,omitempty"`
}

type SummaryView struct {
	HasData              bool                    `json:"hasData"`
	LatestCount          *int64                  `json:"latestCount,omitempty"`
	Platform             []string                `json:"platform,omitempty"`
	SDKVersion           []string                `json:"sdkVersion,omitempty"`
	SDKName              []string                `json:"sdkName,omitempty"`
	ValueEnum            []vo.ValueCount         `json:"valueEnum,omitempty"`
	AssociatedEvents     []string                `json:"associatedEvents,omitempty"`
	AssociatedParameters []entities.ParameterRef `json:"associatedParameters,omitempty"`
}

// NewSliceView builds the read model of s.
func NewSliceView(s *entities.MonthSlice) *SliceView {
	view := &SliceView{
		ID:              s.ID,
		Month:           s.Month,
		OriginMonth:     s.OriginMonth,
		Domain:          s.Domain.String(),
		Prefix:          s.Prefix,
		ProjectID:       s.ProjectID,
		AppID:           s.AppID,
		Name:            s.Name,
		Category:        s.Category,
		ValueType:       s.ValueType,
		CreateTimestamp: s.CreateTimestamp,
		UpdateTimestamp: s.UpdateTimestamp,
		Days:            make(map[int]DayView, len(s.Days)),
		Summary: SummaryView{
			HasData:              s.Summary.HasData,
			LatestCount:          s.Summary.LatestCount,
			Platform:             s.Summary.Platform.Values(),
			SDKVersion:           s.Summary.SDKVersion.Values(),
			SDKName:              s.Summary.SDKName.Values(),
			ValueEnum:            s.Summary.ValueEnum.List(),
			AssociatedEvents:     s.Summary.AssociatedEvents.Values(),
			AssociatedParameters: s.Summary.AssociatedParameters.Values(),
		},
	}
	for n, day := range s.Days {
		if day == nil {
			continue
		}
		view.Days[n] = DayView{
			HasData:    day.HasData,
			Count:      day.Count,
			Platform:   day.Platform.Values(),
			SDKVersion: day.SDKVersion.Values(),
			SDKName:    day.SDKName.Values(),
			ValueEnum:  day.ValueEnum.List(),
		}
	}
	return view
}
