package entities

import (
	"sort"

	vo "metadata-scanner/domain/core/valueobjects"
)

// ParameterRef identifies an event parameter linked from an event summary.
type ParameterRef struct {
	Name      string `json:"name" dynamodbav:"name"`
	Category  string `json:"category" dynamodbav:"category"`
	ValueType string `json:"valueType" dynamodbav:"valueType"`
}

// DaySlot holds one day of observations for a month slice. Which fields
// are set depends on the slice's domain; nil means the attribute is absent.
type DaySlot struct {
	HasData    bool
	Count      *int64
	Platform   *vo.BoundedSet[string]
	SDKVersion *vo.BoundedSet[string]
	SDKName    *vo.BoundedSet[string]
	ValueEnum  *vo.ValueEnum
}

// Clone returns a deep copy.
func (d *DaySlot) Clone() *DaySlot {
	if d == nil {
		return nil
	}
	out := &DaySlot{
		HasData:    d.HasData,
		Platform:   d.Platform.Clone(),
		SDKVersion: d.SDKVersion.Clone(),
		SDKName:    d.SDKName.Clone(),
		ValueEnum:  d.ValueEnum.Clone(),
	}
	if d.Count != nil {
		c := *d.Count
		out.Count = &c
	}
	return out
}

// Summary is the rollup of a slice's day slots plus cross-domain links.
type Summary struct {
	HasData              bool
	Platform             *vo.BoundedSet[string]
	SDKVersion           *vo.BoundedSet[string]
	SDKName              *vo.BoundedSet[string]
	ValueEnum            *vo.ValueEnum
	AssociatedEvents     *vo.BoundedSet[string]
	AssociatedParameters *vo.BoundedSet[ParameterRef]
	LatestCount          *int64
}

// MonthSlice is the catalog record for one entity and one calendar month.
// Month is either the literal OriginMonth or vo.LatestMonth.
type MonthSlice struct {
	Domain          vo.CatalogDomain
	ID              string
	Month           string
	OriginMonth     string
	Prefix          string
	ProjectID       string
	AppID           string
	Name            string
	Category        string
	ValueType       string
	Days            map[int]*DaySlot
	Summary         Summary
	CreateTimestamp int64
	UpdateTimestamp int64
}

// NewMonthSlice creates an empty slice for id in originMonth.
func NewMonthSlice(domain vo.CatalogDomain, id, originMonth string, nowMillis int64) *MonthSlice {
	return &MonthSlice{
		Domain:          domain,
		ID:              id,
		Month:           originMonth,
		OriginMonth:     originMonth,
		Days:            make(map[int]*DaySlot),
		Summary:         Summary{HasData: true},
		CreateTimestamp: nowMillis,
		UpdateTimestamp: nowMillis,
	}
}

// IsLatest reports whether the slice currently carries the latest marker.
func (s *MonthSlice) IsLatest() bool {
	return s.Month == vo.LatestMonth
}

// Day returns the slot for day n.
func (s *MonthSlice) Day(n int) (*DaySlot, bool) {
	d, ok := s.Days[n]
	return d, ok
}

func (s *MonthSlice) SetDay(n int, slot *DaySlot) {
	if s.Days == nil {
		s.Days = make(map[int]*DaySlot)
	}
	s.Days[n] = slot
}

// DayNumbers returns the populated day numbers in ascending order.
func (s *MonthSlice) DayNumbers() []int {
	days := make([]int, 0, len(s.Days))
	for n := range s.Days {
		days = append(days, n)
	}
	sort.Ints(days)
	return days
}

// Touch sets the update timestamp.
func (s *MonthSlice) Touch(nowMillis int64) {
	s.UpdateTimestamp = nowMillis
}

// Key returns the in-run identity of the slice, id plus origin month.
func (s *MonthSlice) Key() string {
	return SliceKey(s.ID, s.OriginMonth)
}

// Clone returns a deep copy.
func (s *MonthSlice) Clone() *MonthSlice {
	out := *s
	out.Days = make(map[int]*DaySlot, len(s.Days))
	for n, d := range s.Days {
		out.Days[n] = d.Clone()
	}
	out.Summary = Summary{
		HasData:              s.Summary.HasData,
		Platform:             s.Summary.Platform.Clone(),
		SDKVersion:           s.Summary.SDKVersion.Clone(),
		SDKName:              s.Summary.SDKName.Clone(),
		ValueEnum:            s.Summary.ValueEnum.Clone(),
		AssociatedEvents:     s.Summary.AssociatedEvents.Clone(),
		AssociatedParameters: s.Summary.AssociatedParameters.Clone(),
	}
	if s.Summary.LatestCount != nil {
		c := *s.Summary.LatestCount
		out.Summary.LatestCount = &c
	}
	return &out
}
