package queries

import (
	vo "metadata-scanner/domain/core/valueobjects"
	"metadata-scanner/pkg/utils"
)

// GetCatalogEntryQuery looks up one catalog entity of an app. Without a
// month it returns the latest slice; with one ("YYYYMM") it returns the
// slice that originated in that month.
type GetCatalogEntryQuery struct {
	AppID     string `validate:"required,appid"`
	Domain    string `validate:"required,oneof=EVENT EVENT_PARAMETER USER_ATTRIBUTE"`
	Name      string `validate:"required"`
	Category  string `validate:"required_unless=Domain EVENT"`
	ValueType string `validate:"required_unless=Domain EVENT"`
	Month     string `validate:"omitempty,len=6,numeric"`
}

// Validate validates the query
func (q *GetCatalogEntryQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// EntityID builds the catalog id of the requested entity.
func (q *GetCatalogEntryQuery) EntityID(projectID string) string {
	if vo.CatalogDomain(q.Domain) == vo.DomainEvent {
		return vo.EventEntityID(projectID, q.AppID, q.Name)
	}
	return vo.PropertyEntityID(projectID, q.AppID, q.Category, q.Name, q.ValueType)
}

// MonthKey returns the month key to look up, or vo.LatestMonth.
func (q *GetCatalogEntryQuery) MonthKey() string {
	if q.Month == "" {
		return vo.LatestMonth
	}
	return "#" + q.Month
}
