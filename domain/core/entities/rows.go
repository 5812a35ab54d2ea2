package entities

import vo "metadata-scanner/domain/core/valueobjects"

// RowKey is the addressing part shared by every metadata row.
type RowKey struct {
	ID        string
	Month     string
	Prefix    string
	ProjectID string
	AppID     string
	Day       int
}

// EventRow is one day of one event name.
type EventRow struct {
	RowKey
	Count      int64
	EventName  string
	Platform   *vo.BoundedSet[string]
	SDKVersion *vo.BoundedSet[string]
	SDKName    *vo.BoundedSet[string]
}

// ParameterRow is one observed value of one event parameter on one day.
type ParameterRow struct {
	RowKey
	Category      string
	EventNames    *vo.BoundedSet[string]
	PropertyName  string
	ValueType     string
	PropertyValue string
	Count         int64
	Platform      *vo.BoundedSet[string]
}

// UserAttributeRow is one day of one user attribute with its value counts.
type UserAttributeRow struct {
	RowKey
	Category     string
	PropertyName string
	ValueType    string
	ValueEnum    []vo.ValueCount
}

// IDMonth is an (id, month) pair present in a metadata table.
type IDMonth struct {
	ID    string
	Month string
}

// DeclaredProperty is a property declared by the warehouse schema.
// ScanValue false means the property is never value-scanned and gets a
// placeholder entry instead.
type DeclaredProperty struct {
	Name      string `json:"name" validate:"required"`
	Category  string `json:"category" validate:"required"`
	DataType  string `json:"dataType" validate:"required"`
	ScanValue bool   `json:"-"`
}
