package warehouse

import (
	"github.com/jackc/pgx/v5/pgtype"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
)

// Raw rows mirror the metadata table columns. Nullable columns decode to
// zero values.

type rawKey struct {
	ID        pgtype.Text
	Month     pgtype.Text
	Prefix    pgtype.Text
	ProjectID pgtype.Text
	AppID     pgtype.Text
	DayNumber pgtype.Int8
}

func (k *rawKey) dest() []any {
	return []any{&k.ID, &k.Month, &k.Prefix, &k.ProjectID, &k.AppID, &k.DayNumber}
}

func (k *rawKey) decode() entities.RowKey {
	return entities.RowKey{
		ID:        k.ID.String,
		Month:     k.Month.String,
		Prefix:    k.Prefix.String,
		ProjectID: k.ProjectID.String,
		AppID:     k.AppID.String,
		Day:       int(k.DayNumber.Int64),
	}
}

type rawEventRow struct {
	rawKey
	Count      pgtype.Int8
	EventName  pgtype.Text
	Platform   pgtype.Text
	SDKVersion pgtype.Text
	SDKName    pgtype.Text
}

func (r *rawEventRow) dest() []any {
	return append(r.rawKey.dest(), &r.Count, &r.EventName, &r.Platform, &r.SDKVersion, &r.SDKName)
}

func (r *rawEventRow) decode(limit int) entities.EventRow {
	return entities.EventRow{
		RowKey:     r.rawKey.decode(),
		Count:      r.Count.Int64,
		EventName:  r.EventName.String,
		Platform:   ParseValueSet(r.Platform.String, limit),
		SDKVersion: ParseValueSet(r.SDKVersion.String, limit),
		SDKName:    ParseValueSet(r.SDKName.String, limit),
	}
}

type rawParameterRow struct {
	rawKey
	Category      pgtype.Text
	EventNameSet  pgtype.Text
	PropertyName  pgtype.Text
	ValueType     pgtype.Text
	PropertyValue pgtype.Text
	Count         pgtype.Int8
	Platform      pgtype.Text
}

func (r *rawParameterRow) dest() []any {
	return append(r.rawKey.dest(), &r.Category, &r.EventNameSet, &r.PropertyName,
		&r.ValueType, &r.PropertyValue, &r.Count, &r.Platform)
}

func (r *rawParameterRow) decode(limit int) entities.ParameterRow {
	return entities.ParameterRow{
		RowKey:        r.rawKey.decode(),
		Category:      r.Category.String,
		EventNames:    ParseValueSet(r.EventNameSet.String, limit),
		PropertyName:  r.PropertyName.String,
		ValueType:     r.ValueType.String,
		PropertyValue: r.PropertyValue.String,
		Count:         r.Count.Int64,
		Platform:      ParseValueSet(r.Platform.String, limit),
	}
}

type rawUserAttributeRow struct {
	rawKey
	Category     pgtype.Text
	PropertyName pgtype.Text
	ValueType    pgtype.Text
	ValueEnum    pgtype.Text
}

func (r *rawUserAttributeRow) dest() []any {
	return append(r.rawKey.dest(), &r.Category, &r.PropertyName, &r.ValueType, &r.ValueEnum)
}

func (r *rawUserAttributeRow) decode() entities.UserAttributeRow {
	var values []vo.ValueCount
	if r.ValueEnum.Valid {
		values = ParseValueCounts(r.ValueEnum.String)
	}
	return entities.UserAttributeRow{
		RowKey:       r.rawKey.decode(),
		Category:     r.Category.String,
		PropertyName: r.PropertyName.String,
		ValueType:    r.ValueType.String,
		ValueEnum:    values,
	}
}
