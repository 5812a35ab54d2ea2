package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
	"metadata-scanner/domain/config"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
	pkgerrors "metadata-scanner/pkg/errors"
)

// Querier is the subset of *pgxpool.Pool the source needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	eventMetadataTable         = "event_metadata"
	parameterMetadataTable     = "event_parameter_metadata"
	userAttributeMetadataTable = "user_attribute_metadata"
	rawEventTable              = "event_v2"
)

var (
	eventColumns = []string{
		"id", "month", "prefix", "project_id", "app_id", "day_number",
		"count", "event_name", "platform", "sdk_version", "sdk_name",
	}
	parameterColumns = []string{
		"id", "month", "prefix", "project_id", "app_id", "day_number",
		"category", "event_name_set", "property_name", "value_type",
		"property_value", "count", "platform",
	}
	userAttributeColumns = []string{
		"id", "month", "prefix", "project_id", "app_id", "day_number",
		"category", "property_name", "value_type", "value_enum",
	}
)

// QuerySource reads an app's metadata tables from the warehouse. Each app
// has its own schema named after the app id.
type QuerySource struct {
	db     Querier
	limit  int
	logger *zap.Logger
}

func NewQuerySource(db Querier, cfg *config.DomainConfig, logger *zap.Logger) *QuerySource {
	return &QuerySource{
		db:     db,
		limit:  cfg.MaxParsedValueSetSize,
		logger: logger,
	}
}

func metadataTable(domain vo.CatalogDomain) (string, error) {
	switch domain {
	case vo.DomainEvent:
		return eventMetadataTable, nil
	case vo.DomainEventParameter:
		return parameterMetadataTable, nil
	case vo.DomainUserAttribute:
		return userAttributeMetadataTable, nil
	}
	return "", fmt.Errorf("unknown catalog domain %q", domain)
}

func selectFrom(appID, table string, distinct bool, columns ...string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(pgx.Identifier{appID, table}.Sanitize())
	return b.String()
}

// collect runs sql and decodes every row with fn. Any failure is a
// SourceQueryFailure.
func collect[T any](ctx context.Context, s *QuerySource, name, sql string, fn pgx.RowToFunc[T]) ([]T, error) {
	s.logger.Debug("Querying warehouse", zap.String("query", name), zap.String("sql", sql))

	rows, err := s.db.Query(ctx, sql)
	if err != nil {
		return nil, pkgerrors.NewSourceQueryError(name, err)
	}
	out, err := pgx.CollectRows(rows, fn)
	if err != nil {
		return nil, pkgerrors.NewSourceQueryError(name, err)
	}

	s.logger.Debug("Warehouse query finished", zap.String("query", name), zap.Int("rows", len(out)))
	return out, nil
}

func (s *QuerySource) DistinctIDMonths(ctx context.Context, appID string, domain vo.CatalogDomain) ([]entities.IDMonth, error) {
	table, err := metadataTable(domain)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	sql := selectFrom(appID, table, true, "id", "month")
	return collect(ctx, s, "distinct_id_month:"+table, sql, func(row pgx.CollectableRow) (entities.IDMonth, error) {
		var id, month pgtype.Text
		if err := row.Scan(&id, &month); err != nil {
			return entities.IDMonth{}, err
		}
		return entities.IDMonth{ID: id.String, Month: month.String}, nil
	})
}

func (s *QuerySource) EventRows(ctx context.Context, appID string) ([]entities.EventRow, error) {
	sql := selectFrom(appID, eventMetadataTable, false, eventColumns...)
	return collect(ctx, s, eventMetadataTable, sql, func(row pgx.CollectableRow) (entities.EventRow, error) {
		var raw rawEventRow
		if err := row.Scan(raw.dest()...); err != nil {
			return entities.EventRow{}, err
		}
		return raw.decode(s.limit), nil
	})
}

func (s *QuerySource) ParameterRows(ctx context.Context, appID string) ([]entities.ParameterRow, error) {
	sql := selectFrom(appID, parameterMetadataTable, false, parameterColumns...)
	return collect(ctx, s, parameterMetadataTable, sql, func(row pgx.CollectableRow) (entities.ParameterRow, error) {
		var raw rawParameterRow
		if err := row.Scan(raw.dest()...); err != nil {
			return entities.ParameterRow{}, err
		}
		return raw.decode(s.limit), nil
	})
}

func (s *QuerySource) UserAttributeRows(ctx context.Context, appID string) ([]entities.UserAttributeRow, error) {
	sql := selectFrom(appID, userAttributeMetadataTable, false, userAttributeColumns...)
	return collect(ctx, s, userAttributeMetadataTable, sql, func(row pgx.CollectableRow) (entities.UserAttributeRow, error) {
		var raw rawUserAttributeRow
		if err := row.Scan(raw.dest()...); err != nil {
			return entities.UserAttributeRow{}, err
		}
		return raw.decode(), nil
	})
}

func (s *QuerySource) DistinctEventNames(ctx context.Context, appID string) ([]string, error) {
	return s.distinctColumn(ctx, appID, "event_name")
}

func (s *QuerySource) DistinctPlatforms(ctx context.Context, appID string) ([]string, error) {
	return s.distinctColumn(ctx, appID, "platform")
}

func (s *QuerySource) distinctColumn(ctx context.Context, appID, column string) ([]string, error) {
	sql := selectFrom(appID, rawEventTable, true, column)
	values, err := collect(ctx, s, "distinct_"+column, sql, func(row pgx.CollectableRow) (pgtype.Text, error) {
		var v pgtype.Text
		err := row.Scan(&v)
		return v, err
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v.Valid {
			out = append(out, v.String)
		}
	}
	return out, nil
}
