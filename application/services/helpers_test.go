package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"metadata-scanner/domain/config"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
	pkgerrors "metadata-scanner/pkg/errors"
	"metadata-scanner/pkg/utils"
)

var testNow = time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)

func testClock() utils.FixedClock {
	return utils.FixedClock{T: testNow}
}

func testConfig() *config.DomainConfig {
	return config.DefaultDomainConfig()
}

func key(id, month string, day int) entities.RowKey {
	return entities.RowKey{
		ID:        id,
		Month:     month,
		Prefix:    "EVENT#p#a",
		ProjectID: "p",
		AppID:     "a",
		Day:       day,
	}
}

func set(values ...string) *vo.BoundedSet[string] {
	return vo.NewBoundedSet(1000, values...)
}

func eventRow(id, month string, day int, count int64, name string, platforms ...string) entities.EventRow {
	return entities.EventRow{
		RowKey:     key(id, month, day),
		Count:      count,
		EventName:  name,
		Platform:   set(platforms...),
		SDKVersion: set("1.0.0"),
		SDKName:    set("clickstream-sdk"),
	}
}

func paramRow(id, month string, day int, name, value string, count int64, events ...string) entities.ParameterRow {
	k := key(id, month, day)
	k.Prefix = "EVENT_PARAMETER#p#a"
	return entities.ParameterRow{
		RowKey:        k,
		Category:      "event",
		EventNames:    set(events...),
		PropertyName:  name,
		ValueType:     "string",
		PropertyValue: value,
		Count:         count,
		Platform:      set("ANDROID"),
	}
}

func userRow(id, month string, day int, name string, values ...vo.ValueCount) entities.UserAttributeRow {
	k := key(id, month, day)
	k.Prefix = "USER_ATTRIBUTE#p#a"
	return entities.UserAttributeRow{
		RowKey:       k,
		Category:     "user",
		PropertyName: name,
		ValueType:    "string",
		ValueEnum:    values,
	}
}

// fakeSource serves fixed rows and derives the distinct id/month pairs
// from them.
type fakeSource struct {
	events     []entities.EventRow
	params     []entities.ParameterRow
	users      []entities.UserAttributeRow
	eventNames []string
	platforms  []string
	failOn     string
}

func (f *fakeSource) fail(query string) error {
	if f.failOn == query {
		return pkgerrors.NewSourceQueryError(query, context.DeadlineExceeded)
	}
	return nil
}

func (f *fakeSource) DistinctIDMonths(ctx context.Context, appID string, domain vo.CatalogDomain) ([]entities.IDMonth, error) {
	if err := f.fail("distinct:" + domain.String()); err != nil {
		return nil, err
	}
	var keys []entities.RowKey
	switch domain {
	case vo.DomainEvent:
		for _, r := range f.events {
			keys = append(keys, r.RowKey)
		}
	case vo.DomainEventParameter:
		for _, r := range f.params {
			keys = append(keys, r.RowKey)
		}
	case vo.DomainUserAttribute:
		for _, r := range f.users {
			keys = append(keys, r.RowKey)
		}
	}
	seen := map[string]bool{}
	var out []entities.IDMonth
	for _, k := range keys {
		if seen[k.ID+k.Month] {
			continue
		}
		seen[k.ID+k.Month] = true
		out = append(out, entities.IDMonth{ID: k.ID, Month: k.Month})
	}
	return out, nil
}

func (f *fakeSource) EventRows(ctx context.Context, appID string) ([]entities.EventRow, error) {
	return f.events, f.fail("events")
}

func (f *fakeSource) ParameterRows(ctx context.Context, appID string) ([]entities.ParameterRow, error) {
	return f.params, f.fail("params")
}

func (f *fakeSource) UserAttributeRows(ctx context.Context, appID string) ([]entities.UserAttributeRow, error) {
	return f.users, f.fail("users")
}

func (f *fakeSource) DistinctEventNames(ctx context.Context, appID string) ([]string, error) {
	return f.eventNames, f.fail("event_names")
}

func (f *fakeSource) DistinctPlatforms(ctx context.Context, appID string) ([]string, error) {
	return f.platforms, f.fail("platforms")
}

type fakeRegistry map[vo.CatalogDomain][]entities.DeclaredProperty

func (r fakeRegistry) ListDeclaredProperties(domain vo.CatalogDomain) ([]entities.DeclaredProperty, error) {
	return r[domain], nil
}

type mockSliceStore struct {
	mock.Mock
}

func (m *mockSliceStore) GetLatest(ctx context.Context, id string) (*entities.MonthSlice, error) {
	args := m.Called(ctx, id)
	slice, _ := args.Get(0).(*entities.MonthSlice)
	return slice, args.Error(1)
}

func (m *mockSliceStore) QueryByOriginMonth(ctx context.Context, id, originMonth string) ([]*entities.MonthSlice, error) {
	args := m.Called(ctx, id, originMonth)
	slices, _ := args.Get(0).([]*entities.MonthSlice)
	return slices, args.Error(1)
}

func (m *mockSliceStore) PutSlice(ctx context.Context, slice *entities.MonthSlice) error {
	return m.Called(ctx, slice).Error(0)
}

func (m *mockSliceStore) BatchPut(ctx context.Context, slices []*entities.MonthSlice) error {
	return m.Called(ctx, slices).Error(0)
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
