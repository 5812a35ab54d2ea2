package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
	"metadata-scanner/infrastructure/persistence/memory"
)

func newTestEngine(store *memory.SliceStore) *MergeEngine {
	resolver := NewLatestResolver(store, testClock(), "v3", nopLogger())
	return NewMergeEngine(resolver, testConfig(), testClock(), nopLogger())
}

func TestMergeEvents_NewSlice(t *testing.T) {
	engine := newTestEngine(memory.NewSliceStore())
	slices := entities.NewSliceSet()

	err := engine.MergeEvents(context.Background(), slices, []entities.EventRow{
		eventRow(checkoutID, "#202401", 5, 10, "checkout", "ANDROID"),
	})
	require.NoError(t, err)
	engine.SummarizeEvents(slices)

	slice, ok := slices.Get(checkoutID, "#202401")
	require.True(t, ok)
	assert.Equal(t, vo.LatestMonth, slice.Month)
	assert.Equal(t, "EVENT#p#a#v3", slice.Prefix)
	assert.Equal(t, "checkout", slice.Name)

	day, ok := slice.Day(5)
	require.True(t, ok)
	assert.True(t, day.HasData)
	assert.Equal(t, int64(10), *day.Count)
	assert.Equal(t, []string{"ANDROID"}, day.Platform.Values())

	require.NotNil(t, slice.Summary.LatestCount)
	assert.Equal(t, int64(10), *slice.Summary.LatestCount)
	assert.Equal(t, []string{"ANDROID"}, slice.Summary.Platform.Values())
	assert.Equal(t, 0, slice.Summary.AssociatedParameters.Len())
}

func TestMergeEvents_ReplacesStoredDayThenAccumulatesWithinRun(t *testing.T) {
	engine := newTestEngine(memory.NewSliceStore())
	slices := entities.NewSliceSet()

	stale := int64(99)
	existing := entities.NewMonthSlice(vo.DomainEvent, checkoutID, "#202401", 1)
	existing.SetDay(5, &entities.DaySlot{HasData: true, Count: &stale, Platform: set("WEB")})
	existing.SetDay(2, &entities.DaySlot{HasData: true, Count: &stale, Platform: set("WEB")})
	slices.Put(existing)

	err := engine.MergeEvents(context.Background(), slices, []entities.EventRow{
		eventRow(checkoutID, "#202401", 5, 10, "checkout", "ANDROID"),
		eventRow(checkoutID, "#202401", 5, 4, "checkout", "IOS"),
	})
	require.NoError(t, err)
	engine.SummarizeEvents(slices)

	day, _ := existing.Day(5)
	assert.Equal(t, int64(14), *day.Count)
	assert.Equal(t, []string{"ANDROID", "IOS"}, day.Platform.Values())

	untouched, _ := existing.Day(2)
	assert.Equal(t, int64(99), *untouched.Count)

	assert.Equal(t, int64(14), *existing.Summary.LatestCount)
	assert.Equal(t, []string{"WEB", "ANDROID", "IOS"}, existing.Summary.Platform.Values())
	assert.Equal(t, int64(1), existing.CreateTimestamp)
}

func TestMergeParameters_DayAndSummaryCaps(t *testing.T) {
	engine := newTestEngine(memory.NewSliceStore())
	slices := entities.NewSliceSet()
	id := "p#a#event#item_id#string"

	var rows []entities.ParameterRow
	for day := 1; day <= 3; day++ {
		for v := 0; v < 25; v++ {
			rows = append(rows, paramRow(id, "#202401", day, "item_id", fmt.Sprintf("d%d_v%d", day, v), 1, "view_item"))
		}
	}
	require.NoError(t, engine.MergeParameters(context.Background(), slices, rows))
	engine.SummarizeParameters(slices, vo.NewBoundedSet[string](0), nil, nil)

	slice, ok := slices.Get(id, "#202401")
	require.True(t, ok)
	for _, n := range slice.DayNumbers() {
		assert.Equal(t, 20, slice.Days[n].ValueEnum.Len(), "day %d", n)
	}
	summary := slice.Summary.ValueEnum.List()
	assert.Len(t, summary, 50)
	assert.Equal(t, "d1_v0", summary[0].Value)
	assert.Equal(t, "d3_v9", summary[49].Value)
	assert.Equal(t, []string{"view_item"}, slice.Summary.AssociatedEvents.Values())
}

func TestMergeParameters_KeepsStoredDayValues(t *testing.T) {
	engine := newTestEngine(memory.NewSliceStore())
	slices := entities.NewSliceSet()
	id := "p#a#event#price#string"

	existing := entities.NewMonthSlice(vo.DomainEventParameter, id, "#202401", 1)
	existing.SetDay(1, &entities.DaySlot{
		HasData:   true,
		Platform:  set("IOS"),
		ValueEnum: vo.NewValueEnum(20, vo.ValueCount{Value: "x", Count: 3}, vo.ValueCount{Value: "z", Count: 9}),
	})
	slices.Put(existing)

	err := engine.MergeParameters(context.Background(), slices, []entities.ParameterRow{
		paramRow(id, "#202401", 1, "price", "y", 2, "checkout"),
		paramRow(id, "#202401", 1, "price", "z", 4, "checkout"),
		paramRow(id, "#202401", 1, "price", "y", 1, "checkout"),
	})
	require.NoError(t, err)

	day, ok := existing.Day(1)
	require.True(t, ok)
	assert.Equal(t, []string{"IOS", "ANDROID"}, day.Platform.Values())
	assert.Equal(t, []vo.ValueCount{
		{Value: "x", Count: 3},
		{Value: "z", Count: 4},
		{Value: "y", Count: 3},
	}, day.ValueEnum.List())
}

func TestMergeParameters_AssociatedEventsBounded(t *testing.T) {
	engine := newTestEngine(memory.NewSliceStore())
	slices := entities.NewSliceSet()
	id := "p#a#event#page#string"

	first := make([]string, 800)
	second := make([]string, 800)
	for i := range first {
		first[i] = fmt.Sprintf("a_%d", i)
		second[i] = fmt.Sprintf("b_%d", i)
	}

	require.NoError(t, engine.MergeParameters(context.Background(), slices, []entities.ParameterRow{
		paramRow(id, "#202401", 1, "page", "home", 1, first...),
		paramRow(id, "#202401", 2, "page", "home", 1, second...),
	}))

	slice, _ := slices.Get(id, "#202401")
	events := slice.Summary.AssociatedEvents.Values()
	assert.Len(t, events, 1000)
	assert.Equal(t, "a_0", events[0])
	assert.Equal(t, "b_199", events[999])
}

func TestSummarizeParameters_DeclaredPropertiesUseAppDimensions(t *testing.T) {
	engine := newTestEngine(memory.NewSliceStore())
	slices := entities.NewSliceSet()
	declaredID := "p#a#session#session_id#string"
	plainID := "p#a#event#item_id#string"

	require.NoError(t, engine.MergeParameters(context.Background(), slices, []entities.ParameterRow{
		paramRow(declaredID, "#202401", 1, "session_id", "s1", 3, "view_item"),
		paramRow(plainID, "#202401", 1, "item_id", "i1", 3, "view_item"),
	}))

	allEvents := []string{"view_item", "checkout", "login"}
	allPlatforms := []string{"ANDROID", "IOS", "WEB"}
	engine.SummarizeParameters(slices, vo.NewBoundedSet(0, "session_id"), allEvents, allPlatforms)

	declared, _ := slices.Get(declaredID, "#202401")
	assert.Equal(t, allEvents, declared.Summary.AssociatedEvents.Values())
	assert.Equal(t, allPlatforms, declared.Summary.Platform.Values())
	assert.Equal(t, allPlatforms, declared.Days[1].Platform.Values())
	assert.Equal(t, []vo.ValueCount{{Value: "s1", Count: 3}}, declared.Summary.ValueEnum.List())

	plain, _ := slices.Get(plainID, "#202401")
	assert.Equal(t, []string{"view_item"}, plain.Summary.AssociatedEvents.Values())
	assert.Equal(t, []string{"ANDROID"}, plain.Summary.Platform.Values())
}

func TestMergeUserAttributes_FrequencyMerge(t *testing.T) {
	engine := newTestEngine(memory.NewSliceStore())
	slices := entities.NewSliceSet()
	id := "p#a#user#gender#string"

	require.NoError(t, engine.MergeUserAttributes(context.Background(), slices, []entities.UserAttributeRow{
		userRow(id, "#202401", 3, "gender", vo.ValueCount{Value: "a", Count: 3}),
		userRow(id, "#202401", 3, "gender", vo.ValueCount{Value: "a", Count: 2}, vo.ValueCount{Value: "b", Count: 1}),
		userRow(id, "#202401", 4, "gender", vo.ValueCount{Value: "c", Count: 7}),
	}))
	engine.SummarizeUserAttributes(slices)

	slice, ok := slices.Get(id, "#202401")
	require.True(t, ok)
	assert.Equal(t, []vo.ValueCount{{Value: "a", Count: 5}, {Value: "b", Count: 1}}, slice.Days[3].ValueEnum.List())
	assert.Equal(t, []vo.ValueCount{
		{Value: "a", Count: 5},
		{Value: "b", Count: 1},
		{Value: "c", Count: 7},
	}, slice.Summary.ValueEnum.List())
	assert.Equal(t, "USER_ATTRIBUTE#p#a#v3", slice.Prefix)
	assert.Equal(t, "user", slice.Category)
	assert.Equal(t, "string", slice.ValueType)
}

func TestLinkEventParameters(t *testing.T) {
	engine := newTestEngine(memory.NewSliceStore())
	events := entities.NewSliceSet()

	checkout := entities.NewMonthSlice(vo.DomainEvent, checkoutID, "#202401", 1)
	checkout.Name = "checkout"
	checkout.Summary.AssociatedParameters = vo.NewBoundedSet(1000, entities.ParameterRef{Name: "legacy", Category: "event", ValueType: "int"})
	events.Put(checkout)

	login := entities.NewMonthSlice(vo.DomainEvent, "p#a#login", "#202401", 1)
	login.Name = "login"
	events.Put(login)

	param := func(name string, assoc ...string) *entities.MonthSlice {
		s := entities.NewMonthSlice(vo.DomainEventParameter, "p#a#event#"+name+"#string", "#202401", 1)
		s.Name = name
		s.Category = "event"
		s.ValueType = "string"
		s.Summary.AssociatedEvents = set(assoc...)
		return s
	}
	params := []*entities.MonthSlice{
		param("price", "checkout"),
		param("method", "login", "checkout"),
		param("price", "checkout"),
		param("other"),
	}

	engine.LinkEventParameters(events, params)

	assert.Equal(t, []entities.ParameterRef{
		{Name: "legacy", Category: "event", ValueType: "int"},
		{Name: "price", Category: "event", ValueType: "string"},
		{Name: "method", Category: "event", ValueType: "string"},
	}, checkout.Summary.AssociatedParameters.Values())
	assert.Equal(t, []entities.ParameterRef{
		{Name: "method", Category: "event", ValueType: "string"},
	}, login.Summary.AssociatedParameters.Values())
}
