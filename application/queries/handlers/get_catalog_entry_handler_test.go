package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"metadata-scanner/application/queries"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
	"metadata-scanner/infrastructure/persistence/memory"
	pkgerrors "metadata-scanner/pkg/errors"
)

func seeded() *memory.SliceStore {
	store := memory.NewSliceStore()

	eventID := vo.EventEntityID("proj", "shop", "purchase")
	latest := entities.NewMonthSlice(vo.DomainEvent, eventID, "#202402", 2000)
	latest.Month = vo.LatestMonth
	latest.Name = "purchase"
	latest.Summary.Platform = vo.NewBoundedSet(50, "ANDROID", "IOS")
	count := int64(7)
	latest.SetDay(3, &entities.DaySlot{HasData: true, Count: &count})

	january := entities.NewMonthSlice(vo.DomainEvent, eventID, "#202401", 1000)
	january.Name = "purchase"

	paramID := vo.PropertyEntityID("proj", "shop", "event", "price", "float")
	param := entities.NewMonthSlice(vo.DomainEventParameter, paramID, "#202402", 2000)
	param.Month = vo.LatestMonth
	param.Name = "price"

	store.Seed(latest, january, param)
	return store
}

func TestGetCatalogEntry_Latest(t *testing.T) {
	h := NewGetCatalogEntryHandler(seeded(), "proj")

	result, err := h.Handle(context.Background(), &queries.GetCatalogEntryQuery{
		AppID: "shop", Domain: "EVENT", Name: "purchase",
	})
	require.NoError(t, err)

	view := result.(*queries.SliceView)
	assert.Equal(t, vo.LatestMonth, view.Month)
	assert.Equal(t, "#202402", view.OriginMonth)
	assert.Equal(t, []string{"ANDROID", "IOS"}, view.Summary.Platform)
	require.Contains(t, view.Days, 3)
	assert.Equal(t, int64(7), *view.Days[3].Count)
}

func TestGetCatalogEntry_ByMonth(t *testing.T) {
	h := NewGetCatalogEntryHandler(seeded(), "proj")

	result, err := h.Handle(context.Background(), &queries.GetCatalogEntryQuery{
		AppID: "shop", Domain: "EVENT", Name: "purchase", Month: "202401",
	})
	require.NoError(t, err)
	assert.Equal(t, "#202401", result.(*queries.SliceView).Month)

	// The latest slice answers for its own origin month
	result, err = h.Handle(context.Background(), &queries.GetCatalogEntryQuery{
		AppID: "shop", Domain: "EVENT", Name: "purchase", Month: "202402",
	})
	require.NoError(t, err)
	assert.Equal(t, vo.LatestMonth, result.(*queries.SliceView).Month)
}

func TestGetCatalogEntry_Property(t *testing.T) {
	h := NewGetCatalogEntryHandler(seeded(), "proj")

	result, err := h.Handle(context.Background(), &queries.GetCatalogEntryQuery{
		AppID: "shop", Domain: "EVENT_PARAMETER", Category: "event", Name: "price", ValueType: "float",
	})
	require.NoError(t, err)
	assert.Equal(t, "price", result.(*queries.SliceView).Name)
}

func TestGetCatalogEntry_NotFound(t *testing.T) {
	h := NewGetCatalogEntryHandler(seeded(), "proj")

	tests := map[string]*queries.GetCatalogEntryQuery{
		"unknown name":  {AppID: "shop", Domain: "EVENT", Name: "refund"},
		"unknown month": {AppID: "shop", Domain: "EVENT", Name: "purchase", Month: "202312"},
		"wrong domain":  {AppID: "shop", Domain: "USER_ATTRIBUTE", Category: "event", Name: "price", ValueType: "float"},
	}
	for name, q := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := h.Handle(context.Background(), q)
			assert.True(t, pkgerrors.IsNotFound(err))
		})
	}
}

func TestGetCatalogEntryQuery_Validate(t *testing.T) {
	assert.NoError(t, (&queries.GetCatalogEntryQuery{AppID: "shop", Domain: "EVENT", Name: "x"}).Validate())
	assert.Error(t, (&queries.GetCatalogEntryQuery{AppID: "shop", Domain: "EVENT_PARAMETER", Name: "x"}).Validate())
	assert.Error(t, (&queries.GetCatalogEntryQuery{AppID: "shop", Domain: "SESSION", Name: "x"}).Validate())
	assert.Error(t, (&queries.GetCatalogEntryQuery{AppID: "shop", Domain: "EVENT", Name: "x", Month: "2024-1"}).Validate())
}
