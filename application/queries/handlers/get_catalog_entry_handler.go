package handlers

import (
	"context"
	"fmt"

	"metadata-scanner/application/ports"
	"metadata-scanner/application/queries"
	"metadata-scanner/application/queries/bus"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
	pkgerrors "metadata-scanner/pkg/errors"
)

// GetCatalogEntryHandler reads catalog slices straight from the store.
type GetCatalogEntryHandler struct {
	store     ports.SliceStore
	projectID string
}

func NewGetCatalogEntryHandler(store ports.SliceStore, projectID string) *GetCatalogEntryHandler {
	return &GetCatalogEntryHandler{store: store, projectID: projectID}
}

// Handle returns a *queries.SliceView, or a not-found error.
func (h *GetCatalogEntryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(*queries.GetCatalogEntryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid query type %T", query)
	}

	id := q.EntityID(h.projectID)
	slice, err := h.find(ctx, id, q.MonthKey())
	if err != nil {
		return nil, err
	}
	if slice == nil || slice.Domain != vo.CatalogDomain(q.Domain) {
		return nil, pkgerrors.NewNotFoundError("catalog entry").WithDetails(map[string]interface{}{
			"id":    id,
			"month": q.MonthKey(),
		})
	}
	return queries.NewSliceView(slice), nil
}

// find prefers the literal month key over a latest slice with the same
// origin month.
func (h *GetCatalogEntryHandler) find(ctx context.Context, id, month string) (*entities.MonthSlice, error) {
	if month == vo.LatestMonth {
		return h.store.GetLatest(ctx, id)
	}
	slices, err := h.store.QueryByOriginMonth(ctx, id, month)
	if err != nil {
		return nil, err
	}
	var found *entities.MonthSlice
	for _, s := range slices {
		if s.Month == month {
			return s, nil
		}
		found = s
	}
	return found, nil
}
