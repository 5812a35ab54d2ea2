package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"metadata-scanner/application/queries"
	"metadata-scanner/application/queries/bus"
	vo "metadata-scanner/domain/core/valueobjects"
	"metadata-scanner/pkg/common"
	pkgerrors "metadata-scanner/pkg/errors"
)

// QueryAsker dispatches queries.
type QueryAsker interface {
	Ask(ctx context.Context, query bus.Query) (interface{}, error)
}

// CatalogHandler serves catalog lookups.
type CatalogHandler struct {
	queries QueryAsker
	errors  *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

func NewCatalogHandler(queries QueryAsker, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		queries: queries,
		errors:  errorHandler,
		logger:  logger,
	}
}

// GetEvent handles GET /api/v1/apps/{appID}/events/{name}
func (h *CatalogHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, &queries.GetCatalogEntryQuery{
		AppID:  chi.URLParam(r, "appID"),
		Domain: vo.DomainEvent.String(),
		Name:   chi.URLParam(r, "name"),
		Month:  r.URL.Query().Get("month"),
	})
}

// GetParameter handles GET /api/v1/apps/{appID}/parameters/{category}/{name}/{valueType}
func (h *CatalogHandler) GetParameter(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, propertyQuery(r, vo.DomainEventParameter))
}

// GetUserAttribute handles GET /api/v1/apps/{appID}/attributes/{category}/{name}/{valueType}
func (h *CatalogHandler) GetUserAttribute(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, propertyQuery(r, vo.DomainUserAttribute))
}

func propertyQuery(r *http.Request, domain vo.CatalogDomain) *queries.GetCatalogEntryQuery {
	return &queries.GetCatalogEntryQuery{
		AppID:     chi.URLParam(r, "appID"),
		Domain:    domain.String(),
		Category:  chi.URLParam(r, "category"),
		Name:      chi.URLParam(r, "name"),
		ValueType: chi.URLParam(r, "valueType"),
		Month:     r.URL.Query().Get("month"),
	}
}

func (h *CatalogHandler) ask(w http.ResponseWriter, r *http.Request, q *queries.GetCatalogEntryQuery) {
	result, err := h.queries.Ask(r.Context(), q)
	if err != nil {
		if errors.Is(err, bus.ErrValidationFailed) {
			err = pkgerrors.NewValidationError(err.Error())
		}
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, r, http.StatusOK, result)
}
