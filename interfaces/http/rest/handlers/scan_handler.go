package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"metadata-scanner/application/commands"
	"metadata-scanner/application/commands/bus"
	"metadata-scanner/pkg/common"
	pkgerrors "metadata-scanner/pkg/errors"
)

// CommandSender dispatches commands.
type CommandSender interface {
	Send(ctx context.Context, cmd bus.Command) error
}

// ScanHandler triggers metadata scans over HTTP.
type ScanHandler struct {
	commands CommandSender
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(commands CommandSender, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *ScanHandler {
	return &ScanHandler{
		commands: commands,
		errors:   errorHandler,
		logger:   logger,
	}
}

// StartScan handles POST /api/v1/apps/{appID}/scans. The scan runs
// synchronously; the response carries the run's result whether it
// succeeded or not.
func (h *ScanHandler) StartScan(w http.ResponseWriter, r *http.Request) {
	cmd := &commands.StoreMetadataCommand{AppID: chi.URLParam(r, "appID")}

	if caller, ok := common.GetCaller(r.Context()); ok {
		h.logger.Info("Scan requested", zap.String("appID", cmd.AppID), zap.String("caller", caller))
	}

	err := h.commands.Send(r.Context(), cmd)
	switch {
	case err == nil:
		common.RespondJSON(w, r, http.StatusOK, cmd.Result())
	case errors.Is(err, bus.ErrValidationFailed):
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
	case cmd.Result() == nil:
		h.errors.Handle(w, r, err)
	default:
		common.RespondJSON(w, r, statusFor(err), cmd.Result())
	}
}

func statusFor(err error) int {
	if appErr := pkgerrors.GetAppError(err); appErr != nil && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
