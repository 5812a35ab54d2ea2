package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"metadata-scanner/application/commands"
	"metadata-scanner/application/commands/bus"
	"metadata-scanner/application/services"
	"metadata-scanner/pkg/observability"
)

// Scanner runs one scan of an app.
type Scanner interface {
	Run(ctx context.Context, appID string) (*services.ScanResult, error)
}

// StoreMetadataHandler handles StoreMetadataCommand
type StoreMetadataHandler struct {
	scanner Scanner
	tracer  *observability.Tracer
	logger  *zap.Logger
}

// NewStoreMetadataHandler creates a new handler instance
func NewStoreMetadataHandler(scanner Scanner, tracer *observability.Tracer, logger *zap.Logger) *StoreMetadataHandler {
	return &StoreMetadataHandler{
		scanner: scanner,
		tracer:  tracer,
		logger:  logger,
	}
}

// Handle runs the scan and attaches its result to the command, on failure
// as well as on success.
func (h *StoreMetadataHandler) Handle(ctx context.Context, cmd bus.Command) error {
	storeCmd, ok := cmd.(*commands.StoreMetadataCommand)
	if !ok {
		return fmt.Errorf("invalid command type %T", cmd)
	}

	return h.tracer.Trace(ctx, "StoreMetadata", func(ctx context.Context) error {
		h.tracer.Annotate(ctx, "appId", storeCmd.AppID)

		result, err := h.scanner.Run(ctx, storeCmd.AppID)
		storeCmd.Complete(result)
		if err != nil {
			return err
		}

		h.logger.Info("Metadata stored",
			zap.String("appId", storeCmd.AppID),
			zap.String("runId", result.RunID),
			zap.Int("written", result.Written),
		)
		return nil
	})
}
