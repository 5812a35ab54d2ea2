package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
	"metadata-scanner/application/commands"
	"metadata-scanner/application/commands/bus"
	"metadata-scanner/application/services"
	"metadata-scanner/infrastructure/config"
	"metadata-scanner/infrastructure/di"
)

// Request is the workflow step input.
type Request struct {
	Detail struct {
		AppID string `json:"appId"`
	} `json:"detail"`
}

// Response is the workflow step output.
type Response struct {
	Detail ResponseDetail `json:"detail"`
}

type ResponseDetail struct {
	AppID   string `json:"appId"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

const failedMessage = "store metadata into ddb failed"

// scanHandler reports failures in the payload; it never fails the
// invocation.
type scanHandler struct {
	commands interface {
		Send(ctx context.Context, cmd bus.Command) error
	}
	logger *zap.Logger
}

func (h *scanHandler) Handle(ctx context.Context, req Request) (Response, error) {
	cmd := &commands.StoreMetadataCommand{AppID: req.Detail.AppID}

	err := h.commands.Send(ctx, cmd)
	if result := cmd.Result(); result != nil {
		if err != nil {
			h.logger.Error("Scan failed", zap.String("appId", cmd.AppID), zap.String("stage", result.Stage), zap.Error(err))
		}
		return Response{Detail: ResponseDetail{
			AppID:   cmd.AppID,
			Status:  result.Status,
			Message: result.Message,
		}}, nil
	}

	if err != nil {
		h.logger.Error("Scan rejected", zap.String("appId", cmd.AppID), zap.Error(err))
	}
	return Response{Detail: ResponseDetail{
		AppID:   cmd.AppID,
		Status:  services.StatusFailed,
		Message: failedMessage,
	}}, nil
}

func main() {
	coldStart := time.Now()
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	container.Logger.Info("Lambda cold start completed", zap.Duration("duration", time.Since(coldStart)))

	h := &scanHandler{commands: container.CommandBus, logger: container.Logger}
	lambda.Start(h.Handle)
}
