package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"metadata-scanner/application/commands"
	"metadata-scanner/application/commands/bus"
	"metadata-scanner/application/services"
)

type mockScanner struct {
	mock.Mock
}

func (m *mockScanner) Run(ctx context.Context, appID string) (*services.ScanResult, error) {
	args := m.Called(ctx, appID)
	result, _ := args.Get(0).(*services.ScanResult)
	return result, args.Error(1)
}

func newBus(t *testing.T, scanner Scanner) *bus.CommandBus {
	t.Helper()
	b := bus.NewCommandBus(bus.LoggingMiddleware(zap.NewNop()))
	require.NoError(t, b.Register(&commands.StoreMetadataCommand{}, NewStoreMetadataHandler(scanner, nil, zap.NewNop())))
	return b
}

func TestStoreMetadataHandler_Success(t *testing.T) {
	scanner := new(mockScanner)
	want := &services.ScanResult{RunID: "r1", AppID: "shop", Status: services.StatusSucceeded, Written: 4}
	scanner.On("Run", mock.Anything, "shop").Return(want, nil).Once()

	cmd := &commands.StoreMetadataCommand{AppID: "shop"}
	require.NoError(t, newBus(t, scanner).Send(context.Background(), cmd))

	assert.Same(t, want, cmd.Result())
	scanner.AssertExpectations(t)
}

func TestStoreMetadataHandler_FailureKeepsResult(t *testing.T) {
	scanner := new(mockScanner)
	failed := &services.ScanResult{RunID: "r2", AppID: "shop", Status: services.StatusFailed, Stage: "event"}
	scanner.On("Run", mock.Anything, "shop").Return(failed, errors.New("source down")).Once()

	cmd := &commands.StoreMetadataCommand{AppID: "shop"}
	err := newBus(t, scanner).Send(context.Background(), cmd)

	assert.ErrorContains(t, err, "source down")
	assert.Same(t, failed, cmd.Result())
}

func TestStoreMetadataCommand_Validation(t *testing.T) {
	scanner := new(mockScanner)
	b := newBus(t, scanner)

	for _, appID := range []string{"", "1shop", "shop-app", "shop;drop"} {
		err := b.Send(context.Background(), &commands.StoreMetadataCommand{AppID: appID})
		assert.ErrorIs(t, err, bus.ErrValidationFailed, appID)
	}
	scanner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}
