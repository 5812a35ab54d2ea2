package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"metadata-scanner/domain/events"
	pkgerrors "metadata-scanner/pkg/errors"
)

type mockEventBridge struct {
	mock.Mock
}

func (m *mockEventBridge) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*eventbridge.PutEventsOutput)
	return out, args.Error(1)
}

var ts = time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

func completed(runID string) events.DomainEvent {
	return events.NewScanCompleted(runID, "p", "shop", map[string]int{"EVENT": 2}, 1, time.Second, ts)
}

func TestPublisher_SendsEntries(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
		if len(in.Entries) != 1 {
			return false
		}
		e := in.Entries[0]
		var detail map[string]any
		if err := json.Unmarshal([]byte(aws.ToString(e.Detail)), &detail); err != nil {
			return false
		}
		return aws.ToString(e.EventBusName) == "bus" &&
			aws.ToString(e.Source) == events.SourceScanner &&
			aws.ToString(e.DetailType) == events.EventTypeScanCompleted &&
			detail["run_id"] == "run-1" &&
			detail["app_id"] == "shop"
	})).Return(&eventbridge.PutEventsOutput{}, nil).Once()

	err := NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background(), completed("run-1"))
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestPublisher_ChunksByTen(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{}, nil)

	batch := make([]events.DomainEvent, 23)
	for i := range batch {
		batch[i] = completed("run")
	}
	require.NoError(t, NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background(), batch...))

	client.AssertNumberOfCalls(t, "PutEvents", 3)
	sizes := []int{}
	for _, call := range client.Calls {
		sizes = append(sizes, len(call.Arguments.Get(1).(*eventbridge.PutEventsInput).Entries))
	}
	assert.Equal(t, []int{10, 10, 3}, sizes)
}

func TestPublisher_NothingToSend(t *testing.T) {
	client := new(mockEventBridge)
	require.NoError(t, NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background()))
	client.AssertNotCalled(t, "PutEvents", mock.Anything, mock.Anything)
}

func TestPublisher_FailedEntries(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(&eventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries: []types.PutEventsResultEntry{
			{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("try again")},
		},
	}, nil).Once()

	err := NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background(), completed("run-2"))
	assert.ErrorContains(t, err, "1 events failed to publish")
	require.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
	assert.Equal(t, "InternalFailure", pkgerrors.GetAppError(err).Code)
}

func TestPublisher_ClientError(t *testing.T) {
	client := new(mockEventBridge)
	client.On("PutEvents", mock.Anything, mock.Anything).Return(nil, errors.New("denied")).Once()

	err := NewPublisher(client, "bus", zap.NewNop()).Publish(context.Background(), completed("run-3"))
	assert.ErrorContains(t, err, "denied")
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
}
