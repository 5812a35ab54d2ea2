package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
	"metadata-scanner/application/ports"
	"metadata-scanner/domain/config"
	"metadata-scanner/domain/core/entities"
	vo "metadata-scanner/domain/core/valueobjects"
	pkgerrors "metadata-scanner/pkg/errors"
)

// SliceStore implements ports.SliceStore on a table keyed by (id, month).
type SliceStore struct {
	client    DBClient
	tableName string
	codec     itemCodec
	logger    *zap.Logger
}

// NewSliceStore creates a new DynamoDB catalog store
func NewSliceStore(client DBClient, tableName string, cfg *config.DomainConfig, logger *zap.Logger) *SliceStore {
	return &SliceStore{
		client:    client,
		tableName: tableName,
		codec:     itemCodec{cfg: cfg},
		logger:    logger,
	}
}

var _ ports.SliceStore = (*SliceStore)(nil)

func (s *SliceStore) key(id, month string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrID:    &types.AttributeValueMemberS{Value: id},
		attrMonth: &types.AttributeValueMemberS{Value: month},
	}
}

// GetLatest reads the (id, "latest") item with a consistent read.
func (s *SliceStore) GetLatest(ctx context.Context, id string) (*entities.MonthSlice, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(id, vo.LatestMonth),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("GetLatest", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return s.codec.unmarshal(out.Item)
}

// QueryByOriginMonth queries the id partition, filtered on originMonth,
// following pagination to the end.
func (s *SliceStore) QueryByOriginMonth(ctx context.Context, id, originMonth string) ([]*entities.MonthSlice, error) {
	keyCond := expression.Key(attrID).Equal(expression.Value(id))
	filter := expression.Name(attrOriginMonth).Equal(expression.Value(originMonth))
	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithFilter(filter).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}

	var slices []*entities.MonthSlice
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("QueryByOriginMonth", err)
		}
		for _, item := range out.Items {
			slice, err := s.codec.unmarshal(item)
			if err != nil {
				return nil, err
			}
			slices = append(slices, slice)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return slices, nil
}

// PutSlice writes one item unconditionally.
func (s *SliceStore) PutSlice(ctx context.Context, slice *entities.MonthSlice) error {
	item, err := s.codec.marshal(slice)
	if err != nil {
		return pkgerrors.NewStorePersistError("PutSlice", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return pkgerrors.NewStorePersistError("PutSlice", err)
	}
	s.logger.Debug("Catalog slice written",
		zap.String("id", slice.ID),
		zap.String("month", slice.Month),
	)
	return nil
}

// BatchPut writes up to config.MaxStoreBatchSize items in one request.
// Unprocessed items are not retried; they fail the call.
func (s *SliceStore) BatchPut(ctx context.Context, slices []*entities.MonthSlice) error {
	if len(slices) == 0 {
		return nil
	}
	if len(slices) > config.MaxStoreBatchSize {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("batch of %d exceeds the store limit of %d", len(slices), config.MaxStoreBatchSize))
	}

	requests := make([]types.WriteRequest, 0, len(slices))
	for _, slice := range slices {
		item, err := s.codec.marshal(slice)
		if err != nil {
			return pkgerrors.NewStorePersistError("BatchPut", err)
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			s.tableName: requests,
		},
	})
	if err != nil {
		return pkgerrors.NewStorePersistError("BatchPut", err)
	}
	if unprocessed := len(out.UnprocessedItems[s.tableName]); unprocessed > 0 {
		return pkgerrors.NewStorePersistError("BatchPut",
			fmt.Errorf("%d of %d items left unprocessed", unprocessed, len(slices)))
	}

	s.logger.Debug("Catalog batch written", zap.Int("items", len(slices)))
	return nil
}
