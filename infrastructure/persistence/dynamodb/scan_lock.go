package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"metadata-scanner/application/ports"
	pkgerrors "metadata-scanner/pkg/errors"
)

const lockMonth = "LOCK"

// ScanLock provides per-app scan locking using conditional writes on the
// catalog table. Lock rows live under id "LOCK#<appID>", month "LOCK", so
// they never collide with catalog ids.
type ScanLock struct {
	client    DBClient
	tableName string
	nowFn     func() time.Time
	logger    *zap.Logger
}

// lockRecord represents a lock row
type lockRecord struct {
	ID         string `dynamodbav:"id"`
	Month      string `dynamodbav:"month"`
	LockID     string `dynamodbav:"lockId"`
	Owner      string `dynamodbav:"owner"`
	AcquiredAt string `dynamodbav:"acquiredAt"`
	ExpiresAt  int64  `dynamodbav:"expiresAt"` // epoch millis
	TTL        int64  `dynamodbav:"ttl"`       // epoch seconds for table TTL
}

func NewScanLock(client DBClient, tableName string, logger *zap.Logger) *ScanLock {
	return &ScanLock{
		client:    client,
		tableName: tableName,
		nowFn:     time.Now,
		logger:    logger,
	}
}

var _ ports.ScanLock = (*ScanLock)(nil)

func lockID(appID string) string {
	return "LOCK#" + appID
}

// Acquire takes the lock for appID unless another owner holds an
// unexpired one.
func (l *ScanLock) Acquire(ctx context.Context, appID, owner string, ttl time.Duration) (ports.ScanLease, error) {
	now := l.nowFn()
	expiresAt := now.Add(ttl)

	record := lockRecord{
		ID:         lockID(appID),
		Month:      lockMonth,
		LockID:     uuid.NewString(),
		Owner:      owner,
		AcquiredAt: now.UTC().Format(time.RFC3339),
		ExpiresAt:  expiresAt.UnixMilli(),
		TTL:        expiresAt.Unix(),
	}
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock record: %w", err)
	}

	cond := expression.Name(attrID).AttributeNotExists().
		Or(expression.Name("expiresAt").LessThan(expression.Value(now.UnixMilli())))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock condition: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(l.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			l.logger.Debug("Scan lock already held",
				zap.String("appId", appID),
				zap.String("owner", owner),
			)
			return nil, pkgerrors.NewConflictError("scan already running for app " + appID)
		}
		return nil, pkgerrors.NewDatabaseError("AcquireScanLock", err)
	}

	l.logger.Debug("Scan lock acquired",
		zap.String("appId", appID),
		zap.String("lockId", record.LockID),
		zap.String("owner", owner),
		zap.Duration("ttl", ttl),
	)

	return &scanLease{lock: l, appID: appID, lockID: record.LockID, owner: owner}, nil
}

type scanLease struct {
	lock   *ScanLock
	appID  string
	lockID string
	owner  string
}

// Release deletes the lock row if this lease still owns it.
func (s *scanLease) Release(ctx context.Context) error {
	cond := expression.Name("lockId").Equal(expression.Value(s.lockID)).
		And(expression.Name("owner").Equal(expression.Value(s.owner)))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build release condition: %w", err)
	}

	_, err = s.lock.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.lock.tableName),
		Key: map[string]types.AttributeValue{
			attrID:    &types.AttributeValueMemberS{Value: lockID(s.appID)},
			attrMonth: &types.AttributeValueMemberS{Value: lockMonth},
		},
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			s.lock.logger.Warn("Scan lock already released or taken over",
				zap.String("appId", s.appID),
				zap.String("lockId", s.lockID),
			)
			return nil
		}
		return pkgerrors.NewDatabaseError("ReleaseScanLock", err)
	}
	return nil
}
