package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
	vo "metadata-scanner/domain/core/valueobjects"
)

// Scan outcomes reported to the metrics backends.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// PutMetricDataAPI is the CloudWatch call the metrics sink needs.
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics sends scan metrics to CloudWatch
type CloudWatchMetrics struct {
	namespace string
	client    PutMetricDataAPI
	nowFn     func() time.Time
	logger    *zap.Logger
}

// NewCloudWatchMetrics creates a new CloudWatch metrics sink
func NewCloudWatchMetrics(namespace string, client PutMetricDataAPI, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		namespace: namespace,
		client:    client,
		nowFn:     time.Now,
		logger:    logger,
	}
}

func dimension(name, value string) types.Dimension {
	return types.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

// RecordScan records the duration and outcome of a scan run
func (m *CloudWatchMetrics) RecordScan(ctx context.Context, appID, outcome string, duration time.Duration) {
	now := m.nowFn()
	dims := []types.Dimension{dimension("AppId", appID), dimension("Outcome", outcome)}
	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("ScanDuration"),
			Dimensions: dims,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  aws.Time(now),
		},
		{
			MetricName: aws.String("ScanCount"),
			Dimensions: dims,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(now),
		},
	})
}

// RecordSlices records how many slices a run produced for a domain
func (m *CloudWatchMetrics) RecordSlices(ctx context.Context, appID string, domain vo.CatalogDomain, count int) {
	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("SlicesWritten"),
			Dimensions: []types.Dimension{dimension("AppId", appID), dimension("Domain", domain.String())},
			Value:      aws.Float64(float64(count)),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(m.nowFn()),
		},
	})
}

func (m *CloudWatchMetrics) put(ctx context.Context, data []types.MetricDatum) {
	if m.client == nil {
		return
	}
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		// Metrics never fail a run.
		m.logger.Warn("Failed to send metrics", zap.Error(err))
	}
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordScan(context.Context, string, string, time.Duration)   {}
func (NopMetrics) RecordSlices(context.Context, string, vo.CatalogDomain, int) {}
