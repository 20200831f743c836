package metrics

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// DefaultCloudWatchNamespace is used when no namespace is configured.
const DefaultCloudWatchNamespace = "BinanceCollector"

// putMetricDataAPI is the subset of the CloudWatch client the recorder uses.
type putMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatch publishes one batch of metric data per cycle.
type CloudWatch struct {
	client    putMetricDataAPI
	namespace string
	instance  string
	logger    *slog.Logger
}

// NewCloudWatch loads the default AWS configuration and creates a recorder.
// An empty region falls back to the SDK's resolution chain.
func NewCloudWatch(ctx context.Context, region, namespace, instance string, logger *slog.Logger) (*CloudWatch, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newCloudWatch(cloudwatch.NewFromConfig(cfg), namespace, instance, logger), nil
}

func newCloudWatch(client putMetricDataAPI, namespace, instance string, logger *slog.Logger) *CloudWatch {
	if namespace == "" {
		namespace = DefaultCloudWatchNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudWatch{
		client:    client,
		namespace: namespace,
		instance:  instance,
		logger:    logger,
	}
}

// ObserveCycle implements Recorder.
func (c *CloudWatch) ObserveCycle(ctx context.Context, r CycleReport) {
	data := c.datums(r)

	if _, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(c.namespace),
		MetricData: data,
	}); err != nil {
		c.logger.Warn("failed to publish CloudWatch metrics",
			"cycle_id", r.ID,
			"err", err,
		)
		return
	}

	c.logger.Debug("published metrics to CloudWatch", "cycle_id", r.ID, "metrics", len(data))
}

func (c *CloudWatch) datums(r CycleReport) []cwtypes.MetricDatum {
	var dims []cwtypes.Dimension
	if c.instance != "" {
		dims = []cwtypes.Dimension{{Name: aws.String("instance"), Value: aws.String(c.instance)}}
	}

	failed := 0.0
	if !r.OK() {
		failed = 1
	}

	ts := aws.Time(r.Timings.Dispatched)
	return []cwtypes.MetricDatum{
		{
			MetricName: aws.String("FetchDuration"),
			Dimensions: dims,
			Timestamp:  ts,
			Unit:       cwtypes.StandardUnitSeconds,
			Value:      aws.Float64(r.Timings.FetchDuration().Seconds()),
		},
		{
			MetricName: aws.String("WriteDuration"),
			Dimensions: dims,
			Timestamp:  ts,
			Unit:       cwtypes.StandardUnitSeconds,
			Value:      aws.Float64(r.Timings.WriteDuration().Seconds()),
		},
		{
			MetricName: aws.String("RowsWritten"),
			Dimensions: dims,
			Timestamp:  ts,
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(float64(r.RowsWritten)),
		},
		{
			MetricName: aws.String("CycleFailed"),
			Dimensions: dims,
			Timestamp:  ts,
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(failed),
		},
	}
}
