package cloudwatch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/udistrital/auditoria_mid/internal/config"
)

// Transient backend failures (throttling, transport hiccups) are retried
// here at the client-call level, never inside the polling loop.
const maxRetryAttempts = 5

// InsightsAPI is the slice of the CloudWatch Logs API the executor needs.
// The SDK client satisfies it; tests substitute a fake.
type InsightsAPI interface {
	StartQuery(ctx context.Context, params *cloudwatchlogs.StartQueryInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.StartQueryOutput, error)
	GetQueryResults(ctx context.Context, params *cloudwatchlogs.GetQueryResultsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetQueryResultsOutput, error)
}

// NewClient builds the CloudWatch Logs client from the default AWS
// credential chain, pinned to the configured region.
func NewClient(ctx context.Context, cfg config.AWSConfig) (*cloudwatchlogs.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), maxRetryAttempts)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return cloudwatchlogs.NewFromConfig(awsCfg), nil
}

// LogGroupName derives the backend log group for an API and environment.
// Same inputs always yield the same target.
func LogGroupName(nombreApi, entornoApi string) string {
	suffix := "test"
	if entornoApi == "PRODUCTION" {
		suffix = "prod"
	}
	return fmt.Sprintf("/ecs/%s_%s", nombreApi, suffix)
}
