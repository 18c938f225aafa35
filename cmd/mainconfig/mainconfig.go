// Package mainconfig holds AWS SDK wiring shared by the API and the
// notification worker.
package mainconfig

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	appconfig "github.com/serenityspa/spa-platform/internal/config"
)

// LoadAWSConfig builds the AWS client configuration. Static credentials and
// the endpoint override are only set when configured, so production deploys
// fall through to the default credential chain.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.AWSEndpointOverride != "" {
		awsCfg.EndpointResolverWithOptions = localEndpointResolver(cfg.AWSEndpointOverride, cfg.AWSRegion)
	}
	return awsCfg, nil
}

// localEndpointResolver points SQS and SES at a LocalStack endpoint while
// leaving every other service on its default resolution.
func localEndpointResolver(endpoint, region string) aws.EndpointResolverWithOptionsFunc {
	return func(service, _ string, _ ...interface{}) (aws.Endpoint, error) {
		switch service {
		case sqs.ServiceID, sesv2.ServiceID:
			return aws.Endpoint{
				URL:           endpoint,
				PartitionID:   "aws",
				SigningRegion: region,
			}, nil
		default:
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		}
	}
}
