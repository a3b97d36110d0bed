package storage

import (
	"context"
	"log"
	"qlinme-service/internal/app/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3 builds a client for AWS or any S3 compatible endpoint. Static keys
// win over the default credentials chain when both are set.
func NewS3(ctx context.Context, driverConfig *config.DriverConfig) *s3.Client {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(driverConfig.S3.Region),
	}
	if driverConfig.S3.AccessKey != "" && driverConfig.S3.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(driverConfig.S3.AccessKey, driverConfig.S3.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %s", err.Error())
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = driverConfig.S3.UsePathStyle
		if driverConfig.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(driverConfig.S3.Endpoint)
		}
	})

	log.Println("Successfully initialized S3 client")
	return client
}
