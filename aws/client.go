// Package aws defines functions used to interact with the AWS API
package aws

import (
	"bitwise74/taskcamp/config"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type S3Client struct {
	C      *s3.Client
	Bucket *string
}

// NewS3 connects to the configured bucket and makes sure it exists.
// Without static keys the default AWS credential chain is used.
func NewS3(ctx context.Context, c config.AWS) (*S3Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(c.Region),
	}

	if c.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config, %w", err)
	}

	client := s3.NewFromConfig(cfg)
	bucket := aws.String(c.Bucket)

	if err := CheckBucket(ctx, client, bucket); err != nil {
		return nil, err
	}

	return &S3Client{
		C:      client,
		Bucket: bucket,
	}, nil
}

// CheckBucket fails when the bucket doesn't exist or can't be reached
func CheckBucket(ctx context.Context, client *s3.Client, bucket *string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return nil
}
