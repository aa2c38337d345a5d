// Package cloudflare provides a client for Cloudflare's S3 compatible R2 storage
package cloudflare

import (
	taws "bitwise74/taskcamp/aws"
	"bitwise74/taskcamp/config"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type R2Client struct {
	C      *s3.Client
	Bucket *string
}

func NewR2(ctx context.Context, c config.Cloudflare) (*R2Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKeyID,
			c.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load r2 config, %w", err)
	}

	bucket := aws.String(c.Bucket)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID))
		o.Region = "auto"
	})

	if err := taws.CheckBucket(ctx, client, bucket); err != nil {
		return nil, err
	}

	return &R2Client{
		C:      client,
		Bucket: bucket,
	}, nil
}
