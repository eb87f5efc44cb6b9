//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

package replay

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// defaultS3Endpoint and defaultReplayBucket are the fallback endpoint/bucket
// for self-hosted/archived tick captures, mirroring
// internal/flatfiles/client.go's defaultS3Endpoint/defaultBucket.
const (
	defaultS3Endpoint   = "https://files.massive.com"
	defaultReplayBucket = "replay-captures"
)

// S3Downloader is the alternate replay backend for installations that mirror
// captures into their own S3-compatible bucket rather than relying on the
// provider's HTTPS redirect. Adapted from internal/flatfiles/client.go's
// S3Client: same static-credentials + path-style-addressing setup, repointed
// at per-subprovider/per-date capture objects instead of flat files.
type S3Downloader struct {
	client *s3.Client
	bucket string
}

// NewS3Downloader builds an S3Downloader against endpoint using static
// credentials, matching NewS3Client's construction in internal/flatfiles.
func NewS3Downloader(accessKey, secretKey, endpoint, bucket string) *S3Downloader {
	if endpoint == "" {
		endpoint = defaultS3Endpoint
	}
	if bucket == "" {
		bucket = defaultReplayBucket
	}

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3Downloader{client: client, bucket: bucket}
}

// buildKey builds the object key for one subprovider's capture on a given
// replay date, mirroring BuildKey's date-partitioned layout in
// internal/flatfiles/client.go.
func (d *S3Downloader) buildKey(subprovider, replayDate string) string {
	return fmt.Sprintf("replay/%s/%s.bin", replayDate, subprovider)
}

// Download fetches one subprovider's capture object to a temp file,
// mirroring DownloadFile's GetObject-to-file pattern in
// internal/flatfiles/client.go: io.Copy propagates any read error other than
// a clean EOF instead of silently truncating the file.
func (d *S3Downloader) Download(ctx context.Context, subprovider, replayDate string) (string, error) {
	key := d.buildKey(subprovider, replayDate)

	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("replay: fetching s3 object %s: %w", key, err)
	}
	defer out.Body.Close()

	tmp, err := os.CreateTemp("", fmt.Sprintf("replay-%s-%s-*.bin", subprovider, replayDate))
	if err != nil {
		return "", fmt.Errorf("replay: creating temp file: %w", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, out.Body); err != nil {
		return "", fmt.Errorf("replay: writing s3 object %s to disk: %w", key, err)
	}

	return tmp.Name(), nil
}
