// Package s3 archives fleet run artifacts (credentials bundles, account
// summaries, build logs) to an S3-compatible object store.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Archiver uploads run artifacts to one bucket of an S3-compatible
// endpoint (MinIO, Ceph RGW, AWS).
type Archiver struct {
	s3     *s3.Client
	bucket string
}

// NewArchiver builds an archiver for the given endpoint and bucket.
func NewArchiver(endpoint, region, bucket, accessKey, secretKey string) (*Archiver, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		// Path style works with MinIO and friends out of the box.
		o.UsePathStyle = true
	})

	return &Archiver{s3: client, bucket: bucket}, nil
}

// EnsureBucket makes the archive bucket exist. A bucket we already own
// is fine.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	_, err := a.s3.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil && !isBucketAlreadyOwned(err) {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Upload stores one artifact under runID/name.
func (a *Archiver) Upload(ctx context.Context, runID, name string, data []byte) error {
	key := runID + "/" + name
	_, err := a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// UploadDir archives every regular file under dir, keyed by its path
// relative to dir. Returns the uploaded keys, sorted.
func (a *Archiver) UploadDir(ctx context.Context, runID, dir string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := a.Upload(ctx, runID, filepath.ToSlash(rel), data); err != nil {
			return err
		}
		keys = append(keys, runID+"/"+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// ListRun returns the artifact keys stored under a run ID.
func (a *Archiver) ListRun(ctx context.Context, runID string) ([]string, error) {
	result, err := a.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(runID + "/"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list run %s: %w", runID, err)
	}
	var keys []string
	for _, obj := range result.Contents {
		if obj.Key != nil {
			keys = append(keys, *obj.Key)
		}
	}
	return keys, nil
}

// Fetch downloads one artifact.
func (a *Archiver) Fetch(ctx context.Context, key string) ([]byte, error) {
	result, err := a.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("artifact %s not found", key)
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}
	defer func() { _ = result.Body.Close() }()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(result.Body); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// isBucketAlreadyOwned matches both the typed SDK errors and the raw
// API codes that S3-compatible stores return.
func isBucketAlreadyOwned(err error) bool {
	var owned *types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return true
	}
	var exists *types.BucketAlreadyExists
	if errors.As(err, &exists) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists"
	}
	return false
}

func isNotFound(err error) bool {
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return true
	}
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchBucket" || code == "NoSuchKey" || code == "404"
	}
	return false
}
