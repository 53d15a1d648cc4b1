// Copyright (C) 2025 GameLake Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	downloadErrors metric.Int64Counter
	downloadCount  metric.Int64Counter
	downloadBytes  metric.Int64Counter
	uploadCount    metric.Int64Counter
	uploadBytes    metric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/PelleWhitebear/gamelake/internal/objstore")

	var err error
	downloadErrors, err = meter.Int64Counter(
		"gamelake.store.download.errors",
		metric.WithDescription("Number of object store download errors"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create download.errors counter: %w", err))
	}

	downloadCount, err = meter.Int64Counter(
		"gamelake.store.download.count",
		metric.WithDescription("Number of object store downloads"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create download.count counter: %w", err))
	}

	downloadBytes, err = meter.Int64Counter(
		"gamelake.store.download.bytes",
		metric.WithDescription("Bytes downloaded from the object store"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create download.bytes counter: %w", err))
	}

	uploadCount, err = meter.Int64Counter(
		"gamelake.store.upload.count",
		metric.WithDescription("Number of object store uploads"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create upload.count counter: %w", err))
	}

	uploadBytes, err = meter.Int64Counter(
		"gamelake.store.upload.bytes",
		metric.WithDescription("Bytes uploaded to the object store"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create upload.bytes counter: %w", err))
	}
}

type s3Client struct {
	s3 *s3.Client
}

var _ Client = (*s3Client)(nil)

func s3ErrorIs404(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}

func (c *s3Client) EnsureBucket(ctx context.Context, bucket string) error {
	_, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

func (c *s3Client) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(c.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, ObjectInfo{
				Key:  aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			})
		}
	}
	return objects, nil
}

func (c *s3Client) GetObject(ctx context.Context, bucket, key string) ([]byte, bool, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if s3ErrorIs404(err) {
			return nil, true, nil
		}
		downloadErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("bucket", bucket),
			attribute.String("reason", "unknown"),
		))
		return nil, false, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read %s/%s: %w", bucket, key, err)
	}
	downloadCount.Add(ctx, 1, metric.WithAttributes(attribute.String("bucket", bucket)))
	downloadBytes.Add(ctx, int64(len(body)), metric.WithAttributes(attribute.String("bucket", bucket)))
	return body, false, nil
}

func (c *s3Client) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	uploadCount.Add(ctx, 1, metric.WithAttributes(attribute.String("bucket", bucket)))
	uploadBytes.Add(ctx, int64(len(body)), metric.WithAttributes(attribute.String("bucket", bucket)))
	return nil
}

func (c *s3Client) DownloadObject(ctx context.Context, tmpdir, bucket, key string) (string, int64, bool, error) {
	downloader := manager.NewDownloader(c.s3)

	// Keep the original filename in the temp name so downstream type
	// detection by extension still works.
	filename := filepath.Base(key)
	f, err := os.CreateTemp(tmpdir, "*-"+filename)
	if err != nil {
		return "", 0, false, fmt.Errorf("create temp file: %w", err)
	}

	size, err := downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		if s3ErrorIs404(err) {
			downloadErrors.Add(ctx, 1, metric.WithAttributes(
				attribute.String("bucket", bucket),
				attribute.String("reason", "not_found"),
			))
			return "", 0, true, nil
		}
		downloadErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("bucket", bucket),
			attribute.String("reason", "unknown"),
		))
		return "", 0, false, fmt.Errorf("download %s/%s: %w", bucket, key, err)
	}

	downloadCount.Add(ctx, 1, metric.WithAttributes(attribute.String("bucket", bucket)))
	downloadBytes.Add(ctx, size, metric.WithAttributes(attribute.String("bucket", bucket)))

	// close on success; the bytes are already flushed by the SDK
	_ = f.Close()
	return f.Name(), size, false, nil
}

func (c *s3Client) UploadObject(ctx context.Context, bucket, key, sourceFilename string) error {
	f, err := os.Open(sourceFilename)
	if err != nil {
		return fmt.Errorf("open %s: %w", sourceFilename, err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", sourceFilename, err)
	}

	uploader := manager.NewUploader(c.s3)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("upload %s/%s: %w", bucket, key, err)
	}
	uploadCount.Add(ctx, 1, metric.WithAttributes(attribute.String("bucket", bucket)))
	uploadBytes.Add(ctx, fi.Size(), metric.WithAttributes(attribute.String("bucket", bucket)))
	return nil
}

func (c *s3Client) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	_, err := c.s3.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		CopySource: aws.String(url.PathEscape(srcBucket + "/" + srcKey)),
		Key:        aws.String(dstKey),
	})
	if err != nil {
		return fmt.Errorf("copy %s/%s to %s/%s: %w", srcBucket, srcKey, dstBucket, dstKey, err)
	}
	return nil
}

func (c *s3Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil && !s3ErrorIs404(err) {
		return fmt.Errorf("delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

const deleteBatchSize = 1000

func (c *s3Client) DeleteObjects(ctx context.Context, bucket string, keys []string) ([]string, error) {
	var failed []string
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))
		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(key)})
		}
		out, err := c.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return nil, fmt.Errorf("delete objects in %s: %w", bucket, err)
		}
		for _, e := range out.Errors {
			failed = append(failed, aws.ToString(e.Key))
		}
	}
	return failed, nil
}
