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

// Package objstore is the object-storage substrate of the pipeline: named
// buckets of keyed blobs with put/get/list/delete/copy. No versioning, no
// transactions, no schema; everything above is layered on by the zones.
package objstore

import (
	"context"
)

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// Client provides a unified interface for object storage operations.
type Client interface {
	// EnsureBucket creates the bucket if it does not exist. A bucket that
	// already exists and is owned by the caller is success.
	EnsureBucket(ctx context.Context, bucket string) error

	// ListObjects returns every object under prefix, in key order.
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)

	// GetObject reads an object into memory. notFound is true when the key
	// does not exist.
	GetObject(ctx context.Context, bucket, key string) (body []byte, notFound bool, err error)

	// PutObject writes body under bucket/key, replacing any existing object.
	PutObject(ctx context.Context, bucket, key string, body []byte) error

	// DownloadObject downloads an object to a temp file under tmpdir.
	// Returns the temp filename, size, whether the object was not found,
	// and error.
	DownloadObject(ctx context.Context, tmpdir, bucket, key string) (filename string, size int64, notFound bool, err error)

	// UploadObject uploads a local file to bucket/key.
	UploadObject(ctx context.Context, bucket, key, sourceFilename string) error

	// CopyObject copies srcBucket/srcKey to dstBucket/dstKey without
	// moving the bytes through the client.
	CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error

	// DeleteObject deletes an object. Deleting a missing key is not an error.
	DeleteObject(ctx context.Context, bucket, key string) error

	// DeleteObjects deletes multiple objects, returning the keys that could
	// not be deleted.
	DeleteObjects(ctx context.Context, bucket string, keys []string) (failed []string, err error)
}
