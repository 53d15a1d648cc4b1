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
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// fileClient operates on the local filesystem. It is intended for tests
// that want to bypass a real object store. Bucket names become
// subdirectories under the base path.
type fileClient struct {
	base string
}

var _ Client = (*fileClient)(nil)

// NewFileClient returns a client that reads and writes files under base.
func NewFileClient(base string) Client {
	return &fileClient{base: base}
}

func (c *fileClient) path(bucket, key string) string {
	return filepath.Join(c.base, bucket, filepath.FromSlash(key))
}

func (c *fileClient) EnsureBucket(ctx context.Context, bucket string) error {
	return os.MkdirAll(filepath.Join(c.base, bucket), 0o755)
}

func (c *fileClient) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	root := filepath.Join(c.base, bucket)
	var objects []ObjectInfo
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, ObjectInfo{Key: key, Size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (c *fileClient) GetObject(ctx context.Context, bucket, key string) ([]byte, bool, error) {
	body, err := os.ReadFile(c.path(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return body, false, nil
}

func (c *fileClient) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	dst := c.path(bucket, key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, body, 0o644)
}

// DownloadObject copies the requested object to a temp file and returns the
// filename. The original basename is preserved in the temp name so file
// type detection by extension keeps working downstream.
func (c *fileClient) DownloadObject(ctx context.Context, tmpdir, bucket, key string) (string, int64, bool, error) {
	src := c.path(bucket, key)
	fi, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", 0, true, nil
		}
		return "", 0, false, err
	}
	dst, err := os.CreateTemp(tmpdir, "*-"+filepath.Base(key))
	if err != nil {
		return "", 0, false, err
	}
	defer func() { _ = dst.Close() }()

	f, err := os.Open(src)
	if err != nil {
		return "", 0, false, err
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(dst, f); err != nil {
		return "", 0, false, err
	}
	return dst.Name(), fi.Size(), false, nil
}

func (c *fileClient) UploadObject(ctx context.Context, bucket, key, sourceFilename string) error {
	body, err := os.ReadFile(sourceFilename)
	if err != nil {
		return err
	}
	return c.PutObject(ctx, bucket, key, body)
}

func (c *fileClient) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	body, notFound, err := c.GetObject(ctx, srcBucket, srcKey)
	if err != nil {
		return err
	}
	if notFound {
		return os.ErrNotExist
	}
	return c.PutObject(ctx, dstBucket, dstKey, body)
}

func (c *fileClient) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := os.Remove(c.path(bucket, key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DeleteObjects mimics batch delete with individual calls.
func (c *fileClient) DeleteObjects(ctx context.Context, bucket string, keys []string) ([]string, error) {
	var failed []string
	for _, key := range keys {
		if err := c.DeleteObject(ctx, bucket, key); err != nil {
			failed = append(failed, key)
		}
	}
	return failed, nil
}
