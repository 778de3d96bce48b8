package objectstore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/weberc2/afs/pkg/types"
)

var _ types.ObjectStore = (*DirObjectStore)(nil)

// DirObjectStore keeps objects as files under `Root/<bucket>/<key>`. It
// backs snapshots when no S3 bucket is configured.
type DirObjectStore struct {
	Root string
}

func (store *DirObjectStore) path(bucket, key string) (string, error) {
	p := filepath.Join(store.Root, bucket, filepath.FromSlash(key))
	if !strings.HasPrefix(p, filepath.Join(store.Root, bucket)+string(filepath.Separator)) {
		return "", fmt.Errorf(
			"key `%s` escapes bucket `%s`: %w",
			key,
			bucket,
			types.InvalidOperationErr,
		)
	}
	return p, nil
}

func (store *DirObjectStore) PutObject(bucket, key string, data io.ReadSeeker) error {
	p, err := store.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("putting object `%s/%s`: %w", bucket, key, err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("putting object `%s/%s`: %w", bucket, key, err)
	}
	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		return fmt.Errorf("putting object `%s/%s`: %w", bucket, key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("putting object `%s/%s`: %w", bucket, key, err)
	}
	return nil
}

func (store *DirObjectStore) GetObject(bucket, key string) (io.ReadCloser, error) {
	p, err := store.path(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &types.ObjectNotFoundErr{Bucket: bucket, Key: key}
		}
		return nil, fmt.Errorf("getting object `%s/%s`: %w", bucket, key, err)
	}
	return f, nil
}

func (store *DirObjectStore) ListObjects(bucket, prefix string) ([]string, error) {
	root := filepath.Join(store.Root, bucket)
	var keys []string
	if err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
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
		if key := filepath.ToSlash(rel); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf(
			"listing objects in bucket `%s` with prefix `%s`: %w",
			bucket,
			prefix,
			err,
		)
	}
	sort.Strings(keys)
	return keys, nil
}

func (store *DirObjectStore) DeleteObject(bucket, key string) error {
	p, err := store.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &types.ObjectNotFoundErr{Bucket: bucket, Key: key}
		}
		return fmt.Errorf("deleting object `%s/%s`: %w", bucket, key, err)
	}
	return nil
}
