package objectstore

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/weberc2/afs/pkg/types"
)

var _ types.ObjectStore = (*GzipObjectStore)(nil)

// GzipObjectStore compresses objects on the way in and decompresses them on
// the way out. Images are mostly zeroes, so snapshots shrink considerably.
// The gzip header records the key's base name minus `.gz`, so `gunzip -N`
// on a downloaded object restores a usable image name.
type GzipObjectStore struct {
	types.ObjectStore
}

func (store *GzipObjectStore) PutObject(
	bucket string,
	key string,
	data io.ReadSeeker,
) error {
	var b bytes.Buffer
	w, err := gzip.NewWriterLevel(&b, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("compressing `%s`: creating gzip writer: %w", key, err)
	}
	w.Name = strings.TrimSuffix(path.Base(key), ".gz")
	if _, err := io.Copy(w, data); err != nil {
		return fmt.Errorf("compressing `%s`: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("compressing `%s`: closing gzip writer: %w", key, err)
	}
	return store.ObjectStore.PutObject(bucket, key, bytes.NewReader(b.Bytes()))
}

// GzipReadCloser decompresses `ReadCloser`. Closing it closes both.
type GzipReadCloser struct {
	io.ReadCloser
	r *gzip.Reader
}

func (grc *GzipReadCloser) Read(data []byte) (int, error) {
	return grc.r.Read(data)
}

func (grc *GzipReadCloser) Close() error {
	if err := grc.r.Close(); err != nil {
		grc.ReadCloser.Close()
		return err
	}
	return grc.ReadCloser.Close()
}

func (store *GzipObjectStore) GetObject(
	bucket string,
	key string,
) (io.ReadCloser, error) {
	body, err := store.ObjectStore.GetObject(bucket, key)
	if err != nil {
		return nil, fmt.Errorf("decompressing `%s`: %w", key, err)
	}
	r, err := gzip.NewReader(body)
	if err != nil {
		body.Close()
		return nil, fmt.Errorf(
			"decompressing `%s`: creating gzip reader: %w",
			key,
			err,
		)
	}
	return &GzipReadCloser{ReadCloser: body, r: r}, nil
}
