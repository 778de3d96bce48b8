// Package testsupport holds in-memory fakes for tests.
package testsupport

import (
	"bytes"
	"io"
	"io/ioutil"
	"sort"
	"strings"
	"sync"

	"github.com/weberc2/afs/pkg/types"
)

var _ types.ObjectStore = (*ObjectStoreFake)(nil)

type objectKey struct {
	bucket string
	key    string
}

// ObjectStoreFake keeps objects in memory. It is safe for concurrent use.
type ObjectStoreFake struct {
	lock    sync.Mutex
	objects map[objectKey][]byte
}

func NewObjectStoreFake() *ObjectStoreFake {
	return &ObjectStoreFake{objects: map[objectKey][]byte{}}
}

// Object returns the stored bytes of `key` as written.
func (osf *ObjectStoreFake) Object(bucket, key string) ([]byte, bool) {
	osf.lock.Lock()
	defer osf.lock.Unlock()
	data, found := osf.objects[objectKey{bucket, key}]
	return data, found
}

func (osf *ObjectStoreFake) PutObject(
	bucket string,
	key string,
	data io.ReadSeeker,
) error {
	b, err := ioutil.ReadAll(data)
	if err != nil {
		return err
	}
	osf.lock.Lock()
	defer osf.lock.Unlock()
	osf.objects[objectKey{bucket, key}] = b
	return nil
}

func (osf *ObjectStoreFake) GetObject(
	bucket string,
	key string,
) (io.ReadCloser, error) {
	data, found := osf.Object(bucket, key)
	if !found {
		return nil, &types.ObjectNotFoundErr{Bucket: bucket, Key: key}
	}
	return ioutil.NopCloser(bytes.NewReader(data)), nil
}

// ListObjects returns matching keys in lexical order, like S3.
func (osf *ObjectStoreFake) ListObjects(
	bucket string,
	prefix string,
) ([]string, error) {
	osf.lock.Lock()
	defer osf.lock.Unlock()
	var out []string
	for k := range osf.objects {
		if k.bucket == bucket && strings.HasPrefix(k.key, prefix) {
			out = append(out, k.key)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (osf *ObjectStoreFake) DeleteObject(bucket, key string) error {
	osf.lock.Lock()
	defer osf.lock.Unlock()
	k := objectKey{bucket, key}
	if _, found := osf.objects[k]; !found {
		return &types.ObjectNotFoundErr{Bucket: bucket, Key: key}
	}
	delete(osf.objects, k)
	return nil
}
