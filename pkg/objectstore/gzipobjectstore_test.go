package objectstore

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/weberc2/afs/pkg/testsupport"
	"github.com/weberc2/afs/pkg/types"
)

func TestGzipObjectStore(t *testing.T) {
	fake := testsupport.NewObjectStoreFake()
	objectStore := GzipObjectStore{fake}
	image := bytes.Repeat([]byte{0}, 4096)
	copy(image, "AFS\x01")
	if err := objectStore.PutObject(
		"bucket",
		"snapshots/disk/1234.afs.gz",
		bytes.NewReader(image),
	); err != nil {
		t.Fatalf("PutObject(): unexpected err: %v", err)
	}

	stored, found := fake.Object("bucket", "snapshots/disk/1234.afs.gz")
	if !found {
		t.Fatal("PutObject(): wanted stored object; found none")
	}
	if len(stored) >= len(image)/10 {
		t.Fatalf("wanted compressed object; found `%d` bytes", len(stored))
	}
	r, err := gzip.NewReader(bytes.NewReader(stored))
	if err != nil {
		t.Fatalf("gzip.NewReader(): unexpected err: %v", err)
	}
	if r.Name != "1234.afs" {
		t.Fatalf("gzip header name: wanted `1234.afs`; found `%s`", r.Name)
	}

	body, err := objectStore.GetObject("bucket", "snapshots/disk/1234.afs.gz")
	if err != nil {
		t.Fatalf("GetObject(): unexpected err: %v", err)
	}
	defer body.Close()

	data, err := ioutil.ReadAll(body)
	if err != nil {
		t.Fatalf("reading object: unexpected err: %v", err)
	}
	if !bytes.Equal(data, image) {
		t.Fatalf("GetObject(): wanted original image; found `%d` bytes", len(data))
	}
}

func TestGzipObjectStore_NotGzip(t *testing.T) {
	fake := testsupport.NewObjectStoreFake()
	if err := fake.PutObject("bucket", "key", strings.NewReader("plain")); err != nil {
		t.Fatalf("PutObject(): unexpected err: %v", err)
	}
	objectStore := GzipObjectStore{fake}
	if _, err := objectStore.GetObject("bucket", "key"); err == nil {
		t.Fatal("GetObject(): wanted err; found nil")
	}
}

func TestGzipObjectStore_NotFound(t *testing.T) {
	objectStore := GzipObjectStore{testsupport.NewObjectStoreFake()}
	_, err := objectStore.GetObject("my-bucket", "missing")
	var notFound *types.ObjectNotFoundErr
	if !errors.As(err, &notFound) {
		t.Fatalf("wanted `*ObjectNotFoundErr`; found `%v`", err)
	}
	if !errors.Is(err, types.NotFoundErr) {
		t.Fatalf("wanted `%v`; found `%v`", types.NotFoundErr, err)
	}
}
