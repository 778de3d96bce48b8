// Package snapshot copies whole images to and from an object store. Objects
// are gzip-compressed and keyed `<prefix>/<image slug>/<uuid>.afs.gz`.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/weberc2/afs/pkg/disk"
	"github.com/weberc2/afs/pkg/filesystem"
	"github.com/weberc2/afs/pkg/objectstore"
	. "github.com/weberc2/afs/pkg/types"
)

const Extension = ".afs.gz"

type Snapshot struct {
	Key   string `json:"key"`
	Image string `json:"image"`
	ID    string `json:"id"`
}

// Store pushes and pulls snapshots in one bucket under one prefix.
type Store struct {
	ObjectStore ObjectStore
	Bucket      string
	Prefix      string
}

// New wraps `objectStore` so that snapshots are compressed.
func New(objectStore ObjectStore, bucket, prefix string) *Store {
	return &Store{
		ObjectStore: &objectstore.GzipObjectStore{ObjectStore: objectStore},
		Bucket:      bucket,
		Prefix:      strings.Trim(prefix, "/"),
	}
}

// ImageName derives the key component for the image at `imagePath`.
func ImageName(imagePath string) string {
	base := filepath.Base(imagePath)
	return slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
}

func (store *Store) imagePrefix(image string) string {
	return path.Join(store.Prefix, image) + "/"
}

// Push validates the image at `imagePath` and uploads it under a fresh id.
func (store *Store) Push(imagePath string) (Snapshot, error) {
	if err := Validate(imagePath); err != nil {
		return Snapshot{}, fmt.Errorf("pushing `%s`: %w", imagePath, err)
	}
	f, err := os.Open(imagePath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("pushing `%s`: %w", imagePath, err)
	}
	defer f.Close()

	snapshot := Snapshot{Image: ImageName(imagePath), ID: uuid.NewString()}
	snapshot.Key = store.imagePrefix(snapshot.Image) + snapshot.ID + Extension
	if err := store.ObjectStore.PutObject(store.Bucket, snapshot.Key, f); err != nil {
		return Snapshot{}, fmt.Errorf("pushing `%s`: %w", imagePath, err)
	}
	log.Printf("pushed `%s` to `%s/%s`", imagePath, store.Bucket, snapshot.Key)
	return snapshot, nil
}

// Pull downloads `key` to `dest`, which must not exist yet. The image is
// written to a temporary file and only moved into place once its
// superblock validates.
func (store *Store) Pull(key, dest string) error {
	if err := store.pull(key, dest); err != nil {
		return fmt.Errorf("pulling `%s` to `%s`: %w", key, dest, err)
	}
	log.Printf("pulled `%s/%s` to `%s`", store.Bucket, key, dest)
	return nil
}

func (store *Store) pull(key, dest string) error {
	exists, err := disk.Exists(dest)
	if err != nil {
		return err
	}
	if exists {
		return AlreadyExistsErr
	}

	body, err := store.ObjectStore.GetObject(store.Bucket, key)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".afs-pull-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := Validate(tmpPath); err != nil {
		return err
	}
	return os.Rename(tmpPath, dest)
}

// List returns the snapshots of `image` (an ImageName), or of every image
// if `image` is empty.
func (store *Store) List(image string) ([]Snapshot, error) {
	prefix := store.Prefix
	if image != "" {
		prefix = store.imagePrefix(image)
	} else if prefix != "" {
		prefix += "/"
	}
	keys, err := store.ObjectStore.ListObjects(store.Bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	var snapshots []Snapshot
	for _, key := range keys {
		rest := strings.TrimPrefix(key, prefix)
		if image != "" {
			rest = image + "/" + rest
		}
		parts := strings.Split(rest, "/")
		if len(parts) != 2 || !strings.HasSuffix(parts[1], Extension) {
			continue
		}
		snapshots = append(snapshots, Snapshot{
			Key:   key,
			Image: parts[0],
			ID:    strings.TrimSuffix(parts[1], Extension),
		})
	}
	return snapshots, nil
}

// Delete removes the snapshot at `key`. Keys outside the store's prefix are
// refused.
func (store *Store) Delete(key string) error {
	if store.Prefix != "" && !strings.HasPrefix(key, store.Prefix+"/") {
		return fmt.Errorf(
			"deleting `%s`: key is outside of prefix `%s`: %w",
			key,
			store.Prefix,
			InvalidOperationErr,
		)
	}
	if err := store.ObjectStore.DeleteObject(store.Bucket, key); err != nil {
		return fmt.Errorf("deleting `%s`: %w", key, err)
	}
	log.Printf("deleted `%s/%s`", store.Bucket, key)
	return nil
}

// Validate loads the image at `imagePath`, checking its superblock against
// the file's size.
func Validate(imagePath string) error {
	d, err := disk.Attach(imagePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("validating `%s`: %w", imagePath, NotFoundErr)
		}
		return fmt.Errorf("validating `%s`: %w", imagePath, err)
	}
	defer d.Close()
	if _, err := filesystem.Load(d); err != nil {
		return fmt.Errorf("validating `%s`: %w", imagePath, err)
	}
	return nil
}
