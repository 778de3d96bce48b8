// Package disk implements the block store: a fixed-size, byte-addressed
// region backed by a regular file. Every read and write goes straight to
// the file; there is no cache, so a write is visible to every subsequent
// read.
package disk

import (
	"errors"
	"fmt"
	"io"
	"os"

	afsio "github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

var _ afsio.Volume = (*Disk)(nil)

type Disk struct {
	file    *os.File
	path    string
	size    Byte
	created bool
}

// Open creates a zero-filled image of `size` bytes at `path` if nothing
// exists there, otherwise it attaches to the existing file, whose own size
// then takes precedence.
func Open(path string, size Byte) (*Disk, error) {
	exists, err := Exists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		return Attach(path)
	}
	return Create(path, size)
}

// Create creates a new image file; it fails if `path` already exists.
func Create(path string, size Byte) (*Disk, error) {
	if size <= 0 {
		return nil, fmt.Errorf(
			"creating disk `%s` with size `%d`: %w",
			path,
			size,
			InvalidGeometryErr,
		)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_EXCL, 0664)
	if err != nil {
		return nil, fmt.Errorf("creating disk `%s`: %w", path, err)
	}
	if err := file.Truncate(int64(size)); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf(
			"creating disk `%s`: sizing to `%d` bytes: %w",
			path,
			size,
			err,
		)
	}
	return &Disk{file: file, path: path, size: size, created: true}, nil
}

// Attach opens an existing image file for reading and writing.
func Attach(path string) (*Disk, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("attaching disk `%s`: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("attaching disk `%s`: %w", path, err)
	}
	return &Disk{file: file, path: path, size: Byte(info.Size())}, nil
}

func Exists(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking for disk `%s`: %w", path, err)
	}
	return true, nil
}

func (disk *Disk) ReadAt(offset Byte, p []byte) error {
	if err := afsio.CheckBounds(disk.size, offset, Byte(len(p))); err != nil {
		return fmt.Errorf("reading disk `%s`: %w", disk.path, err)
	}
	if _, err := disk.file.ReadAt(p, int64(offset)); err != nil {
		// the file may have been truncated underneath us
		if errors.Is(err, io.EOF) {
			return fmt.Errorf(
				"reading `%d` bytes from disk `%s` at offset `%d`: %w",
				len(p),
				disk.path,
				offset,
				OutOfBoundsErr,
			)
		}
		return fmt.Errorf(
			"reading `%d` bytes from disk `%s` at offset `%d`: %w",
			len(p),
			disk.path,
			offset,
			err,
		)
	}
	return nil
}

func (disk *Disk) WriteAt(offset Byte, p []byte) error {
	if err := afsio.CheckBounds(disk.size, offset, Byte(len(p))); err != nil {
		return fmt.Errorf("writing disk `%s`: %w", disk.path, err)
	}
	if _, err := disk.file.WriteAt(p, int64(offset)); err != nil {
		return fmt.Errorf(
			"writing `%d` bytes to disk `%s` at offset `%d`: %w",
			len(p),
			disk.path,
			offset,
			err,
		)
	}
	return nil
}

func (disk *Disk) Size() Byte { return disk.size }

func (disk *Disk) Path() string { return disk.path }

// Created reports whether Open created the backing file rather than
// attaching to an existing one.
func (disk *Disk) Created() bool { return disk.created }

// Remove closes the disk and deletes its backing file. It is used to clean
// up after a failed format.
func (disk *Disk) Remove() error {
	if err := disk.Close(); err != nil {
		return err
	}
	if err := os.Remove(disk.path); err != nil {
		return fmt.Errorf("removing disk `%s`: %w", disk.path, err)
	}
	return nil
}

func (disk *Disk) Close() error {
	if err := disk.file.Close(); err != nil {
		return fmt.Errorf("closing disk `%s`: %w", disk.path, err)
	}
	return nil
}
