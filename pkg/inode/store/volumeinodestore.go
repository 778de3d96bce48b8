package store

import (
	"fmt"

	"github.com/weberc2/afs/pkg/encode"
	"github.com/weberc2/afs/pkg/io"
	"github.com/weberc2/afs/pkg/math"
	. "github.com/weberc2/afs/pkg/types"
)

// scanBatch is how many records Scan reads per volume access.
const scanBatch Ino = 256

// VolumeInodeStore reads and writes fixed-size inode records in a volume
// which starts at the first record of the inode table.
type VolumeInodeStore struct {
	volume io.Volume
}

func NewVolumeInodeStore(volume io.Volume) VolumeInodeStore {
	return VolumeInodeStore{volume}
}

func recordOffset(ino Ino) Byte { return Byte(ino) * InodeSize }

func (store VolumeInodeStore) Put(inode *Inode) error {
	var buf [InodeSize]byte
	encode.EncodeInode(inode, &buf)
	if err := store.volume.WriteAt(recordOffset(inode.Ino), buf[:]); err != nil {
		return fmt.Errorf("writing inode record `%d`: %w", inode.Ino, err)
	}
	return nil
}

func (store VolumeInodeStore) Get(ino Ino, output *Inode) error {
	var buf [InodeSize]byte
	if err := store.volume.ReadAt(recordOffset(ino), buf[:]); err != nil {
		return fmt.Errorf("reading inode record `%d`: %w", ino, err)
	}
	encode.DecodeInode(output, &buf)
	output.Ino = ino
	return nil
}

// Scan calls `f` for each of the first `count` records in index order. The
// inode passed to `f` is reused between calls.
func (store VolumeInodeStore) Scan(count Ino, f func(*Inode) error) error {
	buf := make([]byte, Byte(math.Min(count, scanBatch))*InodeSize)
	var inode Inode
	for start := Ino(0); start < count; start += scanBatch {
		n := math.Min(count-start, scanBatch)
		batch := buf[:Byte(n)*InodeSize]
		if err := store.volume.ReadAt(recordOffset(start), batch); err != nil {
			return fmt.Errorf(
				"reading inode records `%d` through `%d`: %w",
				start,
				start+n-1,
				err,
			)
		}
		for i := Ino(0); i < n; i++ {
			encode.DecodeInode(
				&inode,
				(*[InodeSize]byte)(batch[Byte(i)*InodeSize:]),
			)
			inode.Ino = start + i
			if err := f(&inode); err != nil {
				return err
			}
		}
	}
	return nil
}
