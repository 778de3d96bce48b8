// Package inode manages the inode table: a dense array of fixed-size
// records following the bitmap. Records are appended at the superblock's
// inode count and never reused; deletion only flags a record.
package inode

import (
	"fmt"

	"github.com/weberc2/afs/pkg/encode"
	"github.com/weberc2/afs/pkg/inode/store"
	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

type Table struct {
	volume     io.Volume
	superblock *Superblock
	store      store.VolumeInodeStore
}

// New returns the table of the image in `volume`. `superblock` is shared
// with the caller; `Create` advances its inode count.
func New(volume io.Volume, superblock *Superblock) *Table {
	return &Table{
		volume:     volume,
		superblock: superblock,
		store: store.NewVolumeInodeStore(io.NewOffsetVolume(
			volume,
			superblock.InodeTableOffset(),
			Byte(superblock.InodeCapacity())*InodeSize,
		)),
	}
}

// IndexToAddress returns the absolute offset of the record for `ino`.
func (table *Table) IndexToAddress(ino Ino) Byte {
	return table.superblock.InodeOffset(ino)
}

// Count is the number of records ever created.
func (table *Table) Count() Ino { return table.superblock.InodeCount }

// Available reports whether another record can be created.
func (table *Table) Available() bool {
	return table.superblock.InodeCount < table.superblock.InodeCapacity()
}

func (table *Table) Get(ino Ino, output *Inode) error {
	if ino >= table.superblock.InodeCount {
		return fmt.Errorf(
			"fetching inode `%d` of `%d`: %w",
			ino,
			table.superblock.InodeCount,
			CorruptImageErr,
		)
	}
	if err := table.store.Get(ino, output); err != nil {
		return fmt.Errorf("fetching inode `%d`: %w", ino, err)
	}
	return nil
}

func (table *Table) Put(inode *Inode) error {
	if inode.Ino >= table.superblock.InodeCount {
		return fmt.Errorf(
			"storing inode `%d` of `%d`: %w",
			inode.Ino,
			table.superblock.InodeCount,
			OutOfBoundsErr,
		)
	}
	if err := table.store.Put(inode); err != nil {
		return fmt.Errorf("storing inode `%d`: %w", inode.Ino, err)
	}
	return nil
}

// Root fetches inode 0.
func (table *Table) Root(output *Inode) error {
	return table.Get(InoRoot, output)
}

// Create writes a fresh record at the next index and persists the new
// inode count. The new inode has no content.
func (table *Table) Create(isDirectory bool) (Inode, error) {
	if !table.Available() {
		return Inode{}, fmt.Errorf(
			"creating inode: table holds `%d` records: %w",
			table.superblock.InodeCapacity(),
			ResourceExhaustedErr,
		)
	}
	inode := NewInode(isDirectory)
	inode.Ino = table.superblock.InodeCount
	if err := table.store.Put(&inode); err != nil {
		return Inode{}, fmt.Errorf("creating inode `%d`: %w", inode.Ino, err)
	}
	if err := table.setCount(inode.Ino + 1); err != nil {
		return Inode{}, fmt.Errorf("creating inode `%d`: %w", inode.Ino, err)
	}
	return inode, nil
}

// Delete flags the record as deleted. The type bit is kept so a deleted
// record still shows what it was.
func (table *Table) Delete(inode *Inode) error {
	inode.Flags |= FlagDeleted
	inode.FirstAddr = AddrEmpty
	inode.Size = 0
	if err := table.Put(inode); err != nil {
		return fmt.Errorf("deleting inode `%d`: %w", inode.Ino, err)
	}
	return nil
}

// Live counts the records which are not flagged as deleted.
func (table *Table) Live() (Ino, error) {
	var live Ino
	if err := table.store.Scan(
		table.superblock.InodeCount,
		func(inode *Inode) error {
			if !inode.Flags.IsDeleted() {
				live++
			}
			return nil
		},
	); err != nil {
		return 0, fmt.Errorf("counting live inodes: %w", err)
	}
	return live, nil
}

func (table *Table) setCount(count Ino) error {
	buf := new([encode.SuperblockInodeCountSize]byte)
	encode.EncodeInodeCount(count, buf)
	offset := SuperblockOffset + encode.SuperblockInodeCountStart
	if err := table.volume.WriteAt(offset, buf[:]); err != nil {
		return fmt.Errorf("persisting inode count `%d`: %w", count, err)
	}
	table.superblock.InodeCount = count
	return nil
}
