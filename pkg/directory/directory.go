// Package directory encodes a directory as a block chain holding a 16-bit
// sibling count (first block only) followed by fixed-size sibling records.
// Directories are identified by the address of their first block.
package directory

import (
	"fmt"

	"github.com/weberc2/afs/pkg/encode"
	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

// Init seeds the freshly allocated (zeroed) block at `dir` with the "." and
// ".." entries.
func Init(fs *FileSystem, dir Addr, self, parent Ino) error {
	for i, sibling := range []Sibling{
		{Name: SelfName, Ino: self},
		{Name: ParentName, Ino: parent},
	} {
		if err := writeSibling(fs, slotOffset(fs, dir, 0, i), &sibling); err != nil {
			return fmt.Errorf("initializing directory at `%d`: %w", dir, err)
		}
	}
	if err := setCount(fs, dir, 2); err != nil {
		return fmt.Errorf("initializing directory at `%d`: %w", dir, err)
	}
	return nil
}

// Count reads the number of sibling records in the directory.
func Count(fs *FileSystem, dir Addr) (int, error) {
	count, err := io.ReadU16(fs.Volume, Byte(dir))
	if err != nil {
		return 0, fmt.Errorf(
			"reading sibling count of directory at `%d`: %w",
			dir,
			err,
		)
	}
	return int(count), nil
}

func setCount(fs *FileSystem, dir Addr, count int) error {
	if err := io.WriteU16(fs.Volume, Byte(dir), uint16(count)); err != nil {
		return fmt.Errorf(
			"writing sibling count `%d` of directory at `%d`: %w",
			count,
			dir,
			err,
		)
	}
	return nil
}

// SlotAddress returns the absolute offset of the record at `position`,
// following as many chain pointers as the position requires.
func SlotAddress(fs *FileSystem, dir Addr, position int) (Byte, error) {
	perBlock := fs.Superblock.SiblingsPerBlock()
	c := fs.chain(dir)
	block, err := c.Hop(position / perBlock)
	if err != nil {
		return 0, fmt.Errorf(
			"locating sibling `%d` of directory at `%d`: %w",
			position,
			dir,
			err,
		)
	}
	return slotOffset(fs, block, position/perBlock, position%perBlock), nil
}

// slotOffset computes the offset of the `i`th record of the block at
// `block`, which is hop `hop` of its chain. Only the first block carries the
// sibling count.
func slotOffset(fs *FileSystem, block Addr, hop, i int) Byte {
	offset := Byte(block) + Byte(i)*SiblingSize
	if hop == 0 {
		offset += SiblingCountSize
	}
	return offset
}

func readSibling(fs *FileSystem, offset Byte, out *Sibling) error {
	buf := new([SiblingSize]byte)
	if err := fs.Volume.ReadAt(offset, buf[:]); err != nil {
		return fmt.Errorf("reading sibling at offset `%d`: %w", offset, err)
	}
	encode.DecodeSibling(out, buf)
	return nil
}

func writeSibling(fs *FileSystem, offset Byte, sibling *Sibling) error {
	buf := new([SiblingSize]byte)
	encode.EncodeSibling(sibling, buf)
	if err := fs.Volume.WriteAt(offset, buf[:]); err != nil {
		return fmt.Errorf(
			"writing sibling `%s` at offset `%d`: %w",
			sibling.Name,
			offset,
			err,
		)
	}
	return nil
}
