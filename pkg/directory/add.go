package directory

import (
	"fmt"

	. "github.com/weberc2/afs/pkg/types"
)

// FreeSlotAddress returns the offset of the first unused record slot. When
// every block of the chain is full it returns `false` and the caller must
// link a new block first.
func FreeSlotAddress(fs *FileSystem, dir Addr) (Byte, bool, error) {
	count, err := Count(fs, dir)
	if err != nil {
		return 0, false, err
	}
	c := fs.chain(dir)
	length, err := c.Len()
	if err != nil {
		return 0, false, fmt.Errorf(
			"finding free slot in directory at `%d`: %w",
			dir,
			err,
		)
	}
	if count >= fs.Superblock.SiblingsPerBlock()*length {
		return 0, false, nil
	}
	offset, err := SlotAddress(fs, dir, count)
	if err != nil {
		return 0, false, err
	}
	return offset, true, nil
}

// NeedsBlock reports whether appending one more sibling would grow the
// chain.
func NeedsBlock(fs *FileSystem, dir Addr) (bool, error) {
	_, ok, err := FreeSlotAddress(fs, dir)
	return !ok, err
}

// Append writes `sibling` into the first free slot, linking a new block
// onto the chain if the last one is full, and persists the new count.
func Append(fs *FileSystem, dir Addr, sibling *Sibling) error {
	offset, ok, err := FreeSlotAddress(fs, dir)
	if err != nil {
		return fmt.Errorf(
			"appending `%s` to directory at `%d`: %w",
			sibling.Name,
			dir,
			err,
		)
	}
	if !ok {
		block, err := fs.Allocator.Alloc()
		if err != nil {
			return fmt.Errorf(
				"appending `%s` to directory at `%d`: growing chain: %w",
				sibling.Name,
				dir,
				err,
			)
		}
		c := fs.chain(dir)
		if err := c.Append(block); err != nil {
			return fmt.Errorf(
				"appending `%s` to directory at `%d`: growing chain: %w",
				sibling.Name,
				dir,
				err,
			)
		}
		offset = slotOffset(fs, block, 1, 0)
	}

	if err := writeSibling(fs, offset, sibling); err != nil {
		return fmt.Errorf(
			"appending `%s` to directory at `%d`: %w",
			sibling.Name,
			dir,
			err,
		)
	}
	count, err := Count(fs, dir)
	if err != nil {
		return fmt.Errorf(
			"appending `%s` to directory at `%d`: %w",
			sibling.Name,
			dir,
			err,
		)
	}
	if err := setCount(fs, dir, count+1); err != nil {
		return fmt.Errorf(
			"appending `%s` to directory at `%d`: %w",
			sibling.Name,
			dir,
			err,
		)
	}
	return nil
}
