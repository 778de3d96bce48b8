package directory

import (
	"fmt"

	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

// Remove deletes the record at `position` by moving the last record into
// its slot; sibling order is not preserved. If the move empties the last
// block of the chain (and it isn't the first block), that block is
// unlinked and freed.
func Remove(fs *FileSystem, dir Addr, position int) error {
	count, err := Count(fs, dir)
	if err != nil {
		return fmt.Errorf(
			"removing sibling `%d` from directory at `%d`: %w",
			position,
			dir,
			err,
		)
	}
	if position < 0 || position >= count {
		return fmt.Errorf(
			"removing sibling `%d` of `%d` from directory at `%d`: %w",
			position,
			count,
			dir,
			OutOfBoundsErr,
		)
	}

	last := count - 1
	lastOffset, err := SlotAddress(fs, dir, last)
	if err != nil {
		return fmt.Errorf(
			"removing sibling `%d` from directory at `%d`: %w",
			position,
			dir,
			err,
		)
	}
	if position != last {
		var moved Sibling
		if err := readSibling(fs, lastOffset, &moved); err != nil {
			return fmt.Errorf(
				"removing sibling `%d` from directory at `%d`: %w",
				position,
				dir,
				err,
			)
		}
		offset, err := SlotAddress(fs, dir, position)
		if err != nil {
			return fmt.Errorf(
				"removing sibling `%d` from directory at `%d`: %w",
				position,
				dir,
				err,
			)
		}
		if err := writeSibling(fs, offset, &moved); err != nil {
			return fmt.Errorf(
				"removing sibling `%d` from directory at `%d`: %w",
				position,
				dir,
				err,
			)
		}
	}
	if err := io.Zero(fs.Volume, lastOffset, SiblingSize); err != nil {
		return fmt.Errorf(
			"removing sibling `%d` from directory at `%d`: zeroing slot: %w",
			position,
			dir,
			err,
		)
	}
	if err := setCount(fs, dir, last); err != nil {
		return fmt.Errorf(
			"removing sibling `%d` from directory at `%d`: %w",
			position,
			dir,
			err,
		)
	}

	if perBlock := fs.Superblock.SiblingsPerBlock(); last%perBlock == 0 &&
		last/perBlock > 0 {
		if err := shrink(fs, dir, last/perBlock); err != nil {
			return fmt.Errorf(
				"removing sibling `%d` from directory at `%d`: %w",
				position,
				dir,
				err,
			)
		}
	}
	return nil
}

// shrink frees the (now empty) block at hop `hop` and terminates the chain
// at the block before it.
func shrink(fs *FileSystem, dir Addr, hop int) error {
	c := fs.chain(dir)
	prev, err := c.Hop(hop - 1)
	if err != nil {
		return fmt.Errorf("shrinking directory chain: %w", err)
	}
	empty, err := c.Next(prev)
	if err != nil {
		return fmt.Errorf("shrinking directory chain: %w", err)
	}
	if err := c.SetNext(prev, AddrNil); err != nil {
		return fmt.Errorf("shrinking directory chain: %w", err)
	}
	if err := fs.Allocator.Free(empty); err != nil {
		return fmt.Errorf("shrinking directory chain: %w", err)
	}
	return nil
}
