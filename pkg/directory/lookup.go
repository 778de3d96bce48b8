package directory

import (
	"fmt"

	. "github.com/weberc2/afs/pkg/types"
)

func SiblingAt(fs *FileSystem, dir Addr, position int, out *Sibling) error {
	offset, err := SlotAddress(fs, dir, position)
	if err != nil {
		return err
	}
	return readSibling(fs, offset, out)
}

// SiblingNamed scans the directory for `name` (truncated the way names are
// stored) and returns the record's position.
func SiblingNamed(
	fs *FileSystem,
	dir Addr,
	name string,
	out *Sibling,
) (int, error) {
	name = FileName(name)
	found := -1
	if err := walk(fs, dir, func(position int, sibling *Sibling) bool {
		if sibling.Name == name {
			*out = *sibling
			found = position
			return false
		}
		return true
	}); err != nil {
		return 0, fmt.Errorf(
			"looking up `%s` in directory at `%d`: %w",
			name,
			dir,
			err,
		)
	}
	if found < 0 {
		return 0, fmt.Errorf(
			"looking up `%s` in directory at `%d`: %w",
			name,
			dir,
			NotFoundErr,
		)
	}
	return found, nil
}

// List returns every record in chain order, "." and ".." included.
func List(fs *FileSystem, dir Addr) ([]Sibling, error) {
	var siblings []Sibling
	if err := walk(fs, dir, func(_ int, sibling *Sibling) bool {
		siblings = append(siblings, *sibling)
		return true
	}); err != nil {
		return nil, fmt.Errorf("listing directory at `%d`: %w", dir, err)
	}
	return siblings, nil
}

// walk visits records in order, following each chain pointer once rather
// than hopping from the head for every position. `f` returns false to stop.
func walk(
	fs *FileSystem,
	dir Addr,
	f func(position int, sibling *Sibling) bool,
) error {
	count, err := Count(fs, dir)
	if err != nil {
		return err
	}
	perBlock := fs.Superblock.SiblingsPerBlock()
	c := fs.chain(dir)
	block := dir
	var sibling Sibling
	for position := 0; position < count; position++ {
		hop, i := position/perBlock, position%perBlock
		if hop > 0 && i == 0 {
			if block, err = c.Next(block); err != nil {
				return err
			}
			if block == AddrNil {
				return fmt.Errorf(
					"sibling `%d` of `%d` lies past the end of the chain: %w",
					position,
					count,
					CorruptImageErr,
				)
			}
		}
		if err := readSibling(fs, slotOffset(fs, block, hop, i), &sibling); err != nil {
			return err
		}
		if !f(position, &sibling) {
			return nil
		}
	}
	return nil
}
