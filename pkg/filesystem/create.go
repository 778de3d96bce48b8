package filesystem

import (
	"errors"
	"fmt"

	"github.com/weberc2/afs/pkg/directory"
	. "github.com/weberc2/afs/pkg/types"
)

// CreateFile creates an empty file or directory at `path`. The parent must
// exist. Free inode and block capacity is checked up front so a failed
// create leaves the image unchanged.
func (fs *FileSystem) CreateFile(path string, isDirectory bool) error {
	if err := fs.createFile(path, isDirectory); err != nil {
		return fmt.Errorf("creating `%s`: %w", path, err)
	}
	return nil
}

func (fs *FileSystem) createFile(path string, isDirectory bool) error {
	components, err := Components(path)
	if err != nil {
		return err
	}
	if len(components) < 1 {
		return AlreadyExistsErr
	}

	var parent Inode
	if err := fs.resolve(components[:len(components)-1], &parent); err != nil {
		return err
	}
	name := components[len(components)-1]
	var existing Inode
	if _, err := fs.lookup(&parent, name, &existing); err == nil {
		return AlreadyExistsErr
	} else if !errors.Is(err, NotFoundErr) {
		return err
	}

	blocks := Block(0)
	if isDirectory {
		blocks++
	}
	grow, err := directory.NeedsBlock(&fs.dirs, parent.FirstAddr)
	if err != nil {
		return err
	}
	if grow {
		blocks++
	}
	if !fs.Inodes.Available() {
		return fmt.Errorf(
			"inode table is full at `%d` records: %w",
			fs.Inodes.Count(),
			ResourceExhaustedErr,
		)
	}
	if !fs.Blocks.Available(blocks) {
		return fmt.Errorf(
			"`%d` blocks required; `%d` free: %w",
			blocks,
			fs.Bitmap.FreeCount(),
			ResourceExhaustedErr,
		)
	}

	inode, err := fs.Inodes.Create(isDirectory)
	if err != nil {
		return err
	}
	if isDirectory {
		block, err := fs.Blocks.Alloc()
		if err != nil {
			return err
		}
		if err := directory.Init(&fs.dirs, block, inode.Ino, parent.Ino); err != nil {
			return err
		}
		inode.FirstAddr = block
		if err := fs.Inodes.Put(&inode); err != nil {
			return err
		}
	}
	return directory.Append(
		&fs.dirs,
		parent.FirstAddr,
		&Sibling{Name: FileName(name), Ino: inode.Ino},
	)
}
