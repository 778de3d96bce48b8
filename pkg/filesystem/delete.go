package filesystem

import (
	"fmt"

	"github.com/weberc2/afs/pkg/chain"
	"github.com/weberc2/afs/pkg/directory"
	. "github.com/weberc2/afs/pkg/types"
)

// DeleteFile removes the file or directory at `path`. A directory is
// removed along with every descendant: each inode is flagged as deleted and
// each block chain is freed. The root cannot be deleted.
func (fs *FileSystem) DeleteFile(path string) error {
	if err := fs.deleteFile(path); err != nil {
		return fmt.Errorf("deleting `%s`: %w", path, err)
	}
	return nil
}

func (fs *FileSystem) deleteFile(path string) error {
	components, err := Components(path)
	if err != nil {
		return err
	}
	if len(components) < 1 {
		return fmt.Errorf("root: %w", InvalidOperationErr)
	}
	name := components[len(components)-1]
	if IsDotEntry(name) {
		return fmt.Errorf("`%s` entry: %w", name, InvalidOperationErr)
	}

	var parent, target Inode
	if err := fs.resolve(components[:len(components)-1], &parent); err != nil {
		return err
	}
	position, err := fs.lookup(&parent, name, &target)
	if err != nil {
		return err
	}

	// depth-first over an explicit stack; a directory's siblings are
	// listed before its own chain is freed
	stack := []Inode{target}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current.Flags.IsDirectory() && current.HasContent() {
			siblings, err := directory.List(&fs.dirs, current.FirstAddr)
			if err != nil {
				return err
			}
			for _, sibling := range siblings {
				if IsDotEntry(sibling.Name) {
					continue
				}
				var child Inode
				if err := fs.Inodes.Get(sibling.Ino, &child); err != nil {
					return err
				}
				stack = append(stack, child)
			}
		}

		if err := fs.release(&current); err != nil {
			return err
		}
	}

	return directory.Remove(&fs.dirs, parent.FirstAddr, position)
}

// release frees the inode's block chain and flags the inode as deleted.
func (fs *FileSystem) release(inode *Inode) error {
	if inode.HasContent() {
		c := chain.New(fs.Volume, &fs.Superblock, inode.FirstAddr)
		if err := fs.Blocks.FreeChain(&c); err != nil {
			return err
		}
	}
	return fs.Inodes.Delete(inode)
}
