package filesystem

import (
	"fmt"

	"github.com/weberc2/afs/pkg/chain"
	"github.com/weberc2/afs/pkg/directory"
	. "github.com/weberc2/afs/pkg/types"
)

// ListDir returns the siblings of the directory at `path` in chain order,
// "." and ".." included.
func (fs *FileSystem) ListDir(path string) ([]Entry, error) {
	var dir Inode
	if err := fs.ResolveInode(path, &dir); err != nil {
		return nil, fmt.Errorf("listing `%s`: %w", path, err)
	}
	entries, err := fs.listDir(&dir)
	if err != nil {
		return nil, fmt.Errorf("listing `%s`: %w", path, err)
	}
	return entries, nil
}

func (fs *FileSystem) listDir(dir *Inode) ([]Entry, error) {
	if dir.Flags.IsDeleted() || !dir.Flags.IsDirectory() {
		return nil, fmt.Errorf(
			"inode `%d` has flags `%s`: %w",
			dir.Ino,
			dir.Flags,
			InvalidOperationErr,
		)
	}
	siblings, err := directory.List(&fs.dirs, dir.FirstAddr)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(siblings))
	for i, sibling := range siblings {
		var inode Inode
		if err := fs.Inodes.Get(sibling.Ino, &inode); err != nil {
			return nil, err
		}
		entries[i] = Entry{
			Name:        sibling.Name,
			Size:        inode.Size,
			IsDirectory: inode.Flags.IsDirectory(),
		}
	}
	return entries, nil
}

// Stat describes the inode at `path` along with the length of its chain.
func (fs *FileSystem) Stat(path string) (Stat, error) {
	components, err := Components(path)
	if err != nil {
		return Stat{}, err
	}
	var inode Inode
	if err := fs.resolve(components, &inode); err != nil {
		return Stat{}, fmt.Errorf("stat `%s`: %w", path, err)
	}
	c := chain.New(fs.Volume, &fs.Superblock, inode.FirstAddr)
	blocks, err := c.Len()
	if err != nil {
		return Stat{}, fmt.Errorf("stat `%s`: %w", path, err)
	}
	name := "/"
	if len(components) > 0 {
		name = FileName(components[len(components)-1])
	}
	return Stat{
		Ino:       inode.Ino,
		Name:      name,
		Flags:     inode.Flags,
		Size:      inode.Size,
		FirstAddr: inode.FirstAddr,
		Blocks:    blocks,
	}, nil
}

// Usage reports block and inode consumption. Live inodes are counted by
// scanning the table.
func (fs *FileSystem) Usage() (Usage, error) {
	live, err := fs.Inodes.Live()
	if err != nil {
		return Usage{}, fmt.Errorf("computing usage: %w", err)
	}
	used := fs.Bitmap.Used()
	return Usage{
		BlockSize:     fs.Superblock.BlockSize,
		BlockCount:    fs.Superblock.BlockCount,
		SystemBlocks:  fs.Superblock.SystemBlocks(),
		UsedBlocks:    used,
		FreeBlocks:    fs.Superblock.BlockCount - used,
		InodeCount:    fs.Inodes.Count(),
		InodeCapacity: fs.Superblock.InodeCapacity(),
		LiveInodes:    live,
	}, nil
}
