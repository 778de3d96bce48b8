package filesystem

import (
	"fmt"

	"github.com/weberc2/afs/pkg/chain"
	"github.com/weberc2/afs/pkg/math"
	. "github.com/weberc2/afs/pkg/types"
)

// AppendContent appends `data` to the file at `path`, filling the tail
// block before linking new ones. The inode is written once, after all of
// the data.
func (fs *FileSystem) AppendContent(path string, data []byte) error {
	var inode Inode
	if err := fs.ResolveInode(path, &inode); err != nil {
		return fmt.Errorf("appending to `%s`: %w", path, err)
	}
	if err := fs.appendContent(&inode, data); err != nil {
		return fmt.Errorf("appending to `%s`: %w", path, err)
	}
	return nil
}

func (fs *FileSystem) appendContent(inode *Inode, data []byte) error {
	if inode.Flags.IsDirectory() {
		return fmt.Errorf("inode `%d` is a directory: %w", inode.Ino, InvalidOperationErr)
	}
	if len(data) < 1 {
		return nil
	}

	payload := fs.Superblock.PayloadSize()
	c := chain.New(fs.Volume, &fs.Superblock, inode.FirstAddr)
	tail, used := AddrNil, payload
	if !c.IsEmpty() {
		var length int
		var err error
		if tail, length, err = c.Tail(); err != nil {
			return err
		}
		if want := int(math.DivRoundUp(inode.Size, payload)); length != want {
			return fmt.Errorf(
				"inode `%d` of `%d` bytes has `%d` blocks; wanted `%d`: %w",
				inode.Ino,
				inode.Size,
				length,
				want,
				CorruptImageErr,
			)
		}
		used = inode.Size - Byte(length-1)*payload
	}

	if required := Block(math.DivRoundUp(
		math.Max(Byte(len(data))-(payload-used), 0),
		payload,
	)); !fs.Blocks.Available(required) {
		return fmt.Errorf(
			"`%d` blocks required; `%d` free: %w",
			required,
			fs.Bitmap.FreeCount(),
			ResourceExhaustedErr,
		)
	}

	for remaining := data; len(remaining) > 0; {
		if used == payload {
			block, err := fs.Blocks.Alloc()
			if err != nil {
				return err
			}
			if err := c.Append(block); err != nil {
				return err
			}
			tail, used = block, 0
		}
		n := math.Min(payload-used, Byte(len(remaining)))
		if err := fs.Volume.WriteAt(Byte(tail)+used, remaining[:n]); err != nil {
			return err
		}
		used += n
		remaining = remaining[n:]
	}

	inode.FirstAddr = c.Head
	inode.Size += Byte(len(data))
	return fs.Inodes.Put(inode)
}

// GetContent reads the whole file at `path`.
func (fs *FileSystem) GetContent(path string) ([]byte, error) {
	var inode Inode
	if err := fs.ResolveInode(path, &inode); err != nil {
		return nil, fmt.Errorf("reading `%s`: %w", path, err)
	}
	data, err := fs.getContent(&inode)
	if err != nil {
		return nil, fmt.Errorf("reading `%s`: %w", path, err)
	}
	return data, nil
}

func (fs *FileSystem) getContent(inode *Inode) ([]byte, error) {
	if inode.Flags.IsDirectory() {
		return nil, fmt.Errorf("inode `%d` is a directory: %w", inode.Ino, InvalidOperationErr)
	}
	data := make([]byte, inode.Size)
	if inode.Size < 1 {
		return data, nil
	}

	payload := fs.Superblock.PayloadSize()
	var read Byte
	c := chain.New(fs.Volume, &fs.Superblock, inode.FirstAddr)
	if err := c.Walk(func(_ int, addr Addr) error {
		if read >= inode.Size {
			return fmt.Errorf(
				"inode `%d` chain continues past `%d` bytes: %w",
				inode.Ino,
				inode.Size,
				CorruptImageErr,
			)
		}
		n := math.Min(payload, inode.Size-read)
		if err := fs.Volume.ReadAt(Byte(addr), data[read:read+n]); err != nil {
			return err
		}
		read += n
		return nil
	}); err != nil {
		return nil, err
	}
	if read < inode.Size {
		return nil, fmt.Errorf(
			"inode `%d` chain ends after `%d` of `%d` bytes: %w",
			inode.Ino,
			read,
			inode.Size,
			CorruptImageErr,
		)
	}
	return data, nil
}
