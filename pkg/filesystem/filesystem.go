// Package filesystem composes the block store, bitmap, inode table and
// directory encoding into path-based file operations. A FileSystem assumes
// exclusive access to its image; callers serialize calls.
package filesystem

import (
	"fmt"
	stdio "io"

	"github.com/weberc2/afs/pkg/alloc"
	"github.com/weberc2/afs/pkg/alloc/store"
	"github.com/weberc2/afs/pkg/directory"
	"github.com/weberc2/afs/pkg/disk"
	"github.com/weberc2/afs/pkg/encode"
	"github.com/weberc2/afs/pkg/inode"
	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

type FileSystem struct {
	Volume     io.Volume
	Superblock Superblock
	Bitmap     *alloc.Bitmap
	Blocks     *alloc.BlockAllocator
	Inodes     *inode.Table

	dirs   directory.FileSystem
	closer stdio.Closer
}

func newFileSystem(volume io.Volume, superblock Superblock) *FileSystem {
	fs := &FileSystem{Volume: volume, Superblock: superblock}
	fs.Bitmap = alloc.New(
		superblock.BlockCount,
		store.NewVolumeBitmapStore(
			io.NewOffsetVolume(
				volume,
				superblock.BitmapOffset(),
				Byte(superblock.BlockCount),
			),
		),
	)
	fs.Blocks = &alloc.BlockAllocator{
		Bitmap:     fs.Bitmap,
		Volume:     volume,
		Superblock: &fs.Superblock,
	}
	fs.Inodes = inode.New(volume, &fs.Superblock)
	fs.dirs = directory.FileSystem{
		Volume:     volume,
		Superblock: &fs.Superblock,
		Allocator:  fs.Blocks,
	}
	return fs
}

// Open attaches to the image at `path`, or creates and formats a new one
// with the given geometry if nothing exists there. The geometry of an
// existing image comes from its superblock.
func Open(path string, blockSize Byte, blockCount Block) (*FileSystem, error) {
	superblock, err := NewSuperblock(blockSize, blockCount)
	if err != nil {
		return nil, fmt.Errorf("opening image `%s`: %w", path, err)
	}
	d, err := disk.Open(path, superblock.Size())
	if err != nil {
		return nil, fmt.Errorf("opening image `%s`: %w", path, err)
	}

	var fs *FileSystem
	if d.Created() {
		fs, err = Format(d, blockSize, blockCount)
	} else {
		fs, err = Load(d)
	}
	if err != nil {
		if d.Created() {
			// a half-formatted image would be rejected on the next open
			if rmErr := d.Remove(); rmErr != nil {
				err = fmt.Errorf("%w (removing image: %v)", err, rmErr)
			}
		} else {
			d.Close()
		}
		return nil, fmt.Errorf("opening image `%s`: %w", path, err)
	}
	fs.closer = d
	return fs, nil
}

// Format writes a fresh superblock, reserves the system blocks in the
// bitmap and creates the root directory (inode 0) whose "." and ".." both
// point at itself.
func Format(
	volume io.Volume,
	blockSize Byte,
	blockCount Block,
) (*FileSystem, error) {
	superblock, err := NewSuperblock(blockSize, blockCount)
	if err != nil {
		return nil, fmt.Errorf("formatting image: %w", err)
	}
	if err := checkSize(volume, &superblock); err != nil {
		return nil, fmt.Errorf("formatting image: %w", err)
	}

	fs := newFileSystem(volume, superblock)
	if err := writeSuperblock(fs); err != nil {
		return nil, fmt.Errorf("formatting image: %w", err)
	}
	if err := fs.Bitmap.Reset(superblock.SystemBlocks()); err != nil {
		return nil, fmt.Errorf("formatting image: %w", err)
	}

	root, err := fs.Inodes.Create(true)
	if err != nil {
		return nil, fmt.Errorf("formatting image: creating root: %w", err)
	}
	block, err := fs.Blocks.Alloc()
	if err != nil {
		return nil, fmt.Errorf("formatting image: creating root: %w", err)
	}
	if err := directory.Init(&fs.dirs, block, root.Ino, root.Ino); err != nil {
		return nil, fmt.Errorf("formatting image: creating root: %w", err)
	}
	root.FirstAddr = block
	if err := fs.Inodes.Put(&root); err != nil {
		return nil, fmt.Errorf("formatting image: creating root: %w", err)
	}
	return fs, nil
}

// Load validates the superblock of an existing image and rebuilds the
// in-memory bitmap from its mirrored region.
func Load(volume io.Volume) (*FileSystem, error) {
	buf := new([SuperblockSize]byte)
	if err := volume.ReadAt(SuperblockOffset, buf[:]); err != nil {
		return nil, fmt.Errorf(
			"loading image: reading superblock: %v: %w",
			err,
			CorruptImageErr,
		)
	}
	var found Superblock
	if err := encode.DecodeSuperblock(&found, buf); err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}

	superblock, err := NewSuperblock(found.BlockSize, found.BlockCount)
	if err != nil {
		return nil, fmt.Errorf(
			"loading image: %v: %w",
			err,
			CorruptImageErr,
		)
	}
	if found.InodeTableBlocks != superblock.InodeTableBlocks {
		return nil, fmt.Errorf(
			"loading image: inode table of `%d` blocks; wanted `%d`: %w",
			found.InodeTableBlocks,
			superblock.InodeTableBlocks,
			CorruptImageErr,
		)
	}
	if found.InodeCount < 1 || found.InodeCount > superblock.InodeCapacity() {
		return nil, fmt.Errorf(
			"loading image: inode count `%d` outside [1, %d]: %w",
			found.InodeCount,
			superblock.InodeCapacity(),
			CorruptImageErr,
		)
	}
	superblock.InodeCount = found.InodeCount
	if err := checkSize(volume, &superblock); err != nil {
		return nil, fmt.Errorf("loading image: %v: %w", err, CorruptImageErr)
	}

	fs := newFileSystem(volume, superblock)
	if err := fs.Bitmap.Load(); err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}
	var root Inode
	if err := fs.Inodes.Root(&root); err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}
	if !root.Flags.IsDirectory() || root.Flags.IsDeleted() {
		return nil, fmt.Errorf(
			"loading image: root inode has flags `%s`: %w",
			root.Flags,
			CorruptImageErr,
		)
	}
	return fs, nil
}

// Close releases the backing file, if any. The FileSystem must not be used
// afterwards.
func (fs *FileSystem) Close() error {
	if fs.closer == nil {
		return nil
	}
	if err := fs.closer.Close(); err != nil {
		return fmt.Errorf("closing image: %w", err)
	}
	fs.closer = nil
	return nil
}

func writeSuperblock(fs *FileSystem) error {
	buf := new([SuperblockSize]byte)
	encode.EncodeSuperblock(&fs.Superblock, buf)
	if err := fs.Volume.WriteAt(SuperblockOffset, buf[:]); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}
	return nil
}

func checkSize(volume io.Volume, superblock *Superblock) error {
	sizer, ok := volume.(io.Sizer)
	if !ok {
		return nil
	}
	if size := sizer.Size(); size != superblock.Size() {
		return fmt.Errorf(
			"volume has `%d` bytes; geometry requires `%d`: %w",
			size,
			superblock.Size(),
			InvalidGeometryErr,
		)
	}
	return nil
}
