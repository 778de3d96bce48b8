package directory

import (
	"github.com/weberc2/afs/pkg/alloc"
	"github.com/weberc2/afs/pkg/chain"
	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

// FileSystem carries what the directory operations need from an open image.
type FileSystem struct {
	Volume     io.Volume
	Superblock *Superblock
	Allocator  alloc.Allocator
}

func (fs *FileSystem) chain(dir Addr) chain.Chain {
	return chain.New(fs.Volume, fs.Superblock, dir)
}
