package alloc

import (
	"fmt"

	"github.com/weberc2/afs/pkg/chain"
	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

// BlockAllocator adapts a Bitmap to the address space of a volume. Blocks
// are zeroed as they are handed out so a fresh block always carries a nil
// chain pointer.
type BlockAllocator struct {
	Bitmap     *Bitmap
	Volume     io.Volume
	Superblock *Superblock
}

func (ba *BlockAllocator) Alloc() (Addr, error) {
	block, err := ba.Bitmap.FirstFree()
	if err != nil {
		return AddrNil, fmt.Errorf("allocating block: %w", err)
	}
	addr := ba.Superblock.BlockAddr(block)
	if err := io.Zero(ba.Volume, Byte(addr), ba.Superblock.BlockSize); err != nil {
		return AddrNil, fmt.Errorf("zeroing block `%d`: %w", block, err)
	}
	if err := ba.Bitmap.Reserve(block); err != nil {
		return AddrNil, fmt.Errorf("allocating block: %w", err)
	}
	return addr, nil
}

func (ba *BlockAllocator) Free(addr Addr) error {
	return ba.Bitmap.Free(ba.Superblock.AddrBlock(addr))
}

// Available reports whether at least `n` blocks are free.
func (ba *BlockAllocator) Available(n Block) bool {
	return ba.Bitmap.FreeCount() >= n
}

// FreeChain releases every block of `c` and clears each block's trailing
// pointer.
func (ba *BlockAllocator) FreeChain(c *chain.Chain) error {
	if err := c.Walk(func(_ int, addr Addr) error {
		if err := ba.Free(addr); err != nil {
			return err
		}
		return c.SetNext(addr, AddrNil)
	}); err != nil {
		return fmt.Errorf("freeing chain at `%d`: %w", c.Head, err)
	}
	return nil
}
