package alloc

import . "github.com/weberc2/afs/pkg/types"

// Allocator hands out data blocks by address. Returned blocks are zeroed.
type Allocator interface {
	Alloc() (Addr, error)
	Free(Addr) error
}

var _ Allocator = (*BlockAllocator)(nil)
