package alloc

import (
	"fmt"

	. "github.com/weberc2/afs/pkg/types"
)

const (
	EntryFree byte = 0
	EntryUsed byte = 1
)

// BitmapStore persists bitmap entries. `Put` is called on every change so
// the image never lags the in-memory view.
type BitmapStore interface {
	Put(block Block, entry byte) error
	PutAll(entries []byte) error
	Load(entries []byte) error
}

// Bitmap tracks one byte per block of the image. Any nonzero entry marks the
// block as in use.
type Bitmap struct {
	entries []byte
	store   BitmapStore
}

func New(blockCount Block, store BitmapStore) *Bitmap {
	return &Bitmap{entries: make([]byte, blockCount), store: store}
}

// Reset marks the first `reserved` blocks as used and every other block as
// free, then writes the whole bitmap.
func (bm *Bitmap) Reset(reserved Block) error {
	for i := range bm.entries {
		bm.entries[i] = EntryFree
		if Block(i) < reserved {
			bm.entries[i] = EntryUsed
		}
	}
	if err := bm.store.PutAll(bm.entries); err != nil {
		return fmt.Errorf("resetting bitmap: %w", err)
	}
	return nil
}

// Load reads the persisted entries into memory.
func (bm *Bitmap) Load() error {
	if err := bm.store.Load(bm.entries); err != nil {
		return fmt.Errorf("loading bitmap: %w", err)
	}
	return nil
}

// FirstFree returns the lowest-numbered free block.
func (bm *Bitmap) FirstFree() (Block, error) {
	for i, entry := range bm.entries {
		if entry == EntryFree {
			return Block(i), nil
		}
	}
	return 0, fmt.Errorf(
		"searching `%d` blocks for a free block: %w",
		len(bm.entries),
		ResourceExhaustedErr,
	)
}

// Alloc reserves and returns the lowest-numbered free block.
func (bm *Bitmap) Alloc() (Block, error) {
	block, err := bm.FirstFree()
	if err != nil {
		return 0, err
	}
	if err := bm.Reserve(block); err != nil {
		return 0, err
	}
	return block, nil
}

func (bm *Bitmap) Reserve(block Block) error {
	return bm.set(block, EntryUsed)
}

func (bm *Bitmap) Free(block Block) error {
	return bm.set(block, EntryFree)
}

func (bm *Bitmap) IsUsed(block Block) bool {
	return int(block) < len(bm.entries) && bm.entries[block] != EntryFree
}

// Used returns the number of blocks in use, system blocks included.
func (bm *Bitmap) Used() Block {
	var used Block
	for _, entry := range bm.entries {
		if entry != EntryFree {
			used++
		}
	}
	return used
}

func (bm *Bitmap) FreeCount() Block {
	return Block(len(bm.entries)) - bm.Used()
}

func (bm *Bitmap) Len() Block { return Block(len(bm.entries)) }

func (bm *Bitmap) set(block Block, entry byte) error {
	if int(block) >= len(bm.entries) {
		return fmt.Errorf(
			"setting bitmap entry `%d` of `%d`: %w",
			block,
			len(bm.entries),
			OutOfBoundsErr,
		)
	}
	if err := bm.store.Put(block, entry); err != nil {
		return fmt.Errorf("setting bitmap entry `%d`: %w", block, err)
	}
	bm.entries[block] = entry
	return nil
}
