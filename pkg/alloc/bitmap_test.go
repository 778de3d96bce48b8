package alloc_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/weberc2/afs/pkg/alloc"
	"github.com/weberc2/afs/pkg/alloc/store"
	"github.com/weberc2/afs/pkg/chain"
	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

type fixture struct {
	volume     *io.Buffer
	superblock Superblock
	bitmap     *alloc.Bitmap
	allocator  alloc.BlockAllocator
}

func newFixture(t *testing.T) *fixture {
	superblock, err := NewSuperblock(128, 64)
	if err != nil {
		t.Fatalf("NewSuperblock(): unexpected err: %v", err)
	}
	volume := io.NewBuffer(make([]byte, superblock.Size()))
	bitmap := alloc.New(
		superblock.BlockCount,
		store.NewVolumeBitmapStore(
			io.NewOffsetVolume(
				volume,
				superblock.BitmapOffset(),
				Byte(superblock.BlockCount),
			),
		),
	)
	if err := bitmap.Reset(superblock.SystemBlocks()); err != nil {
		t.Fatalf("Bitmap.Reset(): unexpected err: %v", err)
	}
	f := &fixture{volume: volume, superblock: superblock, bitmap: bitmap}
	f.allocator = alloc.BlockAllocator{
		Bitmap:     bitmap,
		Volume:     volume,
		Superblock: &f.superblock,
	}
	return f
}

func (f *fixture) entry(block Block) byte {
	return f.volume.Bytes()[f.superblock.BitmapOffset()+Byte(block)]
}

func TestResetReservesSystemBlocks(t *testing.T) {
	f := newFixture(t)
	system := f.superblock.SystemBlocks()
	for block := Block(0); block < f.superblock.BlockCount; block++ {
		wanted := alloc.EntryFree
		if block < system {
			wanted = alloc.EntryUsed
		}
		if found := f.entry(block); found != wanted {
			t.Fatalf(
				"bitmap entry `%d`: wanted `%d`; found `%d`",
				block,
				wanted,
				found,
			)
		}
	}
	if f.bitmap.Used() != system {
		t.Fatalf("Used(): wanted `%d`; found `%d`", system, f.bitmap.Used())
	}
}

func TestAllocFirstFit(t *testing.T) {
	f := newFixture(t)
	system := f.superblock.SystemBlocks()

	for i := Block(0); i < 3; i++ {
		block, err := f.bitmap.Alloc()
		if err != nil {
			t.Fatalf("Alloc(): unexpected err: %v", err)
		}
		if block != system+i {
			t.Fatalf("Alloc(): wanted `%d`; found `%d`", system+i, block)
		}
	}

	// freeing a low block makes it the next candidate
	if err := f.bitmap.Free(system); err != nil {
		t.Fatalf("Free(): unexpected err: %v", err)
	}
	if f.entry(system) != alloc.EntryFree {
		t.Fatalf("Free(): entry `%d` was not written through", system)
	}
	block, err := f.bitmap.Alloc()
	if err != nil {
		t.Fatalf("Alloc(): unexpected err: %v", err)
	}
	if block != system {
		t.Fatalf("Alloc(): wanted `%d`; found `%d`", system, block)
	}
}

func TestAllocExhausted(t *testing.T) {
	f := newFixture(t)
	for f.bitmap.FreeCount() > 0 {
		if _, err := f.bitmap.Alloc(); err != nil {
			t.Fatalf("Alloc(): unexpected err: %v", err)
		}
	}
	if _, err := f.bitmap.Alloc(); !errors.Is(err, ResourceExhaustedErr) {
		t.Fatalf("Alloc(): wanted `%v`; found `%v`", ResourceExhaustedErr, err)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	f := newFixture(t)
	if _, err := f.bitmap.Alloc(); err != nil {
		t.Fatalf("Alloc(): unexpected err: %v", err)
	}

	loaded := alloc.New(
		f.superblock.BlockCount,
		store.NewVolumeBitmapStore(
			io.NewOffsetVolume(
				f.volume,
				f.superblock.BitmapOffset(),
				Byte(f.superblock.BlockCount),
			),
		),
	)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load(): unexpected err: %v", err)
	}
	if loaded.Used() != f.bitmap.Used() {
		t.Fatalf(
			"Used(): wanted `%d`; found `%d`",
			f.bitmap.Used(),
			loaded.Used(),
		)
	}
}

func TestBlockAllocatorZeroesBlocks(t *testing.T) {
	f := newFixture(t)
	first := f.superblock.SystemBlocks()
	addr := f.superblock.BlockAddr(first)
	garbage := bytes.Repeat([]byte{0xff}, int(f.superblock.BlockSize))
	if err := f.volume.WriteAt(Byte(addr), garbage); err != nil {
		t.Fatalf("WriteAt(): unexpected err: %v", err)
	}

	found, err := f.allocator.Alloc()
	if err != nil {
		t.Fatalf("BlockAllocator.Alloc(): unexpected err: %v", err)
	}
	if found != addr {
		t.Fatalf("BlockAllocator.Alloc(): wanted `%d`; found `%d`", addr, found)
	}
	block := f.volume.Bytes()[Byte(addr) : Byte(addr)+f.superblock.BlockSize]
	if !bytes.Equal(block, make([]byte, f.superblock.BlockSize)) {
		t.Fatalf("BlockAllocator.Alloc(): block was not zeroed: `%#x`", block)
	}
}

func TestFreeChain(t *testing.T) {
	f := newFixture(t)
	used := f.bitmap.Used()

	c := chain.New(f.volume, &f.superblock, AddrEmpty)
	for i := 0; i < 3; i++ {
		addr, err := f.allocator.Alloc()
		if err != nil {
			t.Fatalf("BlockAllocator.Alloc(): unexpected err: %v", err)
		}
		if err := c.Append(addr); err != nil {
			t.Fatalf("Chain.Append(): unexpected err: %v", err)
		}
	}
	addrs, err := c.Addrs()
	if err != nil {
		t.Fatalf("Chain.Addrs(): unexpected err: %v", err)
	}

	if err := f.allocator.FreeChain(&c); err != nil {
		t.Fatalf("FreeChain(): unexpected err: %v", err)
	}
	if f.bitmap.Used() != used {
		t.Fatalf("Used(): wanted `%d`; found `%d`", used, f.bitmap.Used())
	}
	for _, addr := range addrs {
		next, err := c.Next(addr)
		if err != nil {
			t.Fatalf("Chain.Next(): unexpected err: %v", err)
		}
		if next != AddrNil {
			t.Fatalf(
				"trailing pointer of `%d`: wanted `0`; found `%d`",
				addr,
				next,
			)
		}
	}
}
