package chain

import (
	"errors"
	"reflect"
	"testing"

	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

func testChain(t *testing.T, head Addr) Chain {
	superblock, err := NewSuperblock(128, 64)
	if err != nil {
		t.Fatalf("NewSuperblock(): unexpected err: %v", err)
	}
	volume := io.NewBuffer(make([]byte, superblock.Size()))
	return New(volume, &superblock, head)
}

func blockAddr(c *Chain, block Block) Addr {
	return c.Superblock.BlockAddr(block)
}

func TestAppendWalkHop(t *testing.T) {
	c := testChain(t, AddrEmpty)
	if !c.IsEmpty() {
		t.Fatalf("IsEmpty(): wanted `true` for head `%d`", c.Head)
	}

	wanted := []Addr{
		blockAddr(&c, 40),
		blockAddr(&c, 33),
		blockAddr(&c, 63),
	}
	for _, addr := range wanted {
		if err := c.Append(addr); err != nil {
			t.Fatalf("Append(%d): unexpected err: %v", addr, err)
		}
	}

	found, err := c.Addrs()
	if err != nil {
		t.Fatalf("Addrs(): unexpected err: %v", err)
	}
	if !reflect.DeepEqual(wanted, found) {
		t.Fatalf("Addrs(): wanted `%v`; found `%v`", wanted, found)
	}

	tail, length, err := c.Tail()
	if err != nil {
		t.Fatalf("Tail(): unexpected err: %v", err)
	}
	if tail != wanted[2] || length != 3 {
		t.Fatalf(
			"Tail(): wanted (`%d`, `3`); found (`%d`, `%d`)",
			wanted[2],
			tail,
			length,
		)
	}

	for i, addr := range wanted {
		found, err := c.Hop(i)
		if err != nil {
			t.Fatalf("Hop(%d): unexpected err: %v", i, err)
		}
		if found != addr {
			t.Fatalf("Hop(%d): wanted `%d`; found `%d`", i, addr, found)
		}
	}

	if _, err := c.Hop(3); !errors.Is(err, CorruptImageErr) {
		t.Fatalf("Hop(3): wanted `%v`; found `%v`", CorruptImageErr, err)
	}
}

func TestTrailingPointerLayout(t *testing.T) {
	c := testChain(t, AddrEmpty)
	first, second := blockAddr(&c, 40), blockAddr(&c, 41)
	if err := c.Append(first); err != nil {
		t.Fatalf("Append(): unexpected err: %v", err)
	}
	if err := c.Append(second); err != nil {
		t.Fatalf("Append(): unexpected err: %v", err)
	}

	found, err := io.ReadAddr(c.Volume, Byte(first)+c.Superblock.BlockSize-AddrSize)
	if err != nil {
		t.Fatalf("ReadAddr(): unexpected err: %v", err)
	}
	if found != second {
		t.Fatalf("trailing pointer: wanted `%d`; found `%d`", second, found)
	}
}

func TestWalkDetectsCycles(t *testing.T) {
	c := testChain(t, AddrEmpty)
	a, b := blockAddr(&c, 40), blockAddr(&c, 41)
	if err := c.Append(a); err != nil {
		t.Fatalf("Append(): unexpected err: %v", err)
	}
	if err := c.Append(b); err != nil {
		t.Fatalf("Append(): unexpected err: %v", err)
	}
	if err := c.SetNext(b, a); err != nil {
		t.Fatalf("SetNext(): unexpected err: %v", err)
	}

	if _, err := c.Len(); !errors.Is(err, CorruptImageErr) {
		t.Fatalf("Len(): wanted `%v`; found `%v`", CorruptImageErr, err)
	}
}

func TestNextRejectsSystemBlocks(t *testing.T) {
	c := testChain(t, AddrEmpty)
	head := blockAddr(&c, 40)
	if err := c.Append(head); err != nil {
		t.Fatalf("Append(): unexpected err: %v", err)
	}
	// point into the inode table
	if err := c.SetNext(head, blockAddr(&c, 2)); err != nil {
		t.Fatalf("SetNext(): unexpected err: %v", err)
	}
	if _, err := c.Next(head); !errors.Is(err, CorruptImageErr) {
		t.Fatalf("Next(): wanted `%v`; found `%v`", CorruptImageErr, err)
	}
}
