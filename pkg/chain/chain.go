// Package chain models a file's or directory's content as a linked sequence
// of blocks. The trailing `AddrSize` bytes of every block hold the address
// of the next block; `AddrNil` terminates the chain.
package chain

import (
	"fmt"

	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

type Chain struct {
	Volume     io.Volume
	Superblock *Superblock
	Head       Addr
}

func New(volume io.Volume, superblock *Superblock, head Addr) Chain {
	return Chain{Volume: volume, Superblock: superblock, Head: head}
}

// IsEmpty reports whether the chain has no blocks at all (a file which was
// never written to).
func (c *Chain) IsEmpty() bool {
	return c.Head == AddrEmpty || c.Head == AddrNil
}

// Next returns the address stored in the trailing pointer of `addr`.
func (c *Chain) Next(addr Addr) (Addr, error) {
	next, err := io.ReadAddr(c.Volume, c.pointerOffset(addr))
	if err != nil {
		return AddrNil, fmt.Errorf(
			"reading chain pointer of block at `%d`: %w",
			addr,
			err,
		)
	}
	if next != AddrNil && !c.Superblock.ValidAddr(next) {
		return AddrNil, fmt.Errorf(
			"reading chain pointer of block at `%d`: invalid address `%d`: %w",
			addr,
			next,
			CorruptImageErr,
		)
	}
	return next, nil
}

// SetNext overwrites the trailing pointer of `addr`.
func (c *Chain) SetNext(addr, next Addr) error {
	if err := io.WriteAddr(c.Volume, c.pointerOffset(addr), next); err != nil {
		return fmt.Errorf(
			"linking block at `%d` to `%d`: %w",
			addr,
			next,
			err,
		)
	}
	return nil
}

// Walk calls `f` for each block of the chain in order. A chain longer than
// the image has blocks must contain a cycle and is reported as corrupt.
func (c *Chain) Walk(f func(i int, addr Addr) error) error {
	if c.IsEmpty() {
		return nil
	}
	addr := c.Head
	for i := 0; addr != AddrNil; i++ {
		if i >= int(c.Superblock.BlockCount) {
			return fmt.Errorf(
				"walking chain at `%d`: no terminator after `%d` blocks: %w",
				c.Head,
				i,
				CorruptImageErr,
			)
		}
		// read the pointer first so `f` may rewrite it
		next, err := c.Next(addr)
		if err != nil {
			return fmt.Errorf("walking chain at `%d`: %w", c.Head, err)
		}
		if err := f(i, addr); err != nil {
			return err
		}
		addr = next
	}
	return nil
}

// Hop follows `n` pointers from the head and returns the block reached.
func (c *Chain) Hop(n int) (Addr, error) {
	if c.IsEmpty() {
		return AddrNil, fmt.Errorf(
			"hopping `%d` blocks along an empty chain: %w",
			n,
			CorruptImageErr,
		)
	}
	addr := c.Head
	for i := 0; i < n; i++ {
		next, err := c.Next(addr)
		if err != nil {
			return AddrNil, fmt.Errorf(
				"hopping `%d` blocks from `%d`: %w",
				n,
				c.Head,
				err,
			)
		}
		if next == AddrNil {
			return AddrNil, fmt.Errorf(
				"hopping `%d` blocks from `%d`: chain ends after `%d`: %w",
				n,
				c.Head,
				i+1,
				CorruptImageErr,
			)
		}
		addr = next
	}
	return addr, nil
}

// Tail returns the last block of the chain and the chain's length.
func (c *Chain) Tail() (Addr, int, error) {
	tail, length := AddrNil, 0
	if err := c.Walk(func(i int, addr Addr) error {
		tail, length = addr, i+1
		return nil
	}); err != nil {
		return AddrNil, 0, err
	}
	return tail, length, nil
}

func (c *Chain) Len() (int, error) {
	_, length, err := c.Tail()
	return length, err
}

// Addrs returns the addresses of every block in order.
func (c *Chain) Addrs() ([]Addr, error) {
	var addrs []Addr
	if err := c.Walk(func(_ int, addr Addr) error {
		addrs = append(addrs, addr)
		return nil
	}); err != nil {
		return nil, err
	}
	return addrs, nil
}

// Append links `addr` after the current tail. An empty chain adopts `addr`
// as its head.
func (c *Chain) Append(addr Addr) error {
	if c.IsEmpty() {
		c.Head = addr
		return nil
	}
	tail, _, err := c.Tail()
	if err != nil {
		return fmt.Errorf("appending block `%d` to chain: %w", addr, err)
	}
	if err := c.SetNext(tail, addr); err != nil {
		return fmt.Errorf("appending block `%d` to chain: %w", addr, err)
	}
	return nil
}

func (c *Chain) pointerOffset(addr Addr) Byte {
	return Byte(addr) + c.Superblock.PayloadSize()
}
