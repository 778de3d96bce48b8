package io

import (
	"fmt"

	. "github.com/weberc2/afs/pkg/types"
)

// Buffer is an in-memory Volume of fixed size.
type Buffer struct {
	data []byte
}

func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

func (b *Buffer) ReadAt(offset Byte, p []byte) error {
	if err := CheckBounds(Byte(len(b.data)), offset, Byte(len(p))); err != nil {
		return fmt.Errorf(
			"reading `%d` bytes from buffer at offset `%d`: %w",
			len(p),
			offset,
			err,
		)
	}
	copy(p, b.data[offset:offset+Byte(len(p))])
	return nil
}

func (b *Buffer) WriteAt(offset Byte, p []byte) error {
	if err := CheckBounds(Byte(len(b.data)), offset, Byte(len(p))); err != nil {
		return fmt.Errorf(
			"writing `%d` bytes to buffer at offset `%d`: %w",
			len(p),
			offset,
			err,
		)
	}
	copy(b.data[offset:offset+Byte(len(p))], p)
	return nil
}

func (b *Buffer) Bytes() []byte { return b.data }

func (b *Buffer) Size() Byte { return Byte(len(b.data)) }

// CheckBounds validates that `[offset, offset+length)` lies within a region
// of `size` bytes.
func CheckBounds(size, offset, length Byte) error {
	if offset < 0 || length < 0 || offset+length > size {
		return fmt.Errorf(
			"range [%d, %d) of region with size `%d`: %w",
			offset,
			offset+length,
			size,
			OutOfBoundsErr,
		)
	}
	return nil
}
