package io

import (
	"fmt"

	. "github.com/weberc2/afs/pkg/types"
)

// OffsetVolume exposes `size` bytes of `inner` starting at `offset` as a
// volume of its own, e.g. the bitmap or the inode table. Accesses past the
// end of the region fail with OutOfBoundsErr even when `inner` is larger.
type OffsetVolume struct {
	inner  Volume
	offset Byte
	size   Byte
}

func NewOffsetVolume(inner Volume, offset, size Byte) *OffsetVolume {
	return &OffsetVolume{inner: inner, offset: offset, size: size}
}

func (v *OffsetVolume) Size() Byte { return v.size }

func (v *OffsetVolume) ReadAt(offset Byte, b []byte) error {
	if err := CheckBounds(v.size, offset, Byte(len(b))); err != nil {
		return fmt.Errorf("reading region at `%d`: %w", v.offset, err)
	}
	if err := v.inner.ReadAt(offset+v.offset, b); err != nil {
		return fmt.Errorf("reading region at `%d`: %w", v.offset, err)
	}
	return nil
}

func (v *OffsetVolume) WriteAt(offset Byte, b []byte) error {
	if err := CheckBounds(v.size, offset, Byte(len(b))); err != nil {
		return fmt.Errorf("writing region at `%d`: %w", v.offset, err)
	}
	if err := v.inner.WriteAt(offset+v.offset, b); err != nil {
		return fmt.Errorf("writing region at `%d`: %w", v.offset, err)
	}
	return nil
}
