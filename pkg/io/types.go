package io

import (
	. "github.com/weberc2/afs/pkg/types"
)

type ReadAt interface {
	ReadAt(offset Byte, b []byte) error
}

type WriteAt interface {
	WriteAt(offset Byte, p []byte) error
}

// Volume is a fixed-size, byte-addressed region. Writes are visible to all
// subsequent reads; implementations do not buffer.
type Volume interface {
	ReadAt
	WriteAt
}

// Sizer is implemented by volumes which know their own size, letting a
// loader check an image against the geometry its superblock claims.
type Sizer interface {
	Size() Byte
}
