package types

// Block is the number of a block within an image.
type Block uint32

// Addr is the byte offset of a block's start (`Block * BlockSize`). It is
// stored on disk as a 32-bit little endian value.
type Addr uint32

const (
	// AddrNil terminates a block chain. Block 0 always holds the
	// superblock, so no chain can ever link to it.
	AddrNil Addr = 0

	// AddrEmpty marks an inode which has no content block yet.
	AddrEmpty Addr = 0xFFFFFFFF

	AddrSize Byte = Size32
)
