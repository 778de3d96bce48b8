package types

import (
	"fmt"
	stdmath "math"

	"github.com/weberc2/afs/pkg/math"
)

const (
	SuperblockMagic         = "AFS"
	SuperblockVersion uint8 = 0x01
	SuperblockOffset  Byte  = 0
	SuperblockSize    Byte  = 16
	DefaultBlockSize  Byte  = 4096
	DefaultBlockCount Block = 4096

	// MinBlockSize leaves room for both "." and ".." in the first block of
	// a directory.
	MinBlockSize Byte = 128

	maxImageSize uint64 = stdmath.MaxUint32
)

// Superblock describes the geometry of an image. It lives at offset 0 and
// only `InodeCount` changes after formatting.
type Superblock struct {
	BlockSize        Byte
	BlockCount       Block
	InodeCount       Ino
	InodeTableBlocks Block
}

// NewSuperblock computes the geometry of a fresh image. The inode table is
// sized to hold one record per block (bounded by the 16-bit inode count).
func NewSuperblock(blockSize Byte, blockCount Block) (Superblock, error) {
	if blockSize < MinBlockSize {
		return Superblock{}, fmt.Errorf(
			"block size `%d` is smaller than `%d`: %w",
			blockSize,
			MinBlockSize,
			InvalidGeometryErr,
		)
	}
	if uint64(blockSize)*uint64(blockCount) > maxImageSize {
		return Superblock{}, fmt.Errorf(
			"`%d` blocks of `%d` bytes exceed the 32-bit address space: %w",
			blockCount,
			blockSize,
			InvalidGeometryErr,
		)
	}
	records := math.Min(Byte(blockCount), Byte(MaxInodes))
	superblock := Superblock{
		BlockSize:        blockSize,
		BlockCount:       blockCount,
		InodeTableBlocks: Block(math.DivRoundUp(records*InodeSize, blockSize)),
	}
	if superblock.InodeTableBlocks > 0xFFFF {
		return Superblock{}, fmt.Errorf(
			"inode table of `%d` blocks: %w",
			superblock.InodeTableBlocks,
			InvalidGeometryErr,
		)
	}
	if superblock.SystemBlocks() >= blockCount {
		return Superblock{}, fmt.Errorf(
			"`%d` blocks leave no room for data after `%d` system blocks: %w",
			blockCount,
			superblock.SystemBlocks(),
			InvalidGeometryErr,
		)
	}
	return superblock, nil
}

func (superblock *Superblock) Size() Byte {
	return superblock.BlockSize * Byte(superblock.BlockCount)
}

func (superblock *Superblock) BitmapOffset() Byte {
	return superblock.BlockSize
}

// BitmapBlocks is the number of blocks holding the byte-per-block bitmap.
func (superblock *Superblock) BitmapBlocks() Block {
	return Block(math.DivRoundUp(
		Byte(superblock.BlockCount),
		superblock.BlockSize,
	))
}

func (superblock *Superblock) InodeTableOffset() Byte {
	return Byte(1+superblock.BitmapBlocks()) * superblock.BlockSize
}

func (superblock *Superblock) InodeOffset(ino Ino) Byte {
	return superblock.InodeTableOffset() + Byte(ino)*InodeSize
}

// InodeCapacity is the number of records the inode table can hold.
func (superblock *Superblock) InodeCapacity() Ino {
	return Ino(math.Min(
		Byte(superblock.InodeTableBlocks)*superblock.BlockSize/InodeSize,
		Byte(MaxInodes),
	))
}

// SystemBlocks is the length of the reserved prefix: superblock, bitmap
// and inode table.
func (superblock *Superblock) SystemBlocks() Block {
	return 1 + superblock.BitmapBlocks() + superblock.InodeTableBlocks
}

// PayloadSize is the usable part of a block; the trailing bytes hold the
// address of the next block in the chain.
func (superblock *Superblock) PayloadSize() Byte {
	return superblock.BlockSize - AddrSize
}

// SiblingsPerBlock is the number of sibling records that fit in one
// directory block. The leading count field is accounted for in every block
// so that all blocks of a chain hold the same number of records.
func (superblock *Superblock) SiblingsPerBlock() int {
	return int(
		(superblock.BlockSize - SiblingCountSize - AddrSize) / SiblingSize,
	)
}

func (superblock *Superblock) BlockAddr(block Block) Addr {
	return Addr(Byte(block) * superblock.BlockSize)
}

func (superblock *Superblock) AddrBlock(addr Addr) Block {
	return Block(Byte(addr) / superblock.BlockSize)
}

// ValidAddr reports whether `addr` is the start of a block in the data
// region.
func (superblock *Superblock) ValidAddr(addr Addr) bool {
	if Byte(addr)%superblock.BlockSize != 0 {
		return false
	}
	block := superblock.AddrBlock(addr)
	return block >= superblock.SystemBlocks() &&
		block < superblock.BlockCount
}
