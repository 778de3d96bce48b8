package encode

import (
	"fmt"

	. "github.com/weberc2/afs/pkg/types"
)

func EncodeSuperblock(superblock *Superblock, b *[SuperblockSize]byte) {
	p := b[:]
	copy(p[superblockMagicStart:superblockMagicEnd], SuperblockMagic)
	putU8(p, superblockVersionStart, SuperblockVersion)
	putU32(p, superblockBlockSizeStart, uint32(superblock.BlockSize))
	putU32(p, superblockBlockCountStart, uint32(superblock.BlockCount))
	putU16(p, SuperblockInodeCountStart, uint16(superblock.InodeCount))
	putU16(
		p,
		superblockInodeTableBlocksStart,
		uint16(superblock.InodeTableBlocks),
	)
}

// DecodeSuperblock validates the magic and version before populating
// `superblock`; on error `superblock` is left untouched.
func DecodeSuperblock(superblock *Superblock, b *[SuperblockSize]byte) error {
	p := b[:]
	if magic := string(
		p[superblockMagicStart:superblockMagicEnd],
	); magic != SuperblockMagic {
		return fmt.Errorf(
			"decoding superblock: bad magic `%q`: %w",
			magic,
			CorruptImageErr,
		)
	}
	if version := getU8(p, superblockVersionStart); version != SuperblockVersion {
		return fmt.Errorf(
			"decoding superblock: unsupported version `%#x`: %w",
			version,
			CorruptImageErr,
		)
	}
	*superblock = Superblock{
		BlockSize:  Byte(getU32(p, superblockBlockSizeStart)),
		BlockCount: Block(getU32(p, superblockBlockCountStart)),
		InodeCount: Ino(getU16(p, SuperblockInodeCountStart)),
		InodeTableBlocks: Block(
			getU16(p, superblockInodeTableBlocksStart),
		),
	}
	return nil
}

// EncodeInodeCount encodes the only superblock field which changes after
// formatting.
func EncodeInodeCount(count Ino, b *[SuperblockInodeCountSize]byte) {
	putU16(b[:], 0, uint16(count))
}

const (
	superblockMagicStart = 0
	superblockMagicSize  = Byte(len(SuperblockMagic))
	superblockMagicEnd   = superblockMagicStart + superblockMagicSize

	superblockVersionStart = superblockMagicEnd
	superblockVersionSize  = 1
	superblockVersionEnd   = superblockVersionStart + superblockVersionSize

	superblockBlockSizeStart = superblockVersionEnd
	superblockBlockSizeSize  = Size32
	superblockBlockSizeEnd   = superblockBlockSizeStart + superblockBlockSizeSize

	superblockBlockCountStart = superblockBlockSizeEnd
	superblockBlockCountSize  = Size32
	superblockBlockCountEnd   = superblockBlockCountStart + superblockBlockCountSize

	SuperblockInodeCountStart = superblockBlockCountEnd
	SuperblockInodeCountSize  = Size16
	superblockInodeCountEnd   = SuperblockInodeCountStart + SuperblockInodeCountSize

	superblockInodeTableBlocksStart = superblockInodeCountEnd
	superblockInodeTableBlocksSize  = Size16
	superblockInodeTableBlocksEnd   = superblockInodeTableBlocksStart +
		superblockInodeTableBlocksSize
)
