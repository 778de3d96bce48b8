package encode

import (
	. "github.com/weberc2/afs/pkg/types"
)

func EncodeInode(inode *Inode, b *[InodeSize]byte) {
	p := b[:]
	putU32(p, inodeFlagsStart, uint32(inode.Flags))
	putU32(p, inodeSizeStart, uint32(inode.Size))
	putAddr(p, inodeFirstAddrStart, inode.FirstAddr)
}

// DecodeInode populates `inode` with data from `b`. Note that `inode.Ino` is
// not populated because the ino isn't discernible from an encoded inode.
func DecodeInode(inode *Inode, b *[InodeSize]byte) {
	p := b[:]
	inode.Flags = Flags(getU32(p, inodeFlagsStart))
	inode.Size = Byte(getU32(p, inodeSizeStart))
	inode.FirstAddr = getAddr(p, inodeFirstAddrStart)
}

const (
	inodeFlagsStart = 0
	inodeFlagsSize  = Size32
	inodeFlagsEnd   = inodeFlagsStart + inodeFlagsSize

	inodeSizeStart = inodeFlagsEnd
	inodeSizeSize  = Size32
	inodeSizeEnd   = inodeSizeStart + inodeSizeSize

	inodeFirstAddrStart = inodeSizeEnd
	inodeFirstAddrSize  = AddrSize
	inodeFirstAddrEnd   = inodeFirstAddrStart + inodeFirstAddrSize
)
