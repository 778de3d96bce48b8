package types

import "strings"

// Ino is an index into the inode table.
type Ino uint32

const (
	InoRoot Ino  = 0
	InoSize Byte = Size32

	// InodeSize is the size of an encoded inode record: flags, file size
	// and first block address, 32 bits each.
	InodeSize Byte = 3 * Size32

	// MaxInodes is bounded by the 16-bit inode count in the superblock.
	MaxInodes Ino = 0xFFFF
)

type Flags uint32

const (
	FlagDeleted Flags = 1 << iota
	FlagFile
	FlagDirectory
)

func (flags Flags) IsDeleted() bool   { return flags&FlagDeleted != 0 }
func (flags Flags) IsFile() bool      { return flags&FlagFile != 0 }
func (flags Flags) IsDirectory() bool { return flags&FlagDirectory != 0 }

func (flags Flags) String() string {
	var parts []string
	if flags.IsFile() {
		parts = append(parts, "File")
	}
	if flags.IsDirectory() {
		parts = append(parts, "Directory")
	}
	if flags.IsDeleted() {
		parts = append(parts, "Deleted")
	}
	if len(parts) < 1 {
		return "None"
	}
	return strings.Join(parts, "|")
}

func (flags Flags) MarshalJSON() ([]byte, error) {
	s := flags.String()
	out := make([]byte, len(s)+2)
	out[0] = '"'
	out[len(out)-1] = '"'
	copy(out[1:], s)
	return out, nil
}

type Inode struct {
	Ino       Ino
	Flags     Flags
	Size      Byte
	FirstAddr Addr
}

// NewInode returns an empty file or directory inode with no content block.
func NewInode(isDirectory bool) Inode {
	flags := FlagFile
	if isDirectory {
		flags = FlagDirectory
	}
	return Inode{Flags: flags, FirstAddr: AddrEmpty}
}

func (inode *Inode) HasContent() bool { return inode.FirstAddr != AddrEmpty }
