package encode

import (
	"bytes"

	. "github.com/weberc2/afs/pkg/types"
)

// EncodeSibling writes the NUL-padded (and, if necessary, truncated) name
// followed by the inode index.
func EncodeSibling(sibling *Sibling, b *[SiblingSize]byte) {
	p := b[:]
	name := p[siblingNameStart:siblingNameEnd]
	for i := range name {
		name[i] = 0
	}
	copy(name, FileName(sibling.Name))
	putIno(p, siblingInoStart, sibling.Ino)
}

func DecodeSibling(sibling *Sibling, b *[SiblingSize]byte) {
	p := b[:]
	name := p[siblingNameStart:siblingNameEnd]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	sibling.Name = string(name)
	sibling.Ino = getIno(p, siblingInoStart)
}

const (
	siblingNameStart = 0
	siblingNameSize  = NameSize
	siblingNameEnd   = siblingNameStart + siblingNameSize

	siblingInoStart = siblingNameEnd
	siblingInoSize  = InoSize
	siblingInoEnd   = siblingInoStart + siblingInoSize
)
