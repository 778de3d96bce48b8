package types

// Entry describes one sibling of a listed directory.
type Entry struct {
	Name        string `json:"name"`
	Size        Byte   `json:"size"`
	IsDirectory bool   `json:"isDirectory"`
}

// Stat describes a single resolved path.
type Stat struct {
	Ino       Ino    `json:"ino"`
	Name      string `json:"name"`
	Flags     Flags  `json:"flags"`
	Size      Byte   `json:"size"`
	FirstAddr Addr   `json:"firstAddr"`
	Blocks    int    `json:"blocks"`
}

// Usage summarizes block and inode consumption of an image.
type Usage struct {
	BlockSize     Byte  `json:"blockSize"`
	BlockCount    Block `json:"blockCount"`
	SystemBlocks  Block `json:"systemBlocks"`
	UsedBlocks    Block `json:"usedBlocks"`
	FreeBlocks    Block `json:"freeBlocks"`
	InodeCount    Ino   `json:"inodeCount"`
	InodeCapacity Ino   `json:"inodeCapacity"`
	LiveInodes    Ino   `json:"liveInodes"`
}
