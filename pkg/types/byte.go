package types

// Byte is a size or offset in bytes within a volume.
type Byte int64

const (
	Size16 Byte = 2
	Size32 Byte = 4
)

type ConstError string

func (err ConstError) Error() string { return string(err) }
