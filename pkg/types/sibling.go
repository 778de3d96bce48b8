package types

const (
	// NameSize is the fixed width of a sibling record's name field.
	NameSize Byte = 28

	SiblingSize Byte = NameSize + InoSize

	// SiblingCountSize is the width of the sibling count which leads the
	// first block of every directory chain.
	SiblingCountSize Byte = Size16

	SelfName   = "."
	ParentName = ".."
)

// Sibling is a directory entry mapping a name to an inode index.
type Sibling struct {
	Name string
	Ino  Ino
}

// FileName truncates `name` to the width of the on-disk name field. Names
// are truncated the same way on insertion and on lookup so a long name
// still resolves to the entry it created.
func FileName(name string) string {
	if Byte(len(name)) > NameSize {
		return name[:NameSize]
	}
	return name
}

// IsDotEntry reports whether `name` is one of the two self-referencing
// entries every directory carries.
func IsDotEntry(name string) bool {
	return name == SelfName || name == ParentName
}
