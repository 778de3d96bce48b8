package types

const (
	// NotFoundErr is returned when a path component does not exist.
	NotFoundErr ConstError = "no such file or directory"

	// NotADirectoryErr is returned when a path component that must be a
	// directory is a regular file.
	NotADirectoryErr ConstError = "not a directory"

	AlreadyExistsErr    ConstError = "file exists"
	InvalidOperationErr ConstError = "invalid operation"

	// ResourceExhaustedErr is returned when no free block or no free inode
	// record remains.
	ResourceExhaustedErr ConstError = "no space left on image"

	// CorruptImageErr is returned when on-disk structures are inconsistent,
	// e.g. a bad superblock magic or a block chain that never terminates.
	CorruptImageErr ConstError = "corrupt image"

	OutOfBoundsErr     ConstError = "access out of bounds"
	InvalidGeometryErr ConstError = "invalid image geometry"
)
