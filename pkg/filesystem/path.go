package filesystem

import (
	"fmt"
	"strings"

	"github.com/weberc2/afs/pkg/directory"
	. "github.com/weberc2/afs/pkg/types"
)

// Components splits `path` on "/" and drops empty components, so "/",
// "" and "//" all name the root.
func Components(path string) ([]string, error) {
	var components []string
	for _, component := range strings.Split(path, "/") {
		if component == "" {
			continue
		}
		if strings.IndexByte(component, 0) >= 0 {
			return nil, fmt.Errorf(
				"parsing path `%q`: NUL in component: %w",
				path,
				InvalidOperationErr,
			)
		}
		components = append(components, component)
	}
	return components, nil
}

// ResolveAddress returns the first-block address of the inode `path` names.
func (fs *FileSystem) ResolveAddress(path string) (Addr, error) {
	var inode Inode
	if err := fs.ResolveInode(path, &inode); err != nil {
		return AddrNil, err
	}
	return inode.FirstAddr, nil
}

// ResolveInode walks `path` from the root, one sibling lookup per
// component. Every component but the last must be a directory.
func (fs *FileSystem) ResolveInode(path string, out *Inode) error {
	components, err := Components(path)
	if err != nil {
		return err
	}
	if err := fs.resolve(components, out); err != nil {
		return fmt.Errorf("resolving `%s`: %w", path, err)
	}
	return nil
}

func (fs *FileSystem) resolve(components []string, out *Inode) error {
	var current Inode
	if err := fs.Inodes.Root(&current); err != nil {
		return err
	}
	for _, name := range components {
		if _, err := fs.lookup(&current, name, &current); err != nil {
			return err
		}
	}
	*out = current
	return nil
}

// lookup finds `name` among the siblings of `dir` and reads its inode into
// `out`. It returns the sibling's position within `dir`.
func (fs *FileSystem) lookup(dir *Inode, name string, out *Inode) (int, error) {
	if !dir.Flags.IsDirectory() {
		return 0, fmt.Errorf(
			"looking up `%s` in inode `%d`: %w",
			name,
			dir.Ino,
			NotADirectoryErr,
		)
	}
	if !dir.HasContent() {
		return 0, fmt.Errorf(
			"looking up `%s` in inode `%d`: directory has no block: %w",
			name,
			dir.Ino,
			CorruptImageErr,
		)
	}
	var sibling Sibling
	position, err := directory.SiblingNamed(&fs.dirs, dir.FirstAddr, name, &sibling)
	if err != nil {
		return 0, err
	}
	if err := fs.Inodes.Get(sibling.Ino, out); err != nil {
		return 0, fmt.Errorf("looking up `%s`: %w", name, err)
	}
	if out.Flags.IsDeleted() {
		return 0, fmt.Errorf(
			"looking up `%s`: sibling refers to deleted inode `%d`: %w",
			name,
			sibling.Ino,
			CorruptImageErr,
		)
	}
	return position, nil
}
