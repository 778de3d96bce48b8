package inode

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

func newTable(t *testing.T, blockSize Byte, blockCount Block) (*Table, *io.Buffer) {
	superblock, err := NewSuperblock(blockSize, blockCount)
	if err != nil {
		t.Fatalf("NewSuperblock(): unexpected err: %v", err)
	}
	volume := io.NewBuffer(make([]byte, superblock.Size()))
	return New(volume, &superblock), volume
}

func TestIndexToAddress(t *testing.T) {
	table, _ := newTable(t, 512, 4096)
	// superblock + 8 bitmap blocks
	if wanted, found := Byte(9*512+12*3), table.IndexToAddress(3); wanted != found {
		t.Fatalf("IndexToAddress(3): wanted `%d`; found `%d`", wanted, found)
	}
}

func TestCreate(t *testing.T) {
	table, volume := newTable(t, 128, 64)

	for i := Ino(0); i < 3; i++ {
		inode, err := table.Create(i == 0)
		if err != nil {
			t.Fatalf("Create(): unexpected err: %v", err)
		}
		if inode.Ino != i {
			t.Fatalf("Create(): wanted ino `%d`; found `%d`", i, inode.Ino)
		}
	}

	if table.Count() != 3 {
		t.Fatalf("Count(): wanted `3`; found `%d`", table.Count())
	}
	if found := binary.LittleEndian.Uint16(volume.Bytes()[12:14]); found != 3 {
		t.Fatalf("persisted inode count: wanted `3`; found `%d`", found)
	}

	var root Inode
	if err := table.Root(&root); err != nil {
		t.Fatalf("Root(): unexpected err: %v", err)
	}
	if !root.Flags.IsDirectory() || root.FirstAddr != AddrEmpty {
		t.Fatalf(
			"Root(): wanted empty directory; found flags `%s` addr `%d`",
			root.Flags,
			root.FirstAddr,
		)
	}

	// the raw record carries the empty sentinel
	offset := table.IndexToAddress(1) + 8
	if found := binary.LittleEndian.Uint32(volume.Bytes()[offset:]); found != 0xFFFFFFFF {
		t.Fatalf("first address: wanted `0xffffffff`; found `%#x`", found)
	}
}

func TestCreateExhausted(t *testing.T) {
	table, _ := newTable(t, 128, 64)
	capacity := table.superblock.InodeCapacity()
	for i := Ino(0); i < capacity; i++ {
		if _, err := table.Create(false); err != nil {
			t.Fatalf("Create(): unexpected err: %v", err)
		}
	}
	if _, err := table.Create(false); !errors.Is(err, ResourceExhaustedErr) {
		t.Fatalf("Create(): wanted `%v`; found `%v`", ResourceExhaustedErr, err)
	}
}

func TestDeleteNeverReusesIndices(t *testing.T) {
	table, _ := newTable(t, 128, 64)
	first, err := table.Create(false)
	if err != nil {
		t.Fatalf("Create(): unexpected err: %v", err)
	}
	if err := table.Delete(&first); err != nil {
		t.Fatalf("Delete(): unexpected err: %v", err)
	}

	second, err := table.Create(false)
	if err != nil {
		t.Fatalf("Create(): unexpected err: %v", err)
	}
	if second.Ino == first.Ino {
		t.Fatalf("Create(): reused ino `%d`", first.Ino)
	}

	var deleted Inode
	if err := table.Get(first.Ino, &deleted); err != nil {
		t.Fatalf("Get(): unexpected err: %v", err)
	}
	if !deleted.Flags.IsDeleted() || !deleted.Flags.IsFile() {
		t.Fatalf("Get(): wanted `File|Deleted`; found `%s`", deleted.Flags)
	}

	live, err := table.Live()
	if err != nil {
		t.Fatalf("Live(): unexpected err: %v", err)
	}
	if live != 1 {
		t.Fatalf("Live(): wanted `1`; found `%d`", live)
	}
}

func TestGetBeyondCount(t *testing.T) {
	table, _ := newTable(t, 128, 64)
	var inode Inode
	if err := table.Get(0, &inode); !errors.Is(err, CorruptImageErr) {
		t.Fatalf("Get(0): wanted `%v`; found `%v`", CorruptImageErr, err)
	}
}

func TestLiveScansAcrossBatches(t *testing.T) {
	table, _ := newTable(t, 512, 1024)

	for i := 0; i < 600; i++ {
		inode, err := table.Create(false)
		if err != nil {
			t.Fatalf("Create(): unexpected err: %v", err)
		}
		if i%3 == 0 {
			if err := table.Delete(&inode); err != nil {
				t.Fatalf("Delete(): unexpected err: %v", err)
			}
		}
	}

	live, err := table.Live()
	if err != nil {
		t.Fatalf("Live(): unexpected err: %v", err)
	}
	if live != 400 {
		t.Fatalf("Live(): wanted `400`; found `%d`", live)
	}
}
