package store

import (
	"fmt"

	"github.com/weberc2/afs/pkg/alloc"
	"github.com/weberc2/afs/pkg/io"
	. "github.com/weberc2/afs/pkg/types"
)

var _ alloc.BitmapStore = VolumeBitmapStore{}

// VolumeBitmapStore keeps the bitmap in a volume, one byte per block,
// starting at offset 0 of the volume (see io.OffsetVolume).
type VolumeBitmapStore struct {
	volume io.Volume
}

func NewVolumeBitmapStore(volume io.Volume) VolumeBitmapStore {
	return VolumeBitmapStore{volume}
}

func (store VolumeBitmapStore) Put(block Block, entry byte) error {
	if err := store.volume.WriteAt(Byte(block), []byte{entry}); err != nil {
		return fmt.Errorf("storing bitmap entry `%d`: %w", block, err)
	}
	return nil
}

func (store VolumeBitmapStore) PutAll(entries []byte) error {
	if err := store.volume.WriteAt(0, entries); err != nil {
		return fmt.Errorf("storing bitmap: %w", err)
	}
	return nil
}

func (store VolumeBitmapStore) Load(entries []byte) error {
	if err := store.volume.ReadAt(0, entries); err != nil {
		return fmt.Errorf("loading bitmap: %w", err)
	}
	return nil
}
