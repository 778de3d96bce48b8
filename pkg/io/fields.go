package io

import (
	"encoding/binary"

	. "github.com/weberc2/afs/pkg/types"
)

// Fixed-width little endian field accessors. All on-disk integers go
// through these so every access is bounds-checked by the volume.

func ReadU16(v ReadAt, offset Byte) (uint16, error) {
	var buf [Size16]byte
	if err := v.ReadAt(offset, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func WriteU16(v WriteAt, offset Byte, u uint16) error {
	var buf [Size16]byte
	binary.LittleEndian.PutUint16(buf[:], u)
	return v.WriteAt(offset, buf[:])
}

func ReadU32(v ReadAt, offset Byte) (uint32, error) {
	var buf [Size32]byte
	if err := v.ReadAt(offset, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func WriteU32(v WriteAt, offset Byte, u uint32) error {
	var buf [Size32]byte
	binary.LittleEndian.PutUint32(buf[:], u)
	return v.WriteAt(offset, buf[:])
}

func ReadAddr(v ReadAt, offset Byte) (Addr, error) {
	u, err := ReadU32(v, offset)
	return Addr(u), err
}

func WriteAddr(v WriteAt, offset Byte, addr Addr) error {
	return WriteU32(v, offset, uint32(addr))
}

// Zero overwrites `length` bytes at `offset` with zeroes.
func Zero(v WriteAt, offset, length Byte) error {
	return v.WriteAt(offset, make([]byte, length))
}
