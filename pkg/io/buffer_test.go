package io

import (
	"bytes"
	"errors"
	"testing"

	. "github.com/weberc2/afs/pkg/types"
)

func TestBuffer_Overwrite(t *testing.T) {
	// Given a buffer with some existing data
	b := NewBuffer([]byte("hello world"))

	// When a prefix is overwritten
	if err := b.WriteAt(0, []byte("HELLO")); err != nil {
		t.Fatalf("WriteAt(): unexpected err: %v", err)
	}

	// Then the suffix is preserved
	if wanted, found := []byte("HELLO world"), b.Bytes(); !bytes.Equal(wanted, found) {
		t.Fatalf("WriteAt(): wanted `%s`; found `%s`", wanted, found)
	}
}

func TestBuffer_DoesNotGrow(t *testing.T) {
	b := NewBuffer(make([]byte, 8))
	if err := b.WriteAt(6, []byte("abc")); !errors.Is(err, OutOfBoundsErr) {
		t.Fatalf("WriteAt(): wanted `%v`; found `%v`", OutOfBoundsErr, err)
	}
	if wanted, found := Byte(8), b.Size(); wanted != found {
		t.Fatalf("Size(): wanted `%d`; found `%d`", wanted, found)
	}
	if wanted, found := make([]byte, 8), b.Bytes(); !bytes.Equal(wanted, found) {
		t.Fatalf("failed write modified buffer: found `%#x`", found)
	}
}

func TestOffsetVolume(t *testing.T) {
	b := NewBuffer(make([]byte, 16))
	v := NewOffsetVolume(b, 8, 6)

	if err := WriteU16(v, 2, 0xbeef); err != nil {
		t.Fatalf("WriteU16(): unexpected err: %v", err)
	}
	if wanted, found := []byte{0xef, 0xbe}, b.Bytes()[10:12]; !bytes.Equal(wanted, found) {
		t.Fatalf("WriteU16(): wanted `%#x`; found `%#x`", wanted, found)
	}

	u, err := ReadU16(v, 2)
	if err != nil {
		t.Fatalf("ReadU16(): unexpected err: %v", err)
	}
	if u != 0xbeef {
		t.Fatalf("ReadU16(): wanted `0xbeef`; found `%#x`", u)
	}

	// fits the buffer but not the region
	if err := v.WriteAt(4, []byte("abc")); !errors.Is(err, OutOfBoundsErr) {
		t.Fatalf("WriteAt(): wanted `%v`; found `%v`", OutOfBoundsErr, err)
	}
	if found := b.Bytes()[14:]; !bytes.Equal(found, []byte{0, 0}) {
		t.Fatalf("WriteAt(): wanted untouched tail; found `%#x`", found)
	}
	if v.Size() != 6 {
		t.Fatalf("Size(): wanted `6`; found `%d`", v.Size())
	}
}

func TestZero(t *testing.T) {
	b := NewBuffer(bytes.Repeat([]byte{0xff}, 8))
	if err := Zero(b, 2, 4); err != nil {
		t.Fatalf("Zero(): unexpected err: %v", err)
	}
	wanted := []byte{0xff, 0xff, 0, 0, 0, 0, 0xff, 0xff}
	if found := b.Bytes(); !bytes.Equal(wanted, found) {
		t.Fatalf("Zero(): wanted `%#x`; found `%#x`", wanted, found)
	}
}
