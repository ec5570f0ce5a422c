package buffer_test

import (
	"bytes"
	"testing"

	"github.com/khildebrand/lowpan6/pkg/buffer"
)

func TestNewAndLength(t *testing.T) {
	data := make([]byte, 16)
	b := buffer.New(data, 4, 16)
	if b == nil {
		t.Fatalf("New returned nil")
	}
	if b.Length() != 4 {
		t.Errorf("Length() = %d, want 4", b.Length())
	}
	if b.Free() != 12 {
		t.Errorf("Free() = %d, want 12", b.Free())
	}
}

func TestNewOverflow(t *testing.T) {
	data := make([]byte, 4)
	if b := buffer.New(data, 8, 8); b != nil {
		t.Errorf("New with cap>len(data) should fail, got %+v", b)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	data := make([]byte, 32)
	b := buffer.New(data, 0, 32)

	if !b.PushU8(0x12) {
		t.Fatalf("PushU8 failed")
	}
	if !b.PushU16(0x3456) {
		t.Fatalf("PushU16 failed")
	}
	if !b.PushU32(0x789abcde) {
		t.Fatalf("PushU32 failed")
	}

	if v, ok := b.PopU8(); !ok || v != 0x12 {
		t.Errorf("PopU8() = %#x, %v, want 0x12, true", v, ok)
	}
	if v, ok := b.PopU16(); !ok || v != 0x3456 {
		t.Errorf("PopU16() = %#x, %v, want 0x3456, true", v, ok)
	}
	if v, ok := b.PopU32(); !ok || v != 0x789abcde {
		t.Errorf("PopU32() = %#x, %v, want 0x789abcde, true", v, ok)
	}
}

func TestClear(t *testing.T) {
	data := make([]byte, 8)
	b := buffer.New(data, 4, 8)
	b.Clear()
	if b.Length() != 0 {
		t.Errorf("Length() after Clear = %d, want 0", b.Length())
	}
	if b.Remaining() != 0 {
		t.Errorf("Remaining() after Clear = %d, want 0", b.Remaining())
	}
}

func TestSetLength(t *testing.T) {
	data := make([]byte, 8)
	b := buffer.New(data, 0, 8)
	if !b.SetLength(5) {
		t.Fatalf("SetLength(5) failed")
	}
	if b.Length() != 5 {
		t.Errorf("Length() = %d, want 5", b.Length())
	}
	if b.SetLength(9) {
		t.Errorf("SetLength(9) should fail for 8-byte capacity")
	}
}

func TestSliceBounds(t *testing.T) {
	data := make([]byte, 16)
	parent := buffer.New(data, 16, 16)

	var child buffer.Buffer
	if !buffer.Slice(&child, parent, 4, 8) {
		t.Fatalf("Slice failed")
	}
	if child.Length() != 8 {
		t.Errorf("child.Length() = %d, want 8", child.Length())
	}
	if child.Parent != parent {
		t.Errorf("child.Parent != parent")
	}

	var bad buffer.Buffer
	if buffer.Slice(&bad, parent, 4, 100) {
		t.Errorf("Slice with out-of-bounds length should fail")
	}
}

func TestReserveAtCascades(t *testing.T) {
	// parent [0,32) length 20; child is a view of bytes [8,20).
	data := make([]byte, 32)
	for i := range data[:20] {
		data[i] = byte(i + 1)
	}
	parent := buffer.New(data, 20, 32)

	var child buffer.Buffer
	if !buffer.Slice(&child, parent, 8, 12) {
		t.Fatalf("Slice failed")
	}

	oldParentWrite := parent.Write()

	// Reserve 4 bytes at offset 10 (absolute) within child.
	p := child.ReserveAt(10, 4)
	if p != 10 {
		t.Fatalf("ReserveAt returned %d, want 10", p)
	}

	if parent.Write() != oldParentWrite+4 {
		t.Errorf("parent.Write() = %d, want %d", parent.Write(), oldParentWrite+4)
	}
	if child.Length() != 12+4 {
		t.Errorf("child.Length() = %d, want %d", child.Length(), 12+4)
	}

	gap := data[10:14]
	if !bytes.Equal(gap, []byte{0, 0, 0, 0}) {
		t.Errorf("gap = %v, want zeroed", gap)
	}
}

func TestReserveAtInsufficientTailroom(t *testing.T) {
	data := make([]byte, 8)
	b := buffer.New(data, 8, 8)
	if p := b.ReserveAt(4, 1); p != -1 {
		t.Errorf("ReserveAt with no tailroom should fail, got %d", p)
	}
}

func TestReplaceAtExtendsWriteNotEnd(t *testing.T) {
	data := make([]byte, 16)
	b := buffer.New(data, 4, 16)

	if !b.ReplaceAt([]byte{1, 2, 3, 4}, 4, 4) {
		t.Fatalf("ReplaceAt failed")
	}
	if b.Write() != 8 {
		t.Errorf("Write() = %d, want 8", b.Write())
	}
	if b.End() != 16 {
		t.Errorf("End() = %d, want unchanged 16", b.End())
	}
}

func TestPeekAtDoesNotMutate(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	b := buffer.New(data, 8, 8)
	got := b.PeekAt(2, 3)
	if !bytes.Equal(got, []byte{3, 4, 5}) {
		t.Errorf("PeekAt = %v, want [3 4 5]", got)
	}
	if b.Read() != 0 || b.Write() != 8 {
		t.Errorf("PeekAt mutated cursors: read=%d write=%d", b.Read(), b.Write())
	}
}
