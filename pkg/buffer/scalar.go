package buffer

import "github.com/khildebrand/lowpan6/pkg/byteorder"

// PushU8 appends a single byte at the write cursor.
func (b *Buffer) PushU8(v uint8) bool {
	p := b.Reserve(1)
	if p < 0 {
		return false
	}
	b.data[p] = v
	return true
}

// PushU16 appends a big-endian uint16 at the write cursor.
func (b *Buffer) PushU16(v uint16) bool {
	p := b.Reserve(2)
	if p < 0 {
		return false
	}
	return byteorder.BE.SetU16(b.data[p:p+2], v)
}

// PushU32 appends a big-endian uint32 at the write cursor.
func (b *Buffer) PushU32(v uint32) bool {
	p := b.Reserve(4)
	if p < 0 {
		return false
	}
	return byteorder.BE.SetU32(b.data[p:p+4], v)
}

// PushU64 appends a big-endian uint64 at the write cursor.
func (b *Buffer) PushU64(v uint64) bool {
	p := b.Reserve(8)
	if p < 0 {
		return false
	}
	return byteorder.BE.SetU64(b.data[p:p+8], v)
}

// PopU8 reads and consumes a single byte at the read cursor.
func (b *Buffer) PopU8() (uint8, bool) {
	v := b.Pop(1)
	if v == nil {
		return 0, false
	}
	return v[0], true
}

// PopU16 reads and consumes a big-endian uint16 at the read cursor.
func (b *Buffer) PopU16() (uint16, bool) {
	v := b.Pop(2)
	if v == nil {
		return 0, false
	}
	return byteorder.BE.GetU16(v), true
}

// PopU32 reads and consumes a big-endian uint32 at the read cursor.
func (b *Buffer) PopU32() (uint32, bool) {
	v := b.Pop(4)
	if v == nil {
		return 0, false
	}
	return byteorder.BE.GetU32(v), true
}
