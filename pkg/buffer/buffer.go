// Package buffer implements a hierarchical byte window with parent/child
// slicing, dual read/write cursors, and cascading in-place insertion.
//
// A Buffer never allocates. It is always a view over a caller-owned byte
// slice; every operation is bounds-checked and returns a sentinel
// (nil / false / 0) on failure instead of panicking.
package buffer

// Buffer is a bounded view over a byte slice with independent read and
// write cursors. A Buffer may be a child slice of another Buffer; in that
// case Parent is non-nil and mutations that shift bytes (ReserveAt)
// propagate cursor adjustments up the Parent chain.
type Buffer struct {
	Parent *Buffer
	data   []byte // backing storage, fixed capacity, never reallocated
	start  int    // absolute offset of this view's start within data
	end    int    // absolute offset of this view's end (capacity boundary)
	read   int    // absolute offset of the read cursor
	write  int    // absolute offset of the write cursor
}

// New constructs a top-level Buffer over data with an initial logical
// length of n bytes and total capacity cap. Returns nil if n > cap or
// cap > len(data).
func New(data []byte, n, cap int) *Buffer {
	if n > cap || cap > len(data) {
		return nil
	}
	return &Buffer{data: data, start: 0, end: cap, read: 0, write: n}
}

// IsValid reports whether b's invariant start <= read <= write holds and
// b is non-nil with backing storage.
func IsValid(b *Buffer) bool {
	return b != nil && b.data != nil && b.start <= b.read && b.read <= b.write
}

// Slice creates dest as a view of [start, start+length) within src. If
// dest == src, the slice happens in place and dest's parent becomes src's
// own parent (never src itself, to avoid a self-referential chain). On
// failure (out of bounds) dest becomes an invalid zero-length buffer whose
// parent is still src, and Slice returns false.
func Slice(dest, src *Buffer, start, length int) bool {
	end := start + length
	if !IsValid(src) || start < src.start || start > end || end > src.write {
		if dest != nil {
			parent := src
			*dest = Buffer{Parent: parent, data: nil, start: 0, end: 0, read: 0, write: 0}
		}
		return false
	}

	var parent *Buffer
	if dest == src {
		parent = src.Parent
	} else {
		parent = src
	}

	*dest = Buffer{
		Parent: parent,
		data:   src.data,
		start:  start,
		end:    src.end,
		read:   start,
		write:  end,
	}
	return true
}

// MakeSlice returns a new Buffer by value sliced from src, mirroring Slice.
func MakeSlice(src *Buffer, start, length int) Buffer {
	var dest Buffer
	Slice(&dest, src, start, length)
	return dest
}

// Clear resets both cursors to Start without changing End.
func (b *Buffer) Clear() {
	b.read = b.start
	b.write = b.start
}

// SetLength repositions Write to Start+n and Read to Start, validating
// n does not exceed the buffer's capacity. Returns false on overflow.
func (b *Buffer) SetLength(n int) bool {
	if n > b.end-b.start {
		return false
	}
	b.read = b.start
	b.write = b.start + n
	return true
}

// TopParent walks the Parent chain to the outermost owning Buffer.
func TopParent(b *Buffer) *Buffer {
	for b != nil && b.Parent != nil {
		b = b.Parent
	}
	return b
}

// Start returns the absolute start offset of the view.
func (b *Buffer) Start() int { return b.start }

// End returns the absolute capacity boundary of the view.
func (b *Buffer) End() int { return b.end }

// Read returns the absolute read-cursor offset.
func (b *Buffer) Read() int { return b.read }

// Write returns the absolute write-cursor offset.
func (b *Buffer) Write() int { return b.write }

// Length returns write - start.
func (b *Buffer) Length() int { return b.write - b.start }

// Remaining returns write - read: unread bytes.
func (b *Buffer) Remaining() int { return b.write - b.read }

// Free returns end - write: writable tailroom without shifting bytes.
func (b *Buffer) Free() int { return b.end - b.write }

// Tailroom is an alias for Free, matching the source's naming.
func (b *Buffer) Tailroom() int { return b.Free() }

// Cap returns end - start: total capacity of the view.
func (b *Buffer) Cap() int { return b.end - b.start }

// Bytes returns the backing slice for [start, write), i.e. the buffer's
// current logical content. Callers must not retain it past further
// mutation of the buffer.
func (b *Buffer) Bytes() []byte { return b.data[b.start:b.write] }

// Offset returns the absolute offset start+u if u <= Length(), else -1.
func (b *Buffer) Offset(u int) int {
	if u > b.Length() {
		return -1
	}
	return b.start + u
}

// OffsetOf returns the relative offset of the absolute position abs within
// the buffer (abs - start), or -1 if abs < start.
func (b *Buffer) OffsetOf(abs int) int {
	if abs < b.start {
		return -1
	}
	return abs - b.start
}

// WriteSet moves the write cursor to the absolute position p, succeeding
// only if read <= p <= end.
func (b *Buffer) WriteSet(p int) bool {
	if p < b.read || p > b.end {
		return false
	}
	b.write = p
	return true
}

// ReadSet moves the read cursor to the absolute position p, succeeding
// only if start <= p <= end.
func (b *Buffer) ReadSet(p int) bool {
	if p < b.start || p > b.end {
		return false
	}
	b.read = p
	return true
}

// WriteSeek moves the write cursor to Offset(u).
func (b *Buffer) WriteSeek(u int) bool {
	p := b.Offset(u)
	if p < 0 {
		return false
	}
	return b.WriteSet(p)
}

// ReadSeek moves the read cursor to Offset(u).
func (b *Buffer) ReadSeek(u int) bool {
	p := b.Offset(u)
	if p < 0 {
		return false
	}
	return b.ReadSet(p)
}

// PeekAt returns the absolute byte range [start, start+length) as a slice
// without mutating any cursor, or nil if out of bounds.
func (b *Buffer) PeekAt(start, length int) []byte {
	end := start + length
	if !IsValid(b) || start < b.start || start > end || end > b.write {
		return nil
	}
	return b.data[start:end]
}

// ReadAt copies length bytes starting at the absolute position start into
// out, returning the number of bytes copied, or -1 if out of bounds.
func (b *Buffer) ReadAt(out []byte, start, length int) int {
	src := b.PeekAt(start, length)
	if src == nil {
		return -1
	}
	return copy(out, src)
}

// ReserveAt is the cascading-insertion primitive. It shifts every byte
// from start through the outermost parent's write cursor rightward by n,
// zeroes the vacated [start, start+n) gap, advances b's own write cursor
// directly, and then walks only the Parent chain (not b itself) advancing
// each ancestor's write (and read, if it was at or beyond start) by n.
// Returns the absolute start offset on success, or -1 on failure.
func (b *Buffer) ReserveAt(start, n int) int {
	if !IsValid(b) || start < b.start || start > b.write || n > b.Tailroom() {
		return -1
	}

	top := TopParent(b)
	if n > top.Tailroom() {
		return -1
	}
	tailLen := top.write - start
	copy(b.data[start+n:start+n+tailLen], b.data[start:start+tailLen])
	for i := start; i < start+n; i++ {
		b.data[i] = 0
	}
	b.write += n

	for p := b.Parent; p != nil; p = p.Parent {
		if p.write >= start {
			p.write += n
		}
		if p.read >= start {
			p.read += n
		}
	}
	return start
}

// WriteAt inserts in at the absolute position start via ReserveAt, then
// copies in into the reserved region. If in is nil, the reserved region
// is left zeroed. Returns true on success.
func (b *Buffer) WriteAt(in []byte, start, length int) bool {
	p := b.ReserveAt(start, length)
	if p < 0 {
		return false
	}
	if in != nil {
		copy(b.data[p:p+length], in)
	}
	return true
}

// ReplaceAt overwrites [start, start+length) in place without shifting any
// bytes; it is validated against End (the view's absolute capacity), not
// Write. If Write was less than start+length, Write is extended to
// start+length, but End never changes. If in is nil the region is zeroed.
func (b *Buffer) ReplaceAt(in []byte, start, length int) bool {
	end := start + length
	if !IsValid(b) || start < b.start || end > b.end {
		return false
	}
	if in != nil {
		copy(b.data[start:end], in)
	} else {
		for i := start; i < end; i++ {
			b.data[i] = 0
		}
	}
	if b.write < end {
		b.write = end
	}
	return true
}

// Offset-relative wrappers -------------------------------------------------

// PeekOffset is PeekAt relative to the buffer's Start.
func (b *Buffer) PeekOffset(offset, length int) []byte {
	p := b.Offset(offset)
	if p < 0 {
		return nil
	}
	return b.PeekAt(p, length)
}

// ReadOffset is ReadAt relative to the buffer's Start.
func (b *Buffer) ReadOffset(out []byte, offset, length int) int {
	p := b.Offset(offset)
	if p < 0 {
		return -1
	}
	return b.ReadAt(out, p, length)
}

// WriteOffset is WriteAt relative to the buffer's Start.
func (b *Buffer) WriteOffset(in []byte, offset, length int) bool {
	p := b.Offset(offset)
	if p < 0 {
		return false
	}
	return b.WriteAt(in, p, length)
}

// ReserveOffset is ReserveAt relative to the buffer's Start.
func (b *Buffer) ReserveOffset(offset, length int) int {
	p := b.Offset(offset)
	if p < 0 {
		return -1
	}
	return b.ReserveAt(p, length)
}

// ReplaceOffset is ReplaceAt relative to the buffer's Start.
func (b *Buffer) ReplaceOffset(in []byte, offset, length int) bool {
	p := b.Offset(offset)
	if p < 0 {
		return false
	}
	return b.ReplaceAt(in, p, length)
}

// Streaming API -------------------------------------------------------------

// Peek returns length bytes at the read cursor without advancing it.
func (b *Buffer) Peek(length int) []byte {
	return b.PeekAt(b.read, length)
}

// Pop returns length bytes at the read cursor and advances it, or nil if
// fewer than length bytes remain.
func (b *Buffer) Pop(length int) []byte {
	if !IsValid(b) || length > b.Remaining() {
		return nil
	}
	out := b.data[b.read : b.read+length]
	b.read += length
	return out
}

// PopMem copies length bytes from the read cursor into out (if non-nil)
// and advances the cursor. Returns false if insufficient bytes remain.
func (b *Buffer) PopMem(out []byte, length int) bool {
	src := b.Pop(length)
	if src == nil {
		return false
	}
	if out != nil {
		copy(out, src)
	}
	return true
}

// Reserve inserts length bytes at the write cursor via ReserveAt.
func (b *Buffer) Reserve(length int) int {
	return b.ReserveAt(b.write, length)
}

// PushMem inserts in at the write cursor.
func (b *Buffer) PushMem(in []byte, length int) bool {
	return b.WriteAt(in, b.write, length)
}
