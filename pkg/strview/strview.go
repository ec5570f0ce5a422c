// Package strview implements a minimal, allocation-free byte-string view:
// a {start, end} window over caller-owned storage, mirroring the original
// source's String type (types/buffer.c's string_* family).
package strview

import "bytes"

// View is a byte-string view over an externally owned slice. The zero
// value is the empty string.
type View struct {
	data []byte
}

// New returns a View over data[start:end]. Returns an empty View if the
// range is out of bounds.
func New(data []byte, start, end int) View {
	if start < 0 || end < start || end > len(data) {
		return View{}
	}
	return View{data: data[start:end]}
}

// FromBytes returns a View over all of data.
func FromBytes(data []byte) View { return View{data: data} }

// Length returns the view's byte length.
func (v View) Length() int { return len(v.data) }

// IsEmpty reports whether the view has zero length.
func (v View) IsEmpty() bool { return len(v.data) == 0 }

// Bytes returns the view's underlying bytes. The caller must not retain
// this past the lifetime of the backing storage.
func (v View) Bytes() []byte { return v.data }

// String returns the view's content as a Go string (a copy).
func (v View) String() string { return string(v.data) }

// Equal reports whether v and w have identical content.
func (v View) Equal(w View) bool { return bytes.Equal(v.data, w.data) }

// EqualFold reports whether v and w are equal under ASCII case-folding.
func (v View) EqualFold(w View) bool { return bytes.EqualFold(v.data, w.data) }

// Compare returns -1, 0, or 1 per bytes.Compare semantics.
func (v View) Compare(w View) int { return bytes.Compare(v.data, w.data) }

// Index returns the byte offset of the first occurrence of sub in v, or -1.
func (v View) Index(sub View) int { return bytes.Index(v.data, sub.data) }

// Contains reports whether sub occurs within v.
func (v View) Contains(sub View) bool { return bytes.Contains(v.data, sub.data) }

// Duplicate copies v's bytes into dest, returning the number of bytes
// copied (truncated if dest is shorter than v).
func (v View) Duplicate(dest []byte) int { return copy(dest, v.data) }

// Tokenize splits v on any byte in delims, mirroring strtok: empty tokens
// (runs of consecutive delimiters) are skipped.
func Tokenize(v View, delims []byte) []View {
	var toks []View
	isDelim := func(b byte) bool {
		for _, d := range delims {
			if b == d {
				return true
			}
		}
		return false
	}

	i := 0
	for i < len(v.data) {
		for i < len(v.data) && isDelim(v.data[i]) {
			i++
		}
		if i >= len(v.data) {
			break
		}
		start := i
		for i < len(v.data) && !isDelim(v.data[i]) {
			i++
		}
		toks = append(toks, View{data: v.data[start:i]})
	}
	return toks
}
