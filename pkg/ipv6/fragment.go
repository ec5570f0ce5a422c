package ipv6

import "github.com/khildebrand/lowpan6/pkg/byteorder"

// FragPrepend inserts a Fragment extension header immediately before eh.
// byteOffset is the fragment's offset from the start of the original
// (unfragmented) packet and must be a multiple of 8; it is stored
// relative to eh's insertion point, which must be immediately after the
// packet's unfragmentable part.
func FragPrepend(eh *EH, id uint32, byteOffset uint16) bool {
	if byteOffset%8 != 0 {
		return false
	}
	if !Prepend(eh, Fragment, nil, 6) {
		return false
	}

	offset := byteOffset - uint16(eh.Buf.Start()-eh.Buf.Parent.Start())
	byteorder.BE.SetU16(eh.Buf.PeekAt(eh.Buf.Start()+2, 2), offset)
	byteorder.BE.SetU32(eh.Buf.PeekAt(eh.Buf.Start()+4, 4), id)
	return true
}

// FragAppend advances past eh and prepends a Fragment extension header
// after it.
func FragAppend(eh *EH, id uint32, byteOffset uint16) bool {
	return Next(eh) && FragPrepend(eh, id, byteOffset)
}

// FragFinalize sets the more-fragments bit: clear when the bytes that
// follow the Fragment header, on their own or added to the stored offset,
// reach or exceed totalLength; set otherwise.
func FragFinalize(eh *EH, totalLength uint16) bool {
	if eh.Type() != Fragment {
		return false
	}
	offset := FragOffset(eh)
	length := uint16(eh.Buf.Parent.Write() - eh.Buf.Write())
	isLast := length >= totalLength || offset+length >= totalLength

	more := uint16(0)
	if !isLast {
		more = 1
	}
	byteorder.BE.SetU16(eh.Buf.PeekAt(eh.Buf.Start()+2, 2), (offset&0xFFF8)|more)
	return true
}

// FragOffset returns this fragment's byte offset, masking off the
// reserved bits and the more-fragments flag.
func FragOffset(eh *EH) uint16 {
	b := eh.Buf.PeekAt(eh.Buf.Start()+2, 2)
	if b == nil {
		return 0
	}
	return byteorder.BE.GetU16(b) & 0xFFF8
}

// FragIsLast reports whether the more-fragments bit is clear.
func FragIsLast(eh *EH) bool {
	b := eh.Buf.PeekAt(eh.Buf.Start()+3, 1)
	if b == nil {
		return false
	}
	return b[0]&1 == 0
}

// FragID returns the 32-bit fragment identification value. The source
// this is modeled on reads this field with a 1-byte width, which only
// ever recovers the top 8 bits of id; this reads the full 4-byte
// big-endian field written by FragPrepend.
func FragID(eh *EH) uint32 {
	b := eh.Buf.PeekAt(eh.Buf.Start()+4, 4)
	if b == nil {
		return 0
	}
	return byteorder.BE.GetU32(b)
}
