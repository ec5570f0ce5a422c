package lowpan

import "github.com/khildebrand/lowpan6/pkg/buffer"

// 6LoWPAN dispatch byte classification (RFC 4944 §5, RFC 6282 §3.1). Every
// 6LoWPAN header begins with a dispatch byte whose top bits classify it;
// this package only decodes the IPHC form. The chain walk gives an IPHC
// header the rest of the frame payload as its length and every other
// dispatch a length of zero, so a walk ends at the first header that is
// not IPHC; mesh addressing, broadcast and NHC headers are not skipped.
const (
	NALPMask uint8 = 0xC0
	NALP     uint8 = 0x00 // 00xxxxxx: not a LoWPAN frame

	IPHCMask uint8 = 0xE0
	IPHCType uint8 = 0x60 // 011xxxxx
)

// Header is a view over one dispatch-prefixed 6LoWPAN header within a
// frame's payload.
type Header struct {
	Buf   buffer.Buffer
	frame Frame
}

func readHeaderType(parent *buffer.Buffer, start int) uint8 {
	p := parent.PeekAt(start, 1)
	if p == nil {
		return NALP
	}
	return p[0]
}

func readHeaderLength(parent *buffer.Buffer, start int, typ uint8) int {
	if typ == NALP {
		return 0
	}
	if typ&IPHCMask == IPHCType {
		if parent.Start() <= start && start <= parent.Write() {
			return parent.Write() - start
		}
	}
	return 0
}

// First returns the first 6LoWPAN header in frame's payload.
func First(frame Frame) Header {
	parent := frame.ResetBuffer()
	start := parent.Read()
	typ := readHeaderType(parent, start)
	length := readHeaderLength(parent, start, typ)

	var h Header
	buffer.Slice(&h.Buf, parent, start, length)
	h.frame = frame
	return h
}

// Next advances h to the following 6LoWPAN header in the chain.
func Next(h *Header) bool {
	if !buffer.IsValid(&h.Buf) {
		return false
	}

	parent := h.Buf.Parent
	start := parent.Write()
	typ := readHeaderType(parent, start)
	length := readHeaderLength(parent, start, typ)

	buffer.Slice(&h.Buf, parent, start, length)
	return true
}

// IsValid reports whether h is a non-empty, well-formed header view.
func IsValid(h *Header) bool {
	return h.Buf.Parent != nil && h.Buf.Length() != 0
}

// Type returns h's dispatch byte.
func Type(h *Header) uint8 {
	return readHeaderType(&h.Buf, h.Buf.Start())
}

// IsIPHC reports whether h carries an IPHC-compressed IPv6 header.
func IsIPHC(h *Header) bool {
	return Type(h)&IPHCMask == IPHCType
}

// AppendHeader appends a new dispatch-prefixed 6LoWPAN header of typ,
// carrying length bytes of content (copied from in, or zeroed if in is
// nil), after h. h is repositioned onto the newly appended header.
func AppendHeader(h *Header, typ uint8, in []byte, length int) bool {
	start := h.Buf.Write()
	if h.Buf.Reserve(1+length) < 0 {
		return false
	}

	parent := h.Buf.Parent
	buffer.Slice(&h.Buf, parent, start, 1+length)
	h.Buf.ReplaceOffset([]byte{typ}, 0, 1)
	h.Buf.ReplaceOffset(in, 1, length)
	return true
}
