package ipv6

import "github.com/khildebrand/lowpan6/pkg/buffer"

// EH is a view over one header in an IPv6 extension-header chain: a
// Buffer slice over the header's own content, plus prev, the absolute
// offset (within top) of the byte that holds this header's type — the
// preceding header's next-header field. For the first EH of a genuine
// ipv6.Packet that byte is offset 6 of the base header.
//
// top anchors the chain: the Buffer whose Write() cursor bounds how far
// an upper-layer header's content extends, and whose ReserveAt cascades
// receive Prepend/Append's insertions. Most callers get an EH via First,
// which anchors it to a Packet; pkt is then non-nil and Pkt() returns it.
// EHAt anchors an EH to an arbitrary Buffer instead — used by the 6LoWPAN
// decoder to walk the still-compressed extension-header tail living
// inside a frame buffer, before any of it has been copied into a Packet.
//
// Unlike the C source this is modeled on, EH carries an explicit handle
// (top, and optionally pkt) rather than aliasing a raw parent buffer
// pointer, per the "avoid raw back-pointers, use a handle" guidance for
// memory-safe rewrites of this design.
type EH struct {
	Buf  buffer.Buffer
	prev int
	top  *buffer.Buffer
	pkt  *Packet
}

// IsUpper reports whether type is an upper-layer (payload-carrying, not
// EH-structured) type: every type except HopByHop, Routing, Fragment,
// ESP, Auth, NoNextHeader, Destination, Mobility, HIP, Shim6, Reserved1,
// Reserved2.
func IsUpper(t uint8) bool {
	switch t {
	case HopByHop, Routing, Fragment, ESP, Auth, NoNextHeader,
		Destination, Mobility, HIP, Shim6, Reserved1, Reserved2:
		return false
	default:
		return true
	}
}

// CanFrag reports whether an EH of this type belongs to the fragmentable
// part of a packet: every type except HBH and Routing, which stay in the
// unfragmentable prefix ahead of a Fragment EH.
func CanFrag(t uint8) bool {
	return t != HopByHop && t != Routing
}

func lengthRule(top *buffer.Buffer, start int, typ uint8) int {
	switch {
	case typ == NoNextHeader || typ == Invalid:
		return 0
	case IsUpper(typ):
		return top.Write() - start
	case typ == Fragment:
		return 8
	default:
		b := top.PeekAt(start+1, 1)
		if b == nil {
			return 0
		}
		return 8 + 8*int(b[0])
	}
}

func readTypeAt(top *buffer.Buffer, prev int) uint8 {
	b := top.PeekAt(prev, 1)
	if b == nil {
		return Invalid
	}
	return b[0]
}

// First returns the first EH in pkt's chain, reading the base header's
// next-header byte (offset 6) to determine its type.
func First(pkt *Packet) EH {
	prev := pkt.Buf.Start() + 6
	start := pkt.Buf.Start() + HeaderLength
	typ := readTypeAt(&pkt.Buf, prev)
	length := lengthRule(&pkt.Buf, start, typ)

	var buf buffer.Buffer
	buffer.Slice(&buf, &pkt.Buf, start, length)
	eh := EH{Buf: buf, prev: prev, top: &pkt.Buf, pkt: pkt}
	eh.resetBuffer()
	return eh
}

// EHAt constructs an EH directly at a known (prev, start) pair within an
// arbitrary top buffer, without walking the chain from the beginning and
// without requiring a Packet. prev is the absolute offset of the type
// byte that names this EH (as stored by whatever preceding structure
// owns it); start is the absolute offset of the EH's own content.
func EHAt(top *buffer.Buffer, prev, start int) EH {
	typ := readTypeAt(top, prev)
	length := lengthRule(top, start, typ)

	var buf buffer.Buffer
	buffer.Slice(&buf, top, start, length)
	eh := EH{Buf: buf, prev: prev, top: top}
	eh.resetBuffer()
	return eh
}

// IsValid reports whether the EH's slice is non-empty and well-formed.
func (eh *EH) IsValid() bool {
	return buffer.IsValid(&eh.Buf) && eh.Buf.Start() < eh.Buf.Write()
}

// Type returns the EH's type, read from the preceding header's
// next-header field.
func (eh *EH) Type() uint8 {
	return readTypeAt(eh.top, eh.prev)
}

// Length returns the total byte length of this EH's content.
func (eh *EH) Length() int { return eh.Buf.Length() }

// Pkt returns the owning Packet, or nil if this EH was constructed over a
// generic buffer via EHAt rather than via First over a real Packet.
func (eh *EH) Pkt() *Packet { return eh.pkt }

// Next advances eh to the following EH in the chain. Returns false (and,
// for the upper-layer case, collapses eh to a zero-length terminal
// sentinel) when there is no next header — either because eh is not
// valid (e.g. it is already the zero-length placeholder of a freshly
// cleared packet) or because eh is itself an upper-layer header.
func Next(eh *EH) bool {
	if !eh.IsValid() {
		return false
	}
	if IsUpper(eh.Type()) {
		eh.prev = eh.Buf.Start()
		buffer.Slice(&eh.Buf, eh.top, eh.top.End(), 0)
		return false
	}

	oldLen := eh.Buf.Length()

	eh.prev = eh.Buf.Start()
	newStart := eh.Buf.Start() + oldLen
	newType := readTypeAt(eh.top, eh.Buf.Start())
	newLen := lengthRule(eh.top, newStart, newType)

	buffer.Slice(&eh.Buf, eh.top, newStart, newLen)
	eh.Buf.ReadSeek(2)
	return true
}

// resetBuffer positions the read cursor past the 2-byte (next-header,
// hdr-ext-len) prologue for non-upper EHs so payload reads start after
// it; upper-layer EHs have no prologue.
func (eh *EH) resetBuffer() *buffer.Buffer {
	if IsUpper(eh.Type()) {
		eh.Buf.ReadSeek(0)
	} else {
		eh.Buf.ReadSeek(2)
	}
	return &eh.Buf
}

// ResetBuffer is the exported form of resetBuffer, used by upper-layer
// codecs (ICMPv6, NDP) to obtain a buffer positioned for payload writes.
func (eh *EH) ResetBuffer() *buffer.Buffer { return eh.resetBuffer() }

func (eh *EH) setType(t uint8) {
	eh.top.ReplaceAt([]byte{t}, eh.prev, 1)
}

func (eh *EH) setLength(length int) {
	hlen := uint8((length+7)/8 - 1)
	eh.Buf.ReplaceOffset([]byte{hlen}, 1, 1)
}

// Prepend inserts a new EH of the given type and payload before eh.
//
// If newType is upper-layer, eh must currently be the NoNextHeader
// terminal placeholder and there must be tailroom for len bytes (no
// type/length prologue is written — an upper-layer header has none).
// Otherwise tailroom for len+2 bytes is required; the old type is saved
// into the new header's own next-header byte (continuing the chain) and
// the preceding next-header field is patched to newType.
func Prepend(eh *EH, newType uint8, data []byte, length int) bool {
	if !buffer.IsValid(&eh.Buf) || eh.Buf.Parent == nil {
		return false
	}

	if IsUpper(newType) {
		if eh.Type() != NoNextHeader {
			return false
		}
		if eh.Buf.Tailroom() < length {
			return false
		}
		eh.setType(newType)
		buffer.Slice(&eh.Buf, eh.Buf.Parent, eh.Buf.Start(), 0)
		eh.Buf.PushMem(data, length)
		return true
	}

	if eh.Buf.Tailroom() < length+2 {
		return false
	}
	next := eh.Type()
	eh.setType(newType)
	buffer.Slice(&eh.Buf, eh.Buf.Parent, eh.Buf.Start(), 0)
	eh.Buf.Reserve(length + 2)
	eh.Buf.ReplaceOffset([]byte{next}, 0, 1)
	eh.Buf.ReplaceOffset(data, 2, length)
	eh.Buf.ReadSeek(2)
	return true
}

// Append inserts a new EH after eh, advancing past eh first. Fails if eh
// is itself upper-layer (nothing may follow an upper-layer header).
func Append(eh *EH, newType uint8, data []byte, length int) bool {
	if IsUpper(eh.Type()) {
		return false
	}
	Next(eh)
	return Prepend(eh, newType, data, length)
}

// Finalize rounds a non-upper EH's length up to a multiple of 8
// (reserving zeroed padding) and patches its hdr-ext-len byte. Upper-layer
// EHs are left untouched.
func Finalize(eh *EH) {
	if IsUpper(eh.Type()) {
		return
	}
	end := eh.Buf.Length()
	pad := (end + 7) / 8 * 8
	eh.Buf.Reserve(pad - end)
	eh.setLength(eh.Buf.Length())
}
