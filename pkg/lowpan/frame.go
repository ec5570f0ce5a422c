// Package lowpan implements 6LoWPAN (RFC 4944/6282) header compression: a
// generic dispatch-prefixed header chain over an IEEE 802.15.4 frame
// payload, an IPHC compressor/decompressor, and the shared address-context
// table IPHC compresses source/destination addresses against.
package lowpan

import "github.com/khildebrand/lowpan6/pkg/buffer"

// Frame is the minimal IEEE 802.15.4 frame interface the 6LoWPAN engine
// depends on. It never needs to parse link-layer addressing headers,
// security headers, or information elements itself — only to ask a frame
// implementation for the already-elided source/destination addresses (so
// IPHC can detect when an IPv6 address byte range duplicates them) and for
// a cursor onto the frame's payload positioned after anything that
// precedes the 6LoWPAN header chain.
type Frame interface {
	// SrcAddr returns the frame's link-layer source address, its natural
	// byte length (2 for a short address, 8 for an extended address), or
	// nil if the frame carries no source addressing (LengthSrcAddr() == 0).
	SrcAddr() []byte

	// DestAddr returns the frame's link-layer destination address.
	DestAddr() []byte

	// LengthSrcAddr returns the byte length of SrcAddr(), or 0 if absent.
	LengthSrcAddr() int

	// LengthDestAddr returns the byte length of DestAddr(), or 0 if absent.
	LengthDestAddr() int

	// Free returns the number of bytes still available for 6LoWPAN
	// headers and payload in the frame.
	Free() int

	// ResetBuffer returns the frame's payload buffer, positioned after
	// any link-layer headers / information elements that precede the
	// 6LoWPAN header chain.
	ResetBuffer() *buffer.Buffer
}

// StaticFrame is a Frame backed by a fixed-capacity byte slice and a pair
// of link-layer addresses supplied directly by the caller — the shape a
// test harness or a simple MAC layer driving this package needs, without
// requiring a full IEEE 802.15.4 frame parser (out of scope for this
// module; see Non-goals).
type StaticFrame struct {
	Buf  buffer.Buffer
	Src  []byte
	Dest []byte
}

// NewStaticFrame constructs a StaticFrame over data with capacity cap,
// already positioned at an empty 6LoWPAN payload (i.e. as if any MAC
// header has already been consumed).
func NewStaticFrame(data []byte, cap int, src, dest []byte) *StaticFrame {
	b := buffer.New(data, 0, cap)
	if b == nil {
		return nil
	}
	return &StaticFrame{Buf: *b, Src: src, Dest: dest}
}

func (f *StaticFrame) SrcAddr() []byte  { return f.Src }
func (f *StaticFrame) DestAddr() []byte { return f.Dest }

func (f *StaticFrame) LengthSrcAddr() int  { return len(f.Src) }
func (f *StaticFrame) LengthDestAddr() int { return len(f.Dest) }

func (f *StaticFrame) Free() int { return f.Buf.Tailroom() }

func (f *StaticFrame) ResetBuffer() *buffer.Buffer {
	f.Buf.ReadSet(f.Buf.Start())
	return &f.Buf
}
