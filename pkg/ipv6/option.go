package ipv6

import "github.com/khildebrand/lowpan6/pkg/buffer"

// TLV option type values used by the padding logic; all other values are
// caller-defined (e.g. the NDP option types).
const (
	OptTypePad1    uint8 = 0x00
	OptTypePadN    uint8 = 0x01
	OptTypeInvalid uint8 = 255
)

const (
	optProcShift   = 6
	optChangeShift = 5
)

// OptProcessing extracts the unrecognized-option processing action from a
// TLV option type's top two bits.
func OptProcessing(t uint8) uint8 { return (t >> optProcShift) & 0x3 }

// OptChangesInTransit reports whether the option's data may change
// in-transit, per its bit-5 flag.
func OptChangesInTransit(t uint8) bool { return (t>>optChangeShift)&0x1 != 0 }

// Option is a view over a single TLV option within a Hop-by-Hop or
// Destination Options extension header, or over an NDP-style option inside
// an upper-layer message read with OptReadAt (OptFirst on an upper-layer
// header gives a terminal view).
type Option struct {
	Buf buffer.Buffer
	eh  *EH
}

func readOptType(b *buffer.Buffer, start int) uint8 {
	p := b.PeekAt(start, 1)
	if p == nil {
		return OptTypeInvalid
	}
	return p[0]
}

func readOptLength(parent *buffer.Buffer, start int, typ uint8, upper bool) int {
	if !buffer.IsValid(parent) || typ == OptTypeInvalid {
		return 0
	}
	if upper {
		p := parent.PeekAt(start+1, 1)
		if p == nil {
			return 0
		}
		return 8 * int(p[0])
	}
	if typ == OptTypePad1 {
		return 1
	}
	p := parent.PeekAt(start+1, 1)
	if p == nil {
		return 0
	}
	return 2 + int(p[0])
}

func readOption(eh *EH, b *buffer.Buffer, start int) Option {
	typ := readOptType(b, start)
	length := readOptLength(b, start, typ, IsUpper(eh.Type()))

	var opt Option
	buffer.Slice(&opt.Buf, b, start, length)
	opt.Buf.ReadSeek(2)
	opt.eh = eh
	return opt
}

// OptReadAt reads a TLV option directly at the given byte offset within
// eh, bypassing the upper-layer placeholder check OptFirst applies. Used
// by NDP message codecs, whose fixed-format fields are followed by
// options at a message-specific offset.
func OptReadAt(eh *EH, offset int) Option {
	return readOption(eh, &eh.Buf, eh.Buf.Offset(offset))
}

// OptFirst returns the first TLV option within eh. If eh is not valid or
// is an upper-layer header (which carries no TLV options), the returned
// Option is a zero-length terminal sentinel.
func OptFirst(eh *EH) Option {
	if !eh.IsValid() || IsUpper(eh.Type()) {
		var opt Option
		buffer.Slice(&opt.Buf, &eh.Buf, eh.Buf.Start(), 0)
		opt.eh = eh
		return opt
	}
	return readOption(eh, &eh.Buf, eh.Buf.Offset(2))
}

// OptIsValid reports whether opt's slice is non-empty and well-formed.
func OptIsValid(opt *Option) bool {
	return buffer.IsValid(&opt.Buf) && opt.Buf.Start() < opt.Buf.Write()
}

// OptNext advances opt to the next TLV option in its extension header.
func OptNext(opt *Option) bool {
	if !OptIsValid(opt) {
		return false
	}
	parent := opt.Buf.Parent
	start := opt.Buf.Write()
	typ := readOptType(parent, start)
	length := readOptLength(parent, start, typ, IsUpper(opt.eh.Type()))

	buffer.Slice(&opt.Buf, parent, start, length)
	opt.Buf.ReadSeek(2)
	return true
}

// OptType returns opt's type, or OptTypeInvalid if opt is not valid.
func OptType(opt *Option) uint8 {
	if !OptIsValid(opt) {
		return OptTypeInvalid
	}
	return readOptType(&opt.Buf, opt.Buf.Start())
}

// OptLength returns the option's total length (type, length, and
// content bytes).
func OptLength(opt *Option) int { return opt.Buf.Length() }

func optLengthContent(opt *Option) int {
	length := OptLength(opt)
	if length < 2 {
		return 0
	}
	return length - 2
}

// OptResetBuffer positions the read cursor past the 2-byte (type,
// length) prologue, returning a buffer ready for content reads/writes.
func OptResetBuffer(opt *Option) *buffer.Buffer {
	opt.Buf.ReadSeek(2)
	return &opt.Buf
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// OptAppend inserts a new TLV option with the given type and content
// after opt, at alignment m*N + b (m in {1,2,4,8}), inserting PAD1/PADN
// padding as needed ahead of it. The option's length byte is left unset;
// call OptFinalize once its content has been written.
func OptAppend(opt *Option, typ uint8, data []byte, length, m, b int) bool {
	if !buffer.IsValid(&opt.Buf) {
		return false
	}
	if opt.Buf.Tailroom() < length {
		return false
	}
	if m != 1 && m != 2 && m != 4 && m != 8 {
		return false
	}
	b = mod(b, m)

	eh := opt.Buf.Parent
	end := opt.Buf.Write()
	pad := mod(m-mod(eh.OffsetOf(end)-b, m), m)

	current := eh.Write() - opt.Buf.Write()
	if current < pad+length+2 {
		opt.Buf.Reserve(pad + length + 2 - current)
	}

	optPad(opt, end, pad)

	buffer.Slice(&opt.Buf, eh, end+pad, length+2)
	opt.Buf.ReplaceAt([]byte{typ}, end+pad+0, 1)
	opt.Buf.ReplaceAt(data, end+pad+2, length)
	opt.Buf.ReadSeek(2)
	return true
}

// OptFinalize sets the option's length byte, pads its parent extension
// header to a multiple of 8 bytes, and writes PAD1/PADN into the gap.
func OptFinalize(opt *Option) {
	var length int
	if IsUpper(opt.eh.Type()) {
		length = (OptLength(opt) + 7) / 8
	} else {
		length = optLengthContent(opt)
	}
	opt.Buf.ReplaceOffset([]byte{uint8(length)}, 1, 1)

	parent := opt.Buf.Parent
	end := parent.OffsetOf(opt.Buf.Write())
	pad := (end + 7) / 8 * 8

	current := parent.Write() - opt.Buf.Write()
	if current < pad-end {
		parent.Reserve(pad - end - current)
	}

	optPad(opt, opt.Buf.Write(), pad-end)
}

// optPad zero-fills [start, start+length) in opt's parent buffer and, for
// non-upper-layer headers with at least 2 bytes of padding, overlays a
// PADN option (a single byte of padding implicitly reads back as PAD1,
// whose entire encoding is the zero type byte).
func optPad(opt *Option, start, length int) {
	if length <= 0 {
		return
	}
	parent := opt.Buf.Parent
	parent.ReplaceAt(nil, start, length)

	if !IsUpper(opt.eh.Type()) && length >= 2 {
		padLen := uint8(length - 2)
		parent.ReplaceAt([]byte{OptTypePadN}, start+0, 1)
		parent.ReplaceAt([]byte{padLen}, start+1, 1)
	}
}
