// Package icmpv6 implements the RFC 4443 ICMPv6 message codec: a thin
// wire-format overlay on the last (upper-layer) extension header of an
// ipv6.Packet, plus the pseudo-header checksum RFC 8200 requires of
// every upper-layer protocol running over IPv6.
package icmpv6

import (
	"github.com/khildebrand/lowpan6/pkg/byteorder"
	"github.com/khildebrand/lowpan6/pkg/ipv6"
)

// Message types, RFC 4443.
const (
	DestUnreachable uint8 = 1
	PacketTooBig    uint8 = 2
	TimeExceeded    uint8 = 3
	ParamProblem    uint8 = 4
	EchoRequest     uint8 = 128
	EchoReply       uint8 = 129
)

// IsICMPv6 reports whether eh's type is ICMPv6.
func IsICMPv6(eh *ipv6.EH) bool { return eh.Type() == ipv6.ICMPv6 }

// Type returns the message type byte.
func Type(eh *ipv6.EH) uint8 {
	b := eh.Buf.PeekAt(eh.Buf.Start(), 1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Code returns the message code byte.
func Code(eh *ipv6.EH) uint8 {
	b := eh.Buf.PeekAt(eh.Buf.Start()+1, 1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Checksum returns the 16-bit checksum field as currently stored.
func Checksum(eh *ipv6.EH) uint16 {
	b := eh.Buf.PeekAt(eh.Buf.Start()+2, 2)
	if b == nil {
		return 0
	}
	return byteorder.BE.GetU16(b)
}

// ResetBuffer repositions eh's buffer for reading the message body from
// its start.
func ResetBuffer(eh *ipv6.EH) { eh.ResetBuffer() }

// Append turns eh into an ICMPv6 message of the given type and code,
// with checksum zeroed pending Finalize. An empty ICMPv6 header that the
// chain already names (next-header set to ICMPv6, no body yet) is written
// in place; otherwise an ICMPv6 header is appended after eh.
func Append(eh *ipv6.EH, typ, code uint8) bool {
	if eh.Type() != ipv6.ICMPv6 || eh.Length() != 0 {
		if !ipv6.Append(eh, ipv6.ICMPv6, nil, 0) {
			return false
		}
	}
	ok := eh.Buf.PushU8(typ)
	ok = ok && eh.Buf.PushU8(code)
	ok = ok && eh.Buf.PushU16(0)
	return ok
}

// AppendError builds an ICMPv6 error message: type, code, a 4-byte
// parameter, and as much of data as fits in the remaining tailroom (so
// the invoking packet can be truncated to respect the minimum IPv6
// MTU).
func AppendError(eh *ipv6.EH, typ, code uint8, param uint32, data []byte) bool {
	if !Append(eh, typ, code) {
		return false
	}
	if !eh.Buf.PushU32(param) {
		return false
	}
	n := len(data)
	if free := eh.Buf.Tailroom(); n > free {
		n = free
	}
	return eh.Buf.PushMem(data, n)
}

// ErrorParam returns the 4-byte parameter field of an error message.
func ErrorParam(eh *ipv6.EH) uint32 {
	b := eh.Buf.PeekAt(eh.Buf.Start()+4, 4)
	if b == nil {
		return 0
	}
	return byteorder.BE.GetU32(b)
}

// AppendEchoRequest builds an Echo Request with the given identifier,
// sequence number, and data payload.
func AppendEchoRequest(eh *ipv6.EH, id, seqnum uint16, data []byte) bool {
	if !Append(eh, EchoRequest, 0) {
		return false
	}
	ok := eh.Buf.PushU16(id)
	ok = ok && eh.Buf.PushU16(seqnum)
	ok = ok && eh.Buf.PushMem(data, len(data))
	return ok
}

// AppendEchoReply builds an Echo Reply from orig, an Echo Request,
// copying its identifier, sequence number, and data payload unchanged.
func AppendEchoReply(eh, orig *ipv6.EH) bool {
	if !Append(eh, EchoReply, 0) {
		return false
	}
	id := EchoID(orig)
	seqnum := EchoSeqNum(orig)
	data := EchoData(orig)

	ok := eh.Buf.PushU16(id)
	ok = ok && eh.Buf.PushU16(seqnum)
	ok = ok && eh.Buf.PushMem(data, len(data))
	return ok
}

// EchoID returns an echo message's identifier field.
func EchoID(eh *ipv6.EH) uint16 {
	b := eh.Buf.PeekAt(eh.Buf.Start()+4, 2)
	if b == nil {
		return 0
	}
	return byteorder.BE.GetU16(b)
}

// EchoSeqNum returns an echo message's sequence-number field.
func EchoSeqNum(eh *ipv6.EH) uint16 {
	b := eh.Buf.PeekAt(eh.Buf.Start()+6, 2)
	if b == nil {
		return 0
	}
	return byteorder.BE.GetU16(b)
}

// EchoData returns an echo message's data payload, following the
// 4-byte identifier/sequence-number prologue.
func EchoData(eh *ipv6.EH) []byte {
	n := eh.Buf.Length() - 8
	if n < 0 {
		return nil
	}
	return eh.Buf.PeekAt(eh.Buf.Start()+8, n)
}

// CalcChecksum computes the ICMPv6 checksum over the IPv6 pseudo-header
// (source address, destination address, upper-layer length as a 32-bit
// value, 3 zero bytes, next-header=58) concatenated with the ICMPv6
// message itself. A zero result is returned as the transmitted sentinel
// 0xFFFF, per RFC 1071.
func CalcChecksum(eh *ipv6.EH) uint16 {
	pkt := eh.Pkt()
	length := eh.Buf.Length()

	seed := uint32(length) + uint32(ipv6.ICMPv6)
	seed = ipv6.Checksum(pkt.Src(), seed)
	seed = ipv6.Checksum(pkt.Dst(), seed)
	seed = ipv6.Checksum(eh.Buf.PeekAt(eh.Buf.Start(), length), seed)

	sum := ^uint16(seed)
	if sum == 0 {
		return 0xFFFF
	}
	return sum
}

func setChecksum(eh *ipv6.EH, checksum uint16) {
	eh.Buf.ReplaceAt([]byte{0, 0}, eh.Buf.Start()+2, 2)
	byteorder.BE.SetU16(eh.Buf.PeekAt(eh.Buf.Start()+2, 2), checksum)
}

// Finalize finalizes the owning packet, zeros the checksum field, then
// recomputes and writes the final checksum.
func Finalize(eh *ipv6.EH) {
	eh.Pkt().Finalize()
	setChecksum(eh, 0)
	setChecksum(eh, CalcChecksum(eh))
}
