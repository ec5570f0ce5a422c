// Package ndp implements IPv6 Neighbor Discovery Protocol (RFC 4861)
// message builders and option codecs layered on top of icmpv6 and ipv6.
package ndp

import (
	"github.com/khildebrand/lowpan6/pkg/byteorder"
	"github.com/khildebrand/lowpan6/pkg/icmpv6"
	"github.com/khildebrand/lowpan6/pkg/ipv6"
)

// ICMPv6 message types used by NDP.
const (
	RS       uint8 = 133
	RA       uint8 = 134
	NS       uint8 = 135
	NA       uint8 = 136
	Redirect uint8 = 137
)

// NDP option types.
const (
	OptSLLAO    uint8 = 1
	OptTLLAO    uint8 = 2
	OptPrefix   uint8 = 3
	OptRedirHdr uint8 = 4
	OptMTU      uint8 = 5
)

// RA flags (byte offset 5 of a Router Advertisement).
const (
	RAManaged   uint8 = 0x1 << 7
	RAOtherConf uint8 = 0x1 << 6
)

// NA flags (byte offset 4 of a Neighbor Advertisement).
const (
	NARouter    uint8 = 0x1 << 7
	NASolicited uint8 = 0x1 << 6
	NAOverride  uint8 = 0x1 << 5
)

// Prefix information option flags.
const (
	PrefixOnLink  uint8 = 0x1 << 7
	PrefixAutonom uint8 = 0x1 << 6
)

// RouterAdvert carries the fixed fields of a Router Advertisement.
type RouterAdvert struct {
	CurHopLimit    uint8
	Flags          uint8
	RouterLifetime uint16
	ReachableTime  uint32
	RetransTimer   uint32
}

// Prefix carries the fixed fields of a Prefix Information option; Addr
// must point at a 16-byte IPv6 address.
type Prefix struct {
	Length        uint8
	Flags         uint8
	ValidLifetime uint32
	PreferredLife uint32
	Addr          []byte
}

// AppendRS turns eh into a Router Solicitation.
func AppendRS(eh *ipv6.EH) bool {
	if !icmpv6.Append(eh, RS, 0) {
		return false
	}
	return eh.Buf.PushU32(0)
}

// RSOptFirst returns the first option following a Router Solicitation.
func RSOptFirst(eh *ipv6.EH) ipv6.Option { return firstOptionAt(eh, 8) }

// AppendRA turns eh into a Router Advertisement with the given fields.
func AppendRA(eh *ipv6.EH, fields RouterAdvert) bool {
	if !icmpv6.Append(eh, RA, 0) {
		return false
	}
	ok := eh.Buf.PushU8(fields.CurHopLimit)
	ok = ok && eh.Buf.PushU8(fields.Flags&0xC0)
	ok = ok && eh.Buf.PushU16(fields.RouterLifetime)
	ok = ok && eh.Buf.PushU32(fields.ReachableTime)
	ok = ok && eh.Buf.PushU32(fields.RetransTimer)
	return ok
}

// RAHopLimit returns a Router Advertisement's current-hop-limit field.
func RAHopLimit(eh *ipv6.EH) uint8 { return peekU8(eh, 4) }

// RAFlags returns a Router Advertisement's flags byte.
func RAFlags(eh *ipv6.EH) uint8 { return peekU8(eh, 5) }

// RARouterLifetime returns a Router Advertisement's router-lifetime field.
func RARouterLifetime(eh *ipv6.EH) uint16 { return peekU16(eh, 6) }

// RAReachableTime returns a Router Advertisement's reachable-time field.
func RAReachableTime(eh *ipv6.EH) uint32 { return peekU32(eh, 8) }

// RARetransTime returns a Router Advertisement's retrans-timer field.
func RARetransTime(eh *ipv6.EH) uint32 { return peekU32(eh, 12) }

// RAOptFirst returns the first option following a Router Advertisement.
func RAOptFirst(eh *ipv6.EH) ipv6.Option { return firstOptionAt(eh, 16) }

// AppendNS turns eh into a Neighbor Solicitation for targetAddr (16 bytes).
func AppendNS(eh *ipv6.EH, targetAddr []byte) bool {
	if !icmpv6.Append(eh, NS, 0) {
		return false
	}
	ok := eh.Buf.PushU32(0)
	ok = ok && eh.Buf.PushMem(targetAddr, 16)
	return ok
}

// NSTarget returns a Neighbor Solicitation's target-address field.
func NSTarget(eh *ipv6.EH) []byte { return peekAddr(eh, 8) }

// NSOptFirst returns the first option following a Neighbor Solicitation.
func NSOptFirst(eh *ipv6.EH) ipv6.Option { return firstOptionAt(eh, 24) }

// AppendNA turns eh into a Neighbor Advertisement for targetAddr.
func AppendNA(eh *ipv6.EH, flags uint8, targetAddr []byte) bool {
	if !icmpv6.Append(eh, NA, 0) {
		return false
	}
	ok := eh.Buf.PushU8(flags & 0xE0)
	ok = ok && eh.Buf.PushU8(0)
	ok = ok && eh.Buf.PushU16(0)
	ok = ok && eh.Buf.PushMem(targetAddr, 16)
	return ok
}

// NAFlags returns a Neighbor Advertisement's flags byte.
func NAFlags(eh *ipv6.EH) uint8 { return peekU8(eh, 4) & 0xE0 }

// NATarget returns a Neighbor Advertisement's target-address field.
func NATarget(eh *ipv6.EH) []byte { return peekAddr(eh, 8) }

// NAOptFirst returns the first option following a Neighbor Advertisement.
func NAOptFirst(eh *ipv6.EH) ipv6.Option { return firstOptionAt(eh, 24) }

// AppendRedirect turns eh into a Redirect message.
func AppendRedirect(eh *ipv6.EH, target, dest []byte) bool {
	if !icmpv6.Append(eh, Redirect, 0) {
		return false
	}
	ok := eh.Buf.PushU32(0)
	ok = ok && eh.Buf.PushMem(target, 16)
	ok = ok && eh.Buf.PushMem(dest, 16)
	return ok
}

// RedirectTarget returns a Redirect message's target-address field.
func RedirectTarget(eh *ipv6.EH) []byte { return peekAddr(eh, 8) }

// RedirectDest returns a Redirect message's destination-address field.
func RedirectDest(eh *ipv6.EH) []byte { return peekAddr(eh, 24) }

// RedirectOptFirst returns the first option following a Redirect message.
func RedirectOptFirst(eh *ipv6.EH) ipv6.Option { return firstOptionAt(eh, 40) }

// AppendSLLAO appends a Source Link-Layer Address option after opt and
// finalizes it (length byte set, padded to 8 octets).
func AppendSLLAO(opt *ipv6.Option, addr []byte) bool {
	if !ipv6.OptAppend(opt, OptSLLAO, addr, len(addr), 4, 0) {
		return false
	}
	ipv6.OptFinalize(opt)
	return true
}

// AppendTLLAO appends a Target Link-Layer Address option after opt and
// finalizes it (length byte set, padded to 8 octets).
func AppendTLLAO(opt *ipv6.Option, addr []byte) bool {
	if !ipv6.OptAppend(opt, OptTLLAO, addr, len(addr), 4, 0) {
		return false
	}
	ipv6.OptFinalize(opt)
	return true
}

// LLAO returns an SLLAO/TLLAO option's link-layer address bytes.
func LLAO(opt *ipv6.Option) []byte {
	opt.Buf.ReadSeek(2)
	return opt.Buf.Bytes()[2:]
}

// AppendPrefix appends a Prefix Information option after opt.
func AppendPrefix(opt *ipv6.Option, p Prefix) bool {
	if !ipv6.OptAppend(opt, OptPrefix, nil, 0, 4, 0) {
		return false
	}
	ok := opt.Buf.PushU8(p.Length)
	ok = ok && opt.Buf.PushU8(p.Flags&0xC0)
	ok = ok && opt.Buf.PushU32(p.ValidLifetime)
	ok = ok && opt.Buf.PushU32(p.PreferredLife)
	ok = ok && opt.Buf.PushU32(0)
	ok = ok && opt.Buf.PushMem(p.Addr, 16)
	return ok
}

// PrefixLength returns a Prefix Information option's prefix-length field.
func PrefixLength(opt *ipv6.Option) uint8 { return peekOptU8(opt, 2) }

// PrefixFlags returns a Prefix Information option's flags byte.
func PrefixFlags(opt *ipv6.Option) uint8 { return peekOptU8(opt, 3) }

// PrefixValidLifetime returns a Prefix Information option's valid-lifetime
// field.
func PrefixValidLifetime(opt *ipv6.Option) uint32 { return peekOptU32(opt, 4) }

// PrefixPreferredLifetime returns a Prefix Information option's
// preferred-lifetime field.
func PrefixPreferredLifetime(opt *ipv6.Option) uint32 { return peekOptU32(opt, 8) }

// PrefixAddr returns a Prefix Information option's prefix address.
func PrefixAddr(opt *ipv6.Option) []byte { return peekOptAddr(opt, 16) }

// AppendRedirHdr appends a Redirected Header option after opt, carrying
// as much of pkt as fits.
func AppendRedirHdr(opt *ipv6.Option, pkt []byte) bool {
	if !ipv6.OptAppend(opt, OptRedirHdr, nil, 0, 4, 0) {
		return false
	}
	if !opt.Buf.PushU16(0) || !opt.Buf.PushU32(0) {
		return false
	}
	n := len(pkt)
	if free := opt.Buf.Tailroom(); n > free {
		n = free
	}
	return opt.Buf.PushMem(pkt, n)
}

// RedirHdrData returns a Redirected Header option's embedded packet data.
func RedirHdrData(opt *ipv6.Option) []byte {
	opt.Buf.ReadSeek(8)
	return opt.Buf.Bytes()[8:]
}

// AppendMTU appends an MTU option after opt.
func AppendMTU(opt *ipv6.Option, mtu uint32) bool {
	if !ipv6.OptAppend(opt, OptMTU, nil, 0, 4, 0) {
		return false
	}
	ok := opt.Buf.PushU16(0)
	ok = ok && opt.Buf.PushU32(mtu)
	return ok
}

// MTU returns an MTU option's mtu field.
func MTU(opt *ipv6.Option) uint32 { return peekOptU32(opt, 4) }

// --- helpers ---------------------------------------------------------------

func firstOptionAt(eh *ipv6.EH, offset int) ipv6.Option {
	return ipv6.OptReadAt(eh, offset)
}

func peekU8(eh *ipv6.EH, offset int) uint8 {
	b := eh.Buf.PeekAt(eh.Buf.Start()+offset, 1)
	if b == nil {
		return 0
	}
	return b[0]
}

func peekU16(eh *ipv6.EH, offset int) uint16 {
	b := eh.Buf.PeekAt(eh.Buf.Start()+offset, 2)
	if b == nil {
		return 0
	}
	return byteorder.BE.GetU16(b)
}

func peekU32(eh *ipv6.EH, offset int) uint32 {
	b := eh.Buf.PeekAt(eh.Buf.Start()+offset, 4)
	if b == nil {
		return 0
	}
	return byteorder.BE.GetU32(b)
}

func peekAddr(eh *ipv6.EH, offset int) []byte {
	return eh.Buf.PeekAt(eh.Buf.Start()+offset, 16)
}

func peekOptU8(opt *ipv6.Option, offset int) uint8 {
	b := opt.Buf.PeekAt(opt.Buf.Start()+offset, 1)
	if b == nil {
		return 0
	}
	return b[0]
}

func peekOptU32(opt *ipv6.Option, offset int) uint32 {
	b := opt.Buf.PeekAt(opt.Buf.Start()+offset, 4)
	if b == nil {
		return 0
	}
	return byteorder.BE.GetU32(b)
}

func peekOptAddr(opt *ipv6.Option, offset int) []byte {
	return opt.Buf.PeekAt(opt.Buf.Start()+offset, 16)
}
