package lowpan

import (
	"github.com/khildebrand/lowpan6/pkg/byteorder"
	"github.com/khildebrand/lowpan6/pkg/ipv6"
)

// LOWPAN_IPHC dispatch byte: binary 011 in the top 3 bits.
const IPHCDispatch uint8 = 0x60

// IPHC field masks and values, over the 16-bit big-endian IPHC header
// (RFC 6282 §3.1):
//
//	 0                                       1
//	 0   1   2   3   4   5   6   7   8   9   0   1   2   3   4   5
//	+---+---+---+---+---+---+---+---+---+---+---+---+---+---+---+---+
//	| 0 | 1 | 1 |  TF   |NH | HLIM  |CID|SAC|  SAM  | M |DAC|  DAM  |
//	+---+---+---+---+---+---+---+---+---+---+---+---+---+---+---+---+
const (
	tfMask uint16 = 0x1800
	tfTCFL uint16 = 0x0000
	tfFL   uint16 = 0x0800
	tfTC   uint16 = 0x1000
	tfNone uint16 = 0x1800

	nhMask       uint16 = 0x0400
	nhInline     uint16 = 0x0000
	nhCompressed uint16 = 0x0400

	hlimMask   uint16 = 0x0300
	hlimInline uint16 = 0x0000
	hlim1      uint16 = 0x0100
	hlim64     uint16 = 0x0200
	hlim255    uint16 = 0x0300

	cidMask uint16 = 0x0080
	cidNone uint16 = 0x0000
	cidExt  uint16 = 0x0080

	sacMask      uint16 = 0x0040
	sacStateless uint16 = 0x0000
	sacStateful  uint16 = 0x0040

	samMask     uint16 = 0x0030
	samSL128    uint16 = 0x0000
	samSL64     uint16 = 0x0010
	samSL16     uint16 = 0x0020
	samSL0      uint16 = 0x0030
	samSFUnspec uint16 = 0x0000
	samSF64     uint16 = 0x0010
	samSF16     uint16 = 0x0020
	samSF0      uint16 = 0x0030

	mMask          uint16 = 0x0008
	mNotMulticast  uint16 = 0x0000
	mMulticast     uint16 = 0x0008
	dacMask        uint16 = 0x0004
	dacStateless   uint16 = 0x0000
	dacStateful    uint16 = 0x0004
	damMask        uint16 = 0x0003
	damSL128       uint16 = 0x0000
	damSL64        uint16 = 0x0001
	damSL16        uint16 = 0x0002
	damSL0         uint16 = 0x0003
	damSF64        uint16 = 0x0001
	damSF16        uint16 = 0x0002
	damSF0         uint16 = 0x0003
	damMSL128      uint16 = 0x0000
	damMSL48       uint16 = 0x0001
	damMSL32       uint16 = 0x0002
	damMSL8        uint16 = 0x0003
	damMSF48       uint16 = 0x0001
	cidSCIShift           = 4
	cidDCIShift           = 0
)

func iphcType(h *Header) uint16 {
	p := h.Buf.PeekOffset(0, 2)
	if p == nil {
		return 0
	}
	return byteorder.BE.GetU16(p)
}

func setIPHCType(h *Header, iphc uint16) {
	var buf [2]byte
	byteorder.BE.SetU16(buf[:], iphc)
	h.Buf.ReplaceOffset(buf[:], 0, 2)
}

func flenCID(iphc uint16) int {
	if iphc&cidMask == cidNone {
		return 0
	}
	return 1
}

func flenTCFL(iphc uint16) int {
	switch iphc & tfMask {
	case tfTCFL:
		return 4
	case tfFL:
		return 3
	case tfTC:
		return 1
	default:
		return 0
	}
}

func flenNH() int { return 1 }

func flenHLIM(iphc uint16) int {
	if iphc&hlimMask == hlimInline {
		return 1
	}
	return 0
}

func flenSrc(iphc uint16) int {
	switch iphc & (sacMask | samMask) {
	case sacStateless | samSL128:
		return 16
	case sacStateless | samSL64:
		return 8
	case sacStateless | samSL16:
		return 2
	case sacStateless | samSL0:
		return 0
	case sacStateful | samSF64:
		return 8
	case sacStateful | samSF16:
		return 2
	case sacStateful | samSF0:
		return 0
	default:
		return 0
	}
}

func flenDest(iphc uint16) int {
	switch iphc & (mMask | dacMask | damMask) {
	case mNotMulticast | dacStateless | damSL128:
		return 16
	case mNotMulticast | dacStateless | damSL64:
		return 8
	case mNotMulticast | dacStateless | damSL16:
		return 2
	case mNotMulticast | dacStateless | damSL0:
		return 0
	case mNotMulticast | dacStateful | damSF64:
		return 8
	case mNotMulticast | dacStateful | damSF16:
		return 2
	case mNotMulticast | dacStateful | damSF0:
		return 0
	case mMulticast | dacStateless | damMSL128:
		return 16
	case mMulticast | dacStateless | damMSL48:
		return 6
	case mMulticast | dacStateless | damMSL32:
		return 4
	case mMulticast | dacStateless | damMSL8:
		return 1
	case mMulticast | dacStateful | damMSF48:
		return 6
	default:
		return 0
	}
}

// ehFirst returns the first IPv6 extension header embedded in h's IPHC
// payload, per the fixed field layout above.
func ehFirst(h *Header) ipv6.EH {
	iphc := iphcType(h)

	prev := h.Buf.Start() + 2 + flenCID(iphc) + flenTCFL(iphc)
	start := prev + flenNH() + flenHLIM(iphc) + flenSrc(iphc) + flenDest(iphc)

	return ipv6.EHAt(h.Buf.Parent, prev, start)
}

// AppendIPHCHeader appends a default IPHC header (TF=elided, NH=inline,
// HLIM=inline) after h, then selects and writes the source/destination
// addressing mode against ctxTable.
func AppendIPHCHeader(h *Header, ctxTable *Table, src, dest []byte, frame Frame) bool {
	if !AppendHeader(h, IPHCDispatch, nil, 1) {
		return false
	}

	setIPHCType(h, uint16(IPHCDispatch)<<8|tfNone|nhInline|hlimInline)
	pushAddrMode(h, ctxTable, src, dest, frame)
	return true
}

func pushAddrMode(h *Header, ctxTable *Table, src, dest []byte, frame Frame) {
	sci := setSrcAddrMode(h, ctxTable, src, frame)
	dci := setDestAddrMode(h, ctxTable, dest, frame)
	pushCID(h, sci, dci)
}

// setSrcAddrMode selects SAC/SAM for src and returns the source context
// id used (0 if none).
func setSrcAddrMode(h *Header, ctxTable *Table, src []byte, frame Frame) int {
	iphc := iphcType(h) &^ (sacMask | samMask)

	if ipv6.AddrIsUnspecified(src) {
		iphc |= sacStateful | samSFUnspec
		setIPHCType(h, iphc)
		return 0
	}

	ctx := ctxTable.SearchAddr(src, 0, 8)
	if noContext(ctx) {
		iphc |= sacStateless | samSL128
		setIPHCType(h, iphc)
		return 0
	}

	if ctx == 0 {
		iphc |= sacStateless
	} else {
		iphc |= sacStateful
	}

	if src[8] == 0x00 && src[9] == 0x00 && src[10] == 0x00 &&
		src[11] == 0xFF && src[12] == 0xFE && src[13] == 0x00 {
		iphc |= samSL16
	} else {
		iphc |= samSL64
	}

	if n := frame.LengthSrcAddr(); (n == 8 || (n == 2 && iphc&samMask == samSL16)) && bytesEqual(src[16-n:], frame.SrcAddr()) {
		iphc = (iphc &^ samMask) | samSL0
	}

	setIPHCType(h, iphc)
	return ctx
}

// setDestAddrMode selects M/DAC/DAM for dest and returns the destination
// context id used (0 if none).
func setDestAddrMode(h *Header, ctxTable *Table, dest []byte, frame Frame) int {
	iphc := iphcType(h) &^ (mMask | dacMask | damMask)

	if ipv6.AddrIsMulticast(dest) {
		iphc |= mMulticast

		ctx := ctxTable.SearchAddr(dest, 3, 9)
		switch {
		case ctx > 0 && ctx < MaxContexts:
			iphc |= dacStateful | damMSF48
		case dest[1] == 0x02 && isZeroRange(dest, 2, 13):
			iphc |= dacStateless | damMSL8
		case isZeroRange(dest, 2, 11):
			iphc |= dacStateless | damMSL32
		case isZeroRange(dest, 2, 9):
			iphc |= dacStateless | damMSL48
		default:
			iphc |= dacStateless | damMSL128
		}
		setIPHCType(h, iphc)
		if ctx > 0 && ctx < MaxContexts {
			return ctx
		}
		return 0
	}

	iphc |= mNotMulticast
	ctx := ctxTable.SearchAddr(dest, 0, 8)
	if noContext(ctx) {
		iphc |= dacStateless | damSL128
		setIPHCType(h, iphc)
		return 0
	}

	if ctx == 0 {
		iphc |= dacStateless
	} else {
		iphc |= dacStateful
	}

	if dest[8] == 0x00 && dest[9] == 0x00 && dest[10] == 0x00 &&
		dest[11] == 0xFF && dest[12] == 0xFE && dest[13] == 0x00 {
		iphc |= damSL16
	} else {
		iphc |= damSL64
	}

	if n := frame.LengthDestAddr(); (n == 8 || (n == 2 && iphc&damMask == damSL16)) && bytesEqual(dest[16-n:], frame.DestAddr()) {
		iphc = (iphc &^ damMask) | damSL0
	}

	setIPHCType(h, iphc)
	return ctx
}

// isZeroRange reports whether dest[lo:lo+n] are all zero, the test used
// to recognize the progressively-looser stateless multicast address forms
// ff02::00XX / ffXX::00XX:XXXX / ffXX::00XX:XXXX:XXXX.
func isZeroRange(dest []byte, lo, n int) bool {
	for i := lo; i < lo+n; i++ {
		if dest[i] != 0 {
			return false
		}
	}
	return true
}

func pushCID(h *Header, sci, dci int) {
	cid := uint8(sci<<cidSCIShift) | uint8(dci<<cidDCIShift)
	if cid != 0 {
		setIPHCType(h, iphcType(h)|cidExt)
		h.Buf.PushU8(cid)
	}
}

func pushTCFL(h *Header, pkt *ipv6.Packet) {
	iphc := iphcType(h) &^ tfMask
	tc := pkt.TrafficClass()
	ecn := tc & 0x3
	dscp := (tc >> 2) & 0x3F
	flow := pkt.FlowLabel()

	switch {
	case flow != 0 && dscp != 0:
		iphc |= tfTCFL
		h.Buf.PushU8(ecn<<6 | dscp)
		h.Buf.PushU8(uint8(flow>>16) & 0x0F)
		h.Buf.PushU8(uint8(flow >> 8))
		h.Buf.PushU8(uint8(flow))
	case flow != 0:
		iphc |= tfFL
		h.Buf.PushU8(ecn<<6 | uint8(flow>>16)&0x0F)
		h.Buf.PushU8(uint8(flow >> 8))
		h.Buf.PushU8(uint8(flow))
	case ecn != 0 || dscp != 0:
		iphc |= tfTC
		h.Buf.PushU8(ecn<<6 | dscp)
	default:
		iphc |= tfNone
	}

	setIPHCType(h, iphc)
}

func pushNextHeader(h *Header, pkt *ipv6.Packet) {
	h.Buf.PushU8(pkt.NextHeader())
}

func pushHopLimit(h *Header, pkt *ipv6.Packet) {
	h.Buf.PushU8(pkt.HopLimit())
}

func pushSrc(h *Header, src []byte) {
	flen := flenSrc(iphcType(h))
	h.Buf.PushMem(src[16-flen:], flen)
}

func pushDest(h *Header, dest []byte) {
	iphc := iphcType(h)
	flen := flenDest(iphc)

	if iphc&mMask == mMulticast {
		switch {
		case iphc&dacMask == dacStateful && iphc&damMask == damMSF48:
			h.Buf.PushMem(dest[1:3], 2)
			flen -= 2
		case iphc&dacMask == dacStateless && (iphc&damMask == damMSL32 || iphc&damMask == damMSL48):
			h.Buf.PushMem(dest[1:2], 1)
			flen--
		}
	}

	h.Buf.PushMem(dest[16-flen:], flen)
}

func popType(h *Header) uint16 {
	p := h.Buf.Pop(2)
	if p == nil {
		return 0
	}
	return byteorder.BE.GetU16(p)
}

func popCID(h *Header, iphc uint16) uint8 {
	if iphc&cidMask == cidNone {
		return 0
	}
	b, _ := h.Buf.PopU8()
	return b
}

func popTCFL(pkt *ipv6.Packet, h *Header, iphc uint16) {
	var ecn, dscp uint8
	var flow uint32

	switch iphc & tfMask {
	case tfTCFL:
		buf := h.Buf.Pop(4)
		ecn = buf[0] >> 6
		dscp = buf[0] << 2
		flow |= uint32(buf[1]&0xF) << 16
		flow |= uint32(buf[2]) << 8
		flow |= uint32(buf[3])
	case tfFL:
		buf := h.Buf.Pop(3)
		ecn = buf[0] >> 6
		flow |= uint32(buf[0]&0xF) << 16
		flow |= uint32(buf[1]) << 8
		flow |= uint32(buf[2])
	case tfTC:
		buf := h.Buf.Pop(1)
		ecn = buf[0] >> 6
		dscp = buf[0] << 2
	}

	pkt.SetTrafficClass(ecn | dscp)
	pkt.SetFlowLabel(flow)
}

func popNH(pkt *ipv6.Packet, h *Header, iphc uint16) {
	if iphc&nhMask == nhInline {
		nh, _ := h.Buf.PopU8()
		pkt.SetNextHeader(nh)
	}
}

func popHLIM(pkt *ipv6.Packet, h *Header, iphc uint16) {
	switch iphc & hlimMask {
	case hlim1:
		pkt.SetHopLimit(1)
	case hlim64:
		pkt.SetHopLimit(64)
	case hlim255:
		pkt.SetHopLimit(255)
	default:
		hl, _ := h.Buf.PopU8()
		pkt.SetHopLimit(hl)
	}
}

func popSrc(src []byte, h *Header, iphc uint16, cid uint8, ctxTable *Table, frame Frame) bool {
	sci := int(cid>>cidSCIShift) & 0xF
	addr := ctxTable.SearchID(sci)
	if addr != nil {
		copy(src, addr)
	}

	switch iphc & (sacMask | samMask) {
	case sacStateless | samSL128:
		h.Buf.PopMem(src[0:16], 16)
	case sacStateful | samSFUnspec:
		for i := range src {
			src[i] = 0
		}
	case sacStateless | samSL64, sacStateful | samSF64:
		h.Buf.PopMem(src[8:16], 8)
	case sacStateless | samSL16, sacStateful | samSF16:
		src[11] = 0xFF
		src[12] = 0xFE
		h.Buf.PopMem(src[14:16], 2)
	case sacStateless | samSL0, sacStateful | samSF0:
		n := frame.LengthSrcAddr()
		copy(src[16-n:], frame.SrcAddr())
		if n == 2 {
			src[11] = 0xFF
			src[12] = 0xFE
		} else if n != 8 {
			return false
		}
	default:
		return false
	}
	return true
}

func popDest(dest []byte, h *Header, iphc uint16, cid uint8, ctxTable *Table, frame Frame) bool {
	dci := int(cid>>cidDCIShift) & 0xF
	addr := ctxTable.SearchID(dci)
	if addr != nil {
		copy(dest, addr)
	}

	switch iphc & (dacMask | mMask | damMask) {
	case dacStateless | mNotMulticast | damSL128, dacStateless | mMulticast | damMSL128:
		h.Buf.PopMem(dest[0:16], 16)
	case dacStateless | mNotMulticast | damSL64, dacStateful | mNotMulticast | damSF64:
		h.Buf.PopMem(dest[8:16], 8)
	case dacStateless | mNotMulticast | damSL16, dacStateful | mNotMulticast | damSF16:
		dest[11] = 0xFF
		dest[12] = 0xFE
		h.Buf.PopMem(dest[14:16], 2)
	case dacStateless | mNotMulticast | damSL0, dacStateful | mNotMulticast | damSF0:
		n := frame.LengthDestAddr()
		copy(dest[16-n:], frame.DestAddr())
		if n == 2 {
			dest[11] = 0xFF
			dest[12] = 0xFE
		} else if n != 8 {
			return false
		}
	case dacStateless | mMulticast | damMSL48:
		dest[0] = 0xFF
		b, _ := h.Buf.PopU8()
		dest[1] = b
		h.Buf.PopMem(dest[11:16], 5)
	case dacStateless | mMulticast | damMSL32:
		dest[0] = 0xFF
		b, _ := h.Buf.PopU8()
		dest[1] = b
		h.Buf.PopMem(dest[13:16], 3)
	case dacStateless | mMulticast | damMSL8:
		dest[0] = 0xFF
		dest[1] = 0x02
		b, _ := h.Buf.PopU8()
		dest[15] = b
	case dacStateful | mMulticast | damMSF48:
		dest[0] = 0xFF
		b1, _ := h.Buf.PopU8()
		b2, _ := h.Buf.PopU8()
		dest[1] = b1
		dest[2] = b2
		if addr != nil {
			if addr[3] > 64 {
				dest[3] = 64
			} else {
				dest[3] = addr[3]
			}
		}
		h.Buf.PopMem(dest[12:16], 4)
	default:
		return false
	}
	return true
}

// Compress compresses as much of pkt's unfragmentable prefix and payload
// as fit into frame, generating an IPHC header, copying any unfragmentable
// extension headers (HBH, Routing) verbatim, and, if the remainder does
// not fit (or a previous call already left some packet octets unsent),
// inserting a Fragment header and copying a contiguous unsent run.
// pkt must already be finalized (payload length and any upper-layer
// checksum up to date) before the first call. Returns the number of
// whole-packet bytes now marked sent (cumulative across calls for a
// fragmented packet), or 0 on error.
func Compress(pkt *ipv6.Packet, frame Frame, ctxTable *Table) int {
	totalBits := (pkt.Length() + 7) / 8
	if pkt.Frags.NextZero(0) >= totalBits {
		return pkt.Length()
	}

	h := First(frame)
	if !AppendIPHCHeader(&h, ctxTable, pkt.Src(), pkt.Dst(), frame) {
		return 0
	}
	pushTCFL(&h, pkt)
	pushNextHeader(&h, pkt)
	pushHopLimit(&h, pkt)
	pushSrc(&h, pkt.Src())
	pushDest(&h, pkt.Dst())

	pkt.Frags.WriteRange(0, 5)
	frag := 5

	pktEH := ipv6.First(pkt)
	lowEH := ehFirst(&h)

	for !ipv6.IsUpper(pktEH.Type()) && !ipv6.CanFrag(pktEH.Type()) {
		length := pktEH.Length()
		if !lowEH.ResetBuffer().Parent.PushMem(pktEH.ResetBuffer().PeekAt(pktEH.ResetBuffer().Start(), length), length) {
			return 0
		}
		pkt.Frags.WriteRange(frag, frag+(length+7)/8)
		frag += (length + 7) / 8
		ipv6.Next(&pktEH)
		ipv6.Next(&lowEH)
	}

	frag = pkt.Frags.NextZero(frag)
	if frag < totalBits {
		remaining := pkt.Length() - frag*8
		if remaining > frame.Free() || pkt.Frags.NextOne(frag) < totalBits {
			ipv6.FragPrepend(&lowEH, pkt.FragID, uint16(frag*8))
		}

		for frag < totalBits && !pkt.Frags.Get(frag) {
			n := 8
			if pkt.Length()-frag*8 < n {
				n = pkt.Length() - frag*8
			}
			start := pkt.Buf.Start() + frag*8
			if !h.Buf.Parent.PushMem(pkt.Buf.PeekAt(start, n), n) {
				break
			}
			pkt.Frags.SetBit(frag)
			frag++
		}

		ipv6.FragFinalize(&lowEH, uint16(pkt.Length()))
	}

	sent := pkt.Frags.PopCount() * 8
	if pkt.Frags.Get(totalBits - 1) {
		sent -= totalBits*8 - pkt.Length()
	}
	return sent
}

// Decompress reverses Compress: it locates the first IPHC header in
// frame's 6LoWPAN chain, expands it against ctxTable and frame's
// link-layer addresses into pkt, copies the remaining bytes (the
// extension-header chain and upper-layer payload) verbatim, and finalizes
// pkt's payload length. Returns the recovered IPv6 packet length, or 0 on
// error.
func Decompress(pkt *ipv6.Packet, frame Frame, ctxTable *Table) int {
	var iphcHdr Header
	h := First(frame)
	for IsValid(&h) && Type(&h)&NALPMask != NALP {
		if IsIPHC(&h) {
			iphcHdr = h
		}
		Next(&h)
	}
	if !IsValid(&iphcHdr) {
		return 0
	}

	iphc := popType(&iphcHdr)
	cid := popCID(&iphcHdr, iphc)
	popTCFL(pkt, &iphcHdr, iphc)
	popNH(pkt, &iphcHdr, iphc)
	popHLIM(pkt, &iphcHdr, iphc)
	if !popSrc(pkt.Src(), &iphcHdr, iphc, cid, ctxTable, frame) {
		return 0
	}
	if !popDest(pkt.Dst(), &iphcHdr, iphc, cid, ctxTable, frame) {
		return 0
	}

	lowEH := ehFirst(&iphcHdr)
	length := iphcHdr.Buf.Parent.Write() - lowEH.ResetBuffer().Start()
	pkt.Buf.PushMem(iphcHdr.Buf.Parent.PeekAt(lowEH.ResetBuffer().Start(), length), length)
	pkt.Finalize()

	pkt.Frags.WriteRange(0, 5+(pkt.Length()+7)/8)
	return pkt.Length()
}
