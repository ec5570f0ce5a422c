package ipv6_test

import (
	"testing"

	"github.com/khildebrand/lowpan6/pkg/ipv6"
)

func TestPacketFieldRoundTrip(t *testing.T) {
	data := make([]byte, 100)
	pkt := ipv6.NewPacket(data, len(data))
	if pkt == nil {
		t.Fatalf("NewPacket returned nil")
	}

	if !pkt.SetVersion(6) {
		t.Fatalf("SetVersion failed")
	}
	if pkt.Version() != 6 {
		t.Errorf("Version() = %d, want 6", pkt.Version())
	}

	if !pkt.SetTrafficClass(0x2C) {
		t.Fatalf("SetTrafficClass failed")
	}
	if got := pkt.TrafficClass(); got != 0x2C {
		t.Errorf("TrafficClass() = %#x, want %#x", got, 0x2C)
	}
	// version must survive setting traffic class (they share byte 0)
	if pkt.Version() != 6 {
		t.Errorf("Version() after SetTrafficClass = %d, want 6", pkt.Version())
	}

	if !pkt.SetFlowLabel(0xABCDE) {
		t.Fatalf("SetFlowLabel failed")
	}
	if got := pkt.FlowLabel(); got != 0xABCDE {
		t.Errorf("FlowLabel() = %#x, want %#x", got, 0xABCDE)
	}

	if !pkt.SetNextHeader(ipv6.ICMPv6) {
		t.Fatalf("SetNextHeader failed")
	}
	if pkt.NextHeader() != ipv6.ICMPv6 {
		t.Errorf("NextHeader() = %d, want %d", pkt.NextHeader(), ipv6.ICMPv6)
	}

	if !pkt.SetHopLimit(64) {
		t.Fatalf("SetHopLimit failed")
	}
	if pkt.HopLimit() != 64 {
		t.Errorf("HopLimit() = %d, want 64", pkt.HopLimit())
	}

	src := []byte{0x20, 0x01, 0xd, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	dst := []byte{0x20, 0x01, 0xd, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2}
	if !pkt.SetSrc(src) || !pkt.SetDst(dst) {
		t.Fatalf("SetSrc/SetDst failed")
	}
	if got := pkt.Src(); string(got) != string(src) {
		t.Errorf("Src() = %x, want %x", got, src)
	}
	if got := pkt.Dst(); string(got) != string(dst) {
		t.Errorf("Dst() = %x, want %x", got, dst)
	}
}

func TestPacketFinalizeSetsPayloadLen(t *testing.T) {
	data := make([]byte, 100)
	pkt := ipv6.NewPacket(data, len(data))
	pkt.Buf.PushMem(make([]byte, 12), 12)

	if !pkt.Finalize() {
		t.Fatalf("Finalize failed")
	}
	if pkt.PayloadLen() != 12 {
		t.Errorf("PayloadLen() = %d, want 12", pkt.PayloadLen())
	}
}

func TestAddrClassification(t *testing.T) {
	unspec := make([]byte, 16)
	if !ipv6.AddrIsUnspecified(unspec) {
		t.Errorf("AddrIsUnspecified(::) = false, want true")
	}

	loopback := make([]byte, 16)
	loopback[15] = 1
	if !ipv6.AddrIsLoopback(loopback) {
		t.Errorf("AddrIsLoopback(::1) = false, want true")
	}

	ll := make([]byte, 16)
	ll[0] = 0xfe
	ll[1] = 0x80
	if !ipv6.AddrIsLinkLocal(ll) {
		t.Errorf("AddrIsLinkLocal(fe80::) = false, want true")
	}

	mc := make([]byte, 16)
	mc[0] = 0xff
	if !ipv6.AddrIsMulticast(mc) {
		t.Errorf("AddrIsMulticast(ff00::) = false, want true")
	}
}

func TestChecksumPseudoHeader(t *testing.T) {
	src := []byte{0x20, 0x01, 0xd, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	dst := []byte{0x20, 0x01, 0xd, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2}

	pseudo := make([]byte, 40)
	copy(pseudo[0:16], src)
	copy(pseudo[16:32], dst)
	pseudo[35] = 8
	pseudo[39] = ipv6.ICMPv6

	sum := ipv6.Checksum(pseudo, 0)
	sum2 := ipv6.Checksum(pseudo, 0)
	if sum != sum2 {
		t.Errorf("Checksum not deterministic: %#x != %#x", sum, sum2)
	}
}
