package icmpv6_test

import (
	"bytes"
	"testing"

	"github.com/khildebrand/lowpan6/pkg/icmpv6"
	"github.com/khildebrand/lowpan6/pkg/ipv6"
)

func buildPacket(t *testing.T, src, dst []byte) *ipv6.Packet {
	t.Helper()
	data := make([]byte, ipv6.MTU)
	pkt := ipv6.NewPacket(data, len(data))
	if pkt == nil {
		t.Fatalf("NewPacket returned nil")
	}
	pkt.SetVersion(ipv6.Version)
	pkt.SetHopLimit(64)
	pkt.SetSrc(src)
	pkt.SetDst(dst)
	pkt.SetNextHeader(ipv6.ICMPv6)
	return pkt
}

func TestEchoRequestReplyWireFields(t *testing.T) {
	src := []byte{0x20, 1, 0xd, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	dst := []byte{0x20, 1, 0xd, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2}
	pkt := buildPacket(t, src, dst)

	eh := ipv6.First(pkt)
	if !icmpv6.AppendEchoRequest(&eh, 42, 7, []byte("payload")) {
		t.Fatalf("AppendEchoRequest failed")
	}
	icmpv6.Finalize(&eh)

	if icmpv6.Type(&eh) != icmpv6.EchoRequest {
		t.Errorf("Type() = %d, want EchoRequest", icmpv6.Type(&eh))
	}
	if icmpv6.EchoID(&eh) != 42 {
		t.Errorf("EchoID() = %d, want 42", icmpv6.EchoID(&eh))
	}
	if icmpv6.EchoSeqNum(&eh) != 7 {
		t.Errorf("EchoSeqNum() = %d, want 7", icmpv6.EchoSeqNum(&eh))
	}
	if !bytes.Equal(icmpv6.EchoData(&eh), []byte("payload")) {
		t.Errorf("EchoData() = %q, want %q", icmpv6.EchoData(&eh), "payload")
	}
	if icmpv6.Checksum(&eh) == 0 {
		t.Errorf("Checksum() = 0, want nonzero after Finalize")
	}
}

func TestEchoReplyMirrorsRequest(t *testing.T) {
	src := []byte{0x20, 1, 0xd, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	dst := []byte{0x20, 1, 0xd, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2}

	reqPkt := buildPacket(t, src, dst)
	reqEH := ipv6.First(reqPkt)
	icmpv6.AppendEchoRequest(&reqEH, 1, 1, []byte("ab"))
	icmpv6.Finalize(&reqEH)

	replyPkt := buildPacket(t, dst, src)
	replyEH := ipv6.First(replyPkt)
	if !icmpv6.AppendEchoReply(&replyEH, &reqEH) {
		t.Fatalf("AppendEchoReply failed")
	}
	icmpv6.Finalize(&replyEH)

	if icmpv6.Type(&replyEH) != icmpv6.EchoReply {
		t.Errorf("Type() = %d, want EchoReply", icmpv6.Type(&replyEH))
	}
	if icmpv6.EchoID(&replyEH) != icmpv6.EchoID(&reqEH) {
		t.Errorf("EchoID() = %d, want %d", icmpv6.EchoID(&replyEH), icmpv6.EchoID(&reqEH))
	}
	if !bytes.Equal(icmpv6.EchoData(&replyEH), []byte("ab")) {
		t.Errorf("EchoData() = %q, want %q", icmpv6.EchoData(&replyEH), "ab")
	}
}
