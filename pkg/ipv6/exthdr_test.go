package ipv6_test

import (
	"testing"

	"github.com/khildebrand/lowpan6/pkg/buffer"
	"github.com/khildebrand/lowpan6/pkg/ipv6"
)

func TestEHPrependUpperLayer(t *testing.T) {
	data := make([]byte, 100)
	pkt := ipv6.NewPacket(data, len(data))
	pkt.SetNextHeader(ipv6.NoNextHeader)

	eh := ipv6.First(pkt)
	if !ipv6.Prepend(&eh, ipv6.ICMPv6, []byte("hi"), 2) {
		t.Fatalf("Prepend upper-layer failed")
	}
	if eh.Type() != ipv6.ICMPv6 {
		t.Errorf("Type() = %d, want ICMPv6 (%d)", eh.Type(), ipv6.ICMPv6)
	}
	if eh.Length() != 2 {
		t.Errorf("Length() = %d, want 2", eh.Length())
	}
}

func TestEHDestinationThenUpper(t *testing.T) {
	data := make([]byte, 200)
	pkt := ipv6.NewPacket(data, len(data))
	pkt.SetNextHeader(ipv6.NoNextHeader)

	eh := ipv6.First(pkt)
	if !ipv6.Prepend(&eh, ipv6.Destination, make([]byte, 6), 6) {
		t.Fatalf("Prepend Destination failed")
	}
	ipv6.Finalize(&eh)

	if eh.Type() != ipv6.Destination {
		t.Fatalf("Type() = %d, want Destination", eh.Type())
	}

	if !ipv6.Append(&eh, ipv6.ICMPv6, []byte("ok"), 2) {
		t.Fatalf("Append upper-layer after Destination failed")
	}
	if eh.Type() != ipv6.ICMPv6 {
		t.Errorf("Type() after Append = %d, want ICMPv6", eh.Type())
	}
}

func TestEHAtOverGenericBuffer(t *testing.T) {
	// Lay out a 1-byte prologue (type=ICMPv6) followed by 2 bytes of
	// payload, then walk it with EHAt exactly as the 6LoWPAN
	// IPHC decoder does over a frame buffer that isn't a real Packet.
	raw := make([]byte, 16)
	top := buffer.New(raw, 0, len(raw))
	if top == nil {
		t.Fatalf("buffer.New returned nil")
	}
	top.PushMem([]byte{byte(ipv6.ICMPv6), 0xAB, 0xCD}, 3)

	eh := ipv6.EHAt(top, 0, 1)
	if !eh.IsValid() {
		t.Fatalf("EHAt produced invalid EH")
	}
	if eh.Type() != ipv6.ICMPv6 {
		t.Errorf("Type() = %d, want ICMPv6", eh.Type())
	}
	if eh.Pkt() != nil {
		t.Errorf("Pkt() = %v, want nil for EHAt-constructed EH", eh.Pkt())
	}
}
