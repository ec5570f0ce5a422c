package ndp_test

import (
	"bytes"
	"testing"

	"github.com/khildebrand/lowpan6/pkg/icmpv6"
	"github.com/khildebrand/lowpan6/pkg/ipv6"
	"github.com/khildebrand/lowpan6/pkg/ndp"
)

func buildPacket(t *testing.T) *ipv6.Packet {
	t.Helper()
	data := make([]byte, ipv6.MTU)
	pkt := ipv6.NewPacket(data, len(data))
	if pkt == nil {
		t.Fatalf("NewPacket returned nil")
	}
	pkt.SetVersion(ipv6.Version)
	pkt.SetHopLimit(255)
	pkt.SetNextHeader(ipv6.ICMPv6)
	return pkt
}

func TestRouterSolicitWithSLLAO(t *testing.T) {
	pkt := buildPacket(t)
	eh := ipv6.First(pkt)

	if !ndp.AppendRS(&eh) {
		t.Fatalf("AppendRS failed")
	}

	opt := ndp.RSOptFirst(&eh)
	sllao := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	if !ndp.AppendSLLAO(&opt, sllao) {
		t.Fatalf("AppendSLLAO failed")
	}
	icmpv6.Finalize(&eh)

	if icmpv6.Type(&eh) != ndp.RS {
		t.Errorf("Type() = %d, want RS (%d)", icmpv6.Type(&eh), ndp.RS)
	}

	got := ndp.RSOptFirst(&eh)
	if !bytes.Equal(ndp.LLAO(&got), sllao) {
		t.Errorf("LLAO() = %x, want %x", ndp.LLAO(&got), sllao)
	}
}

func TestRouterAdvertFields(t *testing.T) {
	pkt := buildPacket(t)
	eh := ipv6.First(pkt)

	fields := ndp.RouterAdvert{
		CurHopLimit:    64,
		Flags:          ndp.RAManaged,
		RouterLifetime: 1800,
		ReachableTime:  30000,
		RetransTimer:   1000,
	}
	if !ndp.AppendRA(&eh, fields) {
		t.Fatalf("AppendRA failed")
	}
	icmpv6.Finalize(&eh)

	if ndp.RAHopLimit(&eh) != 64 {
		t.Errorf("RAHopLimit() = %d, want 64", ndp.RAHopLimit(&eh))
	}
	if ndp.RAFlags(&eh) != ndp.RAManaged {
		t.Errorf("RAFlags() = %#x, want %#x", ndp.RAFlags(&eh), ndp.RAManaged)
	}
	if ndp.RARouterLifetime(&eh) != 1800 {
		t.Errorf("RARouterLifetime() = %d, want 1800", ndp.RARouterLifetime(&eh))
	}
	if ndp.RAReachableTime(&eh) != 30000 {
		t.Errorf("RAReachableTime() = %d, want 30000", ndp.RAReachableTime(&eh))
	}
	if ndp.RARetransTime(&eh) != 1000 {
		t.Errorf("RARetransTime() = %d, want 1000", ndp.RARetransTime(&eh))
	}
}

func TestPrefixInformationOption(t *testing.T) {
	pkt := buildPacket(t)
	eh := ipv6.First(pkt)
	ndp.AppendRA(&eh, ndp.RouterAdvert{CurHopLimit: 64})

	opt := ndp.RAOptFirst(&eh)
	prefixAddr := []byte{0x20, 1, 0xd, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	p := ndp.Prefix{
		Length:        64,
		Flags:         ndp.PrefixOnLink | ndp.PrefixAutonom,
		ValidLifetime: 86400,
		PreferredLife: 14400,
		Addr:          prefixAddr,
	}
	if !ndp.AppendPrefix(&opt, p) {
		t.Fatalf("AppendPrefix failed")
	}

	if ndp.PrefixLength(&opt) != 64 {
		t.Errorf("PrefixLength() = %d, want 64", ndp.PrefixLength(&opt))
	}
	if ndp.PrefixFlags(&opt) != p.Flags {
		t.Errorf("PrefixFlags() = %#x, want %#x", ndp.PrefixFlags(&opt), p.Flags)
	}
	if !bytes.Equal(ndp.PrefixAddr(&opt), prefixAddr) {
		t.Errorf("PrefixAddr() = %x, want %x", ndp.PrefixAddr(&opt), prefixAddr)
	}
}
