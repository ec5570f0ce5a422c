// Package lowpanctl is the ambient control layer around the codec
// packages: context-table bootstrap and a small scenario runner used by
// the demo command and cross-validation tests. Unlike the codec packages
// it wraps errors with context instead of returning sentinels, since it
// runs at setup time rather than in the per-packet hot path.
package lowpanctl

import (
	"github.com/pkg/errors"

	"github.com/khildebrand/lowpan6/pkg/icmpv6"
	"github.com/khildebrand/lowpan6/pkg/ipv6"
	"github.com/khildebrand/lowpan6/pkg/lowpan"
	"github.com/khildebrand/lowpan6/pkg/ndp"
)

// ContextSeed describes one address-context table entry to install.
type ContextSeed struct {
	ID     int
	Prefix []byte // 16-byte IPv6 address whose leading bytes form the prefix
}

// BootstrapContexts builds a lowpan.Table and installs seeds into it,
// in addition to the table's built-in default (slot 0, fe80::/10).
func BootstrapContexts(seeds []ContextSeed) (*lowpan.Table, error) {
	t := lowpan.NewTable()
	for _, s := range seeds {
		if s.ID == 0 {
			continue // slot 0 is the built-in link-local default
		}
		if !t.Put(s.ID, s.Prefix) {
			return nil, errors.Errorf("lowpanctl: bootstrap context: put(%d) failed (slot occupied or address malformed)", s.ID)
		}
	}
	return t, nil
}

// EchoScenario builds an ICMPv6 echo request packet from src to dst,
// returning the finalized packet.
func EchoScenario(src, dst []byte, id, seq uint16, payload []byte) (*ipv6.Packet, error) {
	data := make([]byte, ipv6.MTU)
	pkt := ipv6.NewPacket(data, len(data))
	if pkt == nil {
		return nil, errors.New("lowpanctl: echo scenario: packet allocation failed")
	}
	pkt.SetVersion(ipv6.Version)
	pkt.SetHopLimit(64)
	pkt.SetSrc(src)
	pkt.SetDst(dst)
	pkt.SetNextHeader(ipv6.ICMPv6)

	eh := ipv6.First(pkt)
	if !icmpv6.AppendEchoRequest(&eh, id, seq, payload) {
		return nil, errors.New("lowpanctl: echo scenario: append echo request failed")
	}
	icmpv6.Finalize(&eh)
	return pkt, nil
}

// NDPRouterSolicitScenario builds an NDP router-solicitation packet with
// a source link-layer address option, from src to the all-routers
// multicast address.
func NDPRouterSolicitScenario(src, sllao []byte) (*ipv6.Packet, error) {
	data := make([]byte, ipv6.MTU)
	pkt := ipv6.NewPacket(data, len(data))
	if pkt == nil {
		return nil, errors.New("lowpanctl: rs scenario: packet allocation failed")
	}
	pkt.SetVersion(ipv6.Version)
	pkt.SetHopLimit(255)
	pkt.SetSrc(src)
	pkt.SetDst(allRoutersAddr())
	pkt.SetNextHeader(ipv6.ICMPv6)

	eh := ipv6.First(pkt)
	if !ndp.AppendRS(&eh) {
		return nil, errors.New("lowpanctl: rs scenario: append router solicitation failed")
	}
	if sllao != nil {
		opt := ndp.RSOptFirst(&eh)
		if !ndp.AppendSLLAO(&opt, sllao) {
			return nil, errors.New("lowpanctl: rs scenario: append sllao option failed")
		}
	}
	icmpv6.Finalize(&eh)
	return pkt, nil
}

// LowpanRoundTrip compresses pkt into frame via IPHC against ctxTable,
// then immediately decompresses the result into a fresh packet, returning
// it for comparison against pkt by the caller.
func LowpanRoundTrip(pkt *ipv6.Packet, frameCap int, src, dest []byte, ctxTable *lowpan.Table) (*ipv6.Packet, error) {
	frameData := make([]byte, frameCap)
	frame := lowpan.NewStaticFrame(frameData, frameCap, src, dest)
	if frame == nil {
		return nil, errors.New("lowpanctl: round trip: frame allocation failed")
	}

	if n := lowpan.Compress(pkt, frame, ctxTable); n != pkt.Length() {
		return nil, errors.Errorf("lowpanctl: round trip: compress sent %d/%d bytes (fragmentation not supported by this helper)", n, pkt.Length())
	}

	out := make([]byte, ipv6.MTU)
	outPkt := ipv6.NewPacket(out, len(out))
	if outPkt == nil {
		return nil, errors.New("lowpanctl: round trip: output packet allocation failed")
	}

	if n := lowpan.Decompress(outPkt, frame, ctxTable); n == 0 {
		return nil, errors.New("lowpanctl: round trip: decompress failed")
	}
	return outPkt, nil
}

// DumpFrame returns the raw bytes frame currently holds, for use by
// cross-validation tests that hand the wire image to an independent
// decoder.
func DumpFrame(frame *lowpan.StaticFrame) []byte {
	b := frame.ResetBuffer()
	return b.Bytes()
}

// allRoutersAddr returns the all-routers multicast address ff02::2.
func allRoutersAddr() []byte {
	a := make([]byte, 16)
	a[0] = 0xFF
	a[1] = 0x02
	a[15] = 0x02
	return a
}
