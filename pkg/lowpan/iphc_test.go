package lowpan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/khildebrand/lowpan6/pkg/icmpv6"
	"github.com/khildebrand/lowpan6/pkg/ipv6"
	"github.com/khildebrand/lowpan6/pkg/lowpan"
)

func buildEchoPacket(t *testing.T, src, dst []byte, payload []byte) *ipv6.Packet {
	t.Helper()
	data := make([]byte, ipv6.MTU)
	pkt := ipv6.NewPacket(data, len(data))
	require.NotNil(t, pkt)
	pkt.SetVersion(ipv6.Version)
	pkt.SetHopLimit(64)
	pkt.SetSrc(src)
	pkt.SetDst(dst)
	pkt.SetNextHeader(ipv6.ICMPv6)

	eh := ipv6.First(pkt)
	require.True(t, icmpv6.AppendEchoRequest(&eh, 7, 1, payload))
	icmpv6.Finalize(&eh)
	return pkt
}

// TestIPHCRoundTripFullAddresses exercises the no-context, fully-inline
// (SAM/DAM 128-bit) path: the compressor finds no matching context for
// either address and neither matches a link-layer address, so both
// addresses are carried in full.
func TestIPHCRoundTripFullAddresses(t *testing.T) {
	src := []byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01}
	dst := []byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x02}
	pkt := buildEchoPacket(t, src, dst, []byte("ping"))

	ctx := lowpan.NewTable()
	frameData := make([]byte, 200)
	frame := lowpan.NewStaticFrame(frameData, len(frameData), []byte{0xAA, 0xBB}, []byte{0xCC, 0xDD})
	require.NotNil(t, frame)

	sent := lowpan.Compress(pkt, frame, ctx)
	require.Equal(t, pkt.Length(), sent)

	outData := make([]byte, ipv6.MTU)
	out := ipv6.NewPacket(outData, len(outData))
	require.NotNil(t, out)

	n := lowpan.Decompress(out, frame, ctx)
	require.Greater(t, n, 0)

	require.Equal(t, src, out.Src())
	require.Equal(t, dst, out.Dst())
	require.Equal(t, pkt.NextHeader(), out.NextHeader())
	require.Equal(t, pkt.HopLimit(), out.HopLimit())
}

// TestIPHCRoundTripContextElision exercises the stateful-context path:
// both addresses share a /64 prefix installed in the context table, so
// IPHC elides it and only the IID travels on the wire.
func TestIPHCRoundTripContextElision(t *testing.T) {
	prefix := []byte{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0}
	src := append([]byte{}, prefix...)
	src[8], src[15] = 0, 0x01
	dst := append([]byte{}, prefix...)
	dst[8], dst[15] = 0, 0x02

	pkt := buildEchoPacket(t, src, dst, []byte("x"))

	ctx := lowpan.NewTable()
	require.True(t, ctx.Put(1, prefix))

	frameData := make([]byte, 200)
	frame := lowpan.NewStaticFrame(frameData, len(frameData), []byte{0x01}, []byte{0x02})
	require.NotNil(t, frame)

	sent := lowpan.Compress(pkt, frame, ctx)
	require.Equal(t, pkt.Length(), sent)

	outData := make([]byte, ipv6.MTU)
	out := ipv6.NewPacket(outData, len(outData))
	require.NotNil(t, out)

	n := lowpan.Decompress(out, frame, ctx)
	require.Greater(t, n, 0)
	require.Equal(t, src, out.Src())
	require.Equal(t, dst, out.Dst())
}
