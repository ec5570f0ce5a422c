// lowpan6demo demonstrates the lowpan6 toolkit: building an ICMPv6 echo
// request or a router solicitation (chosen with -scenario), then
// compressing it through IPHC against a 6LoWPAN frame and decompressing
// it back.
package main

import (
	"flag"
	"log"

	"github.com/khildebrand/lowpan6/pkg/ipv6"
	"github.com/khildebrand/lowpan6/pkg/lowpan"
	"github.com/khildebrand/lowpan6/pkg/lowpanctl"
)

func main() {
	frameSize := flag.Int("frame-size", 127, "IEEE 802.15.4 frame size budget in bytes")
	scenario := flag.String("scenario", "echo", "scenario to run: echo, rs")
	flag.Parse()

	src := []byte{0xfe, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01}
	dst := []byte{0xfe, 0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x02}

	var pkt *ipv6.Packet
	var err error

	switch *scenario {
	case "rs":
		log.Printf("building router solicitation")
		pkt, err = lowpanctl.NDPRouterSolicitScenario(src, []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF})
	default:
		log.Printf("building echo request")
		pkt, err = lowpanctl.EchoScenario(src, dst, 1, 1, []byte("lowpan6"))
	}
	if err != nil {
		log.Fatalf("build scenario: %v", err)
	}
	log.Printf("packet length: %d bytes", pkt.Length())

	ctx := lowpan.NewTable()
	out, err := lowpanctl.LowpanRoundTrip(pkt, *frameSize, []byte{0x01}, []byte{0x02}, ctx)
	if err != nil {
		log.Fatalf("lowpan round trip: %v", err)
	}
	log.Printf("recovered packet length: %d bytes, src=%v dst=%v", out.Length(), out.Src(), out.Dst())
}
